// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package lookup provides the weak-keyed identity table for the container.
//
// The table maps an element's weak handle to its most recently added
// sequence entry. Handles created from the same pointer compare equal, so
// lookup, removal, and duplicate tracking all work by element identity
// while the keys never extend any element's lifetime.
//
// The table performs no synchronization of its own; the owning container
// serializes access through its lock.
package lookup

import (
	"weak"

	"github.com/kianostad/weaklist/internal/storage/seq"
)

// Table maps element identity to the newest sequence entry for that element.
type Table[T any] struct {
	m map[weak.Pointer[T]]*seq.Entry[T]
}

// NewTable creates an empty table.
func NewTable[T any]() *Table[T] {
	return &Table[T]{m: make(map[weak.Pointer[T]]*seq.Entry[T])}
}

// Put records e as the entry for item, displacing any previous entry for the
// same element. The displaced entry stays linked in the sequence; only the
// lookup slot moves.
func (t *Table[T]) Put(item *T, e *seq.Entry[T]) {
	t.m[weak.Make(item)] = e
}

// Get returns the entry tracked for item, if any.
func (t *Table[T]) Get(item *T) (*seq.Entry[T], bool) {
	e, ok := t.m[weak.Make(item)]
	return e, ok
}

// Delete drops the slot for item, if present.
func (t *Table[T]) Delete(item *T) {
	delete(t.m, weak.Make(item))
}

// Evict drops the slot for ref only while it still points at e. A dead
// duplicate must not take the live entry's slot with it.
func (t *Table[T]) Evict(ref weak.Pointer[T], e *seq.Entry[T]) bool {
	if cur, ok := t.m[ref]; ok && cur == e {
		delete(t.m, ref)
		return true
	}
	return false
}

// Reset replaces the table with a fresh empty map.
func (t *Table[T]) Reset() {
	t.m = make(map[weak.Pointer[T]]*seq.Entry[T])
}

// Len returns the number of tracked elements.
func (t *Table[T]) Len() int {
	return len(t.m)
}
