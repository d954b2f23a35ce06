// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package seq provides the weakly-held entry sequence for the container.
//
// This package implements the doubly-linked chain of entries that backs the
// container. Each entry observes exactly one element through a weak handle
// that never extends the element's lifetime; the chain preserves insertion
// order and supports O(1) unlink given a node reference.
//
// # Key Features
//
//   - Weak observation: entries never keep their element alive
//   - Insertion-order traversal from head to tail
//   - O(1) append and O(1) unlink given the node
//   - Unlinked entries keep a valid forward link so a paused traversal
//     can re-enter the live chain
//   - Maintained length counter for cheap structural size queries
//
// # Usage Examples
//
// Building and walking a sequence:
//
//	var s seq.Sequence[bytes.Buffer]
//
//	buf := new(bytes.Buffer)
//	e := seq.NewEntry(buf)
//	s.PushBack(e)
//
//	for n := s.Front(); n != nil; n = n.Next() {
//	    if v := n.Value(); v != nil {
//	        fmt.Println(v)
//	    }
//	}
//
//	s.Unlink(e)
//
// # Dangers and Warnings
//
//   - **External Locking**: The sequence performs no synchronization of its
//     own. Concurrent access must be guarded by the caller.
//   - **No Reuse**: Entries must never be pooled or recycled. A traversal
//     paused on an unlinked entry still follows its forward link; reusing
//     the node would corrupt that traversal.
//   - **Unlink Clears the Handle**: Unlink zeroes the entry's weak handle.
//     Read Ref or Value before unlinking if the identity is still needed.
//   - **Double Unlink**: Unlinking an entry twice corrupts the chain. The
//     caller's bookkeeping must guarantee each entry is unlinked at most once.
//
// # Thread Safety
//
// None. The owning container serializes all access through its own lock.
package seq

import "weak"

// Entry is a node in the sequence observing one element of type T.
// The zero handle resolves to nil, so an unlinked or reclaimed entry
// reads as absent.
type Entry[T any] struct {
	ref  weak.Pointer[T]
	prev *Entry[T]
	next *Entry[T]
}

// NewEntry creates an unlinked entry observing item.
func NewEntry[T any](item *T) *Entry[T] {
	return &Entry[T]{ref: weak.Make(item)}
}

// Value resolves the entry's weak handle. It returns nil once the element
// has been reclaimed or the entry has been unlinked.
func (e *Entry[T]) Value() *T {
	return e.ref.Value()
}

// Ref returns the weak handle itself. Handles created from the same pointer
// compare equal, so the handle doubles as an identity key.
func (e *Entry[T]) Ref() weak.Pointer[T] {
	return e.ref
}

// Next returns the entry after e in insertion order, or nil at the tail.
// The forward link of an unlinked entry stays valid and leads back into
// the live chain.
func (e *Entry[T]) Next() *Entry[T] {
	return e.next
}

// Prev returns the entry before e in insertion order, or nil at the head.
func (e *Entry[T]) Prev() *Entry[T] {
	return e.prev
}
