// Licensed under the MIT License. See LICENSE file in the project root for details.

package seq

import "weak"

// Sequence is the ordered chain of entries. The zero value is an empty
// sequence ready for use. Callers provide all synchronization.
type Sequence[T any] struct {
	first *Entry[T]
	last  *Entry[T]
	size  int
}

// PushBack appends e after the current tail. e must be freshly created and
// not linked into any sequence.
func (s *Sequence[T]) PushBack(e *Entry[T]) {
	if s.last == nil {
		s.first = e
		s.last = e
	} else {
		e.prev = s.last
		s.last.next = e
		s.last = e
	}
	s.size++
}

// Unlink removes e from the chain. The neighbors are rewired, e's weak
// handle is zeroed so e can never be yielded again, and e's forward link is
// left intact so a traversal paused on e escapes into the live chain.
func (s *Sequence[T]) Unlink(e *Entry[T]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		s.first = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		s.last = e.prev
	}
	e.prev = nil
	e.ref = weak.Pointer[T]{}
	s.size--
}

// Front returns the head entry, or nil when the sequence is empty.
func (s *Sequence[T]) Front() *Entry[T] {
	return s.first
}

// Back returns the tail entry, or nil when the sequence is empty.
func (s *Sequence[T]) Back() *Entry[T] {
	return s.last
}

// Len returns the number of linked entries, live or dead.
func (s *Sequence[T]) Len() int {
	return s.size
}

// Reset detaches the whole chain at once. Already-issued entries keep their
// links and handles, so a traversal started before the reset still walks the
// old chain to its end.
func (s *Sequence[T]) Reset() {
	s.first = nil
	s.last = nil
	s.size = 0
}
