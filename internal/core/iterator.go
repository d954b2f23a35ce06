// Licensed under the MIT License. See LICENSE file in the project root for details.

package list

import (
	"context"
	"sync"

	"github.com/kianostad/weaklist/internal/storage/seq"
)

// iterState tracks the enumerator's position in its lifecycle.
type iterState int

const (
	stateCreated iterState = iota
	stateAdvancing
	stateExhausted
)

// Iterator walks the elements that were in the container when it was
// created, in insertion order. Elements reclaimed or removed before being
// visited are skipped silently. The traversal range is the snapshot captured
// at creation; elements added afterwards are not visited.
//
// An Iterator is safe for concurrent use, though a single consumer is the
// expected pattern. Advancing takes the container's shared lock; Reset only
// touches iterator-local state and takes an iterator-local lock.
type Iterator[T any] struct {
	list  *list[T]
	first *seq.Entry[T]
	last  *seq.Entry[T]

	mu    sync.Mutex
	pos   *seq.Entry[T]
	state iterState
}

// Next yields the next surviving element, or false when the traversal range
// is exhausted. Exhaustion is sticky: once Next reports false it keeps
// reporting false until Reset.
func (it *Iterator[T]) Next(ctx context.Context) (*T, bool) {
	it.mu.Lock()
	defer it.mu.Unlock()

	if it.state == stateExhausted {
		return nil, false
	}

	it.list.mu.RLock()
	defer it.list.mu.RUnlock()

	for {
		if it.state == stateCreated {
			if it.first == nil {
				it.state = stateExhausted
				return nil, false
			}
			it.pos = it.first
			it.state = stateAdvancing
		} else {
			if it.pos == it.last {
				it.state = stateExhausted
				return nil, false
			}
			next := it.pos.Next()
			if next == nil {
				it.state = stateExhausted
				return nil, false
			}
			it.pos = next
		}
		if v := it.pos.Value(); v != nil {
			return v, true
		}
	}
}

// Reset returns the iterator to its created state, keeping the traversal
// range captured at creation. The next call to Next starts from the front of
// that range again.
func (it *Iterator[T]) Reset(ctx context.Context) {
	it.mu.Lock()
	defer it.mu.Unlock()
	it.pos = nil
	it.state = stateCreated
}
