// Licensed under the MIT License. See LICENSE file in the project root for details.

package list

import (
	"context"
	"time"

	"github.com/kianostad/weaklist/internal/storage/seq"
)

// AddAll appends every item in argument order under a single lock hold.
// Arguments are validated up front: if any item is nil, ErrNilItem is
// returned and nothing is added.
func (l *list[T]) AddAll(ctx context.Context, items ...*T) error {
	start := time.Now()
	defer func() {
		l.metrics.RecordBatchAdd(time.Since(start), len(items))
	}()

	for _, item := range items {
		if item == nil {
			return ErrNilItem
		}
	}
	if len(items) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.cleanupLocked()
	for _, item := range items {
		e := seq.NewEntry(item)
		l.seq.PushBack(e)
		l.table.Put(item, e)
		l.tracker.Adjust(1)
	}
	l.metrics.SetLiveEntries(uint64(l.tracker.Cached())) // #nosec G115
	return nil
}

// RemoveAll removes the tracked entry of every item that is present and
// reports how many entries were unlinked. Arguments are validated up front:
// if any item is nil, ErrNilItem is returned and nothing is removed.
// Absent items are skipped, matching Remove's "not present is not an error".
func (l *list[T]) RemoveAll(ctx context.Context, items ...*T) (int, error) {
	start := time.Now()
	defer func() {
		l.metrics.RecordBatchRemove(time.Since(start), len(items))
	}()

	for _, item := range items {
		if item == nil {
			return 0, ErrNilItem
		}
	}
	if len(items) == 0 {
		return 0, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.cleanupLocked()
	removed := 0
	for _, item := range items {
		e, ok := l.table.Get(item)
		if !ok {
			continue
		}
		l.table.Delete(item)
		l.seq.Unlink(e)
		l.tracker.Adjust(-1)
		removed++
	}
	l.metrics.SetLiveEntries(uint64(l.tracker.Cached())) // #nosec G115
	return removed, nil
}
