// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package list provides a concurrency-safe container of weak references.
//
// This package implements a container that observes elements without owning
// them: membership never extends an element's lifetime, and entries whose
// referent has been reclaimed by the garbage collector disappear on their own.
// It supports:
//   - Membership operations (Add, Remove, Contains)
//   - Live-element counting with an epoch-gated lazy sweep
//   - Insertion-ordered snapshot iteration
//   - Batch operations (AddAll, RemoveAll)
//   - Read-only forwarding views
//   - An optional background sweeper for idle containers
//
// # Key Features
//
//   - Weak references throughout: the container is invisible to the collector
//   - Lazy sweeps gated by the runtime's completed-GC-cycle counter
//   - Single reader-writer lock with short, bounded critical sections
//   - Iteration skips reclaimed elements silently and never faults
//   - Comprehensive metrics and monitoring
//
// # Usage Examples
//
// Basic operations:
//
//	l := list.New[Listener]()
//	defer l.Close(ctx)
//
//	if err := l.Add(ctx, listener); err != nil {
//	    return err
//	}
//	ok, _ := l.Contains(ctx, listener)
//	n := l.Len(ctx)
//	removed, _ := l.Remove(ctx, listener)
//
// Iteration:
//
//	for v := range l.Items(ctx) {
//	    v.Notify(event)
//	}
//
// Read-only views:
//
//	view := l.AsView()
//	n := view.Len(ctx)
//
// Configuration:
//
//	l := list.New[Conn](
//	    list.WithSweepInterval(time.Second),
//	)
//
// # Dangers and Warnings
//
//   - **Pointer Identity**: Elements are tracked by pointer identity. Two
//     distinct pointers to equal values are two distinct elements.
//   - **Counts Can Shrink**: Len and every other operation may prune entries
//     whose referent was reclaimed, so repeated reads can observably shrink
//     the container with no Remove ever being called. Treat the count as a
//     point-in-time reading, not a stable size.
//   - **Len Is Not O(1)**: A Len call after a completed collection cycle
//     performs a full scan of the container.
//   - **Duplicate Adds**: Adding the same pointer twice creates two entries;
//     lookup (Contains, Remove) tracks only the most recent one. The older
//     entry remains visible to iteration until swept or removed.
//   - **Interior Pointers**: Do not add pointers into the middle of another
//     object (struct fields, slice elements); the enclosing allocation keeps
//     the weak handle alive and the entry will never be reclaimed.
//   - **Close**: Always call Close to stop the background sweeper and the
//     metrics processor. The container remains usable for synchronous calls
//     after Close; sweeps then only happen inline.
//
// # Best Practices
//
//   - Hold the *T you add somewhere that owns it; the container will not
//     keep it alive for you
//   - Use AddAll for bulk registration to pay the lock cost once
//   - Use views to hand out read-only access to observer sets
//   - Monitor sweep metrics: a high scan rate means the process is churning
//     through collection cycles
//
// # Performance Considerations
//
//   - Add, Remove, and Contains are O(1) plus an epoch check that allocates
//     nothing; each may pay for a pending O(n) sweep first
//   - Iteration cost is proportional to the snapshot length
//   - The single lock serializes writers; heavy concurrent mutation contends
//
// # Thread Safety
//
// All container operations are safe for concurrent use from multiple
// goroutines. Iterators advance under the container's shared lock and may be
// used concurrently with mutation.
//
// # Memory Management
//
// Dead entries are pruned by the first operation that runs after a collection
// cycle completes, or by the background sweeper when the container is idle.
// ManualSweep forces a pass for callers that disabled the sweeper.
//
// # See Also
//
// For usage walkthroughs, see the examples directory at the repository root.
package list

import (
	"context"
	"iter"
	"sync"
	"time"

	"github.com/kianostad/weaklist/internal/concurrency/epoch"
	"github.com/kianostad/weaklist/internal/monitoring/metrics"
	"github.com/kianostad/weaklist/internal/storage/lookup"
	"github.com/kianostad/weaklist/internal/storage/seq"
)

// Collection is the main container interface. All methods are safe for
// concurrent use.
type Collection[T any] interface {
	Add(ctx context.Context, item *T) error
	Remove(ctx context.Context, item *T) (bool, error)
	Contains(ctx context.Context, item *T) (bool, error)
	Len(ctx context.Context) int
	Clear(ctx context.Context)
	Iterator(ctx context.Context) *Iterator[T]
	Items(ctx context.Context) iter.Seq[*T]
	Snapshot(ctx context.Context) []*T
	AsView() *View[T]
	Metrics(ctx context.Context) metrics.MetricsSnapshot
	ManualSweep(ctx context.Context) error // Force one sweep pass regardless of the epoch gate
	Close(ctx context.Context)

	// Batch operations
	AddAll(ctx context.Context, items ...*T) error          // Append many items under one lock hold
	RemoveAll(ctx context.Context, items ...*T) (int, error) // Remove many items, reporting how many were present
}

// options collects constructor settings shared by every element type.
type options struct {
	sweepInterval   time.Duration
	backgroundSweep bool
	metricsConfig   metrics.MetricsConfig
	collector       *metrics.Metrics
}

// Option modifies a container before it starts. Users can pass an arbitrary
// number of options to New.
type Option func(*options)

// WithSweepInterval sets the tick period of the background sweeper. Shorter
// intervals release dead entries sooner; the epoch gate keeps idle ticks
// nearly free either way.
func WithSweepInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.sweepInterval = d
		}
	}
}

// WithoutBackgroundSweep disables the background sweeper. Dead entries are
// then pruned only by the operations that touch the container, or by
// ManualSweep.
func WithoutBackgroundSweep() Option {
	return func(o *options) {
		o.backgroundSweep = false
	}
}

// WithMetricsConfig sets a custom configuration for the container's own
// metrics collector.
func WithMetricsConfig(cfg metrics.MetricsConfig) Option {
	return func(o *options) {
		o.metricsConfig = cfg
	}
}

// WithMetrics records into the provided collector instead of creating one.
// The caller keeps ownership: Close on the container will not stop it, so a
// single collector can serve several containers.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.collector = m
	}
}

// list is the main container implementation.
type list[T any] struct {
	mu      sync.RWMutex
	seq     seq.Sequence[T]
	table   *lookup.Table[T]
	tracker *epoch.Tracker

	metrics     *metrics.Metrics
	ownsMetrics bool
	sweeper     *sweeper
}

// New creates a new container instance. The background sweeper starts
// immediately; stop it with Close.
func New[T any](opts ...Option) Collection[T] {
	o := options{
		sweepInterval:   DefaultSweepInterval,
		backgroundSweep: true,
		metricsConfig:   metrics.DefaultMetricsConfig(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	l := &list[T]{
		table:   lookup.NewTable[T](),
		tracker: epoch.NewTracker(),
	}
	if o.collector != nil {
		l.metrics = o.collector
	} else {
		l.metrics = metrics.NewMetricsWithConfig(o.metricsConfig)
		l.ownsMetrics = true
	}
	if o.backgroundSweep {
		l.sweeper = newSweeper(o.sweepInterval, l.sweep)
		l.sweeper.Start()
	}
	return l
}

// Add appends item to the container. The container holds item weakly: it
// stays a member only as long as something else keeps it alive. Adding the
// same pointer again creates a second entry and repoints lookup at it.
func (l *list[T]) Add(ctx context.Context, item *T) error {
	start := time.Now()
	defer func() {
		l.metrics.RecordAdd(time.Since(start))
	}()

	if item == nil {
		return ErrNilItem
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.cleanupLocked()
	e := seq.NewEntry(item)
	l.seq.PushBack(e)
	l.table.Put(item, e)
	l.tracker.Adjust(1)
	l.metrics.SetLiveEntries(uint64(l.tracker.Cached())) // #nosec G115
	return nil
}

// Remove unlinks the entry lookup tracks for item. It reports false, with no
// error, when the item is not present; absence is a normal outcome, not a
// failure.
func (l *list[T]) Remove(ctx context.Context, item *T) (bool, error) {
	start := time.Now()
	defer func() {
		l.metrics.RecordRemove(time.Since(start))
	}()

	if item == nil {
		return false, ErrNilItem
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.cleanupLocked()
	e, ok := l.table.Get(item)
	if !ok {
		return false, nil
	}
	l.table.Delete(item)
	l.seq.Unlink(e)
	l.tracker.Adjust(-1)
	l.metrics.SetLiveEntries(uint64(l.tracker.Cached())) // #nosec G115
	return true, nil
}

// Contains reports whether lookup currently tracks an entry for item.
func (l *list[T]) Contains(ctx context.Context, item *T) (bool, error) {
	start := time.Now()
	defer func() {
		l.metrics.RecordContains(time.Since(start))
	}()

	if item == nil {
		return false, ErrNilItem
	}

	l.sweep()

	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.table.Get(item)
	return ok, nil
}

// Len returns the number of live elements. The count comes from the sweep
// decision: exact as of the last completed collection cycle, adjusted for
// explicit mutations since. Two calls with no mutation in between can differ
// if a collection cycle completed between them.
func (l *list[T]) Len(ctx context.Context) int {
	start := time.Now()
	defer func() {
		l.metrics.RecordLen(time.Since(start))
	}()

	l.mu.Lock()
	defer l.mu.Unlock()

	n := l.cleanupLocked()
	l.metrics.SetLiveEntries(uint64(n)) // #nosec G115
	return n
}

// Clear empties the container. Elements are untouched; the container never
// owned them. Iterators created before the clear keep walking the chain they
// captured.
func (l *list[T]) Clear(ctx context.Context) {
	defer l.metrics.RecordClear()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq.Reset()
	l.table.Reset()
	// Empty is exact at any epoch, so the next Len resolves from the cache.
	l.tracker.Record(l.tracker.Observe(), 0)
	l.metrics.SetLiveEntries(0)
}

// Iterator creates an insertion-ordered iterator over the elements currently
// in the container. See Iterator for the snapshot semantics.
func (l *list[T]) Iterator(ctx context.Context) *Iterator[T] {
	start := time.Now()
	defer func() {
		l.metrics.RecordIterate(time.Since(start))
	}()

	l.sweep()

	l.mu.RLock()
	defer l.mu.RUnlock()
	return &Iterator[T]{
		list:  l,
		first: l.seq.Front(),
		last:  l.seq.Back(),
	}
}

// Items returns a range-over-func sequence of the surviving elements. Each
// range creates a fresh iterator, so ranging twice takes two independent
// snapshots.
func (l *list[T]) Items(ctx context.Context) iter.Seq[*T] {
	return func(yield func(*T) bool) {
		it := l.Iterator(ctx)
		for v, ok := it.Next(ctx); ok; v, ok = it.Next(ctx) {
			if !yield(v) {
				return
			}
		}
	}
}

// Snapshot materializes the surviving elements as a slice of strong
// references, in insertion order. The slice pins its elements; drop it when
// done.
func (l *list[T]) Snapshot(ctx context.Context) []*T {
	var out []*T
	it := l.Iterator(ctx)
	for v, ok := it.Next(ctx); ok; v, ok = it.Next(ctx) {
		out = append(out, v)
	}
	return out
}

// AsView returns a read-only facade over the container.
func (l *list[T]) AsView() *View[T] {
	return &View[T]{list: l}
}

// Metrics returns a snapshot of the container's metrics.
func (l *list[T]) Metrics(ctx context.Context) metrics.MetricsSnapshot {
	return l.metrics.GetStats()
}

// ManualSweep forces one sweep decision. Useful when the background sweeper
// is disabled and the container can sit idle between operations.
func (l *list[T]) ManualSweep(ctx context.Context) error {
	l.sweep()
	return nil
}

// Close stops the background sweeper and, when the container owns it, the
// metrics processor. Safe to call more than once. Synchronous operations
// keep working after Close.
func (l *list[T]) Close(ctx context.Context) {
	if l.sweeper != nil {
		l.sweeper.Stop()
	}
	if l.ownsMetrics {
		l.metrics.Close()
	}
}

// sweep runs one sweep decision under the exclusive lock.
func (l *list[T]) sweep() {
	l.mu.Lock()
	n := l.cleanupLocked()
	l.metrics.SetLiveEntries(uint64(n)) // #nosec G115
	l.mu.Unlock()
}

// cleanupLocked is the lazy sweep every operation funnels through. The caller
// holds the exclusive lock.
//
// A weak handle can only flip to nil while the collector runs, so when the
// completed-cycle counter still matches the last sweep, nothing can have died
// since and the cached count is returned unscanned. Otherwise the chain is
// walked once: dead entries are unlinked and their lookup slots evicted, live
// ones counted, and the result recorded against the observed cycle.
func (l *list[T]) cleanupLocked() int {
	cycle := l.tracker.Observe()
	if l.tracker.Fresh(cycle) {
		l.metrics.RecordSweepSkipped()
		return l.tracker.Cached()
	}

	start := time.Now()
	live, swept := 0, 0
	for e := l.seq.Front(); e != nil; {
		next := e.Next()
		if e.Value() == nil {
			ref := e.Ref()
			l.seq.Unlink(e)
			// Leave the slot alone if a newer entry for the same element
			// owns it.
			l.table.Evict(ref, e)
			swept++
		} else {
			live++
		}
		e = next
	}
	l.tracker.Record(cycle, live)
	l.metrics.RecordSweep(time.Since(start), swept)
	return live
}
