// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package weaklist provides a concurrency-safe, insertion-ordered container
// of weak references.
//
// This is the main public API for the weaklist library. A List tracks
// elements without owning them: membership never extends an element's
// lifetime, and once the garbage collector reclaims an element its entry
// disappears from the container on its own. Lookup, counting, snapshot
// iteration, batch operations, read-only views, and metrics are all part of
// the surface.
//
// # Quick Start
//
//	import "github.com/kianostad/weaklist"
//
//	l := weaklist.New[Subscriber]()
//	defer l.Close(ctx)
//
//	l.Add(ctx, sub)
//	ok, _ := l.Contains(ctx, sub)
//
//	for s := range l.Items(ctx) {
//	    s.Notify(event)
//	}
//
// # Key Features
//
//   - Weak references throughout: the container never keeps an element alive
//   - Automatic pruning driven by the runtime's completed-GC-cycle counter
//   - Insertion-ordered snapshot iteration that skips reclaimed elements
//   - Batch operations (AddAll, RemoveAll) under a single lock hold
//   - Read-only views for handing out observer sets
//   - Comprehensive metrics with an optional Prometheus bridge
//
// # Usage Examples
//
// Basic operations:
//
//	l := weaklist.New[Conn]()
//	defer l.Close(ctx)
//
//	l.Add(ctx, conn)
//	removed, _ := l.Remove(ctx, conn)
//	n := l.Len(ctx)
//
// Iteration:
//
//	it := l.Iterator(ctx)
//	for v, ok := it.Next(ctx); ok; v, ok = it.Next(ctx) {
//	    use(v)
//	}
//
//	// Or with range-over-func:
//	for v := range l.Items(ctx) {
//	    use(v)
//	}
//
// Batch operations:
//
//	if err := l.AddAll(ctx, a, b, c); err != nil {
//	    return err
//	}
//	removed, _ := l.RemoveAll(ctx, a, b)
//
// Read-only views:
//
//	view := l.AsView()
//	n := view.Len(ctx)
//
// Metrics:
//
//	stats := l.Metrics(ctx)
//	fmt.Printf("live=%d sweeps=%d\n", stats.LiveEntries, stats.Sweeps.Scans)
//
//	// Share one collector across containers and scrape it:
//	c := weaklist.NewCollector()
//	l := weaklist.New[Conn](weaklist.WithMetrics(c))
//	weaklist.RegisterPrometheus(prometheus.DefaultRegisterer, c)
//
// # API Design Philosophy
//
// Elements are identified by pointer, never by value: two pointers to equal
// values are two distinct elements, and *T is the only handle the container
// accepts. This is what lets membership be weak: the container watches the
// allocation itself, so it never needs a copy that would keep the element
// alive.
//
// Counts are advisory by nature. Len is exact as of the last completed
// collection cycle, adjusted for explicit mutations since; a count can
// shrink between two reads with no Remove in between.
//
// # Best Practices
//
//   - Keep a strong reference to every element you expect to find later;
//     the container will not do it for you
//   - Always call Close() when done with a container
//   - Use AddAll/RemoveAll for bulk changes to pay the lock cost once
//   - Use WithoutBackgroundSweep plus ManualSweep when you want full control
//     over when pruning work happens
//   - Monitor metrics for sweep frequency and reclamation volume
//
// # See Also
//
// For container semantics and internals, see the internal/core package. For
// runnable walkthroughs, see the examples directory.
package weaklist

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	list "github.com/kianostad/weaklist/internal/core"
	"github.com/kianostad/weaklist/internal/monitoring/metrics"
)

// Re-export core types so callers never import internal packages
type (
	// List is the main container interface
	List[T any] = list.Collection[T]

	// Iterator walks a snapshot of the container in insertion order
	Iterator[T any] = list.Iterator[T]

	// View is a read-only facade over a container
	View[T any] = list.View[T]

	// Option configures a container at construction time
	Option = list.Option
)

// Metrics types for monitoring and Prometheus integration
type (
	// Collector gathers container metrics; share one across containers
	// with WithMetrics
	Collector = metrics.Metrics

	// MetricsConfig sizes the collector's buffers
	MetricsConfig = metrics.MetricsConfig

	// MetricsSnapshot is a point-in-time view of all collected metrics
	MetricsSnapshot = metrics.MetricsSnapshot
)

// ErrNilItem is returned when a nil element is passed to a container
// operation.
var ErrNilItem = list.ErrNilItem

// New creates a new container instance. The background sweeper starts
// immediately; stop it with Close.
func New[T any](opts ...Option) List[T] {
	return list.New[T](opts...)
}

// WithSweepInterval sets the tick period of the background sweeper.
func WithSweepInterval(d time.Duration) Option {
	return list.WithSweepInterval(d)
}

// WithoutBackgroundSweep disables the background sweeper; pruning then
// happens only inside container operations or via ManualSweep.
func WithoutBackgroundSweep() Option {
	return list.WithoutBackgroundSweep()
}

// WithMetrics records into a caller-owned collector. Close on the container
// leaves the collector running.
func WithMetrics(c *Collector) Option {
	return list.WithMetrics(c)
}

// WithMetricsConfig sets a custom configuration for the container's own
// collector.
func WithMetricsConfig(cfg MetricsConfig) Option {
	return list.WithMetricsConfig(cfg)
}

// NewCollector creates a standalone metrics collector.
func NewCollector() *Collector {
	return metrics.NewMetrics()
}

// NewCollectorWithConfig creates a standalone metrics collector with custom
// buffer sizing.
func NewCollectorWithConfig(cfg MetricsConfig) *Collector {
	return metrics.NewMetricsWithConfig(cfg)
}

// DefaultMetricsConfig returns the collector configuration New uses when no
// override is given.
func DefaultMetricsConfig() MetricsConfig {
	return metrics.DefaultMetricsConfig()
}

// RegisterPrometheus registers a collector with a Prometheus registry so its
// snapshot is scraped as weaklist_* gauges and counters.
func RegisterPrometheus(reg prometheus.Registerer, c *Collector) error {
	return metrics.RegisterPrometheus(reg, c)
}

// Common type aliases for convenience
type (
	// StringList tracks heap-allocated strings
	StringList = List[string]

	// IntList tracks heap-allocated ints
	IntList = List[int]

	// BytesList tracks byte-slice headers
	BytesList = List[[]byte]
)

// Convenience constructors for common element types
func NewStringList(opts ...Option) StringList {
	return New[string](opts...)
}

func NewIntList(opts ...Option) IntList {
	return New[int](opts...)
}

func NewBytesList(opts ...Option) BytesList {
	return New[[]byte](opts...)
}
