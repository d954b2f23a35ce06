// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package epoch provides reclamation-epoch tracking for the container.
//
// This package observes the Go runtime's completed-GC-cycle counter and uses
// it to decide whether a full sweep of the entry sequence can tell the
// container anything new. A weak handle can only flip to nil while a
// collection cycle runs, so as long as the counter has not advanced since
// the last sweep, the count that sweep produced is still exact.
//
// # Key Features
//
//   - Reads the cycle counter through runtime/metrics with a cached sample
//     slice, so the freshness check allocates nothing
//   - Caches the live count produced by the last completed sweep
//   - Adjusts the cached count in lock-step with explicit mutations
//   - Degrades to "always sweep" if the counter is ever unavailable
//
// # Usage Examples
//
// Deciding whether to sweep:
//
//	tr := epoch.NewTracker()
//
//	cycle := tr.Observe()
//	if tr.Fresh(cycle) {
//	    return tr.Cached()
//	}
//	live := fullSweep()
//	tr.Record(cycle, live)
//	return live
//
// # Dangers and Warnings
//
//   - **External Locking**: The tracker performs no synchronization of its
//     own. The owning container must serialize all calls under the same
//     exclusive lock that guards its sweeps.
//   - **Advisory Only**: Freshness is an optimization, never a correctness
//     dependency. A redundant sweep is always safe.
//   - **Forced Collection**: runtime.GC() completes a full cycle before
//     returning, so the counter is guaranteed to have advanced afterwards.
//     Background cycles advance it at the collector's own pace.
//
// # Performance Considerations
//
// Observe is a single runtime/metrics read of one counter, far cheaper than
// runtime.ReadMemStats, which stops the world. All other methods are field
// accesses.
package epoch

import "runtime/metrics"

// cycleMetric is the runtime's count of completed GC cycles.
const cycleMetric = "/gc/cycles/total:gc-cycles"

// Tracker remembers the collection cycle at which the last sweep ran and the
// live count that sweep produced.
type Tracker struct {
	samples []metrics.Sample
	last    uint64
	count   int
	known   bool
}

// NewTracker creates a tracker that has never observed a sweep.
func NewTracker() *Tracker {
	t := &Tracker{samples: make([]metrics.Sample, 1)}
	t.samples[0].Name = cycleMetric
	return t
}

// Observe reads the collector's completed-cycle counter.
func (t *Tracker) Observe() uint64 {
	metrics.Read(t.samples)
	if t.samples[0].Value.Kind() != metrics.KindUint64 {
		// Counter unavailable: report a moving value so Fresh never
		// holds and every decision falls back to a full scan.
		return t.last + 1
	}
	return t.samples[0].Value.Uint64()
}

// Fresh reports whether the cached count is still valid evidence at cycle.
func (t *Tracker) Fresh(cycle uint64) bool {
	return t.known && cycle == t.last
}

// Record stores the outcome of a completed sweep.
func (t *Tracker) Record(cycle uint64, live int) {
	t.last = cycle
	t.count = live
	t.known = true
}

// Cached returns the live count as of the last recorded sweep, including
// adjustments for explicit mutations since.
func (t *Tracker) Cached() int {
	return t.count
}

// Adjust moves the cached count in lock-step with an explicit mutation made
// under the same lock that guards sweeps.
func (t *Tracker) Adjust(delta int) {
	if t.known {
		t.count += delta
	}
}

// Reset forgets the recorded sweep; the next freshness check fails and
// forces a full scan.
func (t *Tracker) Reset() {
	t.last = 0
	t.count = 0
	t.known = false
}
