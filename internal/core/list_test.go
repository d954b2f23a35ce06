// Licensed under the MIT License. See LICENSE file in the project root for details.

package list

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/kianostad/weaklist/internal/monitoring/metrics"
)

// node is heap-allocated and carries a pointer, so the collector treats each
// instance independently of its neighbors.
type node struct {
	name string
	buf  []byte
}

func newNode(name string) *node {
	return &node{name: name, buf: make([]byte, 32)}
}

// collect forces two full cycles so anything unreachable before the call is
// reclaimed and every weak handle to it resolves nil.
func collect() {
	runtime.GC()
	runtime.GC()
}

// waitFor polls until cond holds or the deadline passes. Metric events travel
// through a background processor, so counter reads lag the operations.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

func names(items []*node) []string {
	out := make([]string, 0, len(items))
	for _, n := range items {
		out = append(out, n.name)
	}
	return out
}

func TestAddLenContains(t *testing.T) {
	ctx := context.Background()
	l := New[node](WithoutBackgroundSweep())
	defer l.Close(ctx)

	a, b := newNode("a"), newNode("b")
	if err := l.Add(ctx, a); err != nil {
		t.Fatalf("Add(a) failed: %v", err)
	}
	if err := l.Add(ctx, b); err != nil {
		t.Fatalf("Add(b) failed: %v", err)
	}

	if n := l.Len(ctx); n != 2 {
		t.Fatalf("Len = %d, want 2", n)
	}
	for _, item := range []*node{a, b} {
		ok, err := l.Contains(ctx, item)
		if err != nil {
			t.Fatalf("Contains(%s) failed: %v", item.name, err)
		}
		if !ok {
			t.Errorf("Contains(%s) = false, want true", item.name)
		}
	}
	ok, err := l.Contains(ctx, newNode("stranger"))
	if err != nil {
		t.Fatalf("Contains(stranger) failed: %v", err)
	}
	if ok {
		t.Error("Contains reports an element that was never added")
	}
	runtime.KeepAlive(a)
	runtime.KeepAlive(b)
}

func TestNilItemRejected(t *testing.T) {
	ctx := context.Background()
	l := New[node](WithoutBackgroundSweep())
	defer l.Close(ctx)

	if err := l.Add(ctx, nil); err != ErrNilItem {
		t.Errorf("Add(nil) = %v, want ErrNilItem", err)
	}
	if _, err := l.Remove(ctx, nil); err != ErrNilItem {
		t.Errorf("Remove(nil) = %v, want ErrNilItem", err)
	}
	if _, err := l.Contains(ctx, nil); err != ErrNilItem {
		t.Errorf("Contains(nil) = %v, want ErrNilItem", err)
	}
	if n := l.Len(ctx); n != 0 {
		t.Errorf("rejected adds must not change the count, got %d", n)
	}
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	l := New[node](WithoutBackgroundSweep())
	defer l.Close(ctx)

	a := newNode("a")
	if err := l.Add(ctx, a); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	removed, err := l.Remove(ctx, a)
	if err != nil || !removed {
		t.Fatalf("Remove(present) = (%v, %v), want (true, nil)", removed, err)
	}
	if n := l.Len(ctx); n != 0 {
		t.Fatalf("Len after remove = %d, want 0", n)
	}
	if ok, _ := l.Contains(ctx, a); ok {
		t.Error("removed element still lookupable")
	}

	// Absence is a normal outcome, not an error.
	removed, err = l.Remove(ctx, a)
	if err != nil || removed {
		t.Fatalf("Remove(absent) = (%v, %v), want (false, nil)", removed, err)
	}
	runtime.KeepAlive(a)
}

func TestDuplicateAddTracksNewest(t *testing.T) {
	ctx := context.Background()
	l := New[node](WithoutBackgroundSweep())
	defer l.Close(ctx)

	p := newNode("dup")
	if err := l.Add(ctx, p); err != nil {
		t.Fatalf("first Add failed: %v", err)
	}
	if err := l.Add(ctx, p); err != nil {
		t.Fatalf("second Add failed: %v", err)
	}
	if n := l.Len(ctx); n != 2 {
		t.Fatalf("Len = %d, want 2 (each add is an entry)", n)
	}

	// Remove unlinks the entry lookup tracks: the newest.
	removed, err := l.Remove(ctx, p)
	if err != nil || !removed {
		t.Fatalf("Remove = (%v, %v), want (true, nil)", removed, err)
	}
	if n := l.Len(ctx); n != 1 {
		t.Fatalf("Len after remove = %d, want 1", n)
	}
	// The older entry has no lookup slot, so membership checks miss it while
	// iteration still yields it.
	if ok, _ := l.Contains(ctx, p); ok {
		t.Error("Contains = true after the tracked entry was removed")
	}
	if removed, _ := l.Remove(ctx, p); removed {
		t.Error("second Remove found an entry lookup should no longer track")
	}
	if got := names(l.Snapshot(ctx)); len(got) != 1 || got[0] != "dup" {
		t.Errorf("Snapshot = %v, want the surviving duplicate entry", got)
	}
	runtime.KeepAlive(p)
}

func TestReclaimedElementsLeaveCount(t *testing.T) {
	ctx := context.Background()
	l := New[node](WithoutBackgroundSweep())
	defer l.Close(ctx)

	keep := newNode("keep")
	if err := l.Add(ctx, keep); err != nil {
		t.Fatalf("Add(keep) failed: %v", err)
	}
	if err := l.Add(ctx, newNode("doomed")); err != nil {
		t.Fatalf("Add(doomed) failed: %v", err)
	}
	if n := l.Len(ctx); n != 2 {
		t.Fatalf("Len before collection = %d, want 2", n)
	}

	collect()

	if n := l.Len(ctx); n != 1 {
		t.Fatalf("Len after collection = %d, want 1", n)
	}
	if got := names(l.Snapshot(ctx)); len(got) != 1 || got[0] != "keep" {
		t.Errorf("Snapshot = %v, want [keep]", got)
	}
	runtime.KeepAlive(keep)
}

func TestLenResolvesFromEpochCache(t *testing.T) {
	ctx := context.Background()
	l := New[node](WithoutBackgroundSweep())
	defer l.Close(ctx)

	a := newNode("a")
	if err := l.Add(ctx, a); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	// Back-to-back calls within one collection cycle must answer from the
	// cache. A concurrent cycle can turn any single pair into a scan, so poll
	// until one pair lands inside a cycle.
	waitFor(t, func() bool {
		l.Len(ctx)
		l.Len(ctx)
		return l.Metrics(ctx).Sweeps.Skipped > 0
	})
	runtime.KeepAlive(a)
}

func TestClearEmptiesContainer(t *testing.T) {
	ctx := context.Background()
	l := New[node](WithoutBackgroundSweep())
	defer l.Close(ctx)

	a, b := newNode("a"), newNode("b")
	for _, item := range []*node{a, b} {
		if err := l.Add(ctx, item); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	l.Clear(ctx)

	if n := l.Len(ctx); n != 0 {
		t.Fatalf("Len after clear = %d, want 0", n)
	}
	if ok, _ := l.Contains(ctx, a); ok {
		t.Error("cleared element still lookupable")
	}
	if got := l.Snapshot(ctx); len(got) != 0 {
		t.Errorf("Snapshot after clear = %v, want empty", names(got))
	}

	// The container can be refilled.
	if err := l.Add(ctx, b); err != nil {
		t.Fatalf("Add after clear failed: %v", err)
	}
	if n := l.Len(ctx); n != 1 {
		t.Fatalf("Len after refill = %d, want 1", n)
	}
	runtime.KeepAlive(a)
	runtime.KeepAlive(b)
}

func TestManualSweep(t *testing.T) {
	ctx := context.Background()
	l := New[node](WithoutBackgroundSweep())
	defer l.Close(ctx)

	if err := l.Add(ctx, newNode("doomed")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	collect()

	if err := l.ManualSweep(ctx); err != nil {
		t.Fatalf("ManualSweep failed: %v", err)
	}
	waitFor(t, func() bool {
		return l.Metrics(ctx).Sweeps.SweptEntries >= 1
	})
	if n := l.Len(ctx); n != 0 {
		t.Fatalf("Len after sweep = %d, want 0", n)
	}
}

func TestSnapshotPreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	l := New[node](WithoutBackgroundSweep())
	defer l.Close(ctx)

	items := []*node{newNode("a"), newNode("b"), newNode("c")}
	for _, item := range items {
		if err := l.Add(ctx, item); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	got := l.Snapshot(ctx)
	if len(got) != 3 {
		t.Fatalf("Snapshot length = %d, want 3", len(got))
	}
	for i, item := range items {
		if got[i] != item {
			t.Errorf("Snapshot[%d] = %s, want %s", i, got[i].name, item.name)
		}
	}
	runtime.KeepAlive(items)
}

func TestViewForwards(t *testing.T) {
	ctx := context.Background()
	l := New[node](WithoutBackgroundSweep())
	defer l.Close(ctx)

	view := l.AsView()
	a := newNode("a")
	if err := l.Add(ctx, a); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if n := view.Len(ctx); n != 1 {
		t.Fatalf("view Len = %d, want 1", n)
	}
	if ok, err := view.Contains(ctx, a); err != nil || !ok {
		t.Fatalf("view Contains = (%v, %v), want (true, nil)", ok, err)
	}

	var seen []string
	for item := range view.Items(ctx) {
		seen = append(seen, item.name)
	}
	if len(seen) != 1 || seen[0] != "a" {
		t.Errorf("view iteration = %v, want [a]", seen)
	}

	// Mutations through the container stay visible through the view.
	if _, err := l.Remove(ctx, a); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if n := view.Len(ctx); n != 0 {
		t.Errorf("view Len after remove = %d, want 0", n)
	}
	runtime.KeepAlive(a)
}

func TestCloseIdempotent(t *testing.T) {
	ctx := context.Background()
	l := New[node]()

	a := newNode("a")
	if err := l.Add(ctx, a); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	l.Close(ctx)
	l.Close(ctx)

	// Synchronous operations keep working; only the background machinery is
	// stopped.
	if n := l.Len(ctx); n != 1 {
		t.Errorf("Len after close = %d, want 1", n)
	}
	if err := l.Add(ctx, newNode("b")); err != nil {
		t.Errorf("Add after close failed: %v", err)
	}
	runtime.KeepAlive(a)
}

func TestWithMetricsKeepsCallerOwnership(t *testing.T) {
	ctx := context.Background()
	m := metrics.NewMetrics()
	defer m.Close()

	l := New[node](WithMetrics(m), WithoutBackgroundSweep())
	a := newNode("a")
	if err := l.Add(ctx, a); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	l.Close(ctx)

	// The container never owned the collector, so it must still process
	// events after the container shuts down.
	m.RecordAdd(time.Microsecond)
	waitFor(t, func() bool {
		return m.GetStats().Operations.Add >= 2
	})
	runtime.KeepAlive(a)
}
