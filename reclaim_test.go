// Licensed under the MIT License. See LICENSE file in the project root for details.

package weaklist

import (
	"context"
	"runtime"
	"testing"
	"time"
)

const (
	// gcMaxAttempts is the maximum number of garbage collection attempts to wait for reclamation.
	gcMaxAttempts = 10
	// gcPause defines the delay between garbage collection attempts.
	gcPause = 10 * time.Millisecond
)

// untilReclaimed triggers collection cycles until cond holds. Reclamation is
// the collector's call to make, so observers can only retry, never force a
// deadline on it.
func untilReclaimed(t *testing.T, cond func() bool) {
	t.Helper()
	for i := 0; i < gcMaxAttempts; i++ {
		runtime.GC()
		runtime.Gosched()
		if cond() {
			return
		}
		time.Sleep(gcPause)
	}
	t.Fatalf("objects were not garbage collected after %d attempts", gcMaxAttempts)
}

// TestReclaimedElementLeavesList verifies that dropping the only strong
// reference is enough to leave the list: no Remove, no crash, just absence.
func TestReclaimedElementLeavesList(t *testing.T) {
	ctx := context.Background()
	l := New[item]()
	defer l.Close(ctx)

	keep := newItem("keep")
	if err := l.Add(ctx, keep); err != nil {
		t.Fatalf("Add(keep) failed: %v", err)
	}
	if err := l.Add(ctx, newItem("doomed")); err != nil {
		t.Fatalf("Add(doomed) failed: %v", err)
	}
	if n := l.Len(ctx); n != 2 {
		t.Fatalf("Len before collection = %d, want 2", n)
	}

	untilReclaimed(t, func() bool { return l.Len(ctx) == 1 })

	ok, err := l.Contains(ctx, keep)
	if err != nil || !ok {
		t.Fatalf("Contains(keep) = (%v, %v), want (true, nil)", ok, err)
	}
	if got := collectNames(ctx, l); len(got) != 1 || got[0] != "keep" {
		t.Errorf("iteration = %v, want [keep]", got)
	}
	runtime.KeepAlive(keep)
}

// TestMiddleElementReclaimed pins A and C, lets B die, and checks that the
// survivors keep their insertion order around the gap.
func TestMiddleElementReclaimed(t *testing.T) {
	ctx := context.Background()
	l := New[item](WithoutBackgroundSweep())
	defer l.Close(ctx)

	a, c := newItem("a"), newItem("c")
	b := newItem("b")
	if err := l.AddAll(ctx, a, b, c); err != nil {
		t.Fatalf("AddAll failed: %v", err)
	}

	if got := collectNames(ctx, l); len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("iteration before drop = %v, want [a b c]", got)
	}

	b = nil
	untilReclaimed(t, func() bool { return l.Len(ctx) == 2 })

	got := collectNames(ctx, l)
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("iteration after drop = %v, want [a c]", got)
	}
	runtime.KeepAlive(a)
	runtime.KeepAlive(c)
}

// TestCountShrinksWithoutMutation demonstrates the documented behavior that
// two reads with no Add or Remove in between can disagree once the collector
// reclaims members.
func TestCountShrinksWithoutMutation(t *testing.T) {
	ctx := context.Background()
	l := New[item](WithoutBackgroundSweep())
	defer l.Close(ctx)

	keep := newItem("keep")
	if err := l.Add(ctx, keep); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	transients := make([]*item, 8)
	for i := range transients {
		transients[i] = newItem("transient")
		if err := l.Add(ctx, transients[i]); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	// The slice pins the transients, so this count is exact.
	before := l.Len(ctx)
	runtime.KeepAlive(transients)

	transients = nil
	untilReclaimed(t, func() bool { return l.Len(ctx) == 1 })
	after := l.Len(ctx)

	if before <= after {
		t.Fatalf("count did not shrink: before=%d after=%d", before, after)
	}
	if ok, _ := l.Contains(ctx, keep); !ok {
		t.Error("pinned element disappeared with the transients")
	}
	runtime.KeepAlive(keep)
}
