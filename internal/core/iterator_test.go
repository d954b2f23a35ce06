// Licensed under the MIT License. See LICENSE file in the project root for details.

package list

import (
	"context"
	"runtime"
	"testing"
)

func drain(ctx context.Context, it *Iterator[node]) []string {
	var out []string
	for v, ok := it.Next(ctx); ok; v, ok = it.Next(ctx) {
		out = append(out, v.name)
	}
	return out
}

func TestIteratorTraversalOrder(t *testing.T) {
	ctx := context.Background()
	l := New[node](WithoutBackgroundSweep())
	defer l.Close(ctx)

	items := []*node{newNode("a"), newNode("b"), newNode("c")}
	for _, item := range items {
		if err := l.Add(ctx, item); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	got := drain(ctx, l.Iterator(ctx))
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("iteration = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("iteration = %v, want %v", got, want)
		}
	}
	runtime.KeepAlive(items)
}

func TestIteratorEmptyContainer(t *testing.T) {
	ctx := context.Background()
	l := New[node](WithoutBackgroundSweep())
	defer l.Close(ctx)

	it := l.Iterator(ctx)
	if v, ok := it.Next(ctx); ok || v != nil {
		t.Fatalf("Next on empty container = (%v, %v), want (nil, false)", v, ok)
	}
	// Exhaustion is sticky.
	if _, ok := it.Next(ctx); ok {
		t.Error("exhausted iterator yielded again")
	}
}

func TestIteratorBoundsExcludeLaterAdds(t *testing.T) {
	ctx := context.Background()
	l := New[node](WithoutBackgroundSweep())
	defer l.Close(ctx)

	a, b := newNode("a"), newNode("b")
	for _, item := range []*node{a, b} {
		if err := l.Add(ctx, item); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	it := l.Iterator(ctx)
	late := newNode("late")
	if err := l.Add(ctx, late); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	got := drain(ctx, it)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("iteration = %v, want the pre-add snapshot [a b]", got)
	}
	runtime.KeepAlive([]*node{a, b, late})
}

func TestIteratorSkipsRemovedElement(t *testing.T) {
	ctx := context.Background()
	l := New[node](WithoutBackgroundSweep())
	defer l.Close(ctx)

	a, b, c := newNode("a"), newNode("b"), newNode("c")
	for _, item := range []*node{a, b, c} {
		if err := l.Add(ctx, item); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	it := l.Iterator(ctx)
	if v, ok := it.Next(ctx); !ok || v != a {
		t.Fatalf("first Next = (%v, %v), want a", v, ok)
	}

	// Unvisited elements removed mid-iteration are skipped, not yielded.
	if removed, err := l.Remove(ctx, b); err != nil || !removed {
		t.Fatalf("Remove(b) = (%v, %v), want (true, nil)", removed, err)
	}

	if v, ok := it.Next(ctx); !ok || v != c {
		t.Fatalf("Next after removal = (%v, %v), want c", v, ok)
	}
	if _, ok := it.Next(ctx); ok {
		t.Error("iterator yielded past its snapshot tail")
	}
	runtime.KeepAlive([]*node{a, b, c})
}

func TestIteratorSkipsReclaimedElement(t *testing.T) {
	ctx := context.Background()
	l := New[node](WithoutBackgroundSweep())
	defer l.Close(ctx)

	head, tail := newNode("head"), newNode("tail")
	if err := l.Add(ctx, head); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := l.Add(ctx, newNode("doomed")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := l.Add(ctx, tail); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	it := l.Iterator(ctx)
	if v, ok := it.Next(ctx); !ok || v != head {
		t.Fatalf("first Next = (%v, %v), want head", v, ok)
	}

	// The element dies between two advances; the dead entry is passed over
	// silently whether or not a sweep unlinked it yet.
	collect()

	if v, ok := it.Next(ctx); !ok || v != tail {
		t.Fatalf("Next after collection = (%v, %v), want tail", v, ok)
	}
	if _, ok := it.Next(ctx); ok {
		t.Error("iterator yielded past its snapshot tail")
	}
	runtime.KeepAlive(head)
	runtime.KeepAlive(tail)
}

func TestIteratorResetRestartsCapturedRange(t *testing.T) {
	ctx := context.Background()
	l := New[node](WithoutBackgroundSweep())
	defer l.Close(ctx)

	a, b := newNode("a"), newNode("b")
	for _, item := range []*node{a, b} {
		if err := l.Add(ctx, item); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	it := l.Iterator(ctx)
	if got := drain(ctx, it); len(got) != 2 {
		t.Fatalf("first pass = %v, want [a b]", got)
	}
	if _, ok := it.Next(ctx); ok {
		t.Fatal("exhausted iterator yielded again")
	}

	// Reset rewinds to the range captured at creation; elements added since
	// stay outside it.
	late := newNode("late")
	if err := l.Add(ctx, late); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	it.Reset(ctx)

	got := drain(ctx, it)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("pass after reset = %v, want [a b]", got)
	}
	runtime.KeepAlive([]*node{a, b, late})
}

func TestIteratorSurvivesClear(t *testing.T) {
	ctx := context.Background()
	l := New[node](WithoutBackgroundSweep())
	defer l.Close(ctx)

	a, b := newNode("a"), newNode("b")
	for _, item := range []*node{a, b} {
		if err := l.Add(ctx, item); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	it := l.Iterator(ctx)
	l.Clear(ctx)

	// The cleared chain is detached, not destroyed: an iterator created
	// before the clear keeps walking the elements it captured.
	got := drain(ctx, it)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("iteration across clear = %v, want [a b]", got)
	}
	if n := l.Len(ctx); n != 0 {
		t.Errorf("Len after clear = %d, want 0", n)
	}
	runtime.KeepAlive(a)
	runtime.KeepAlive(b)
}

func TestItemsRangesAreIndependent(t *testing.T) {
	ctx := context.Background()
	l := New[node](WithoutBackgroundSweep())
	defer l.Close(ctx)

	a := newNode("a")
	if err := l.Add(ctx, a); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	items := l.Items(ctx)

	var first []string
	for item := range items {
		first = append(first, item.name)
	}
	if len(first) != 1 || first[0] != "a" {
		t.Fatalf("first range = %v, want [a]", first)
	}

	// Each range takes a fresh snapshot, so a second pass over the same
	// sequence sees later adds.
	b := newNode("b")
	if err := l.Add(ctx, b); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	var second []string
	for item := range items {
		second = append(second, item.name)
	}
	if len(second) != 2 || second[0] != "a" || second[1] != "b" {
		t.Errorf("second range = %v, want [a b]", second)
	}

	// Breaking out mid-range must not wedge anything.
	for range items {
		break
	}
	if n := l.Len(ctx); n != 2 {
		t.Errorf("Len after early break = %d, want 2", n)
	}
	runtime.KeepAlive(a)
	runtime.KeepAlive(b)
}
