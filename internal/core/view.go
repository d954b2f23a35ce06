// Licensed under the MIT License. See LICENSE file in the project root for details.

package list

import (
	"context"
	"iter"
)

// View is a read-only facade over a container. Every call forwards to the
// underlying container; the view holds no state and is not a synchronization
// boundary of its own. Mutations made through the container remain visible
// through all of its views.
type View[T any] struct {
	list *list[T]
}

// Len reports the number of live elements. Like the container's Len, this
// runs the sweep decision and may shrink the underlying structures.
func (v *View[T]) Len(ctx context.Context) int {
	return v.list.Len(ctx)
}

// Contains reports whether item is currently lookupable in the container.
func (v *View[T]) Contains(ctx context.Context, item *T) (bool, error) {
	return v.list.Contains(ctx, item)
}

// Iterator creates an insertion-ordered iterator over the container.
func (v *View[T]) Iterator(ctx context.Context) *Iterator[T] {
	return v.list.Iterator(ctx)
}

// Items returns a range-over-func sequence of the surviving elements.
func (v *View[T]) Items(ctx context.Context) iter.Seq[*T] {
	return v.list.Items(ctx)
}
