// Licensed under the MIT License. See LICENSE file in the project root for details.

package list

import "errors"

// Argument validation errors
var (
	// ErrNilItem is returned when a nil element is passed to Add, AddAll,
	// Remove, RemoveAll, or Contains. Validation happens before any lock
	// is taken.
	ErrNilItem = errors.New("weaklist: nil item")
)
