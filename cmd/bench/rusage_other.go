// Licensed under the MIT License. See LICENSE file in the project root for details.

//go:build !linux

package main

// maxRSS returns 0 on platforms where rusage reporting is not wired up.
func maxRSS() int64 {
	return 0
}
