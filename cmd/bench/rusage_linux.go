// Licensed under the MIT License. See LICENSE file in the project root for details.

//go:build linux

package main

import "golang.org/x/sys/unix"

// maxRSS returns the process peak resident set size in kilobytes, or 0 if
// the kernel will not say.
func maxRSS() int64 {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0
	}
	return ru.Maxrss
}
