// Released under an MIT license. See LICENSE.

//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris

package interrupt

import (
	"os"

	"golang.org/x/sys/unix"
)

//nolint:gochecknoglobals
var signals = []os.Signal{unix.SIGINT}

// Interrupt sends a SIGINT to the process ID pid.
func Interrupt(pid int) error {
	return unix.Kill(pid, unix.SIGINT)
}
