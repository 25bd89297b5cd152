// Released under an MIT license. See LICENSE.

//go:build !aix && !darwin && !dragonfly && !freebsd && !linux && !netbsd && !openbsd && !solaris

package interrupt

import (
	"os"
)

//nolint:gochecknoglobals
var signals = []os.Signal{os.Interrupt}

// Interrupt raises the interrupt flag. Only the current process is supported.
func Interrupt(pid int) error {
	if pid != os.Getpid() {
		return os.ErrPermission
	}

	Raise()

	return nil
}
