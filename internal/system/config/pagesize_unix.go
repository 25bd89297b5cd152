// Released under an MIT license. See LICENSE.

//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris

package config

import (
	"golang.org/x/sys/unix"
)

func pagesize() int {
	return unix.Getpagesize()
}
