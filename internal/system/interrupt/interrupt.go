// Released under an MIT license. See LICENSE.

// Package interrupt provides mu's process-wide interrupt flag.
package interrupt

import (
	"os"
	"os/signal"
	"sync/atomic"
)

//nolint:gochecknoglobals
var flag int32

// Clear resets the interrupt flag.
func Clear() {
	atomic.StoreInt32(&flag, 0)
}

// Notify sets the interrupt flag whenever the process is interrupted.
// The returned function stops delivery.
func Notify() func() {
	c := make(chan os.Signal, 1)
	done := make(chan struct{})

	signal.Notify(c, signals...)

	go func() {
		for {
			select {
			case <-c:
				Raise()
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(c)
		close(done)
	}
}

// Pending returns true if an interrupt has been raised and not yet cleared.
func Pending() bool {
	return atomic.LoadInt32(&flag) != 0
}

// Raise sets the interrupt flag.
func Raise() {
	atomic.StoreInt32(&flag, 1)
}
