// Released under an MIT license. See LICENSE.

// Package boot provides what is necessary for bootstrapping mu.
package boot

import _ "embed" // Blank import required by embed.

//go:embed boot.mu
var script string //nolint:gochecknoglobals

// Script returns the mu prelude.
func Script() string {
	return script
}
