//go:build windows

package cmd

import "os"

// gracefulSignals returns the signals that cancel a running command.
// Windows only delivers os.Interrupt.
func gracefulSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}
