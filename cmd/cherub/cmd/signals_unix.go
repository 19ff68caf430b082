//go:build !windows

package cmd

import (
	"os"
	"syscall"
)

// gracefulSignals returns the signals that trigger a clean shutdown.
func gracefulSignals() []os.Signal {
	return []os.Signal{syscall.SIGINT, syscall.SIGTERM}
}

// reloadSignal returns the signal that triggers a policy reload: load the
// file, then swap the pointer. Windows has no SIGHUP equivalent, and
// there is no other reload trigger there.
func reloadSignal() os.Signal {
	return syscall.SIGHUP
}
