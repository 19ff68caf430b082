//go:build windows

package cmd

import "os"

// gracefulSignals returns the signals that trigger a clean shutdown.
func gracefulSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}

// reloadSignal returns nil on Windows: there is no SIGHUP equivalent
// reliably delivered to a console process. The admin surface has no
// reload route either, so a running process keeps its startup policy.
func reloadSignal() os.Signal {
	return nil
}
