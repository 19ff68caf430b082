//go:build windows

package tool

import (
	"os"
	"os/exec"
)

// setProcessGroup is a no-op on Windows; exec.Cmd.Process.Kill() below is
// sufficient since we don't create detached job objects for the demo tool
// set.
func setProcessGroup(cmd *exec.Cmd) {}

// killProcessGroup kills a single process by pid. Windows has no SIGKILL
// process-group equivalent without a job object, which is out of scope
// for the reference tool implementations.
func killProcessGroup(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Kill()
}
