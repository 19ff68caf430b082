//go:build !windows

package tool

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// setProcessGroup configures cmd so its whole process tree, not just the
// direct child, can be killed when the tool's wall-clock timeout fires —
// a shell child that itself forks (e.g. "bash -c 'sleep 60 & wait'")
// would otherwise survive its parent's death.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcessGroup kills every process in pid's process group. Used on
// timeout and on context cancellation: every child process is launched
// with a wall-clock timeout and killed on drop.
func killProcessGroup(pid int) error {
	return unix.Kill(-pid, unix.SIGKILL)
}
