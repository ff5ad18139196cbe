//go:build unix

package daemon

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

func configureDaemonProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}

func sendStopSignal(pid int) error {
	return unix.Kill(pid, unix.SIGTERM)
}

// isProcessRunning sends signal 0 to pid. EPERM means the process exists
// but belongs to someone else, which still counts as running.
func isProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || err == unix.EPERM
}
