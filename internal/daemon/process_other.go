//go:build !unix

package daemon

import (
	"os"
	"os/exec"
)

func configureDaemonProcess(cmd *exec.Cmd) {}

func sendStopSignal(pid int) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return p.Kill()
}

func isProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	_, err := os.FindProcess(pid)
	return err == nil
}
