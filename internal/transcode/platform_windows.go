//go:build windows

package transcode

import (
	"fmt"
	"os/exec"
	"syscall"
)

func setupProcessGroup(cmd Commander) {
	cmd.SetSysProcAttr(&syscall.SysProcAttr{
		CreationFlags: 0x00000200, // CREATE_NEW_PROCESS_GROUP
	})
}

// terminateProcessGroup has no graceful equivalent on Windows; teardown
// escalates straight to the forced kill.
func terminateProcessGroup(cmd Commander) error {
	return nil
}

func killProcessGroup(cmd Commander) error {
	proc := cmd.Process()
	if proc == nil {
		return nil
	}

	// taskkill terminates the whole process tree; fall back to a direct kill.
	taskKill := exec.Command("taskkill", "/F", "/T", "/PID", fmt.Sprint(proc.Pid))
	if err := taskKill.Run(); err != nil {
		return proc.Kill()
	}
	return nil
}
