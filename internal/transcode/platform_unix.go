//go:build !windows

package transcode

import "syscall"

// setupProcessGroup puts the transcoder in its own process group so
// termination signals reach any children it forks.
func setupProcessGroup(cmd Commander) {
	cmd.SetSysProcAttr(&syscall.SysProcAttr{
		Setpgid: true,
	})
}

// terminateProcessGroup asks the transcoder's process group to exit.
func terminateProcessGroup(cmd Commander) error {
	proc := cmd.Process()
	if proc == nil {
		return nil
	}
	return syscall.Kill(-proc.Pid, syscall.SIGTERM)
}

// killProcessGroup forcibly kills the transcoder's process group.
func killProcessGroup(cmd Commander) error {
	proc := cmd.Process()
	if proc == nil {
		return nil
	}
	return syscall.Kill(-proc.Pid, syscall.SIGKILL)
}
