package transcode

import (
	"io"
	"os"
	"os/exec"
	"syscall"
)

// CommandExecutor abstracts the creation of transcoder commands so the
// process handle can be tested without a real ffmpeg binary.
type CommandExecutor interface {
	Command(name string, args ...string) Commander
}

// Commander abstracts the exec.Cmd functionality the handle needs.
type Commander interface {
	// Start starts the command without waiting for it to complete.
	Start() error

	// Wait waits for the command to exit and returns its exit error.
	Wait() error

	// StdoutPipe returns a pipe connected to the command's stdout.
	StdoutPipe() (io.ReadCloser, error)

	// StderrPipe returns a pipe connected to the command's stderr.
	StderrPipe() (io.ReadCloser, error)

	// SetSysProcAttr sets the process attributes before Start.
	SetSysProcAttr(attr *syscall.SysProcAttr)

	// Process returns the underlying process once started, or nil.
	Process() *os.Process
}

// DefaultCommandExecutor uses the real exec.Command.
type DefaultCommandExecutor struct{}

func (e *DefaultCommandExecutor) Command(name string, args ...string) Commander {
	return &defaultCommander{cmd: exec.Command(name, args...)}
}

type defaultCommander struct {
	cmd *exec.Cmd
}

func (c *defaultCommander) Start() error { return c.cmd.Start() }
func (c *defaultCommander) Wait() error  { return c.cmd.Wait() }

func (c *defaultCommander) StdoutPipe() (io.ReadCloser, error) { return c.cmd.StdoutPipe() }
func (c *defaultCommander) StderrPipe() (io.ReadCloser, error) { return c.cmd.StderrPipe() }

func (c *defaultCommander) SetSysProcAttr(attr *syscall.SysProcAttr) {
	c.cmd.SysProcAttr = attr
}

func (c *defaultCommander) Process() *os.Process { return c.cmd.Process }

// DefaultExecutor is the standard command executor.
var DefaultExecutor CommandExecutor = &DefaultCommandExecutor{}
