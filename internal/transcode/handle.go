// Package transcode spawns and supervises external ffmpeg processes and
// exposes their stdout as bounded chunk and frame streams.
package transcode

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTeardownGrace is how long teardown waits for the transcoder to exit
// on its own before force-killing it.
const DefaultTeardownGrace = 5 * time.Second

// ProcessError is a transcoder failure with captured stderr output.
type ProcessError struct {
	Err    error
	Stderr string
}

func (e *ProcessError) Error() string {
	if e.Stderr == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v (stderr: %s)", e.Err, e.Stderr)
}

func (e *ProcessError) Unwrap() error { return e.Err }

// SpawnOptions configures a transcoder invocation.
type SpawnOptions struct {
	// Path is the transcoder executable, usually "ffmpeg".
	Path string

	// Args is the full argument list; output must go to stdout.
	Args []string

	// Executor overrides command creation, used by tests. Nil means the
	// real exec.Command.
	Executor CommandExecutor

	Logger zerolog.Logger
}

// Handle owns exactly one spawned transcoder process and its stdout pipe.
// Every code path that obtains a Handle must reach Teardown; Teardown is
// idempotent so any number of exit paths may call it.
type Handle struct {
	cmd       Commander
	stdout    io.ReadCloser
	stderr    io.ReadCloser
	stderrBuf *boundedBuffer
	collector sync.WaitGroup
	log       zerolog.Logger

	tearOnce sync.Once
	tearErr  error
}

// Spawn starts a transcoder process. On failure nothing is left running and
// the error is reported before any stream begins.
func Spawn(opts *SpawnOptions) (*Handle, error) {
	if opts.Path == "" {
		return nil, errors.New("transcoder path not specified")
	}

	executor := opts.Executor
	if executor == nil {
		executor = DefaultExecutor
	}

	cmd := executor.Command(opts.Path, opts.Args...)
	setupProcessGroup(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start transcoder: %w", err)
	}

	h := &Handle{
		cmd:       cmd,
		stdout:    stdout,
		stderr:    stderr,
		stderrBuf: newBoundedBuffer(4096),
		log:       opts.Logger,
	}

	h.collector.Add(1)
	go func() {
		defer h.collector.Done()
		h.collectStderr()
	}()

	if proc := cmd.Process(); proc != nil {
		h.log.Debug().Int("pid", proc.Pid).Strs("args", opts.Args).Msg("transcoder started")
	}

	return h, nil
}

// Read pulls transcoded bytes from the process stdout. A zero-byte read with
// io.EOF is the authoritative end-of-stream signal; reads block on pipe
// availability until then.
func (h *Handle) Read(p []byte) (int, error) {
	return h.stdout.Read(p)
}

// StderrOutput returns the tail of the transcoder's stderr output.
func (h *Handle) StderrOutput() string {
	return h.stderrBuf.String()
}

// Teardown stops the transcoder: graceful termination first, escalating to a
// forced kill after grace, then always reaps the exit status so no process
// is orphaned. Safe to call from any exit path, including concurrently with
// an in-flight read; only the first call does the work.
func (h *Handle) Teardown(grace time.Duration) error {
	h.tearOnce.Do(func() {
		h.tearErr = h.teardown(grace)
	})
	return h.tearErr
}

func (h *Handle) teardown(grace time.Duration) error {
	if grace <= 0 {
		grace = DefaultTeardownGrace
	}

	if err := terminateProcessGroup(h.cmd); err != nil {
		h.log.Debug().Err(err).Msg("graceful terminate failed")
	}

	done := make(chan error, 1)
	go func() { done <- h.cmd.Wait() }()

	var waitErr error
	select {
	case waitErr = <-done:
	case <-time.After(grace):
		h.log.Warn().Msg("transcoder ignored graceful termination, killing")
		_ = killProcessGroup(h.cmd)
		waitErr = <-done
	}

	// Let the stderr collector finish before reading the buffer.
	collectorDone := make(chan struct{})
	go func() {
		h.collector.Wait()
		close(collectorDone)
	}()
	select {
	case <-collectorDone:
	case <-time.After(2 * time.Second):
	}

	h.stdout.Close()
	h.stderr.Close()

	// An exit caused by our own termination signal is the expected teardown
	// outcome, not a failure.
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			waitErr = nil
		}
	}

	if waitErr != nil {
		if stderr := h.stderrBuf.String(); stderr != "" {
			return &ProcessError{Err: waitErr, Stderr: stderr}
		}
		return waitErr
	}
	return nil
}

func (h *Handle) collectStderr() {
	scanner := bufio.NewScanner(h.stderr)
	for scanner.Scan() {
		h.stderrBuf.Write(append(scanner.Bytes(), '\n'))
	}
}

// boundedBuffer keeps the most recent size bytes written to it.
type boundedBuffer struct {
	mu   sync.Mutex
	data []byte
	size int
}

func newBoundedBuffer(size int) *boundedBuffer {
	return &boundedBuffer{data: make([]byte, 0, size), size: size}
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(p) >= b.size {
		b.data = append(b.data[:0], p[len(p)-b.size:]...)
		return len(p), nil
	}
	if len(b.data)+len(p) > b.size {
		b.data = b.data[len(b.data)+len(p)-b.size:]
	}
	b.data = append(b.data, p...)
	return len(p), nil
}

func (b *boundedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.data)
}
