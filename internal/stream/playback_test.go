package stream_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"syscall"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Blackmvmba88/music/internal/stream"
	"github.com/Blackmvmba88/music/internal/transcode"
)

// fakeCommander serves canned stdout bytes in place of a real transcoder.
// Process() stays nil so the platform signal helpers are no-ops on the test
// host.
type fakeCommander struct {
	stdout    io.ReadCloser
	startErr  error
	waitCalls atomic.Int32
}

func (f *fakeCommander) Start() error { return f.startErr }

func (f *fakeCommander) Wait() error {
	f.waitCalls.Add(1)
	return nil
}

func (f *fakeCommander) StdoutPipe() (io.ReadCloser, error) { return f.stdout, nil }

func (f *fakeCommander) StderrPipe() (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

func (f *fakeCommander) SetSysProcAttr(attr *syscall.SysProcAttr) {}

func (f *fakeCommander) Process() *os.Process { return nil }

type fakeExecutor struct {
	cmd *fakeCommander
}

func (f *fakeExecutor) Command(name string, args ...string) transcode.Commander { return f.cmd }

// flushRecorder counts flushes so pacing of chunked responses can be checked.
type flushRecorder struct {
	bytes.Buffer
	flushes int
}

func (f *flushRecorder) Flush() { f.flushes++ }

// failingWriter rejects every write, standing in for a closed connection.
type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("broken pipe") }

func newTestPipe(cmd *fakeCommander) *stream.Pipe {
	return stream.NewPipe(stream.Config{
		FFmpegPath: "ffmpeg",
		ChunkBytes: 4,
	}, &fakeExecutor{cmd: cmd}, zerolog.Nop())
}

func TestCopyForwardsAllBytesInOrder(t *testing.T) {
	src := make([]byte, 100)
	for i := range src {
		src[i] = byte(i)
	}
	cmd := &fakeCommander{stdout: io.NopCloser(bytes.NewReader(src))}

	s, err := newTestPipe(cmd).Open("http://example.com/media")
	require.NoError(t, err)

	var rec flushRecorder
	require.NoError(t, s.Copy(context.Background(), &rec))

	assert.Equal(t, src, rec.Bytes())
	assert.Equal(t, 25, rec.flushes, "one flush per 4-byte chunk")
	assert.Equal(t, int32(1), cmd.waitCalls.Load(), "transcoder reaped exactly once")
}

func TestCopyStopsOnContextCancel(t *testing.T) {
	cmd := &fakeCommander{stdout: io.NopCloser(bytes.NewReader(make([]byte, 1024)))}

	s, err := newTestPipe(cmd).Open("http://example.com/media")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = s.Copy(ctx, &bytes.Buffer{})
	assert.ErrorIs(t, err, stream.ErrConsumerGone)
	assert.Equal(t, int32(1), cmd.waitCalls.Load())
}

func TestCopyStopsOnWriteError(t *testing.T) {
	cmd := &fakeCommander{stdout: io.NopCloser(bytes.NewReader(make([]byte, 1024)))}

	s, err := newTestPipe(cmd).Open("http://example.com/media")
	require.NoError(t, err)

	err = s.Copy(context.Background(), failingWriter{})
	assert.ErrorIs(t, err, stream.ErrConsumerGone)
	assert.Equal(t, int32(1), cmd.waitCalls.Load())
}

func TestOpenFailsBeforeAnyOutput(t *testing.T) {
	cmd := &fakeCommander{
		stdout:   io.NopCloser(bytes.NewReader(nil)),
		startErr: errors.New("executable not found"),
	}

	_, err := newTestPipe(cmd).Open("http://example.com/media")
	assert.Error(t, err)
	assert.Equal(t, int32(0), cmd.waitCalls.Load(), "nothing to reap when spawn fails")
}

func TestCloseIsIdempotent(t *testing.T) {
	cmd := &fakeCommander{stdout: io.NopCloser(bytes.NewReader(nil))}

	s, err := newTestPipe(cmd).Open("http://example.com/media")
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, int32(1), cmd.waitCalls.Load())
}

func TestCopyAfterCloseReturnsCleanly(t *testing.T) {
	cmd := &fakeCommander{stdout: io.NopCloser(bytes.NewReader(make([]byte, 8)))}

	s, err := newTestPipe(cmd).Open("http://example.com/media")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// The source reader still drains whatever was buffered; the important
	// property is that no second reap happens.
	_ = s.Copy(context.Background(), &bytes.Buffer{})
	assert.Equal(t, int32(1), cmd.waitCalls.Load())
}
