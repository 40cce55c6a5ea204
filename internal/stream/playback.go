// Package stream turns a resolved media URL into a continuous MP3 byte flow
// suitable for chunked HTTP responses.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Blackmvmba88/music/internal/transcode"
)

// ErrConsumerGone marks a copy that stopped because the receiving side went
// away, as opposed to the source ending or failing.
var ErrConsumerGone = errors.New("consumer disconnected")

// Config carries the knobs a Pipe needs to spawn and pace transcodes.
type Config struct {
	FFmpegPath    string
	ChunkBytes    int
	TeardownGrace time.Duration
}

// Pipe opens playback streams. A single Pipe serves many concurrent streams;
// each Open spawns its own transcoder.
type Pipe struct {
	cfg      Config
	executor transcode.CommandExecutor
	log      zerolog.Logger
}

// NewPipe builds a Pipe. A nil executor selects the real command runner.
func NewPipe(cfg Config, executor transcode.CommandExecutor, logger zerolog.Logger) *Pipe {
	if executor == nil {
		executor = transcode.DefaultExecutor
	}
	if cfg.ChunkBytes <= 0 {
		cfg.ChunkBytes = 8192
	}
	if cfg.TeardownGrace <= 0 {
		cfg.TeardownGrace = transcode.DefaultTeardownGrace
	}
	return &Pipe{cfg: cfg, executor: executor, log: logger}
}

// Stream is one live playback transcode. Copy drives it; Close releases it if
// Copy was never reached.
type Stream struct {
	handle *transcode.Handle
	chunks *transcode.ChunkReader
	grace  time.Duration
	log    zerolog.Logger
}

// Open spawns a transcoder for mediaURL. It fails before any output byte is
// produced, so callers can still change their response on error.
func (p *Pipe) Open(mediaURL string) (*Stream, error) {
	handle, err := transcode.Spawn(&transcode.SpawnOptions{
		Path:     p.cfg.FFmpegPath,
		Args:     transcode.PlaybackArgs(mediaURL),
		Executor: p.executor,
		Logger:   p.log,
	})
	if err != nil {
		return nil, fmt.Errorf("open playback stream: %w", err)
	}
	return &Stream{
		handle: handle,
		chunks: transcode.NewChunkReader(handle, p.cfg.ChunkBytes),
		grace:  p.cfg.TeardownGrace,
		log:    p.log,
	}, nil
}

// Copy forwards transcoded bytes to w, in production order, until the source
// ends, the context is cancelled, or a write fails. The transcoder is torn
// down before Copy returns, whatever the exit path. If w implements
// http.Flusher each chunk is flushed as soon as it is written.
func (s *Stream) Copy(ctx context.Context, w io.Writer) error {
	defer s.Close()

	flusher, _ := w.(http.Flusher)

	for {
		select {
		case <-ctx.Done():
			s.log.Debug().Msg("playback consumer disconnected")
			return ErrConsumerGone
		default:
		}

		chunk, err := s.chunks.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read transcoded audio: %w", err)
		}

		if _, err := w.Write(chunk); err != nil {
			s.log.Debug().Err(err).Msg("playback write failed")
			return ErrConsumerGone
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// Close tears down the underlying transcoder. Safe to call more than once and
// safe alongside Copy, which closes on its own exit.
func (s *Stream) Close() error {
	return s.handle.Teardown(s.grace)
}
