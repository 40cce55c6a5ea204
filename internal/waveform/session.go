// Package waveform runs real-time amplitude sessions: it decodes a media
// source to raw PCM, reduces each frame to a single loudness value, and
// pushes the values to a connected client at a steady pace.
package waveform

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Blackmvmba88/music/internal/pcm"
	"github.com/Blackmvmba88/music/internal/transcode"
)

// State is a session's position in its lifecycle. Transitions only move
// forward; there is no way back from Closed.
type State int32

const (
	StateConnecting State = iota
	StateStreaming
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Message types pushed to the client.
const (
	msgConnected = "connected"
	msgAmplitude = "amplitude"
	msgComplete  = "complete"
	msgError     = "error"
)

// message is the wire envelope for every session push. Value is a pointer so
// amplitude zero still serializes while other message types omit the field.
type message struct {
	Type    string   `json:"type"`
	Message string   `json:"message,omitempty"`
	Value   *float64 `json:"value,omitempty"`
}

// Conn is the client connection as the session consumes it. A gorilla
// websocket connection satisfies it directly.
type Conn interface {
	WriteJSON(v interface{}) error
}

// Config carries the decoding and pacing parameters of a session.
type Config struct {
	FFmpegPath      string
	SampleRate      int
	Channels        int
	SamplesPerFrame int
	EmitInterval    time.Duration
	TeardownGrace   time.Duration
}

// Session streams amplitude values for one media source to one client. A
// Session is single-use; Run may be called once.
type Session struct {
	cfg      Config
	conn     Conn
	executor transcode.CommandExecutor
	log      zerolog.Logger

	mu    sync.Mutex
	state State
}

// NewSession builds a session bound to conn. A nil executor selects the real
// command runner.
func NewSession(cfg Config, conn Conn, executor transcode.CommandExecutor, logger zerolog.Logger) *Session {
	if executor == nil {
		executor = transcode.DefaultExecutor
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 44100
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 2
	}
	if cfg.SamplesPerFrame <= 0 {
		cfg.SamplesPerFrame = 1024
	}
	if cfg.EmitInterval <= 0 {
		cfg.EmitInterval = 20 * time.Millisecond
	}
	if cfg.TeardownGrace <= 0 {
		cfg.TeardownGrace = transcode.DefaultTeardownGrace
	}
	return &Session{cfg: cfg, conn: conn, executor: executor, log: logger}
}

// State reports the session's current lifecycle position.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(next State) {
	s.mu.Lock()
	s.state = next
	s.mu.Unlock()
	s.log.Debug().Stringer("state", next).Msg("session state")
}

// Run decodes mediaURL and pushes one amplitude value per PCM frame until the
// source ends, the client disconnects, or ctx is cancelled. The decoder is
// always torn down and the session always ends Closed, whatever the exit
// path. Cancel ctx to signal a client disconnect.
func (s *Session) Run(ctx context.Context, mediaURL string) error {
	s.setState(StateConnecting)

	handle, err := transcode.Spawn(&transcode.SpawnOptions{
		Path:     s.cfg.FFmpegPath,
		Args:     transcode.PCMArgs(mediaURL, s.cfg.SampleRate, s.cfg.Channels),
		Executor: s.executor,
		Logger:   s.log,
	})
	if err != nil {
		s.push(message{Type: msgError, Message: "could not start audio decoder"})
		s.setState(StateClosed)
		return fmt.Errorf("waveform session: %w", err)
	}

	if err := s.push(message{Type: msgConnected, Message: "waveform stream ready"}); err != nil {
		s.close(handle)
		return err
	}
	s.setState(StateStreaming)

	frameBytes := s.cfg.SamplesPerFrame * s.cfg.Channels * 2
	frames := transcode.NewFrameReader(handle, frameBytes)

	for {
		select {
		case <-ctx.Done():
			s.log.Debug().Msg("waveform client disconnected")
			s.close(handle)
			return ctx.Err()
		default:
		}

		frame, err := frames.Next()
		if err == io.EOF {
			s.setState(StateClosing)
			s.push(message{Type: msgComplete, Message: "stream finished"})
			s.close(handle)
			return nil
		}
		if err != nil {
			s.push(message{Type: msgError, Message: "audio decode failed"})
			s.close(handle)
			return fmt.Errorf("waveform read: %w", err)
		}

		var emit *float64
		samples, err := pcm.DecodeFrame(frame, s.cfg.Channels)
		if err != nil {
			// A torn frame is dropped rather than ending the session; the
			// next frame usually realigns.
			s.log.Warn().Int("bytes", len(frame)).Msg("skipping malformed frame")
		} else if value, ok := pcm.Amplitude(samples); ok {
			emit = &value
		}

		if emit != nil {
			if err := s.push(message{Type: msgAmplitude, Value: emit}); err != nil {
				s.close(handle)
				return err
			}
		}

		// Fixed pause before the next iteration, whether or not this one
		// emitted, so the feed approximates real time for the client.
		if err := s.pause(ctx); err != nil {
			s.log.Debug().Msg("waveform client disconnected")
			s.close(handle)
			return err
		}
	}
}

// pause waits one emit interval or until the client goes away.
func (s *Session) pause(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.cfg.EmitInterval):
		return nil
	}
}

// push writes one message to the client. A write failure means the client is
// gone; the caller must stop the session.
func (s *Session) push(m message) error {
	if err := s.conn.WriteJSON(m); err != nil {
		return fmt.Errorf("push %s: %w", m.Type, err)
	}
	return nil
}

// close winds the session down: every exit path passes through Closing while
// the decoder is torn down, then lands on Closed.
func (s *Session) close(handle *transcode.Handle) {
	if s.State() != StateClosing {
		s.setState(StateClosing)
	}
	if err := handle.Teardown(s.cfg.TeardownGrace); err != nil {
		s.log.Warn().Err(err).Msg("decoder teardown reported error")
	}
	s.setState(StateClosed)
}
