// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the service. All fields come from
// MUSIC_* environment variables with sensible defaults, so a bare binary
// starts without any configuration at all.
type Config struct {
	// ListenAddr is the HTTP bind address.
	ListenAddr string `env:"MUSIC_LISTEN_ADDR" envDefault:":8000"`

	// FFmpegPath locates the transcoder binary; a bare name is resolved
	// through PATH.
	FFmpegPath string `env:"MUSIC_FFMPEG_PATH" envDefault:"ffmpeg"`

	// ChunkBytes bounds each playback chunk forwarded to the client.
	ChunkBytes int `env:"MUSIC_CHUNK_BYTES" envDefault:"8192"`

	// SampleRate and Channels shape the PCM the waveform decoder produces.
	SampleRate int `env:"MUSIC_SAMPLE_RATE" envDefault:"44100"`
	Channels   int `env:"MUSIC_CHANNELS" envDefault:"2"`

	// SamplesPerFrame is the per-channel sample count reduced to one
	// amplitude value.
	SamplesPerFrame int `env:"MUSIC_SAMPLES_PER_FRAME" envDefault:"1024"`

	// EmitInterval is the fixed pause between amplitude emissions.
	EmitInterval time.Duration `env:"MUSIC_EMIT_INTERVAL" envDefault:"20ms"`

	// TeardownGrace is how long a transcoder gets to exit on its own before
	// it is force-killed.
	TeardownGrace time.Duration `env:"MUSIC_TEARDOWN_GRACE" envDefault:"5s"`

	// SearchLimit caps the number of search results returned per query.
	SearchLimit int `env:"MUSIC_SEARCH_LIMIT" envDefault:"10"`

	// ProxyURL optionally routes resolver traffic through a proxy
	// (http, socks5 or socks4). Empty means direct.
	ProxyURL string `env:"MUSIC_PROXY_URL"`

	LogLevel string `env:"MUSIC_LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"MUSIC_LOG_FILE"`
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present; its absence is not an
// error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ChunkBytes < 1 {
		return fmt.Errorf("MUSIC_CHUNK_BYTES must be positive, got %d", c.ChunkBytes)
	}
	if c.SampleRate < 1 {
		return fmt.Errorf("MUSIC_SAMPLE_RATE must be positive, got %d", c.SampleRate)
	}
	if c.Channels < 1 {
		return fmt.Errorf("MUSIC_CHANNELS must be positive, got %d", c.Channels)
	}
	if c.SamplesPerFrame < 1 {
		return fmt.Errorf("MUSIC_SAMPLES_PER_FRAME must be positive, got %d", c.SamplesPerFrame)
	}
	if c.EmitInterval <= 0 {
		return fmt.Errorf("MUSIC_EMIT_INTERVAL must be positive, got %s", c.EmitInterval)
	}
	if c.SearchLimit < 1 {
		return fmt.Errorf("MUSIC_SEARCH_LIMIT must be positive, got %d", c.SearchLimit)
	}
	return nil
}
