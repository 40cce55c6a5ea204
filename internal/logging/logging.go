// Package logging sets up the process-wide zerolog logger: console output
// always, plus an optional rotated file.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the root logger. level falls back to info when unparseable;
// filePath, when non-empty, adds a size-rotated JSON log file next to the
// human-readable console stream. The returned logger is also installed as the
// zerolog global so package-level log calls share the same sinks.
func New(level, filePath string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}

	var sink io.Writer = console
	if filePath != "" {
		sink = zerolog.MultiLevelWriter(console, &lumberjack.Logger{
			Filename:   filePath,
			MaxSize:    20, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		})
	}

	logger := zerolog.New(sink).Level(lvl).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}
