// Package server exposes the streaming service over HTTP: playback and
// metadata endpoints plus a websocket waveform feed.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Blackmvmba88/music/internal/config"
	"github.com/Blackmvmba88/music/internal/resolver"
	"github.com/Blackmvmba88/music/internal/stream"
	"github.com/Blackmvmba88/music/internal/transcode"
)

// Server wires the resolver and the streaming core to HTTP routes.
type Server struct {
	cfg      *config.Config
	resolver resolver.Resolver
	pipe     *stream.Pipe
	executor transcode.CommandExecutor
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// New builds a Server. A nil executor selects the real command runner; tests
// inject fakes through it.
func New(cfg *config.Config, res resolver.Resolver, executor transcode.CommandExecutor, logger zerolog.Logger) *Server {
	if executor == nil {
		executor = transcode.DefaultExecutor
	}
	pipe := stream.NewPipe(stream.Config{
		FFmpegPath:    cfg.FFmpegPath,
		ChunkBytes:    cfg.ChunkBytes,
		TeardownGrace: cfg.TeardownGrace,
	}, executor, logger)

	return &Server{
		cfg:      cfg,
		resolver: res,
		pipe:     pipe,
		executor: executor,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browsers on any origin may open waveform feeds.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: logger,
	}
}

// Router builds the gin engine with all routes and middleware attached.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())
	r.Use(corsMiddleware())

	r.GET("/", s.handleRoot)
	r.GET("/info", s.handleInfo)
	r.GET("/stream", s.handleStream)
	r.GET("/search", s.handleSearch)
	r.GET("/ws/waveform", s.handleWaveform)

	return r
}

// requestLogger emits one structured line per completed request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("request")
	}
}

// corsMiddleware opens the API to browser clients on any origin.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
