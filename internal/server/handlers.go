package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Blackmvmba88/music/internal/resolver"
	"github.com/Blackmvmba88/music/internal/version"
	"github.com/Blackmvmba88/music/internal/waveform"
)

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    version.AppName,
		"version": version.Version,
		"endpoints": []string{
			"/info?url=...",
			"/stream?url=...",
			"/search?q=...",
			"/ws/waveform?url=...",
		},
	})
}

// handleInfo resolves a locator and returns its metadata without streaming
// anything.
func (s *Server) handleInfo(c *gin.Context) {
	locator := c.Query("url")
	if err := resolver.ValidateLocator(locator); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid url parameter"})
		return
	}

	info, err := s.resolver.Resolve(c.Request.Context(), locator)
	if err != nil {
		s.log.Warn().Err(err).Str("url", locator).Msg("info resolution failed")
		c.JSON(http.StatusNotFound, gin.H{"error": "could not extract audio info"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"title":    info.Title,
		"duration": int(info.Duration.Seconds()),
		"url":      locator,
	})
}

// handleStream resolves a locator and streams transcoded MP3 audio as a
// chunked response. Resolution and spawning happen before the first body
// byte, so failures still get a proper status code.
func (s *Server) handleStream(c *gin.Context) {
	locator := c.Query("url")
	if err := resolver.ValidateLocator(locator); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid url parameter"})
		return
	}

	info, err := s.resolver.Resolve(c.Request.Context(), locator)
	if err != nil {
		s.log.Warn().Err(err).Str("url", locator).Msg("stream resolution failed")
		c.JSON(http.StatusNotFound, gin.H{"error": "could not extract audio info"})
		return
	}

	st, err := s.pipe.Open(info.MediaURL)
	if err != nil {
		s.log.Error().Err(err).Msg("transcoder spawn failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "audio pipeline unavailable"})
		return
	}

	c.Header("Content-Type", "audio/mpeg")
	c.Header("Cache-Control", "no-cache")
	c.Header("Accept-Ranges", "bytes")
	c.Header("Content-Disposition", "inline")
	c.Status(http.StatusOK)

	if err := st.Copy(c.Request.Context(), c.Writer); err != nil {
		// The response is already in flight; all that is left is recording
		// why it ended.
		s.log.Debug().Err(err).Str("url", locator).Msg("playback ended early")
	}
}

// handleSearch returns ranked candidates for a free-text query.
func (s *Server) handleSearch(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing q parameter"})
		return
	}

	results, err := s.resolver.Search(c.Request.Context(), query, s.cfg.SearchLimit)
	if err != nil {
		s.log.Warn().Err(err).Str("query", query).Msg("search failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// handleWaveform upgrades to a websocket and runs an amplitude session. All
// errors after the upgrade are reported over the socket itself.
func (s *Server) handleWaveform(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	locator := c.Query("url")
	if err := resolver.ValidateLocator(locator); err != nil {
		_ = conn.WriteJSON(gin.H{"type": "error", "message": "invalid url parameter"})
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// The read pump exists only to notice the client going away; the feed is
	// strictly server-to-client.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	info, err := s.resolver.Resolve(ctx, locator)
	if err != nil {
		s.log.Warn().Err(err).Str("url", locator).Msg("waveform resolution failed")
		_ = conn.WriteJSON(gin.H{"type": "error", "message": "could not extract audio info"})
		return
	}

	session := waveform.NewSession(waveform.Config{
		FFmpegPath:      s.cfg.FFmpegPath,
		SampleRate:      s.cfg.SampleRate,
		Channels:        s.cfg.Channels,
		SamplesPerFrame: s.cfg.SamplesPerFrame,
		EmitInterval:    s.cfg.EmitInterval,
		TeardownGrace:   s.cfg.TeardownGrace,
	}, conn, s.executor, s.log)

	if err := session.Run(ctx, info.MediaURL); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Warn().Err(err).Str("url", locator).Msg("waveform session ended with error")
	}
}
