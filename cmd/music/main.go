// cmd/music/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Blackmvmba88/music/internal/config"
	"github.com/Blackmvmba88/music/internal/logging"
	"github.com/Blackmvmba88/music/internal/resolver"
	"github.com/Blackmvmba88/music/internal/server"
	v "github.com/Blackmvmba88/music/internal/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logging.New("info", "")
		fallback.Fatal().Err(err).Msg("configuration failed")
	}

	log := logging.New(cfg.LogLevel, cfg.LogFile)
	log.Info().Str("version", v.Version).Str("addr", cfg.ListenAddr).
		Msgf("starting %s", v.AppName)

	res := resolver.NewYouTube(cfg.ProxyURL, log)
	srv := server.New(cfg, res, nil, log)

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("shutting down")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("http server error")
		}
	}

	// In-flight playback streams get a short window to drain; waveform
	// sessions end when their client contexts are cancelled by the close.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("forced shutdown")
	}

	log.Info().Msg("exited cleanly")
}
