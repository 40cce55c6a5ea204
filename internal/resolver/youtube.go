package resolver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	youtube "github.com/kkdai/youtube/v2"
	"github.com/rs/zerolog"
	"golang.org/x/net/proxy"

	_ "github.com/bdandy/go-socks4" // registers the socks4 proxy scheme

	"github.com/Blackmvmba88/music/pkg/retrylimit"
)

const resolveAttempts = 3

// YouTube resolves locators and text queries against YouTube.
type YouTube struct {
	client  *youtube.Client
	http    *http.Client
	limiter *retrylimit.AdaptiveLimiter
	baseURL string
	log     zerolog.Logger
}

// NewYouTube builds a YouTube resolver. proxyURL optionally routes all
// upstream traffic through an HTTP, SOCKS5 or SOCKS4 proxy; empty means a
// direct connection.
func NewYouTube(proxyURL string, logger zerolog.Logger) *YouTube {
	httpClient := newHTTPClient(proxyURL, logger)
	return &YouTube{
		client:  &youtube.Client{HTTPClient: httpClient},
		http:    httpClient,
		limiter: retrylimit.NewAdaptiveLimiter(5, 1, 10, 1, 0.5),
		baseURL: "https://www.youtube.com",
		log:     logger,
	}
}

// Resolve turns a YouTube locator into a direct audio stream URL plus title
// and duration. Transient upstream failures are retried with backoff; a
// locator that names nothing playable yields ErrUnresolvable.
func (y *YouTube) Resolve(ctx context.Context, locator string) (*TrackInfo, error) {
	videoID, err := extractVideoID(locator)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnresolvable, err)
	}

	var video *youtube.Video
	err = retrylimit.WithRetryMax(ctx, func() error {
		v, err := y.client.GetVideoContext(ctx, videoID)
		if err != nil {
			return err
		}
		video = v
		return nil
	}, y.limiter, resolveAttempts)
	if err != nil {
		return nil, fmt.Errorf("%w: video %s: %v", ErrUnresolvable, videoID, err)
	}

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return nil, fmt.Errorf("%w: no audio formats for video %s", ErrUnresolvable, videoID)
	}

	mediaURL, err := y.client.GetStreamURLContext(ctx, video, &formats[0])
	if err != nil {
		return nil, fmt.Errorf("%w: stream URL for %s: %v", ErrUnresolvable, videoID, err)
	}

	y.log.Debug().Str("video_id", videoID).Str("title", video.Title).
		Dur("duration", video.Duration).Msg("locator resolved")

	return &TrackInfo{
		MediaURL: mediaURL,
		Title:    video.Title,
		Duration: video.Duration,
	}, nil
}

// extractVideoID pulls the video ID out of the supported YouTube URL shapes.
func extractVideoID(raw string) (string, error) {
	switch {
	case strings.Contains(raw, "youtu.be/"):
		parts := strings.Split(raw, "youtu.be/")
		if len(parts) != 2 || parts[1] == "" {
			return "", errors.New("invalid YouTube URL format")
		}
		return strings.Split(parts[1], "?")[0], nil

	case strings.Contains(raw, "youtube.com/watch?v="):
		parts := strings.Split(raw, "v=")
		if len(parts) < 2 || parts[1] == "" {
			return "", errors.New("invalid YouTube URL format")
		}
		return strings.Split(parts[1], "&")[0], nil

	default:
		return "", errors.New("unsupported URL format")
	}
}

// newHTTPClient builds the upstream HTTP client, optionally routed through a
// proxy. Unknown proxy schemes fall back to a direct connection.
func newHTTPClient(proxyStr string, logger zerolog.Logger) *http.Client {
	client := &http.Client{Timeout: 15 * time.Second}
	if proxyStr == "" {
		return client
	}

	proxyURL, err := url.Parse(proxyStr)
	if err != nil {
		logger.Warn().Str("proxy", proxyStr).Err(err).Msg("invalid proxy, using direct connection")
		return client
	}

	var transport *http.Transport
	switch proxyURL.Scheme {
	case "http", "https":
		transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}

	case "socks5":
		auth := &proxy.Auth{}
		if proxyURL.User != nil {
			auth.User = proxyURL.User.Username()
			if pass, ok := proxyURL.User.Password(); ok {
				auth.Password = pass
			}
		}
		dialer, err := proxy.SOCKS5("tcp", proxyURL.Host, auth, &net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 10 * time.Second,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("socks5 dialer failed, using direct connection")
			break
		}
		transport = &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			},
		}

	case "socks4":
		dialer, err := proxy.FromURL(proxyURL, &net.Dialer{Timeout: 10 * time.Second})
		if err != nil {
			logger.Warn().Err(err).Msg("socks4 dialer failed, using direct connection")
			break
		}
		transport = &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			},
		}

	default:
		logger.Warn().Str("scheme", proxyURL.Scheme).Msg("unsupported proxy scheme, using direct connection")
	}

	if transport != nil {
		logger.Info().Str("proxy", proxyURL.Scheme+"://"+proxyURL.Host).Msg("resolver traffic proxied")
		client.Transport = transport
	}
	return client
}
