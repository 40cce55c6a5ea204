// Package resolver turns opaque source locators into directly fetchable
// media URLs plus metadata, and provides text search over the upstream
// catalog.
package resolver

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidLocator marks input that fails the syntactic pre-flight
	// check; no external call is made for such input.
	ErrInvalidLocator = errors.New("invalid locator")

	// ErrUnresolvable marks a locator the upstream resolver could not turn
	// into a playable source.
	ErrUnresolvable = errors.New("could not resolve source")
)

// TrackInfo describes a resolved media source.
type TrackInfo struct {
	// MediaURL is a direct, time-limited URL the transcoder can fetch.
	MediaURL string
	Title    string
	Duration time.Duration
}

// SearchResult is one ranked candidate returned for a text query.
type SearchResult struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Duration  int    `json:"duration"` // seconds
	Thumbnail string `json:"thumbnail,omitempty"`
	Uploader  string `json:"uploader,omitempty"`
}

// Resolver is the external source collaborator as the streaming core
// consumes it.
type Resolver interface {
	// Resolve turns a locator into a playable source, or ErrUnresolvable.
	Resolve(ctx context.Context, locator string) (*TrackInfo, error)

	// Search returns up to limit candidates for a text query.
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
}
