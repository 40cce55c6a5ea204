package resolver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	simplejson "github.com/bitly/go-simplejson"
)

// ytInitialDataPattern captures the embedded JSON blob the results page ships
// with; all search metadata lives inside it.
var ytInitialDataPattern = regexp.MustCompile(`var ytInitialData = (\{.*?\});`)

// Search scrapes the upstream results page for a text query and returns up to
// limit ranked candidates.
func (y *YouTube) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit < 1 {
		limit = 1
	}

	searchURL := fmt.Sprintf("%s/results?search_query=%s", y.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := y.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch search results: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search results: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read search results: %w", err)
	}

	results, err := parseSearchResults(body, limit)
	if err != nil {
		return nil, err
	}

	y.log.Debug().Str("query", query).Int("results", len(results)).Msg("search complete")
	return results, nil
}

// parseSearchResults walks the ytInitialData JSON down to the list of video
// renderers and flattens each into a SearchResult. Non-video entries (ads,
// shelf renderers, continuations) are skipped.
func parseSearchResults(page []byte, limit int) ([]SearchResult, error) {
	m := ytInitialDataPattern.FindSubmatch(page)
	if m == nil {
		return nil, fmt.Errorf("search results: initial data blob not found")
	}

	data, err := simplejson.NewJson(m[1])
	if err != nil {
		return nil, fmt.Errorf("search results: %w", err)
	}

	sections := data.GetPath(
		"contents", "twoColumnSearchResultsRenderer", "primaryContents",
		"sectionListRenderer", "contents",
	)

	results := make([]SearchResult, 0, limit)
	for i := 0; i < len(sections.MustArray()); i++ {
		items := sections.GetIndex(i).GetPath("itemSectionRenderer", "contents")
		for j := 0; j < len(items.MustArray()); j++ {
			video := items.GetIndex(j).Get("videoRenderer")
			id := video.Get("videoId").MustString()
			if id == "" {
				continue
			}

			r := SearchResult{
				ID:       id,
				Title:    video.GetPath("title", "runs").GetIndex(0).Get("text").MustString(),
				URL:      "https://www.youtube.com/watch?v=" + id,
				Duration: parseDurationText(video.GetPath("lengthText", "simpleText").MustString()),
				Uploader: video.GetPath("ownerText", "runs").GetIndex(0).Get("text").MustString(),
			}
			if thumbs := video.GetPath("thumbnail", "thumbnails").MustArray(); len(thumbs) > 0 {
				last := video.GetPath("thumbnail", "thumbnails").GetIndex(len(thumbs) - 1)
				r.Thumbnail = last.Get("url").MustString()
			}

			results = append(results, r)
			if len(results) >= limit {
				return results, nil
			}
		}
	}
	return results, nil
}

// parseDurationText converts "3:45" or "1:02:03" to whole seconds. Live
// streams and malformed text yield 0.
func parseDurationText(text string) int {
	if text == "" {
		return 0
	}
	parts := strings.Split(text, ":")
	if len(parts) > 3 {
		return 0
	}
	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0
		}
		total = total*60 + n
	}
	return total
}
