package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxPlaylistDepth bounds recursive playlist resolution
const maxPlaylistDepth = 2

// ProbeResult describes the measured health of one stream URL
type ProbeResult struct {
	URL            string  `json:"url"`
	ResponseTimeMs int64   `json:"response_time_ms"`
	DownloadBytes  int64   `json:"download_bytes"`
	SpeedKBps      float64 `json:"speed_kbps"`
	ContentType    string  `json:"content_type"`
	IsPlaylist     bool    `json:"is_playlist"`
	MediaURL       string  `json:"media_url,omitempty"` // resolved segment/variant URL
}

// ProbeStream measures response time and download speed for a stream URL.
// Playlist URLs are resolved recursively (bounded depth) down to a real
// media URL so the measurement reflects actual segment delivery.
func (c *Client) ProbeStream(ctx context.Context, streamURL string) (*ProbeResult, error) {
	start := time.Now()

	body, contentType, err := c.fetchBody(ctx, streamURL)
	if err != nil {
		return nil, err
	}

	result := &ProbeResult{
		URL:            streamURL,
		ResponseTimeMs: time.Since(start).Milliseconds(),
		DownloadBytes:  int64(len(body)),
		ContentType:    contentType,
	}

	elapsed := time.Since(start).Seconds()
	if elapsed > 0 {
		result.SpeedKBps = float64(len(body)) / 1024 / elapsed
	}

	isPlaylist := strings.Contains(strings.ToLower(streamURL), ".m3u8") ||
		strings.Contains(contentType, "mpegurl")
	if isPlaylist && strings.Contains(body, "#EXTM3U") {
		result.IsPlaylist = true
		mediaURL, err := c.resolveMediaURL(ctx, streamURL, body, 0)
		if err != nil {
			c.logger.WithError(err).Debug("Failed to resolve media URL from playlist")
		} else {
			result.MediaURL = mediaURL
		}
	}

	return result, nil
}

// resolveMediaURL walks nested playlists until it finds a non-playlist
// entry, following at most maxPlaylistDepth levels
func (c *Client) resolveMediaURL(ctx context.Context, base, body string, depth int) (string, error) {
	if depth > maxPlaylistDepth {
		return "", fmt.Errorf("playlist nesting exceeds depth %d", maxPlaylistDepth)
	}

	entry := firstPlaylistEntry(body)
	if entry == "" {
		return "", fmt.Errorf("playlist has no entries")
	}

	resolved, err := resolveURL(base, entry)
	if err != nil {
		return "", err
	}

	if !strings.Contains(strings.ToLower(entry), ".m3u8") {
		return resolved, nil
	}

	nested, _, err := c.fetchBody(ctx, resolved)
	if err != nil {
		return "", err
	}
	return c.resolveMediaURL(ctx, resolved, nested, depth+1)
}

// firstPlaylistEntry returns the first non-comment line of a playlist
func firstPlaylistEntry(body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			return line
		}
	}
	return ""
}

// resolveURL resolves a possibly relative playlist entry against its base
func resolveURL(base, target string) (string, error) {
	t, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("failed to parse target URL: %w", err)
	}
	if t.IsAbs() {
		return target, nil
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("failed to parse base URL: %w", err)
	}
	return b.ResolveReference(t).String(), nil
}

func (c *Client) fetchBody(ctx context.Context, fullURL string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", fmt.Errorf("stream returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("failed to read response body: %w", err)
	}

	return string(data), resp.Header.Get("Content-Type"), nil
}
