package caption

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streambox/streambox/internal/models"
)

// providerResponse is the wire format of a caption provider
type providerResponse struct {
	Code    int         `json:"code"`
	Danmuku []RawRecord `json:"danmuku"`
}

// Client queries caption provider endpoints
type Client struct {
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new caption provider client
func NewClient(timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Query fetches the caption track for one episode from a single provider
// endpoint. The provider is addressed by the title's external-catalog id
// and a 1-based episode number.
func (c *Client) Query(ctx context.Context, endpoint, externalID string, episodeNumber int) ([]models.CaptionCue, error) {
	if endpoint == "" || externalID == "" {
		return nil, fmt.Errorf("caption query requires endpoint and external id")
	}
	if episodeNumber < 1 {
		episodeNumber = 1
	}

	query := url.Values{}
	query.Set("douban_id", externalID)
	query.Set("episode_number", fmt.Sprintf("%d", episodeNumber))
	fullURL := endpoint + "?" + query.Encode()

	c.logger.WithFields(logrus.Fields{
		"url":     endpoint,
		"episode": episodeNumber,
	}).Debug("Querying caption source")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("caption source returned status %d", resp.StatusCode)
	}

	var payload providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	// Code 23 means a partial result the provider still considers usable
	if payload.Code != 0 && payload.Code != 23 {
		c.logger.WithField("code", payload.Code).Warn("Caption source reported failure")
		return nil, nil
	}

	return ConvertRecords(payload.Danmuku, c.logger), nil
}
