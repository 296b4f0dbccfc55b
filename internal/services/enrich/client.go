// Package enrich fetches cast data from the external catalog. Every
// failure here is non-fatal; the session degrades to the catalog's own
// actor list.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streambox/streambox/internal/models"
)

// avatarHostRegex matches the external catalog's image CDN hosts, which
// reject hotlinked requests. Avatars are rewritten to a mirror host.
var avatarHostRegex = regexp.MustCompile(`img\d+\.doubanio\.com`)

const avatarMirrorHost = "img.doubanio.cmliussss.com"

// Client handles communication with the cast enrichment endpoint
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new enrichment client. An empty base URL disables
// enrichment entirely.
func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Enabled reports whether an enrichment endpoint is configured
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

type castResponse struct {
	Code int `json:"code"`
	Data struct {
		Actors []models.Actor `json:"actors"`
	} `json:"data"`
}

// FetchCast retrieves the cast list for an external-catalog id
func (c *Client) FetchCast(ctx context.Context, externalID string) ([]models.Actor, error) {
	if !c.Enabled() {
		return nil, nil
	}
	if externalID == "" {
		return nil, fmt.Errorf("cast fetch requires an external id")
	}

	query := url.Values{}
	query.Set("id", externalID)
	fullURL := c.baseURL + "?" + query.Encode()

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
		return nil, fmt.Errorf("enrichment returned status %d", resp.StatusCode)
	}

	var payload castResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if payload.Code != 200 {
		return nil, fmt.Errorf("enrichment reported code %d", payload.Code)
	}

	actors := payload.Data.Actors
	for i := range actors {
		actors[i].Avatar = avatarHostRegex.ReplaceAllString(actors[i].Avatar, avatarMirrorHost)
	}

	c.logger.WithFields(logrus.Fields{
		"external_id": externalID,
		"count":       len(actors),
	}).Debug("Cast enrichment loaded")

	return actors, nil
}
