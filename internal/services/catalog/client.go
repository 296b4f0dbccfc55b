// Package catalog fetches title metadata from configured catalog sources.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"github.com/streambox/streambox/internal/models"
	"github.com/streambox/streambox/internal/utils"
)

// fetchRetries bounds the extra attempts for a transient catalog failure
const fetchRetries = 2

// Client handles communication with catalog source APIs
type Client struct {
	httpClient *http.Client
	logger     *logrus.Logger

	retryInterval time.Duration
}

// NewClient creates a new catalog client
func NewClient(timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		httpClient:    &http.Client{Timeout: timeout},
		logger:        logger,
		retryInterval: 500 * time.Millisecond,
	}
}

// listResponse is the catalog detail endpoint wire format
type listResponse struct {
	Code int          `json:"code"`
	List []detailItem `json:"list"`
}

// flexValue tolerates catalog fields that arrive as numbers or strings
type flexValue string

func (f *flexValue) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		s = ""
	}
	*f = flexValue(s)
	return nil
}

type detailItem struct {
	ID          flexValue `json:"vod_id"`
	Name        string    `json:"vod_name"`
	Pic         string    `json:"vod_pic"`
	PicSlide    string    `json:"vod_pic_slide"`
	Blurb       string    `json:"vod_blurb"`
	Content     string    `json:"vod_content"`
	Year        flexValue `json:"vod_year"`
	Class       string    `json:"vod_class"`
	Score       string    `json:"vod_score"`
	Actor       string    `json:"vod_actor"`
	DoubanID    flexValue `json:"vod_douban_id"`
	DoubanScore string    `json:"vod_douban_score"`
	PlayURL     string    `json:"vod_play_url"`
}

// FetchTitleDetail loads the full title aggregate from one catalog source.
// Transport failures and 5xx responses are retried a few times; any
// remaining failure is wrapped into an UpstreamError: there is no partial
// title detail.
func (c *Client) FetchTitleDetail(ctx context.Context, id, sourceName, sourceURL string) (*models.TitleDetail, error) {
	query := url.Values{}
	query.Set("ac", "videolist")
	query.Set("ids", id)
	fullURL := sourceURL + "?" + query.Encode()

	c.logger.WithFields(logrus.Fields{
		"source": sourceName,
		"id":     id,
	}).Debug("Fetching title detail")

	var payload listResponse
	fetch := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("catalog returned status %d", resp.StatusCode)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return backoff.Permanent(fmt.Errorf("catalog returned status %d", resp.StatusCode))
		}

		payload = listResponse{}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryInterval
	if err := backoff.Retry(fetch, backoff.WithContext(backoff.WithMaxRetries(policy, fetchRetries), ctx)); err != nil {
		return nil, &models.UpstreamError{Source: sourceName, Err: err}
	}

	if len(payload.List) == 0 {
		return nil, &models.UpstreamError{Source: sourceName, Err: fmt.Errorf("title %s not found", id)}
	}

	detail := convertDetail(&payload.List[0], id, sourceName)
	if len(detail.Episodes) == 0 {
		return nil, &models.UpstreamError{Source: sourceName, Err: fmt.Errorf("title %s has no playable episodes", id)}
	}

	return detail, nil
}

// convertDetail maps a catalog detail item into the session's aggregate
func convertDetail(item *detailItem, id, sourceName string) *models.TitleDetail {
	detail := &models.TitleDetail{
		ID:          id,
		Source:      sourceName,
		Title:       item.Name,
		Poster:      item.Pic,
		Backdrop:    item.PicSlide,
		Description: firstNonEmpty(item.Blurb, item.Content),
		Rating:      firstNonEmpty(item.DoubanScore, item.Score),
		Genre:       item.Class,
		Year:        utils.ExtractYear(string(item.Year)),
		ExternalID:  string(item.DoubanID),
		Episodes:    ParsePlayURL(item.PlayURL),
	}

	// The external id field reports "0" when the catalog has none
	if detail.ExternalID == "0" || detail.ExternalID == "" {
		detail.ExternalID = ""
	}

	if len(detail.Episodes) > 1 {
		detail.Type = models.MediaTypeTV
	} else {
		detail.Type = models.MediaTypeMovie
	}

	for _, name := range strings.Split(item.Actor, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			detail.Actors = append(detail.Actors, models.Actor{Name: name})
		}
	}

	return detail
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
