package catalog

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streambox/streambox/internal/models"
)

func newTestClient() *Client {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewClient(5*time.Second, logger)
}

func TestFetchTitleDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("ac"); got != "videolist" {
			t.Errorf("expected ac=videolist, got %q", got)
		}
		if got := r.URL.Query().Get("ids"); got != "42" {
			t.Errorf("expected ids=42, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"code":1,"list":[{
			"vod_id":42,
			"vod_name":"Test Show",
			"vod_pic":"http://img.example.com/p.jpg",
			"vod_year":"2023",
			"vod_class":"Drama",
			"vod_actor":"Actor One,Actor Two",
			"vod_douban_id":7654321,
			"vod_douban_score":"8.5",
			"vod_play_url":"第1集$http://cdn.example.com/e1/index.m3u8#第2集$http://cdn.example.com/e2/index.m3u8"
		}]}`)
	}))
	defer server.Close()

	detail, err := newTestClient().FetchTitleDetail(context.Background(), "42", "Test", server.URL)
	if err != nil {
		t.Fatalf("FetchTitleDetail failed: %v", err)
	}

	if detail.Title != "Test Show" || detail.Year != 2023 {
		t.Errorf("detail mismatch: %+v", detail)
	}
	if detail.ExternalID != "7654321" {
		t.Errorf("numeric external id must decode, got %q", detail.ExternalID)
	}
	if len(detail.Episodes) != 2 || detail.Type != models.MediaTypeTV {
		t.Errorf("expected 2 tv episodes, got %d/%s", len(detail.Episodes), detail.Type)
	}
	if len(detail.Actors) != 2 || detail.Actors[1].Name != "Actor Two" {
		t.Errorf("actor split mismatch: %+v", detail.Actors)
	}
}

func TestFetchTitleDetailZeroExternalID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"code":1,"list":[{
			"vod_name":"Movie",
			"vod_douban_id":"0",
			"vod_play_url":"HD$http://cdn.example.com/movie/index.m3u8"
		}]}`)
	}))
	defer server.Close()

	detail, err := newTestClient().FetchTitleDetail(context.Background(), "42", "Test", server.URL)
	if err != nil {
		t.Fatalf("FetchTitleDetail failed: %v", err)
	}
	if detail.ExternalID != "" {
		t.Errorf("a zero external id means none, got %q", detail.ExternalID)
	}
	if detail.Type != models.MediaTypeMovie {
		t.Errorf("single episode must classify as movie, got %s", detail.Type)
	}
}

func TestFetchTitleDetailRetriesTransientFailures(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		io.WriteString(w, `{"code":1,"list":[{
			"vod_name":"Movie",
			"vod_play_url":"HD$http://cdn.example.com/movie/index.m3u8"
		}]}`)
	}))
	defer server.Close()

	client := newTestClient()
	client.retryInterval = time.Millisecond

	detail, err := client.FetchTitleDetail(context.Background(), "42", "Test", server.URL)
	if err != nil {
		t.Fatalf("FetchTitleDetail failed: %v", err)
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
	if detail.Title != "Movie" {
		t.Errorf("detail mismatch after retry: %+v", detail)
	}
}

func TestFetchTitleDetailDoesNotRetryClientErrors(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient()
	client.retryInterval = time.Millisecond

	_, err := client.FetchTitleDetail(context.Background(), "42", "Test", server.URL)
	var upstream *models.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if got := attempts.Load(); got != 1 {
		t.Errorf("4xx responses must not be retried, got %d attempts", got)
	}
}

func TestFetchTitleDetailWrapsFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"code":1,"list":[]}`)
	}))
	defer server.Close()

	_, err := newTestClient().FetchTitleDetail(context.Background(), "42", "Test", server.URL)
	var upstream *models.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstream.Source != "Test" {
		t.Errorf("upstream error must carry the source name, got %q", upstream.Source)
	}
}
