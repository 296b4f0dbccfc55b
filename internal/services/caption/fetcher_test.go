package caption

import (
	"context"
	"fmt"
	"testing"

	"github.com/streambox/streambox/internal/models"
)

// fakeQuerier scripts per-endpoint responses and records the query order
type fakeQuerier struct {
	responses map[string][]models.CaptionCue
	errors    map[string]error
	queried   []string
}

func (q *fakeQuerier) Query(ctx context.Context, endpoint, externalID string, episodeNumber int) ([]models.CaptionCue, error) {
	q.queried = append(q.queried, endpoint)
	if err, ok := q.errors[endpoint]; ok {
		return nil, err
	}
	return q.responses[endpoint], nil
}

func threeCues() []models.CaptionCue {
	return []models.CaptionCue{
		{Time: 1, Text: "one", Color: "#ffffff"},
		{Time: 2, Text: "two", Color: "#ffffff"},
		{Time: 3, Text: "three", Color: "#ffffff"},
	}
}

func TestFetchFallsBackInListOrder(t *testing.T) {
	querier := &fakeQuerier{
		responses: map[string][]models.CaptionCue{
			"http://b": threeCues(),
			"http://c": {{Time: 9, Text: "never seen"}},
		},
		errors: map[string]error{
			"http://a": fmt.Errorf("source down"),
		},
	}
	sources := []models.CaptionSource{
		{Name: "A", URL: "http://a", Enabled: true},
		{Name: "B", URL: "http://b", Enabled: true},
		{Name: "C", URL: "http://c", Enabled: true},
	}

	fetcher := NewFetcher(sources, querier, nil, testLogger())
	cues := fetcher.Fetch(context.Background(), "douban-1", 1)

	if len(cues) != 3 {
		t.Fatalf("expected B's 3 cues, got %d", len(cues))
	}
	if len(querier.queried) != 2 {
		t.Fatalf("expected exactly A and B queried, got %v", querier.queried)
	}
	if querier.queried[0] != "http://a" || querier.queried[1] != "http://b" {
		t.Errorf("sources queried out of order: %v", querier.queried)
	}
}

func TestFetchSkipsDisabledSources(t *testing.T) {
	querier := &fakeQuerier{
		responses: map[string][]models.CaptionCue{
			"http://a": threeCues(),
			"http://b": threeCues(),
		},
	}
	sources := []models.CaptionSource{
		{Name: "A", URL: "http://a", Enabled: false},
		{Name: "B", URL: "http://b", Enabled: true},
	}

	fetcher := NewFetcher(sources, querier, nil, testLogger())
	cues := fetcher.Fetch(context.Background(), "douban-1", 1)

	if len(cues) != 3 {
		t.Fatalf("expected cues from the enabled source, got %d", len(cues))
	}
	if len(querier.queried) != 1 || querier.queried[0] != "http://b" {
		t.Errorf("disabled source must not be queried: %v", querier.queried)
	}
}

func TestFetchReturnsEmptyWhenAllFail(t *testing.T) {
	querier := &fakeQuerier{
		errors: map[string]error{
			"http://a": fmt.Errorf("down"),
			"http://b": fmt.Errorf("down"),
		},
	}
	sources := []models.CaptionSource{
		{Name: "A", URL: "http://a", Enabled: true},
		{Name: "B", URL: "http://b", Enabled: true},
	}

	fetcher := NewFetcher(sources, querier, nil, testLogger())
	cues := fetcher.Fetch(context.Background(), "douban-1", 1)

	if len(cues) != 0 {
		t.Errorf("expected empty result when every source fails, got %d cues", len(cues))
	}
}

func TestFetchWithoutExternalID(t *testing.T) {
	querier := &fakeQuerier{}
	fetcher := NewFetcher([]models.CaptionSource{{Name: "A", URL: "http://a", Enabled: true}}, querier, nil, testLogger())

	cues := fetcher.Fetch(context.Background(), "", 1)

	if len(cues) != 0 || len(querier.queried) != 0 {
		t.Errorf("missing external id must short-circuit, queried %v", querier.queried)
	}
}

func TestFetchCachesResult(t *testing.T) {
	querier := &fakeQuerier{
		responses: map[string][]models.CaptionCue{"http://a": threeCues()},
	}
	sources := []models.CaptionSource{{Name: "A", URL: "http://a", Enabled: true}}

	fetcher := NewFetcher(sources, querier, nil, testLogger())
	fetcher.Fetch(context.Background(), "douban-1", 2)
	fetcher.Fetch(context.Background(), "douban-1", 2)

	if len(querier.queried) != 1 {
		t.Errorf("second fetch should hit the cache, queried %v", querier.queried)
	}
}

func TestFetchForEpisodeNumbering(t *testing.T) {
	querier := &fakeQuerier{
		responses: map[string][]models.CaptionCue{"http://a": threeCues()},
	}
	sources := []models.CaptionSource{{Name: "A", URL: "http://a", Enabled: true}}
	fetcher := NewFetcher(sources, querier, nil, testLogger())

	title := &models.TitleDetail{
		ExternalID: "douban-1",
		Episodes: []models.Episode{
			{Index: 0, URL: "http://v/0", Title: "第1集"},
			{Index: 1, URL: "http://v/1", Title: "第2集"},
		},
	}

	cues := fetcher.FetchForEpisode(context.Background(), title, 1)
	if len(cues) != 3 {
		t.Fatalf("expected cues for episode 2, got %d", len(cues))
	}
}
