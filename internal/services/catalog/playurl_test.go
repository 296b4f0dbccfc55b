package catalog

import "testing"

func TestParsePlayURL(t *testing.T) {
	playURL := "第1集$http://cdn.example.com/e1/index.m3u8#第2集$http://cdn.example.com/e2/index.m3u8#第3集$http://cdn.example.com/e3/index.m3u8"

	episodes := ParsePlayURL(playURL)

	if len(episodes) != 3 {
		t.Fatalf("expected 3 episodes, got %d", len(episodes))
	}
	if episodes[0].Title != "第1集" || episodes[0].URL != "http://cdn.example.com/e1/index.m3u8" {
		t.Errorf("episode 0 mismatch: %+v", episodes[0])
	}
	if episodes[2].Index != 2 {
		t.Errorf("episode index not sequential: %+v", episodes[2])
	}
}

func TestParsePlayURLPrefersPlaylistGroup(t *testing.T) {
	playURL := "第1集$http://cdn.example.com/e1.mp4$$$第1集$http://cdn.example.com/e1/index.m3u8"

	episodes := ParsePlayURL(playURL)

	if len(episodes) != 1 {
		t.Fatalf("expected 1 episode, got %d", len(episodes))
	}
	if episodes[0].URL != "http://cdn.example.com/e1/index.m3u8" {
		t.Errorf("expected the playlist group to win, got %q", episodes[0].URL)
	}
}

func TestParsePlayURLSkipsNonHTTPEntries(t *testing.T) {
	playURL := "第1集$http://cdn.example.com/e1/index.m3u8#第2集$ftp://bad/e2#第3集$http://cdn.example.com/e3/index.m3u8"

	episodes := ParsePlayURL(playURL)

	if len(episodes) != 2 {
		t.Fatalf("expected the non-http entry dropped, got %d episodes", len(episodes))
	}
	if episodes[1].Index != 1 {
		t.Errorf("indices must stay dense after dropping entries: %+v", episodes[1])
	}
}

func TestParsePlayURLEmpty(t *testing.T) {
	if episodes := ParsePlayURL(""); episodes != nil {
		t.Errorf("expected nil for empty input, got %v", episodes)
	}
}

func TestParsePlayURLBareURLs(t *testing.T) {
	playURL := "http://cdn.example.com/e1/index.m3u8#http://cdn.example.com/e2/index.m3u8"

	episodes := ParsePlayURL(playURL)

	if len(episodes) != 2 {
		t.Fatalf("expected 2 episodes, got %d", len(episodes))
	}
	if episodes[0].Title != "第1集" {
		t.Errorf("untitled entries get positional titles, got %q", episodes[0].Title)
	}
}
