package models

import "time"

// MinSavableElapsed is the floor below which elapsed time is treated as
// zero. Near-zero positions recorded during initial buffering would
// otherwise corrupt resume logic.
const MinSavableElapsed = 1.0

// PlayRecord is the durable playback checkpoint for one title. One record
// per (source, title id); overwritten in place, never appended.
type PlayRecord struct {
	Key string `boltholdKey:"Key"` // "source:id"

	Source string `json:"source"`
	ID     string `json:"id"`
	Title  string `json:"title"`
	Poster string `json:"poster"`
	Year   int    `json:"year"`

	EpisodeIndex  int     `json:"episode_index"`
	TotalEpisodes int     `json:"total_episodes"`
	CurrentTime   float64 `json:"current_time"` // elapsed seconds
	Duration      float64 `json:"duration"`

	SavedAt time.Time `json:"saved_at"`
}

// RecordKey builds the checkpoint key for a (source, id) pair
func RecordKey(source, id string) string {
	return source + ":" + id
}

// Progress returns the watched fraction in percent, 0 when duration is unknown
func (r *PlayRecord) Progress() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return r.CurrentTime / r.Duration * 100
}

// SkipConfig holds the per-installation intro/outro skip windows.
// IntroTime is seconds from stream start (>= 0), OutroTime is seconds
// measured backward from stream end (<= 0). Zero means unset.
type SkipConfig struct {
	Enable    bool    `json:"enable"`
	IntroTime float64 `json:"intro_time"`
	OutroTime float64 `json:"outro_time"`
}

// Valid reports whether the offsets respect their sign invariants
func (c SkipConfig) Valid() bool {
	return c.IntroTime >= 0 && c.OutroTime <= 0
}

// Favorite is one bookmarked title
type Favorite struct {
	Key string `boltholdKey:"Key"` // "source:id"

	Source  string    `json:"source"`
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Type    MediaType `json:"type"`
	Genre   string    `json:"genre,omitempty"`
	Poster  string    `json:"poster,omitempty"`
	AddedAt time.Time `json:"added_at"`
}
