package models

// MediaType represents the type of title (movie or tv show)
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

// Lane represents the display lane of a caption cue
type Lane int

const (
	LaneScroll Lane = 0 // scrolls right to left
	LaneTop    Lane = 1 // pinned to the top
	LaneBottom Lane = 2 // pinned to the bottom
)

// SessionState represents the state of the episode transition machine
type SessionState string

const (
	SessionStateIdle      SessionState = "idle"      // episode fully loaded and stable
	SessionStateSwitching SessionState = "switching" // episode transition in flight
	SessionStateError     SessionState = "error"     // playback degraded by an unrecovered stream error
	SessionStateClosed    SessionState = "closed"    // session torn down
)

// StreamErrorClass classifies fatal stream-engine errors for recovery
type StreamErrorClass string

const (
	StreamErrorNetwork StreamErrorClass = "network" // restart the load
	StreamErrorMedia   StreamErrorClass = "media"   // in-place media recovery
	StreamErrorOther   StreamErrorClass = "other"   // fall back to direct playback
)

// SourceConfig describes one catalog source the viewer can play from
type SourceConfig struct {
	ID      string `json:"id"`
	Key     string `json:"key"`
	Name    string `json:"name"`
	URL     string `json:"url"`
	Enabled bool   `json:"enabled"`
}

// CaptionSource describes one ranked caption provider endpoint.
// Sources are queried in list order; position is the priority.
type CaptionSource struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Enabled bool   `json:"enabled"`
}

// Actor is one cast member from the enrichment provider
type Actor struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Role   string `json:"role,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}
