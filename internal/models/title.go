package models

// Episode is one playable entry of a title. Episodes are addressed only
// by their 0-based index; the index is stable for the session lifetime.
type Episode struct {
	Index int    `json:"index"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

// TitleDetail is the immutable-after-load aggregate describing one title.
// It is created by the session loader and shared read-only afterwards.
type TitleDetail struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Title       string    `json:"title"`
	Poster      string    `json:"poster"`
	Backdrop    string    `json:"backdrop,omitempty"`
	Description string    `json:"description,omitempty"`
	Rating      string    `json:"rating,omitempty"`
	Genre       string    `json:"genre,omitempty"`
	Year        int       `json:"year,omitempty"`
	Type        MediaType `json:"type"`
	Episodes    []Episode `json:"episodes"`

	// ExternalID is the external-catalog identifier used for caption and
	// cast lookups. Empty when the catalog does not expose one.
	ExternalID string `json:"external_id,omitempty"`

	// Actors as reported by the catalog itself, before enrichment.
	Actors []Actor `json:"actors,omitempty"`
}

// IsMovie reports whether the title is a single-episode movie
func (t *TitleDetail) IsMovie() bool {
	return len(t.Episodes) == 1
}

// EpisodeURL returns the stream URL for an index, or "" if out of range
func (t *TitleDetail) EpisodeURL(index int) string {
	if index < 0 || index >= len(t.Episodes) {
		return ""
	}
	return t.Episodes[index].URL
}

// EpisodeTitle returns the display title for an index, or "" if out of range
func (t *TitleDetail) EpisodeTitle(index int) string {
	if index < 0 || index >= len(t.Episodes) {
		return ""
	}
	return t.Episodes[index].Title
}
