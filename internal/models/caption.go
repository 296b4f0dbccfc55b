package models

// CaptionCue is one overlay caption in the format the overlay consumes.
// Produced by the caption format adapter from provider-specific tuples.
type CaptionCue struct {
	Time  float64 `json:"time"`  // seconds from stream start
	Lane  Lane    `json:"mode"`  // display lane
	Color string  `json:"color"` // CSS color, defaults to white
	Text  string  `json:"text"`
}
