// Package engine models the media rendering engine as a capability
// interface. The orchestrator owns exactly one live engine handle per
// session and reacts to its events; the concrete rendering happens in
// the viewer's client, mirrored through the Remote implementation.
package engine

import (
	"errors"

	"github.com/streambox/streambox/internal/models"
)

// ErrDestroyed is returned by pipeline commands issued after Destroy
var ErrDestroyed = errors.New("engine handle destroyed")

// Event identifies one lifecycle event of the player engine
type Event string

const (
	EventReady         Event = "ready"
	EventFirstPlayable Event = "first-playable" // stream buffered enough to play
	EventTimeTick      Event = "time-tick"      // playback clock advanced
	EventPause         Event = "pause"
	EventStreamEnded   Event = "stream-ended"
)

// StreamError is one error reported by the engine's stream pipeline
type StreamError struct {
	Fatal  bool                    `json:"fatal"`
	Class  models.StreamErrorClass `json:"class"`
	Detail string                  `json:"detail,omitempty"`
}

// Engine is the capability surface the orchestrator consumes. The
// transition sequence relies on SwitchStream being a single atomic
// command rather than piecemeal property assignment.
type Engine interface {
	// SwitchStream atomically swaps the active stream URL, display title
	// and poster.
	SwitchStream(url, title, poster string)

	Seek(seconds float64)
	Play()
	Pause()
	Toggle()

	Position() float64
	Duration() float64

	Volume() float64
	SetVolume(volume float64)

	Fullscreen() bool
	SetFullscreen(on bool)

	// Notice shows a transient message to the viewer
	Notice(message string)

	// On registers a handler for every occurrence of an event; Once
	// registers a one-shot handler consumed by the next occurrence.
	On(event Event, handler func())
	Once(event Event, handler func())

	// OnError registers a handler for stream pipeline errors
	OnError(handler func(StreamError))

	// Destroy releases the stream decoder and removes all handlers.
	// The handle must not be used afterwards.
	Destroy()
}

// Overlay is the caption overlay attached to the engine
type Overlay interface {
	// Load replaces the overlay's cue set
	Load(cues []models.CaptionCue)
	// Reset clears the overlay immediately
	Reset()
}
