package session

// seekStep is the jump size for arrow-key seeks, in seconds
const seekStep = 10.0

// volumeStep is the volume delta for arrow-key adjustments
const volumeStep = 0.1

// KeyEvent is one viewer keyboard event as reported by the client
type KeyEvent struct {
	Key       string `json:"key"`
	Alt       bool   `json:"alt"`
	FromInput bool   `json:"from_input"` // focus was on a text field
}

// Action is the playback action a key event maps to
type Action int

const (
	ActionNone Action = iota
	ActionPrevEpisode
	ActionNextEpisode
	ActionSeekBack
	ActionSeekForward
	ActionVolumeUp
	ActionVolumeDown
	ActionTogglePlay
	ActionFullscreen
)

// MapKey translates a keyboard event into a playback action. Events
// originating from text fields are ignored so typing never drives the
// player.
func MapKey(event KeyEvent) Action {
	if event.FromInput {
		return ActionNone
	}

	switch event.Key {
	case "ArrowLeft":
		if event.Alt {
			return ActionPrevEpisode
		}
		return ActionSeekBack
	case "ArrowRight":
		if event.Alt {
			return ActionNextEpisode
		}
		return ActionSeekForward
	case "ArrowUp":
		return ActionVolumeUp
	case "ArrowDown":
		return ActionVolumeDown
	case " ":
		return ActionTogglePlay
	case "f", "F":
		return ActionFullscreen
	}
	return ActionNone
}
