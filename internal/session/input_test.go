package session

import (
	"testing"

	"github.com/streambox/streambox/internal/engine"
	"github.com/streambox/streambox/internal/models"
)

func TestMapKey(t *testing.T) {
	tests := []struct {
		name  string
		event KeyEvent
		want  Action
	}{
		{"alt left is previous episode", KeyEvent{Key: "ArrowLeft", Alt: true}, ActionPrevEpisode},
		{"alt right is next episode", KeyEvent{Key: "ArrowRight", Alt: true}, ActionNextEpisode},
		{"left is seek back", KeyEvent{Key: "ArrowLeft"}, ActionSeekBack},
		{"right is seek forward", KeyEvent{Key: "ArrowRight"}, ActionSeekForward},
		{"up is volume up", KeyEvent{Key: "ArrowUp"}, ActionVolumeUp},
		{"down is volume down", KeyEvent{Key: "ArrowDown"}, ActionVolumeDown},
		{"space toggles playback", KeyEvent{Key: " "}, ActionTogglePlay},
		{"f is fullscreen", KeyEvent{Key: "f"}, ActionFullscreen},
		{"shifted f is fullscreen", KeyEvent{Key: "F"}, ActionFullscreen},
		{"unknown key is ignored", KeyEvent{Key: "q"}, ActionNone},
		{"text field input is ignored", KeyEvent{Key: " ", FromInput: true}, ActionNone},
		{"alt seek from text field is ignored", KeyEvent{Key: "ArrowRight", Alt: true, FromInput: true}, ActionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapKey(tt.event); got != tt.want {
				t.Errorf("MapKey(%+v) = %v, want %v", tt.event, got, tt.want)
			}
		})
	}
}

func startedFixture(t *testing.T, episodes int) *sessionFixture {
	t.Helper()
	f := newFixture(episodes, nil, models.SkipConfig{})
	if err := f.session.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	f.eng.fire(engine.EventFirstPlayable)
	return f
}

func TestHandleKeySeekGuards(t *testing.T) {
	f := startedFixture(t, 3)
	f.eng.position = 3
	f.eng.duration = 100

	// too close to the start to rewind
	f.session.HandleKey(KeyEvent{Key: "ArrowLeft"})
	if len(f.eng.seeks) != 0 {
		t.Errorf("rewind near the start must be ignored, got %v", f.eng.seeks)
	}

	f.eng.position = 30
	f.session.HandleKey(KeyEvent{Key: "ArrowLeft"})
	if len(f.eng.seeks) != 1 || f.eng.seeks[0] != 20 {
		t.Errorf("expected seek to 20, got %v", f.eng.seeks)
	}

	// too close to the end to jump forward
	f.eng.position = 97
	f.session.HandleKey(KeyEvent{Key: "ArrowRight"})
	if len(f.eng.seeks) != 1 {
		t.Errorf("forward jump near the end must be ignored, got %v", f.eng.seeks)
	}

	f.eng.position = 50
	f.session.HandleKey(KeyEvent{Key: "ArrowRight"})
	if len(f.eng.seeks) != 2 || f.eng.seeks[1] != 60 {
		t.Errorf("expected seek to 60, got %v", f.eng.seeks)
	}
}

func TestHandleKeyForwardSeekClampsNearEnd(t *testing.T) {
	f := startedFixture(t, 3)
	f.eng.position = 93
	f.eng.duration = 100

	f.session.HandleKey(KeyEvent{Key: "ArrowRight"})
	if len(f.eng.seeks) != 1 || f.eng.seeks[0] != 95 {
		t.Errorf("expected seek clamped to 95, got %v", f.eng.seeks)
	}
}

func TestHandleKeyVolumeRoundsAndClamps(t *testing.T) {
	f := startedFixture(t, 3)

	f.eng.volume = 0.7
	f.session.HandleKey(KeyEvent{Key: "ArrowUp"})
	if f.eng.volume != 0.8 {
		t.Errorf("expected volume 0.8, got %v", f.eng.volume)
	}

	f.eng.volume = 1.0
	f.session.HandleKey(KeyEvent{Key: "ArrowUp"})
	if f.eng.volume != 1.0 {
		t.Errorf("volume must clamp at 1, got %v", f.eng.volume)
	}

	f.eng.volume = 0.1
	f.session.HandleKey(KeyEvent{Key: "ArrowDown"})
	f.session.HandleKey(KeyEvent{Key: "ArrowDown"})
	if f.eng.volume != 0 {
		t.Errorf("volume must clamp at 0, got %v", f.eng.volume)
	}
}

func TestHandleKeyEpisodeSteps(t *testing.T) {
	f := startedFixture(t, 3)

	// first episode, previous is a no-op
	f.session.HandleKey(KeyEvent{Key: "ArrowLeft", Alt: true})
	if len(f.eng.switches) != 1 {
		t.Error("previous on the first episode must not switch")
	}

	f.session.HandleKey(KeyEvent{Key: "ArrowRight", Alt: true})
	if len(f.eng.switches) != 2 {
		t.Fatal("expected a switch to the next episode")
	}
	if f.session.Status().EpisodeIndex != 1 {
		t.Errorf("expected episode 1, got %d", f.session.Status().EpisodeIndex)
	}
}

func TestHandleKeyToggleAndFullscreen(t *testing.T) {
	f := startedFixture(t, 3)

	f.session.HandleKey(KeyEvent{Key: " "})
	if f.eng.toggles != 1 {
		t.Error("space must toggle playback")
	}

	f.session.HandleKey(KeyEvent{Key: "f"})
	if !f.eng.fullscreen {
		t.Error("f must enter fullscreen")
	}
	f.session.HandleKey(KeyEvent{Key: "f"})
	if f.eng.fullscreen {
		t.Error("f must leave fullscreen again")
	}
}
