package engine

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/streambox/streambox/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestRemoteQueuesAndDrainsCommands(t *testing.T) {
	r := NewRemote(testLogger())

	r.SwitchStream("http://cdn.example.com/e1.m3u8", "Show 第1集", "poster.jpg")
	r.Seek(30)
	r.Notice("hello")

	commands := r.DrainCommands()
	if len(commands) != 3 {
		t.Fatalf("expected 3 commands, got %d", len(commands))
	}
	if commands[0].Action != CommandSwitchStream || commands[0].URL != "http://cdn.example.com/e1.m3u8" {
		t.Errorf("unexpected first command: %+v", commands[0])
	}
	if commands[1].Action != CommandSeek || commands[1].Seconds != 30 {
		t.Errorf("unexpected seek command: %+v", commands[1])
	}

	if again := r.DrainCommands(); again != nil {
		t.Errorf("drain must clear the queue, got %v", again)
	}
}

func TestRemoteMirrorsReportedState(t *testing.T) {
	r := NewRemote(testLogger())

	ticks := 0
	r.On(EventTimeTick, func() { ticks++ })

	r.UpdateState(42.5, 1800)

	if r.Position() != 42.5 || r.Duration() != 1800 {
		t.Errorf("state not mirrored: pos=%v dur=%v", r.Position(), r.Duration())
	}
	if ticks != 1 {
		t.Errorf("expected one time tick, got %d", ticks)
	}
}

func TestRemoteOnceHandlerFiresOnce(t *testing.T) {
	r := NewRemote(testLogger())

	fired := 0
	r.Once(EventFirstPlayable, func() { fired++ })

	r.Fire(EventFirstPlayable)
	r.Fire(EventFirstPlayable)

	if fired != 1 {
		t.Errorf("once handler fired %d times", fired)
	}
}

func TestRemoteErrorDispatch(t *testing.T) {
	r := NewRemote(testLogger())

	var got StreamError
	r.OnError(func(streamErr StreamError) { got = streamErr })

	r.FireError(StreamError{Fatal: true, Class: models.StreamErrorNetwork, Detail: "timeout"})

	if !got.Fatal || got.Class != models.StreamErrorNetwork {
		t.Errorf("error not dispatched: %+v", got)
	}
}

func TestRemoteDestroyRefusesFurtherWork(t *testing.T) {
	r := NewRemote(testLogger())

	fired := false
	r.On(EventTimeTick, func() { fired = true })

	r.Destroy()

	if err := r.StartLoad(); err != ErrDestroyed {
		t.Errorf("expected ErrDestroyed, got %v", err)
	}

	r.Seek(10)
	r.UpdateState(5, 100)
	if fired {
		t.Error("events after destroy must not dispatch")
	}

	commands := r.DrainCommands()
	if len(commands) != 1 || commands[0].Action != CommandDestroy {
		t.Errorf("expected only the destroy command, got %v", commands)
	}

	r.Destroy()
	if commands := r.DrainCommands(); len(commands) != 0 {
		t.Errorf("double destroy must not queue again, got %v", commands)
	}
}

func TestRemoteOverlayCommands(t *testing.T) {
	r := NewRemote(testLogger())

	r.Load([]models.CaptionCue{{Time: 1, Lane: models.LaneScroll, Color: "#ffffff", Text: "hi"}})
	r.Reset()

	commands := r.DrainCommands()
	if len(commands) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(commands))
	}
	if commands[0].Action != CommandLoadCaptions || len(commands[0].Cues) != 1 {
		t.Errorf("unexpected caption load command: %+v", commands[0])
	}
	if commands[1].Action != CommandResetCaptions {
		t.Errorf("unexpected reset command: %+v", commands[1])
	}
}
