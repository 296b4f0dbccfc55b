// Package session drives one viewer's playback of one title: loading
// the title aggregate, switching episodes, skipping intros, persisting
// progress and translating keyboard input into engine commands.
package session

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streambox/streambox/internal/engine"
	"github.com/streambox/streambox/internal/models"
	"github.com/streambox/streambox/internal/utils"
)

const (
	// skipInterval throttles skip-intro/outro triggers so a seek that
	// lands inside the window again does not fire a second seek at once
	skipInterval = 1500 * time.Millisecond

	// saveInterval throttles checkpoint writes during steady playback
	saveInterval = 5 * time.Second

	// autoAdvanceDelay keeps the final frame visible before the next
	// episode starts
	autoAdvanceDelay = time.Second

	// seekEndGuard keeps seeks from landing inside the final seconds of
	// the stream, where they would fire a spurious ended event or
	// re-trigger the outro skip
	seekEndGuard = 5.0

	// manualSeekGuard blocks rewinds near the start and forward jumps
	// near the end
	manualSeekGuard = 5.0
)

// CheckpointWriter persists playback checkpoints
type CheckpointWriter interface {
	SavePlayRecord(record *models.PlayRecord) error
}

// CheckpointStore reads and writes the title's durable checkpoint
type CheckpointStore interface {
	CheckpointReader
	CheckpointWriter
}

// Session is the per-viewer playback orchestrator for one title. All
// mutation goes through its transition machine: exactly one episode
// switch can be in flight, and every side effect carries the generation
// of the switch that scheduled it so superseded work is dropped.
type Session struct {
	mu sync.Mutex

	source string
	id     string
	data   *SessionData

	eng      engine.Engine
	overlay  engine.Overlay
	adapter  *StreamAdapter
	captions CaptionFetcher
	store    CheckpointStore
	logger   *logrus.Logger

	state        models.SessionState
	currentIndex int
	generation   int

	skipConfig  models.SkipConfig
	skipLimiter *rateLimiter
	saveLimiter *rateLimiter

	// test seams, defaulting to real goroutines and timers
	spawn func(func())
	delay func(time.Duration, func())
}

// NewSession creates a session over an engine handle. Call Start to
// begin playback.
func NewSession(source, id string, data *SessionData, eng engine.Engine, overlay engine.Overlay, adapter *StreamAdapter, captions CaptionFetcher, store CheckpointStore, skipConfig models.SkipConfig, logger *logrus.Logger) *Session {
	clock := time.Now
	s := &Session{
		source:       source,
		id:           id,
		data:         data,
		eng:          eng,
		overlay:      overlay,
		adapter:      adapter,
		captions:     captions,
		store:        store,
		logger:       logger,
		state:        models.SessionStateIdle,
		currentIndex: data.ResumeEpisode,
		skipConfig:   skipConfig,
		skipLimiter:  newRateLimiter(skipInterval, clock),
		saveLimiter:  newRateLimiter(saveInterval, clock),
		spawn:        func(fn func()) { go fn() },
		delay: func(d time.Duration, fn func()) {
			time.AfterFunc(d, fn)
		},
	}
	return s
}

// Start wires the engine handlers and begins playback at the resume
// point
func (s *Session) Start() error {
	s.eng.OnError(s.handleStreamError)
	s.eng.On(engine.EventTimeTick, s.handleTick)
	s.eng.On(engine.EventStreamEnded, s.handleEnded)
	s.eng.On(engine.EventPause, s.handlePause)
	s.eng.On(engine.EventFirstPlayable, s.clearError)

	return s.switchTo(s.data.ResumeEpisode, s.data.ResumeTime, s.data.InitialCaptions)
}

// handleStreamError runs the adapter's recovery, then marks the session
// degraded when the error class has no recovery path. A later
// first-playable clears the mark.
func (s *Session) handleStreamError(streamErr engine.StreamError) {
	s.adapter.HandleError(streamErr)

	if !streamErr.Fatal || streamErr.Class == models.StreamErrorNetwork || streamErr.Class == models.StreamErrorMedia {
		return
	}

	s.mu.Lock()
	if s.state != models.SessionStateClosed {
		s.state = models.SessionStateError
	}
	s.mu.Unlock()
}

// clearError returns the machine to idle once a stream plays again after
// a degrading error
func (s *Session) clearError() {
	s.mu.Lock()
	if s.state == models.SessionStateError {
		s.state = models.SessionStateIdle
	}
	s.mu.Unlock()
}

// SwitchEpisode transitions playback to another episode of the title.
// Returns ErrInvalidEpisode for out-of-range indices without touching
// playback, and ErrSwitchInProgress while a transition is in flight.
func (s *Session) SwitchEpisode(index int) error {
	return s.switchTo(index, 0, nil)
}

// NextEpisode advances to the following episode, a no-op on the last one
func (s *Session) NextEpisode() error {
	s.mu.Lock()
	index := s.currentIndex
	s.mu.Unlock()
	if index+1 >= len(s.data.Detail.Episodes) {
		return nil
	}
	return s.switchTo(index+1, 0, nil)
}

// PrevEpisode steps back to the preceding episode, a no-op on the first
func (s *Session) PrevEpisode() error {
	s.mu.Lock()
	index := s.currentIndex
	s.mu.Unlock()
	if index == 0 {
		return nil
	}
	return s.switchTo(index-1, 0, nil)
}

// switchTo performs the full episode transition: claim the machine,
// checkpoint the outgoing episode, swap the stream, reset captions and
// schedule the resume seek and caption reload for the new generation
func (s *Session) switchTo(index int, resumeAt float64, preloaded []models.CaptionCue) error {
	s.mu.Lock()
	switch s.state {
	case models.SessionStateClosed:
		s.mu.Unlock()
		return models.ErrSessionClosed
	case models.SessionStateSwitching:
		s.mu.Unlock()
		return models.ErrSwitchInProgress
	}

	url := s.data.Detail.EpisodeURL(index)
	if url == "" {
		s.mu.Unlock()
		return models.ErrInvalidEpisode
	}

	prevIndex := s.currentIndex
	s.state = models.SessionStateSwitching
	s.currentIndex = index
	s.generation++
	gen := s.generation
	s.skipLimiter.Reset()
	s.mu.Unlock()

	// The engine still mirrors the outgoing stream here, so its position
	// checkpoints the episode being left.
	s.persist(s.eng.Position(), s.eng.Duration(), prevIndex)

	if resumeAt == 0 {
		resumeAt = s.resumePoint(index)
	}

	s.logger.WithFields(logrus.Fields{
		"title":   s.data.Detail.Title,
		"episode": index,
	}).Info("Switching episode")

	s.eng.SwitchStream(url, s.displayTitle(index), s.data.Detail.Poster)
	s.overlay.Reset()

	s.eng.Once(engine.EventFirstPlayable, func() {
		s.onFirstPlayable(gen, resumeAt)
	})

	if preloaded != nil {
		s.applyCaptions(gen, preloaded)
	} else {
		s.spawn(func() {
			cues := s.captions.FetchForEpisode(context.Background(), s.data.Detail, index)
			s.applyCaptions(gen, cues)
		})
	}

	return nil
}

// resumePoint reads the stored checkpoint and returns its elapsed time
// when it belongs to the target episode and clears the resume floor
func (s *Session) resumePoint(index int) float64 {
	record, err := s.store.GetPlayRecord(s.source, s.id)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to read checkpoint for episode switch")
		return 0
	}
	if record == nil || record.EpisodeIndex != index || record.CurrentTime <= resumeFloor {
		return 0
	}
	return record.CurrentTime
}

// displayTitle composes the engine's on-screen title for an episode
func (s *Session) displayTitle(index int) string {
	detail := s.data.Detail
	if detail.IsMovie() {
		return detail.Title
	}
	return detail.Title + " " + detail.EpisodeTitle(index)
}

// onFirstPlayable completes a transition once the new stream is
// buffered: the machine returns to idle and the resume seek runs
func (s *Session) onFirstPlayable(gen int, resumeAt float64) {
	s.mu.Lock()
	if s.generation != gen || s.state == models.SessionStateClosed {
		s.mu.Unlock()
		return
	}
	s.state = models.SessionStateIdle
	s.saveLimiter.Reset()
	s.mu.Unlock()

	if resumeAt > 0 {
		target := clampSeek(resumeAt, s.eng.Duration())
		s.eng.Seek(target)
		s.eng.Notice("Resumed from " + utils.FormatTime(target))
	}
	s.eng.Play()
}

// applyCaptions loads a fetched caption track unless a later switch
// superseded it
func (s *Session) applyCaptions(gen int, cues []models.CaptionCue) {
	s.mu.Lock()
	stale := s.generation != gen || s.state == models.SessionStateClosed
	s.mu.Unlock()
	if stale {
		s.logger.Debug("Dropping caption track for a superseded episode")
		return
	}
	if len(cues) == 0 {
		s.overlay.Reset()
		return
	}
	s.overlay.Load(cues)
}

// handleTick runs the per-tick work while the session is idle: the
// skip-intro/outro check and the throttled checkpoint write. Decisions
// happen under the lock, engine calls after releasing it.
func (s *Session) handleTick() {
	s.mu.Lock()
	if s.state != models.SessionStateIdle {
		s.mu.Unlock()
		return
	}

	position := s.eng.Position()
	duration := s.eng.Duration()
	index := s.currentIndex

	skipTarget := -1.0
	advance := false
	if s.skipConfig.Enable && s.skipConfig.Valid() {
		switch {
		case s.skipConfig.IntroTime > 0 && position < s.skipConfig.IntroTime:
			if s.skipLimiter.Allow() {
				skipTarget = s.skipConfig.IntroTime
			}
		case s.skipConfig.OutroTime < 0 && duration > 0 && position >= duration+s.skipConfig.OutroTime:
			if s.skipLimiter.Allow() {
				advance = true
			}
		}
	}

	save := s.saveLimiter.Allow()
	s.mu.Unlock()

	if skipTarget >= 0 {
		s.eng.Seek(clampSeek(skipTarget, duration))
		s.eng.Notice("Skipped intro")
	}

	if advance && index+1 < len(s.data.Detail.Episodes) {
		s.eng.Notice("Skipping outro")
		if err := s.switchTo(index+1, 0, nil); err != nil {
			s.logger.WithError(err).Debug("Outro advance skipped")
		}
		return
	}

	if save {
		s.persist(position, duration, index)
	}
}

// handlePause checkpoints immediately so a paused-then-abandoned session
// still resumes where the viewer left it
func (s *Session) handlePause() {
	s.mu.Lock()
	if s.state != models.SessionStateIdle {
		s.mu.Unlock()
		return
	}
	index := s.currentIndex
	s.mu.Unlock()

	s.persist(s.eng.Position(), s.eng.Duration(), index)
}

// handleEnded checkpoints the finished episode and auto-advances after a
// short delay, unless this was the last episode
func (s *Session) handleEnded() {
	s.mu.Lock()
	if s.state != models.SessionStateIdle {
		s.mu.Unlock()
		return
	}
	index := s.currentIndex
	gen := s.generation
	s.mu.Unlock()

	s.persist(s.eng.Position(), s.eng.Duration(), index)

	if index+1 >= len(s.data.Detail.Episodes) {
		s.logger.WithField("title", s.data.Detail.Title).Info("Played to the end of the title")
		return
	}

	s.delay(autoAdvanceDelay, func() {
		s.mu.Lock()
		stale := s.generation != gen || s.state != models.SessionStateIdle
		s.mu.Unlock()
		if stale {
			return
		}
		if err := s.switchTo(index+1, 0, nil); err != nil {
			s.logger.WithError(err).Debug("Auto-advance skipped")
		}
	})
}

// HandleKey translates one keyboard event into a playback action
func (s *Session) HandleKey(event KeyEvent) {
	switch MapKey(event) {
	case ActionPrevEpisode:
		if err := s.PrevEpisode(); err != nil {
			s.logger.WithError(err).Debug("Episode step ignored")
		}
	case ActionNextEpisode:
		if err := s.NextEpisode(); err != nil {
			s.logger.WithError(err).Debug("Episode step ignored")
		}
	case ActionSeekBack:
		if position := s.eng.Position(); position > manualSeekGuard {
			s.eng.Seek(math.Max(0, position-seekStep))
		}
	case ActionSeekForward:
		position := s.eng.Position()
		duration := s.eng.Duration()
		if duration > 0 && position < duration-manualSeekGuard {
			s.eng.Seek(clampSeek(position+seekStep, duration))
		}
	case ActionVolumeUp:
		s.setVolume(s.eng.Volume() + volumeStep)
	case ActionVolumeDown:
		s.setVolume(s.eng.Volume() - volumeStep)
	case ActionTogglePlay:
		s.eng.Toggle()
	case ActionFullscreen:
		s.eng.SetFullscreen(!s.eng.Fullscreen())
	}
}

// setVolume applies a rounded, clamped volume and tells the viewer
func (s *Session) setVolume(volume float64) {
	volume = math.Round(volume*10) / 10
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	s.eng.SetVolume(volume)
	s.eng.Notice(fmt.Sprintf("Volume %d%%", int(volume*100)))
}

// UpdateSkipConfig replaces the session's skip windows. Invalid offsets
// are rejected so a bad write can never arm a runaway skip loop.
func (s *Session) UpdateSkipConfig(config models.SkipConfig) error {
	if !config.Valid() {
		return fmt.Errorf("skip config offsets out of range: intro=%v outro=%v", config.IntroTime, config.OutroTime)
	}
	s.mu.Lock()
	s.skipConfig = config
	s.skipLimiter.Reset()
	s.mu.Unlock()
	return nil
}

// MarkIntroHere sets the skip-intro boundary to the current position
func (s *Session) MarkIntroHere() models.SkipConfig {
	position := s.eng.Position()
	s.mu.Lock()
	s.skipConfig.IntroTime = position
	s.skipConfig.Enable = true
	config := s.skipConfig
	s.mu.Unlock()
	s.eng.Notice("Intro ends at " + utils.FormatTime(position))
	return config
}

// MarkOutroHere sets the skip-outro boundary to the current position,
// stored as a negative offset from the stream end
func (s *Session) MarkOutroHere() models.SkipConfig {
	position := s.eng.Position()
	duration := s.eng.Duration()
	s.mu.Lock()
	if duration > 0 && position < duration {
		s.skipConfig.OutroTime = position - duration
		s.skipConfig.Enable = true
	}
	config := s.skipConfig
	s.mu.Unlock()
	s.eng.Notice("Outro starts at " + utils.FormatTime(position))
	return config
}

// RewriteManifest filters a playlist fetched by the client through the
// session's stream adapter
func (s *Session) RewriteManifest(playlist string) string {
	return s.adapter.RewriteManifest(playlist)
}

// Status is a point-in-time snapshot of the session for the API
type Status struct {
	Source        string              `json:"source"`
	ID            string              `json:"id"`
	State         models.SessionState `json:"state"`
	Title         string              `json:"title"`
	EpisodeIndex  int                 `json:"episode_index"`
	TotalEpisodes int                 `json:"total_episodes"`
	Position      float64             `json:"position"`
	Duration      float64             `json:"duration"`
	Volume        float64             `json:"volume"`
}

// Status snapshots the session state
func (s *Session) Status() Status {
	s.mu.Lock()
	state := s.state
	index := s.currentIndex
	s.mu.Unlock()

	return Status{
		Source:        s.source,
		ID:            s.id,
		State:         state,
		Title:         s.data.Detail.Title,
		EpisodeIndex:  index,
		TotalEpisodes: len(s.data.Detail.Episodes),
		Position:      s.eng.Position(),
		Duration:      s.eng.Duration(),
		Volume:        s.eng.Volume(),
	}
}

// Close checkpoints the current position and tears the engine down. The
// session accepts no operations afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	if s.state == models.SessionStateClosed {
		s.mu.Unlock()
		return
	}
	index := s.currentIndex
	s.state = models.SessionStateClosed
	s.generation++
	s.mu.Unlock()

	s.persist(s.eng.Position(), s.eng.Duration(), index)
	s.eng.Destroy()

	s.logger.WithFields(logrus.Fields{
		"source": s.source,
		"id":     s.id,
	}).Info("Session closed")
}

// persist writes a checkpoint unless the position is below the savable
// floor or the duration is still unknown
func (s *Session) persist(position, duration float64, index int) {
	if position < models.MinSavableElapsed || duration <= 0 {
		return
	}

	detail := s.data.Detail
	record := &models.PlayRecord{
		Source:        s.source,
		ID:            s.id,
		Title:         detail.Title,
		Poster:        detail.Poster,
		Year:          detail.Year,
		EpisodeIndex:  index,
		TotalEpisodes: len(detail.Episodes),
		CurrentTime:   position,
		Duration:      duration,
	}
	if err := s.store.SavePlayRecord(record); err != nil {
		s.logger.WithError(err).Warn("Failed to save play record")
	}
}

// clampSeek keeps a seek target inside the stream, landing a few seconds
// before the end when the target would overshoot it
func clampSeek(target, duration float64) float64 {
	if target < 0 {
		target = 0
	}
	if duration > 0 && target >= duration-seekEndGuard {
		target = math.Max(0, duration-seekEndGuard)
	}
	return target
}
