package engine

import (
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/streambox/streambox/internal/models"
)

// CommandAction identifies one command queued for the rendering client
type CommandAction string

const (
	CommandSwitchStream  CommandAction = "switch-stream"
	CommandSeek          CommandAction = "seek"
	CommandPlay          CommandAction = "play"
	CommandPause         CommandAction = "pause"
	CommandToggle        CommandAction = "toggle"
	CommandSetVolume     CommandAction = "set-volume"
	CommandSetFullscreen CommandAction = "set-fullscreen"
	CommandNotice        CommandAction = "notice"
	CommandLoadCaptions  CommandAction = "load-captions"
	CommandResetCaptions CommandAction = "reset-captions"
	CommandRestartLoad   CommandAction = "restart-load"
	CommandRecoverMedia  CommandAction = "recover-media"
	CommandFallback      CommandAction = "fallback-direct"
	CommandDestroy       CommandAction = "destroy"
)

// Command is one queued instruction for the rendering client
type Command struct {
	Action CommandAction `json:"action"`

	URL    string `json:"url,omitempty"`
	Title  string `json:"title,omitempty"`
	Poster string `json:"poster,omitempty"`

	Seconds    float64 `json:"seconds,omitempty"`
	Volume     float64 `json:"volume,omitempty"`
	Fullscreen bool    `json:"fullscreen,omitempty"`
	Message    string  `json:"message,omitempty"`

	Cues []models.CaptionCue `json:"cues,omitempty"`
}

// Remote mirrors the rendering client's engine state and queues commands
// for it to drain. The client reports position/duration and lifecycle
// events upward; the orchestrator issues commands downward. Remote
// implements both Engine and Overlay.
type Remote struct {
	mu sync.Mutex

	position   float64
	duration   float64
	volume     float64
	fullscreen bool
	destroyed  bool

	commands []Command

	handlers     map[Event][]func()
	onceHandlers map[Event][]func()
	errHandlers  []func(StreamError)

	logger *logrus.Logger
}

var (
	_ Engine  = (*Remote)(nil)
	_ Overlay = (*Remote)(nil)
)

// NewRemote creates a remote engine handle with the default volume
func NewRemote(logger *logrus.Logger) *Remote {
	return &Remote{
		volume:       0.7,
		handlers:     make(map[Event][]func()),
		onceHandlers: make(map[Event][]func()),
		logger:       logger,
	}
}

// enqueue appends a command unless the handle is already destroyed
func (r *Remote) enqueue(cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed {
		return
	}
	r.commands = append(r.commands, cmd)
}

// DrainCommands returns and clears the pending command queue
func (r *Remote) DrainCommands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	commands := r.commands
	r.commands = nil
	return commands
}

// UpdateState mirrors the client-reported playback clock and fires a
// time tick
func (r *Remote) UpdateState(position, duration float64) {
	r.mu.Lock()
	if r.destroyed {
		r.mu.Unlock()
		return
	}
	r.position = position
	r.duration = duration
	r.mu.Unlock()

	r.Fire(EventTimeTick)
}

// Fire dispatches a client-reported lifecycle event to its handlers
func (r *Remote) Fire(event Event) {
	r.mu.Lock()
	if r.destroyed {
		r.mu.Unlock()
		return
	}
	handlers := append([]func(){}, r.handlers[event]...)
	once := r.onceHandlers[event]
	delete(r.onceHandlers, event)
	r.mu.Unlock()

	for _, handler := range handlers {
		handler()
	}
	for _, handler := range once {
		handler()
	}
}

// FireError dispatches a client-reported stream error
func (r *Remote) FireError(streamErr StreamError) {
	r.mu.Lock()
	if r.destroyed {
		r.mu.Unlock()
		return
	}
	handlers := append([]func(StreamError){}, r.errHandlers...)
	r.mu.Unlock()

	for _, handler := range handlers {
		handler(streamErr)
	}
}

// Engine implementation

func (r *Remote) SwitchStream(url, title, poster string) {
	r.enqueue(Command{Action: CommandSwitchStream, URL: url, Title: title, Poster: poster})
}

func (r *Remote) Seek(seconds float64) {
	r.mu.Lock()
	if !r.destroyed {
		r.position = seconds
	}
	r.mu.Unlock()
	r.enqueue(Command{Action: CommandSeek, Seconds: seconds})
}

func (r *Remote) Play() {
	r.enqueue(Command{Action: CommandPlay})
}

func (r *Remote) Pause() {
	r.enqueue(Command{Action: CommandPause})
}

func (r *Remote) Toggle() {
	r.enqueue(Command{Action: CommandToggle})
}

func (r *Remote) Position() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.position
}

func (r *Remote) Duration() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.duration
}

func (r *Remote) Volume() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.volume
}

func (r *Remote) SetVolume(volume float64) {
	r.mu.Lock()
	if !r.destroyed {
		r.volume = volume
	}
	r.mu.Unlock()
	r.enqueue(Command{Action: CommandSetVolume, Volume: volume})
}

func (r *Remote) Fullscreen() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fullscreen
}

func (r *Remote) SetFullscreen(on bool) {
	r.mu.Lock()
	if !r.destroyed {
		r.fullscreen = on
	}
	r.mu.Unlock()
	r.enqueue(Command{Action: CommandSetFullscreen, Fullscreen: on})
}

func (r *Remote) Notice(message string) {
	r.enqueue(Command{Action: CommandNotice, Message: message})
}

func (r *Remote) On(event Event, handler func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[event] = append(r.handlers[event], handler)
}

func (r *Remote) Once(event Event, handler func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onceHandlers[event] = append(r.onceHandlers[event], handler)
}

func (r *Remote) OnError(handler func(StreamError)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errHandlers = append(r.errHandlers, handler)
}

// Destroy queues a final destroy command and drops all handlers. The
// handle refuses further commands and events afterwards.
func (r *Remote) Destroy() {
	r.mu.Lock()
	if r.destroyed {
		r.mu.Unlock()
		return
	}
	r.commands = append(r.commands, Command{Action: CommandDestroy})
	r.destroyed = true
	r.handlers = make(map[Event][]func())
	r.onceHandlers = make(map[Event][]func())
	r.errHandlers = nil
	r.mu.Unlock()

	if r.logger != nil {
		r.logger.Debug("Engine handle destroyed")
	}
}

// Stream pipeline commands. The client's loader performs the actual
// recovery; the commands only direct it.

func (r *Remote) StartLoad() error {
	r.mu.Lock()
	destroyed := r.destroyed
	r.mu.Unlock()
	if destroyed {
		return ErrDestroyed
	}
	r.enqueue(Command{Action: CommandRestartLoad})
	return nil
}

func (r *Remote) RecoverMedia() error {
	r.mu.Lock()
	destroyed := r.destroyed
	r.mu.Unlock()
	if destroyed {
		return ErrDestroyed
	}
	r.enqueue(Command{Action: CommandRecoverMedia})
	return nil
}

func (r *Remote) FallbackDirect() {
	r.enqueue(Command{Action: CommandFallback})
}

// Overlay implementation

func (r *Remote) Load(cues []models.CaptionCue) {
	r.enqueue(Command{Action: CommandLoadCaptions, Cues: cues})
}

func (r *Remote) Reset() {
	r.enqueue(Command{Action: CommandResetCaptions})
}
