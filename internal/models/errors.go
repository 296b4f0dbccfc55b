package models

import (
	"errors"
	"fmt"
)

// ErrUnknownSource means the requested catalog source key has no
// configuration. Fatal to session start.
var ErrUnknownSource = errors.New("unknown catalog source")

// ErrInvalidEpisode means an episode switch targeted an index with no
// stream URL. The transition aborts with no side effects.
var ErrInvalidEpisode = errors.New("invalid episode index")

// ErrSwitchInProgress means an episode switch was requested while another
// one was still in flight. No second switch may start until the first
// settles.
var ErrSwitchInProgress = errors.New("episode switch already in progress")

// ErrSessionClosed means an operation was attempted on a torn-down session
var ErrSessionClosed = errors.New("session is closed")

// UpstreamError wraps a title-detail fetch failure. Fatal to session
// start; there is no partial title detail.
type UpstreamError struct {
	Source string
	Err    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("catalog source %q: %v", e.Source, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
