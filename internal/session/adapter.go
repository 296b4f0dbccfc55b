package session

import (
	"github.com/sirupsen/logrus"
	"github.com/streambox/streambox/internal/engine"
	"github.com/streambox/streambox/internal/manifest"
	"github.com/streambox/streambox/internal/models"
)

// StreamPipeline is the recoverable loading surface of the stream
// engine. Implementations translate these calls into the client's
// actual loader.
type StreamPipeline interface {
	// StartLoad (re)starts fetching the current stream from scratch
	StartLoad() error
	// RecoverMedia attempts in-place recovery without a full reload
	RecoverMedia() error
	// FallbackDirect abandons the pipeline and plays the raw URL directly
	FallbackDirect()
}

// StreamAdapter owns manifest rewriting and fatal-error recovery for one
// session's stream pipeline
type StreamAdapter struct {
	pipeline StreamPipeline
	blockAds bool
	logger   *logrus.Logger
}

// NewStreamAdapter creates an adapter over a stream pipeline
func NewStreamAdapter(pipeline StreamPipeline, blockAds bool, logger *logrus.Logger) *StreamAdapter {
	return &StreamAdapter{
		pipeline: pipeline,
		blockAds: blockAds,
		logger:   logger,
	}
}

// RewriteManifest filters ad-break markers out of a fetched playlist when
// ad blocking is on. With ad blocking off the playlist passes through
// untouched.
func (a *StreamAdapter) RewriteManifest(playlist string) string {
	if !a.blockAds {
		return playlist
	}
	return manifest.FilterAds(playlist)
}

// HandleError reacts to a stream pipeline error. Non-fatal errors are
// logged and left to the engine's own retry. Fatal errors recover by
// class: network errors restart the load, media errors attempt in-place
// recovery, anything else falls back to direct playback.
func (a *StreamAdapter) HandleError(streamErr engine.StreamError) {
	entry := a.logger.WithFields(logrus.Fields{
		"class":  streamErr.Class,
		"detail": streamErr.Detail,
	})

	if !streamErr.Fatal {
		entry.Debug("Recoverable stream error")
		return
	}

	switch streamErr.Class {
	case models.StreamErrorNetwork:
		// One restart per fatal error; the engine's own retry policy
		// bounds the load attempts and re-raises on repeated failure.
		entry.Warn("Fatal network error, restarting stream load")
		if err := a.pipeline.StartLoad(); err != nil {
			entry.WithError(err).Warn("Stream restart unavailable")
		}
	case models.StreamErrorMedia:
		entry.Warn("Fatal media error, attempting recovery")
		if err := a.pipeline.RecoverMedia(); err != nil {
			entry.WithError(err).Error("Media recovery failed, falling back to direct playback")
			a.pipeline.FallbackDirect()
		}
	default:
		entry.Error("Unrecoverable stream error, falling back to direct playback")
		a.pipeline.FallbackDirect()
	}
}
