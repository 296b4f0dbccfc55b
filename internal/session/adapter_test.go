package session

import (
	"errors"
	"testing"

	"github.com/streambox/streambox/internal/engine"
	"github.com/streambox/streambox/internal/models"
)

type fakePipeline struct {
	startErr   error
	recoverErr error
	starts     int
	recovers   int
	fallbacks  int
}

func (p *fakePipeline) StartLoad() error {
	p.starts++
	return p.startErr
}

func (p *fakePipeline) RecoverMedia() error {
	p.recovers++
	return p.recoverErr
}

func (p *fakePipeline) FallbackDirect() { p.fallbacks++ }

func TestRewriteManifestFiltersWhenBlocking(t *testing.T) {
	playlist := "#EXTM3U\n#EXT-X-DISCONTINUITY\n#EXTINF:10,\nseg1.ts\n"

	blocking := NewStreamAdapter(&fakePipeline{}, true, testLogger())
	if got := blocking.RewriteManifest(playlist); got == playlist {
		t.Error("expected ad markers removed when blocking is on")
	}

	passthrough := NewStreamAdapter(&fakePipeline{}, false, testLogger())
	if got := passthrough.RewriteManifest(playlist); got != playlist {
		t.Errorf("expected untouched playlist when blocking is off, got %q", got)
	}
}

func TestHandleErrorNonFatalIgnored(t *testing.T) {
	pipeline := &fakePipeline{}
	adapter := NewStreamAdapter(pipeline, true, testLogger())

	adapter.HandleError(engine.StreamError{Fatal: false, Class: models.StreamErrorNetwork})

	if pipeline.starts+pipeline.recovers+pipeline.fallbacks != 0 {
		t.Errorf("non-fatal errors must not trigger recovery: %+v", pipeline)
	}
}

func TestHandleErrorNetworkRestartsLoad(t *testing.T) {
	pipeline := &fakePipeline{}
	adapter := NewStreamAdapter(pipeline, true, testLogger())

	adapter.HandleError(engine.StreamError{Fatal: true, Class: models.StreamErrorNetwork})

	if pipeline.starts != 1 {
		t.Errorf("expected one load restart, got %d", pipeline.starts)
	}
	if pipeline.fallbacks != 0 {
		t.Error("successful restart must not fall back")
	}
}

func TestHandleErrorNetworkRestartsOncePerError(t *testing.T) {
	pipeline := &fakePipeline{}
	adapter := NewStreamAdapter(pipeline, true, testLogger())

	adapter.HandleError(engine.StreamError{Fatal: true, Class: models.StreamErrorNetwork})
	adapter.HandleError(engine.StreamError{Fatal: true, Class: models.StreamErrorNetwork})

	if pipeline.starts != 2 {
		t.Errorf("each fatal network error restarts exactly once, got %d", pipeline.starts)
	}
	if pipeline.fallbacks != 0 {
		t.Error("network errors must not fall back to direct playback")
	}
}

func TestHandleErrorNetworkRestartFailureDoesNotFallBack(t *testing.T) {
	pipeline := &fakePipeline{startErr: engine.ErrDestroyed}
	adapter := NewStreamAdapter(pipeline, true, testLogger())

	adapter.HandleError(engine.StreamError{Fatal: true, Class: models.StreamErrorNetwork})

	if pipeline.starts != 1 {
		t.Errorf("expected a single restart attempt, got %d", pipeline.starts)
	}
	if pipeline.fallbacks != 0 {
		t.Error("a destroyed handle has nothing to fall back to")
	}
}

func TestHandleErrorMediaRecovers(t *testing.T) {
	pipeline := &fakePipeline{}
	adapter := NewStreamAdapter(pipeline, true, testLogger())

	adapter.HandleError(engine.StreamError{Fatal: true, Class: models.StreamErrorMedia})

	if pipeline.recovers != 1 {
		t.Errorf("expected one media recovery, got %d", pipeline.recovers)
	}
	if pipeline.fallbacks != 0 {
		t.Error("successful recovery must not fall back")
	}
}

func TestHandleErrorMediaFallsBackOnFailedRecovery(t *testing.T) {
	pipeline := &fakePipeline{recoverErr: errors.New("decoder wedged")}
	adapter := NewStreamAdapter(pipeline, true, testLogger())

	adapter.HandleError(engine.StreamError{Fatal: true, Class: models.StreamErrorMedia})

	if pipeline.fallbacks != 1 {
		t.Errorf("expected fallback after failed recovery, got %d", pipeline.fallbacks)
	}
}

func TestHandleErrorOtherFallsBackDirectly(t *testing.T) {
	pipeline := &fakePipeline{}
	adapter := NewStreamAdapter(pipeline, true, testLogger())

	adapter.HandleError(engine.StreamError{Fatal: true, Class: models.StreamErrorOther})

	if pipeline.fallbacks != 1 {
		t.Errorf("expected direct fallback, got %d", pipeline.fallbacks)
	}
	if pipeline.starts != 0 || pipeline.recovers != 0 {
		t.Errorf("unclassified errors must not retry: %+v", pipeline)
	}
}
