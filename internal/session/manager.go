package session

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/streambox/streambox/internal/engine"
	"github.com/streambox/streambox/internal/models"
)

// Manager owns the single live playback session. Opening a title tears
// the previous session down first, so at most one engine handle exists
// at any time.
type Manager struct {
	mu sync.Mutex

	loader   *Loader
	captions CaptionFetcher
	db       *models.Database
	blockAds bool
	logger   *logrus.Logger

	current *Session
	handle  *engine.Remote
}

// NewManager creates a session manager
func NewManager(loader *Loader, captions CaptionFetcher, db *models.Database, blockAds bool, logger *logrus.Logger) *Manager {
	return &Manager{
		loader:   loader,
		captions: captions,
		db:       db,
		blockAds: blockAds,
		logger:   logger,
	}
}

// Open starts a session for a (source, id) pair, replacing any session
// already running
func (m *Manager) Open(ctx context.Context, sourceKey, id string) (*Session, error) {
	data, err := m.loader.Load(ctx, sourceKey, id)
	if err != nil {
		return nil, err
	}

	skipConfig, err := m.db.GetSkipConfig()
	if err != nil {
		m.logger.WithError(err).Warn("Failed to load skip config, skipping disabled")
		skipConfig = models.SkipConfig{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// The engine handle is exclusive: the previous session releases its
	// handle before the replacement handle exists.
	if m.current != nil {
		m.current.Close()
		m.current = nil
		m.handle = nil
	}

	handle := engine.NewRemote(m.logger)
	adapter := NewStreamAdapter(handle, m.blockAds, m.logger)
	session := NewSession(sourceKey, id, data, handle, handle, adapter, m.captions, m.db, skipConfig, m.logger)

	if err := session.Start(); err != nil {
		session.Close()
		return nil, err
	}

	m.current = session
	m.handle = handle
	return session, nil
}

// Current returns the live session and its engine handle, or false when
// no session is running
func (m *Manager) Current() (*Session, *engine.Remote, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil, nil, false
	}
	return m.current, m.handle, true
}

// Close tears down the live session if one is running
func (m *Manager) Close() {
	m.mu.Lock()
	session := m.current
	m.current = nil
	m.handle = nil
	m.mu.Unlock()

	if session != nil {
		session.Close()
	}
}
