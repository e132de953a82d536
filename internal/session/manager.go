// Package session keeps one builder instance per connected client.
package session

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/grid-builder/backend/internal/builder"
	"github.com/grid-builder/backend/internal/events"
	"github.com/grid-builder/backend/internal/geometry"
	"github.com/grid-builder/backend/internal/logging"
	"github.com/grid-builder/backend/internal/models"
	"github.com/grid-builder/backend/internal/registry"
)

// DefaultMaxSessions limits concurrent builder instances to bound memory.
const DefaultMaxSessions = 10

// SessionMaxAge is how long an idle session is kept before cleanup.
const SessionMaxAge = 30 * time.Minute

// SessionKeepAliveWindow protects sessions touched within this window from cleanup.
const SessionKeepAliveWindow = 5 * time.Minute

// ErrTooManySessions is returned when every slot holds a recently used session.
var ErrTooManySessions = errors.New("session limit reached")

// Options configures the builders created for new sessions.
type Options struct {
	MaxSessions     int
	DefaultCanvases []string
	HistoryLimit    int
	Debounce        *events.DebouncePolicy
	Registry        *registry.Registry
	SizeCache       *geometry.SizeCache
	BeforeDelete    builder.BeforeDeleteHook
	Logger          logging.Logger
}

// Manager handles active builder sessions.
type Manager struct {
	sessions map[string]*SessionState
	mu       sync.RWMutex
	opts     Options
	log      logging.Logger
}

// SessionState holds the session metadata and its builder.
type SessionState struct {
	Session      *models.BuilderSession
	Builder      *builder.Builder
	LastAccessed time.Time
}

// NewManager creates a session manager. Builders share one registry and one
// container-width cache.
func NewManager(opts Options) *Manager {
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard{}
	}
	if opts.Registry == nil {
		opts.Registry = registry.NewDefault(opts.Logger)
	}
	if opts.SizeCache == nil {
		opts.SizeCache = geometry.NewSizeCache()
	}
	if len(opts.DefaultCanvases) == 0 {
		opts.DefaultCanvases = []string{"main"}
	}
	return &Manager{
		sessions: make(map[string]*SessionState),
		opts:     opts,
		log:      opts.Logger,
	}
}

// Registry returns the component registry shared by every session.
func (m *Manager) Registry() *registry.Registry { return m.opts.Registry }

// StartSession creates a builder with the given canvases, or the default
// ones when none are given.
func (m *Manager) StartSession(name string, canvases []string) (*models.BuilderSession, error) {
	m.cleanupOldSessionsIfNeeded()

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) >= m.opts.MaxSessions {
		return nil, ErrTooManySessions
	}
	if len(canvases) == 0 {
		canvases = m.opts.DefaultCanvases
	}

	sessionID := uuid.New().String()
	b := builder.New(builder.Options{
		InstanceID:   sessionID,
		Canvases:     canvases,
		Registry:     m.opts.Registry,
		HistoryLimit: m.opts.HistoryLimit,
		Debounce:     m.opts.Debounce,
		SizeCache:    m.opts.SizeCache,
		BeforeDelete: m.opts.BeforeDelete,
		Logger:       m.opts.Logger,
	})
	state := &SessionState{
		Session:      models.NewBuilderSession(sessionID, name),
		Builder:      b,
		LastAccessed: time.Now(),
	}
	m.sessions[sessionID] = state

	m.log.Infof("started session %s with %d canvases", shortID(sessionID), len(canvases))
	return state.snapshot(), nil
}

// snapshot returns a copy of the metadata with live counters.
func (s *SessionState) snapshot() *models.BuilderSession {
	out := *s.Session
	out.LastAccessed = s.LastAccessed
	out.CanvasCount, out.ItemCount = s.Builder.Counts()
	out.CanUndo = s.Builder.CanUndo()
	out.CanRedo = s.Builder.CanRedo()
	return &out
}

// cleanupOldSessionsIfNeeded evicts the least recently used idle session
// when at capacity.
func (m *Manager) cleanupOldSessionsIfNeeded() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) < m.opts.MaxSessions {
		return
	}

	keepAliveCutoff := time.Now().Add(-SessionKeepAliveWindow)
	var oldestID string
	var oldest time.Time
	for id, state := range m.sessions {
		if state.LastAccessed.After(keepAliveCutoff) {
			continue
		}
		if oldestID == "" || state.LastAccessed.Before(oldest) {
			oldestID, oldest = id, state.LastAccessed
		}
	}
	if oldestID == "" {
		return
	}
	m.closeLocked(oldestID)
	m.log.Infof("evicted idle session %s to free a slot", shortID(oldestID))
}

// CleanupOldSessions removes sessions idle for longer than maxAge, but keeps
// sessions accessed within SessionKeepAliveWindow.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-maxAge)
	keepAliveCutoff := now.Add(-SessionKeepAliveWindow)

	removed := 0
	for id, state := range m.sessions {
		if state.LastAccessed.After(keepAliveCutoff) {
			continue
		}
		if state.LastAccessed.Before(cutoff) {
			m.closeLocked(id)
			removed++
			m.log.Infof("cleaned up aged session %s (last accessed: %s ago)",
				shortID(id), now.Sub(state.LastAccessed).Round(time.Second))
		}
	}
	return removed
}

// RunCleanup calls CleanupOldSessions every interval until ctx is done.
func (m *Manager) RunCleanup(ctx context.Context, interval, maxAge time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.CleanupOldSessions(maxAge)
		}
	}
}

// GetSession returns a session by ID.
func (m *Manager) GetSession(id string) (*models.BuilderSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	return state.snapshot(), true
}

// GetBuilder returns the builder of a session and marks it as used.
func (m *Manager) GetBuilder(id string) (*builder.Builder, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	state.LastAccessed = time.Now()
	return state.Builder, true
}

// ListSessions returns all sessions, most recently used first.
func (m *Manager) ListSessions() []*models.BuilderSession {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]*models.BuilderSession, 0, len(m.sessions))
	for _, state := range m.sessions {
		list = append(list, state.snapshot())
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].LastAccessed.After(list[j].LastAccessed)
	})
	return list
}

// TouchSession updates the LastAccessed timestamp for a session so it is
// not cleaned up while a client is still editing.
func (m *Manager) TouchSession(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[id]
	if !ok {
		return false
	}
	state.LastAccessed = time.Now()
	return true
}

// DeleteSession closes and forgets a session.
func (m *Manager) DeleteSession(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return false
	}
	m.closeLocked(id)
	return true
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close shuts down every session.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.sessions {
		m.closeLocked(id)
	}
}

func (m *Manager) closeLocked(id string) {
	if state, ok := m.sessions[id]; ok {
		state.Builder.Close()
		delete(m.sessions, id)
	}
}

// shortID safely truncates an ID for logging.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
