package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ZanzyTHEbar/assert-lib"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/draftwing/sketchfs/sketchfs/db"
	"github.com/draftwing/sketchfs/sketchfs/snapshot"
)

const defaultMaxSessions = 64

// Manager tracks the live sessions of a process, one per active project.
type Manager struct {
	mu            sync.Mutex
	sessions      map[uuid.UUID]*Session
	provider      db.ISnapshotProvider
	AssertHandler *assert.AssertHandler
	logger        *slog.Logger
	maxSessions   int
}

// ManagerOption customizes a Manager.
type ManagerOption func(*Manager)

// WithMaxSessions bounds the number of simultaneously open sessions.
func WithMaxSessions(n int) ManagerOption {
	return func(m *Manager) {
		m.maxSessions = n
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a session manager persisting through the given provider.
func NewManager(provider db.ISnapshotProvider, opts ...ManagerOption) *Manager {
	m := &Manager{
		sessions:      make(map[uuid.UUID]*Session),
		provider:      provider,
		AssertHandler: assert.NewAssertHandler(),
		logger:        slog.Default(),
		maxSessions:   defaultMaxSessions,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open creates and tracks a session over an empty tree.
func (m *Manager) Open(opts Options) (*Session, error) {
	if opts.Provider == nil {
		opts.Provider = m.provider
	}
	if opts.Logger == nil {
		opts.Logger = m.logger
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sessions) >= m.maxSessions {
		return nil, fmt.Errorf("session limit reached (%d)", m.maxSessions)
	}
	s := New(opts)
	m.sessions[s.ID] = s
	m.logger.Info("session opened", "session_id", s.ID, "active", len(m.sessions))
	return s, nil
}

// OpenFromSnapshot creates and tracks a session restored from a snapshot.
func (m *Manager) OpenFromSnapshot(snap *snapshot.Snapshot, opts Options) (*Session, error) {
	if opts.Provider == nil {
		opts.Provider = m.provider
	}
	if opts.Logger == nil {
		opts.Logger = m.logger
	}

	s, err := Restore(snap, opts)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sessions) >= m.maxSessions {
		return nil, fmt.Errorf("session limit reached (%d)", m.maxSessions)
	}
	m.sessions[s.ID] = s
	m.logger.Info("session restored", "session_id", s.ID, "entries", s.Tree().Len())
	return s, nil
}

// Get returns a tracked session by id.
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close ends a session, optionally persisting its final state first.
// Already-committed mutations stay in the exported snapshot; there is no
// rollback.
func (m *Manager) Close(id uuid.UUID, save bool) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("session %s not found", id)
	}
	if save {
		if _, err := s.Save(); err != nil {
			return err
		}
	}
	m.logger.Info("session closed", "session_id", id, "saved", save)
	return nil
}

// Len returns the number of tracked sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// ExportAll persists every tracked session concurrently. Sessions are owned
// by their own streams; ExportAll only reads committed tree state, so it is
// intended for shutdown or scheduled checkpoints when streams are quiet.
func (m *Manager) ExportAll(ctx context.Context) error {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	p := pool.New().WithContext(ctx).WithMaxGoroutines(4)
	for _, s := range sessions {
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := s.Save()
			return err
		})
	}
	if err := p.Wait(); err != nil {
		return fmt.Errorf("export all sessions: %w", err)
	}
	m.logger.Info("all sessions exported", "count", len(sessions))
	return nil
}
