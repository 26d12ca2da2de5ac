package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/friendsplit/internal/ledger"
	"github.com/mmynk/friendsplit/internal/storage"
	"github.com/mmynk/friendsplit/internal/token"
)

// ErrSessionNotFound is returned for sessions that ended, expired, or never existed.
var ErrSessionNotFound = errors.New("session not found")

// SessionObserver receives ledger events plus the live session count.
type SessionObserver interface {
	ledger.Observer
	SessionsActive(n int)
}

// SessionManager owns the live sessions. Calls on one session are serialized;
// different sessions proceed independently.
type SessionManager struct {
	store    storage.Store
	tokens   *token.Manager
	idleTTL  time.Duration
	observer SessionObserver
	opts     []ledger.Option
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*liveSession
}

type liveSession struct {
	mu       sync.Mutex
	session  *ledger.Session
	closed   bool
	lastSeen atomic.Int64 // unix nanoseconds
}

// NewSessionManager creates a manager whose sessions live in store and are
// reaped after idleTTL without activity. observer may be nil.
func NewSessionManager(store storage.Store, tokens *token.Manager, idleTTL time.Duration, observer SessionObserver, opts ...ledger.Option) *SessionManager {
	if observer != nil {
		opts = append([]ledger.Option{ledger.WithObserver(observer)}, opts...)
	}
	return &SessionManager{
		store:    store,
		tokens:   tokens,
		idleTTL:  idleTTL,
		observer: observer,
		opts:     opts,
		now:      time.Now,
		sessions: make(map[string]*liveSession),
	}
}

// Start creates an empty session and a token that identifies it.
func (m *SessionManager) Start(ctx context.Context) (id, tok string, expiresAt time.Time, err error) {
	id = uuid.New().String()
	tok, expiresAt, err = m.tokens.Generate(id)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("start session: %w", err)
	}

	ls := &liveSession{session: ledger.NewSession(m.store, id, m.opts...)}
	ls.lastSeen.Store(m.now().UnixNano())

	m.mu.Lock()
	m.sessions[id] = ls
	n := len(m.sessions)
	m.mu.Unlock()

	m.reportActive(n)
	slog.Info("Session started", "session_id", id)
	return id, tok, expiresAt, nil
}

// With runs fn with exclusive access to the session.
func (m *SessionManager) With(ctx context.Context, id string, fn func(*ledger.Session) error) error {
	m.mu.Lock()
	ls, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.closed {
		return ErrSessionNotFound
	}
	ls.lastSeen.Store(m.now().UnixNano())
	return fn(ls.session)
}

// End discards a session and everything stored for it.
func (m *SessionManager) End(ctx context.Context, id string) error {
	m.mu.Lock()
	ls, ok := m.sessions[id]
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	m.reportActive(n)

	if err := m.close(ctx, ls); err != nil {
		return err
	}
	slog.Info("Session ended", "session_id", id)
	return nil
}

func (m *SessionManager) close(ctx context.Context, ls *liveSession) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.closed {
		return nil
	}
	ls.closed = true
	if err := ls.session.Close(ctx); err != nil {
		return fmt.Errorf("close session %s: %w", ls.session.ID(), err)
	}
	return nil
}

// Reap ends every session idle for longer than the idle TTL and returns how
// many were ended.
func (m *SessionManager) Reap(ctx context.Context) int {
	cutoff := m.now().Add(-m.idleTTL).UnixNano()

	m.mu.Lock()
	var expired []*liveSession
	for id, ls := range m.sessions {
		if ls.lastSeen.Load() < cutoff {
			expired = append(expired, ls)
			delete(m.sessions, id)
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	if len(expired) == 0 {
		return 0
	}
	m.reportActive(n)

	for _, ls := range expired {
		if err := m.close(ctx, ls); err != nil {
			slog.Warn("Failed to discard expired session", "error", err)
		}
	}
	slog.Info("Reaped idle sessions", "count", len(expired), "active", n)
	return len(expired)
}

// Run reaps idle sessions every interval until ctx is done.
func (m *SessionManager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Reap(ctx)
		}
	}
}

// CloseAll ends every session. Used at shutdown.
func (m *SessionManager) CloseAll(ctx context.Context) {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*liveSession)
	m.mu.Unlock()

	for _, ls := range all {
		if err := m.close(ctx, ls); err != nil {
			slog.Warn("Failed to discard session", "error", err)
		}
	}
	m.reportActive(0)
}

// Len returns the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *SessionManager) reportActive(n int) {
	if m.observer != nil {
		m.observer.SessionsActive(n)
	}
}
