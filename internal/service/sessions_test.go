package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmynk/friendsplit/internal/ledger"
	"github.com/mmynk/friendsplit/internal/models"
	"github.com/mmynk/friendsplit/internal/storage/memory"
	"github.com/mmynk/friendsplit/internal/token"
)

type countingObserver struct {
	active []int
}

func (o *countingObserver) FriendAdded()                {}
func (o *countingObserver) SplitSubmitted(models.Payer) {}
func (o *countingObserver) Rejected(string, string)     {}
func (o *countingObserver) SessionsActive(n int)        { o.active = append(o.active, n) }

func newTestManager(t *testing.T, idleTTL time.Duration) (*SessionManager, *countingObserver) {
	t.Helper()
	store := memory.New()
	t.Cleanup(func() { store.Close() })
	observer := &countingObserver{}
	return NewSessionManager(store, token.NewManager("secret", time.Hour), idleTTL, observer), observer
}

func TestSessionManager_StartAndWith(t *testing.T) {
	m, observer := newTestManager(t, time.Hour)
	ctx := context.Background()

	id, tok, expiresAt, err := m.Start(ctx)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if id == "" || tok == "" {
		t.Fatalf("Start returned id %q token %q", id, tok)
	}
	if !expiresAt.After(time.Now()) {
		t.Errorf("expiresAt = %v, want in the future", expiresAt)
	}

	claims, err := token.NewManager("secret", time.Hour).Validate(tok)
	if err != nil {
		t.Fatalf("token does not validate: %v", err)
	}
	if claims.SessionID != id {
		t.Errorf("token session = %q, want %q", claims.SessionID, id)
	}

	err = m.With(ctx, id, func(s *ledger.Session) error {
		if s.ID() != id {
			t.Errorf("session ID = %q, want %q", s.ID(), id)
		}
		_, err := s.SubmitAddFriend(ctx, "Ana", ledger.DefaultAvatarURL)
		return err
	})
	if err != nil {
		t.Fatalf("With failed: %v", err)
	}

	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
	if len(observer.active) == 0 || observer.active[len(observer.active)-1] != 1 {
		t.Errorf("active sessions reported %v, want last 1", observer.active)
	}
}

func TestSessionManager_SessionsAreIsolated(t *testing.T) {
	m, _ := newTestManager(t, time.Hour)
	ctx := context.Background()

	a, _, _, err := m.Start(ctx)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	b, _, _, err := m.Start(ctx)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if err := m.With(ctx, a, func(s *ledger.Session) error {
		_, err := s.SubmitAddFriend(ctx, "Ana", ledger.DefaultAvatarURL)
		return err
	}); err != nil {
		t.Fatalf("With failed: %v", err)
	}

	err = m.With(ctx, b, func(s *ledger.Session) error {
		snap, err := s.Snapshot(ctx)
		if err != nil {
			return err
		}
		if len(snap.Friends) != 0 {
			t.Errorf("session b sees %d friends, want 0", len(snap.Friends))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("With failed: %v", err)
	}
}

func TestSessionManager_End(t *testing.T) {
	m, _ := newTestManager(t, time.Hour)
	ctx := context.Background()

	id, _, _, err := m.Start(ctx)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := m.End(ctx, id); err != nil {
		t.Fatalf("End failed: %v", err)
	}

	if err := m.With(ctx, id, func(*ledger.Session) error { return nil }); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("With after End = %v, want ErrSessionNotFound", err)
	}
	if err := m.End(ctx, id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second End = %v, want ErrSessionNotFound", err)
	}
	if err := m.With(ctx, "unknown", func(*ledger.Session) error { return nil }); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("With unknown = %v, want ErrSessionNotFound", err)
	}
}

func TestSessionManager_Reap(t *testing.T) {
	m, observer := newTestManager(t, 10*time.Minute)
	ctx := context.Background()

	now := time.Unix(1_700_000_000, 0)
	m.now = func() time.Time { return now }

	idle, _, _, err := m.Start(ctx)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	busy, _, _, err := m.Start(ctx)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	now = now.Add(8 * time.Minute)
	if err := m.With(ctx, busy, func(*ledger.Session) error { return nil }); err != nil {
		t.Fatalf("With failed: %v", err)
	}

	now = now.Add(5 * time.Minute)
	if got := m.Reap(ctx); got != 1 {
		t.Fatalf("Reap() = %d, want 1", got)
	}
	if err := m.With(ctx, idle, func(*ledger.Session) error { return nil }); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("idle session survived reaping: %v", err)
	}
	if err := m.With(ctx, busy, func(*ledger.Session) error { return nil }); err != nil {
		t.Errorf("busy session was reaped: %v", err)
	}
	if last := observer.active[len(observer.active)-1]; last != 1 {
		t.Errorf("active sessions = %d, want 1", last)
	}

	if got := m.Reap(ctx); got != 0 {
		t.Errorf("second Reap() = %d, want 0", got)
	}
}

func TestSessionManager_CloseAll(t *testing.T) {
	m, observer := newTestManager(t, time.Hour)
	ctx := context.Background()

	for range 3 {
		if _, _, _, err := m.Start(ctx); err != nil {
			t.Fatalf("Start failed: %v", err)
		}
	}
	m.CloseAll(ctx)

	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
	if last := observer.active[len(observer.active)-1]; last != 0 {
		t.Errorf("active sessions = %d, want 0", last)
	}
}
