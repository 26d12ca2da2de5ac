// Package memory provides an in-process implementation of the storage.Store interface.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/friendsplit/internal/models"
	"github.com/mmynk/friendsplit/internal/storage"
)

// Ensure MemoryStore implements storage.Store
var _ storage.Store = (*MemoryStore)(nil)

// MemoryStore implements storage.Store with plain maps and slices.
// Everything is lost when the process exits.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionData
}

type sessionData struct {
	friends  []*models.Friend
	index    map[string]int
	expenses []models.Expense
}

// New creates an empty MemoryStore.
func New() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*sessionData)}
}

// Close drops all sessions.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.sessions)
	return nil
}

// session returns the data for a session, creating it when create is true.
// Callers must hold the lock.
func (s *MemoryStore) session(sessionID string, create bool) *sessionData {
	data, ok := s.sessions[sessionID]
	if !ok && create {
		data = &sessionData{index: make(map[string]int)}
		s.sessions[sessionID] = data
	}
	return data
}

// CreateFriend appends a friend to the session's registry.
func (s *MemoryStore) CreateFriend(ctx context.Context, sessionID string, friend *models.Friend) error {
	if friend.ID == "" {
		return fmt.Errorf("friend ID required")
	}
	if friend.CreatedAt == 0 {
		friend.CreatedAt = time.Now().Unix()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.session(sessionID, true)
	if _, exists := data.index[friend.ID]; exists {
		return fmt.Errorf("friend already exists: %s", friend.ID)
	}

	stored := *friend
	data.index[friend.ID] = len(data.friends)
	data.friends = append(data.friends, &stored)
	return nil
}

// GetFriend retrieves a friend by ID.
func (s *MemoryStore) GetFriend(ctx context.Context, sessionID, friendID string) (*models.Friend, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := s.lookup(sessionID, friendID)
	if err != nil {
		return nil, err
	}
	out := *f
	return &out, nil
}

func (s *MemoryStore) lookup(sessionID, friendID string) (*models.Friend, error) {
	data := s.session(sessionID, false)
	if data == nil {
		return nil, fmt.Errorf("friend %s: %w", friendID, storage.ErrNotFound)
	}
	i, ok := data.index[friendID]
	if !ok {
		return nil, fmt.Errorf("friend %s: %w", friendID, storage.ErrNotFound)
	}
	return data.friends[i], nil
}

// ListFriends returns copies of the session's friends in insertion order.
func (s *MemoryStore) ListFriends(ctx context.Context, sessionID string) ([]models.Friend, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data := s.session(sessionID, false)
	if data == nil {
		return nil, nil
	}
	friends := make([]models.Friend, len(data.friends))
	for i, f := range data.friends {
		friends[i] = *f
	}
	return friends, nil
}

// AdjustBalance adds delta to a friend's balance.
func (s *MemoryStore) AdjustBalance(ctx context.Context, sessionID, friendID string, delta decimal.Decimal) (*models.Friend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.lookup(sessionID, friendID)
	if err != nil {
		return nil, err
	}
	f.Balance = f.Balance.Add(delta)
	out := *f
	return &out, nil
}

// CreateExpense records a submitted split.
func (s *MemoryStore) CreateExpense(ctx context.Context, sessionID string, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lookup(sessionID, expense.FriendID); err != nil {
		return err
	}
	data := s.session(sessionID, false)
	data.expenses = append(data.expenses, *expense)
	return nil
}

// ListExpenses returns a friend's expenses, newest first.
func (s *MemoryStore) ListExpenses(ctx context.Context, sessionID, friendID string) ([]models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data := s.session(sessionID, false)
	if data == nil {
		return nil, nil
	}
	var expenses []models.Expense
	for _, e := range data.expenses {
		if e.FriendID == friendID {
			expenses = append(expenses, e)
		}
	}
	slices.Reverse(expenses)
	return expenses, nil
}

// DeleteSession discards a session's friends and expenses.
func (s *MemoryStore) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
