// Package storage provides abstractions for session-scoped data storage.
package storage

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mmynk/friendsplit/internal/models"
)

// ErrNotFound is returned (wrapped) when a lookup matches nothing.
var ErrNotFound = errors.New("not found")

// Store defines the interface for friend and expense storage operations.
// Every record belongs to a session; sessions never see each other's data.
// This abstraction allows swapping storage backends (memory, SQLite)
// without changing the ledger.
type Store interface {
	// CreateFriend appends a friend to the session's registry.
	// Insertion order is preserved by ListFriends. The ID must be set.
	CreateFriend(ctx context.Context, sessionID string, friend *models.Friend) error

	// GetFriend retrieves a friend by ID.
	// Returns an error wrapping ErrNotFound if the friend does not exist.
	GetFriend(ctx context.Context, sessionID, friendID string) (*models.Friend, error)

	// ListFriends returns the session's friends in insertion order.
	ListFriends(ctx context.Context, sessionID string) ([]models.Friend, error)

	// AdjustBalance adds delta to one friend's balance and returns the updated friend.
	// Returns an error wrapping ErrNotFound if the friend does not exist.
	AdjustBalance(ctx context.Context, sessionID, friendID string, delta decimal.Decimal) (*models.Friend, error)

	// CreateExpense records a submitted split. The ID is generated if empty.
	CreateExpense(ctx context.Context, sessionID string, expense *models.Expense) error

	// ListExpenses returns the expenses recorded against a friend, newest first.
	ListExpenses(ctx context.Context, sessionID, friendID string) ([]models.Expense, error)

	// DeleteSession discards everything stored for a session.
	DeleteSession(ctx context.Context, sessionID string) error

	// Close releases any resources held by the store.
	Close() error
}
