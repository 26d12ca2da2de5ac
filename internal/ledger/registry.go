package ledger

import (
	"context"
	"fmt"
	"iter"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/mmynk/friendsplit/internal/models"
	"github.com/mmynk/friendsplit/internal/storage"
)

// Registry is the ordered collection of one session's friends.
type Registry struct {
	store     storage.Store
	sessionID string
}

// NewRegistry returns the registry of sessionID backed by store.
func NewRegistry(store storage.Store, sessionID string) *Registry {
	return &Registry{store: store, sessionID: sessionID}
}

// Add appends friend to the end of the registry.
// Callers must not reuse an ID; the store rejects duplicates.
func (r *Registry) Add(ctx context.Context, friend *models.Friend) error {
	if err := r.store.CreateFriend(ctx, r.sessionID, friend); err != nil {
		return fmt.Errorf("add friend: %w", err)
	}
	return nil
}

// Get returns the friend with the given ID.
func (r *Registry) Get(ctx context.Context, id string) (*models.Friend, error) {
	return r.store.GetFriend(ctx, r.sessionID, id)
}

// AdjustBalance adds delta to exactly one friend's balance.
// It fails with an error wrapping storage.ErrNotFound if id is unknown.
func (r *Registry) AdjustBalance(ctx context.Context, id string, delta decimal.Decimal) (*models.Friend, error) {
	friend, err := r.store.AdjustBalance(ctx, r.sessionID, id, delta)
	if err != nil {
		return nil, fmt.Errorf("adjust balance: %w", err)
	}
	return friend, nil
}

// Friends returns the friends in insertion order. The sequence iterates a
// snapshot taken at call time and can be ranged over any number of times.
func (r *Registry) Friends(ctx context.Context) (iter.Seq[models.Friend], error) {
	friends, err := r.store.ListFriends(ctx, r.sessionID)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	return slices.Values(friends), nil
}

// RecordExpense stores the record of a submitted split.
func (r *Registry) RecordExpense(ctx context.Context, expense *models.Expense) error {
	return r.store.CreateExpense(ctx, r.sessionID, expense)
}

// Expenses lists the splits recorded against a friend, newest first.
func (r *Registry) Expenses(ctx context.Context, friendID string) ([]models.Expense, error) {
	if _, err := r.Get(ctx, friendID); err != nil {
		return nil, err
	}
	return r.store.ListExpenses(ctx, r.sessionID, friendID)
}

// Discard removes everything the registry holds.
func (r *Registry) Discard(ctx context.Context) error {
	return r.store.DeleteSession(ctx, r.sessionID)
}
