// Package storagetest holds behaviour tests shared by every storage.Store implementation.
package storagetest

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/friendsplit/internal/models"
	"github.com/mmynk/friendsplit/internal/storage"
)

// Run exercises a store created by newStore. Each subtest gets a fresh store.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	ctx := context.Background()

	t.Run("CreateFriend keeps insertion order", func(t *testing.T) {
		store := newStore(t)
		for _, id := range []string{"c", "a", "b"} {
			if err := store.CreateFriend(ctx, "s1", friend(id)); err != nil {
				t.Fatalf("CreateFriend(%s) failed: %v", id, err)
			}
		}

		friends, err := store.ListFriends(ctx, "s1")
		if err != nil {
			t.Fatalf("ListFriends failed: %v", err)
		}
		if len(friends) != 3 {
			t.Fatalf("expected 3 friends, got %d", len(friends))
		}
		for i, want := range []string{"c", "a", "b"} {
			if friends[i].ID != want {
				t.Errorf("friends[%d].ID = %s, want %s", i, friends[i].ID, want)
			}
			if !friends[i].Balance.IsZero() {
				t.Errorf("friends[%d].Balance = %s, want 0", i, friends[i].Balance)
			}
		}
	})

	t.Run("CreateFriend sets CreatedAt", func(t *testing.T) {
		store := newStore(t)
		f := friend("a")
		if err := store.CreateFriend(ctx, "s1", f); err != nil {
			t.Fatalf("CreateFriend failed: %v", err)
		}
		if f.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("CreateFriend rejects duplicate ID", func(t *testing.T) {
		store := newStore(t)
		if err := store.CreateFriend(ctx, "s1", friend("a")); err != nil {
			t.Fatalf("CreateFriend failed: %v", err)
		}
		if err := store.CreateFriend(ctx, "s1", friend("a")); err == nil {
			t.Error("Expected error for duplicate friend ID, got nil")
		}
	})

	t.Run("GetFriend returns ErrNotFound", func(t *testing.T) {
		store := newStore(t)
		_, err := store.GetFriend(ctx, "s1", "missing")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Sessions are isolated", func(t *testing.T) {
		store := newStore(t)
		if err := store.CreateFriend(ctx, "s1", friend("a")); err != nil {
			t.Fatalf("CreateFriend failed: %v", err)
		}

		if _, err := store.GetFriend(ctx, "s2", "a"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound from other session, got %v", err)
		}
		friends, err := store.ListFriends(ctx, "s2")
		if err != nil {
			t.Fatalf("ListFriends failed: %v", err)
		}
		if len(friends) != 0 {
			t.Errorf("expected 0 friends in other session, got %d", len(friends))
		}
		if _, err := store.AdjustBalance(ctx, "s2", "a", decimal.NewFromInt(5)); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound adjusting other session, got %v", err)
		}
	})

	t.Run("AdjustBalance adds delta to one friend only", func(t *testing.T) {
		store := newStore(t)
		for _, id := range []string{"a", "b"} {
			if err := store.CreateFriend(ctx, "s1", friend(id)); err != nil {
				t.Fatalf("CreateFriend failed: %v", err)
			}
		}

		updated, err := store.AdjustBalance(ctx, "s1", "a", decimal.RequireFromString("70"))
		if err != nil {
			t.Fatalf("AdjustBalance failed: %v", err)
		}
		if !updated.Balance.Equal(decimal.RequireFromString("70")) {
			t.Errorf("updated balance = %s, want 70", updated.Balance)
		}

		updated, err = store.AdjustBalance(ctx, "s1", "a", decimal.RequireFromString("-100.25"))
		if err != nil {
			t.Fatalf("AdjustBalance failed: %v", err)
		}
		if !updated.Balance.Equal(decimal.RequireFromString("-30.25")) {
			t.Errorf("updated balance = %s, want -30.25", updated.Balance)
		}

		got, err := store.GetFriend(ctx, "s1", "a")
		if err != nil {
			t.Fatalf("GetFriend failed: %v", err)
		}
		if !got.Balance.Equal(updated.Balance) {
			t.Errorf("stored balance = %s, want %s", got.Balance, updated.Balance)
		}

		other, err := store.GetFriend(ctx, "s1", "b")
		if err != nil {
			t.Fatalf("GetFriend failed: %v", err)
		}
		if !other.Balance.IsZero() {
			t.Errorf("untouched friend balance = %s, want 0", other.Balance)
		}
	})

	t.Run("AdjustBalance returns ErrNotFound", func(t *testing.T) {
		store := newStore(t)
		_, err := store.AdjustBalance(ctx, "s1", "missing", decimal.NewFromInt(1))
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Expenses are listed newest first per friend", func(t *testing.T) {
		store := newStore(t)
		for _, id := range []string{"a", "b"} {
			if err := store.CreateFriend(ctx, "s1", friend(id)); err != nil {
				t.Fatalf("CreateFriend failed: %v", err)
			}
		}

		first := expense("a", "100", "30", models.PayerUser, "70")
		second := expense("a", "50", "20", models.PayerFriend, "-20")
		third := expense("b", "10", "5", models.PayerUser, "5")
		for _, e := range []*models.Expense{first, second, third} {
			if err := store.CreateExpense(ctx, "s1", e); err != nil {
				t.Fatalf("CreateExpense failed: %v", err)
			}
			if e.ID == "" {
				t.Error("Expected expense ID to be generated")
			}
		}

		expenses, err := store.ListExpenses(ctx, "s1", "a")
		if err != nil {
			t.Fatalf("ListExpenses failed: %v", err)
		}
		if len(expenses) != 2 {
			t.Fatalf("expected 2 expenses, got %d", len(expenses))
		}
		if expenses[0].ID != second.ID || expenses[1].ID != first.ID {
			t.Errorf("expected newest first, got %s then %s", expenses[0].ID, expenses[1].ID)
		}
		if !expenses[0].Delta.Equal(decimal.RequireFromString("-20")) {
			t.Errorf("delta = %s, want -20", expenses[0].Delta)
		}
		if expenses[0].Payer != models.PayerFriend {
			t.Errorf("payer = %s, want friend", expenses[0].Payer)
		}
	})

	t.Run("CreateExpense requires friend in session", func(t *testing.T) {
		store := newStore(t)
		err := store.CreateExpense(ctx, "s1", expense("missing", "10", "5", models.PayerUser, "5"))
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("DeleteSession discards everything", func(t *testing.T) {
		store := newStore(t)
		if err := store.CreateFriend(ctx, "s1", friend("a")); err != nil {
			t.Fatalf("CreateFriend failed: %v", err)
		}
		if err := store.CreateExpense(ctx, "s1", expense("a", "10", "5", models.PayerUser, "5")); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if err := store.CreateFriend(ctx, "s2", friend("b")); err != nil {
			t.Fatalf("CreateFriend failed: %v", err)
		}

		if err := store.DeleteSession(ctx, "s1"); err != nil {
			t.Fatalf("DeleteSession failed: %v", err)
		}

		friends, err := store.ListFriends(ctx, "s1")
		if err != nil {
			t.Fatalf("ListFriends failed: %v", err)
		}
		if len(friends) != 0 {
			t.Errorf("expected 0 friends after delete, got %d", len(friends))
		}
		expenses, err := store.ListExpenses(ctx, "s1", "a")
		if err != nil {
			t.Fatalf("ListExpenses failed: %v", err)
		}
		if len(expenses) != 0 {
			t.Errorf("expected 0 expenses after delete, got %d", len(expenses))
		}
		if _, err := store.GetFriend(ctx, "s2", "b"); err != nil {
			t.Errorf("other session lost its friend: %v", err)
		}
	})
}

func friend(id string) *models.Friend {
	return &models.Friend{
		ID:        id,
		Name:      "Friend " + id,
		AvatarURL: "https://i.pravatar.cc/48?=" + id,
		Balance:   decimal.Zero,
	}
}

func expense(friendID, total, share string, payer models.Payer, delta string) *models.Expense {
	return &models.Expense{
		FriendID:   friendID,
		BillTotal:  decimal.RequireFromString(total),
		PayerShare: decimal.RequireFromString(share),
		Payer:      payer,
		Delta:      decimal.RequireFromString(delta),
	}
}
