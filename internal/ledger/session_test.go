package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/friendsplit/internal/models"
	"github.com/mmynk/friendsplit/internal/storage"
	"github.com/mmynk/friendsplit/internal/storage/memory"
)

// recordingObserver counts observer callbacks.
type recordingObserver struct {
	added     int
	submitted map[models.Payer]int
	rejected  []string
}

func (o *recordingObserver) FriendAdded() { o.added++ }
func (o *recordingObserver) SplitSubmitted(p models.Payer) {
	if o.submitted == nil {
		o.submitted = make(map[models.Payer]int)
	}
	o.submitted[p]++
}
func (o *recordingObserver) Rejected(op, field string) { o.rejected = append(o.rejected, op+"."+field) }

func newTestSession(t *testing.T, opts ...Option) (*Session, storage.Store) {
	t.Helper()
	store := memory.New()
	t.Cleanup(func() { store.Close() })
	seq := 0
	opts = append([]Option{
		WithIDGenerator(func() string { seq++; return fmt.Sprintf("id-%d", seq) }),
		WithClock(func() time.Time { return time.Unix(1700000000, 0) }),
	}, opts...)
	return NewSession(store, "session-1", opts...), store
}

func mustAdd(t *testing.T, s *Session, name string) *models.Friend {
	t.Helper()
	f, err := s.SubmitAddFriend(context.Background(), name, DefaultAvatarURL)
	if err != nil {
		t.Fatalf("SubmitAddFriend(%s) failed: %v", name, err)
	}
	return f
}

func balanceOf(t *testing.T, s *Session, id string) decimal.Decimal {
	t.Helper()
	f, err := s.Registry().Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get(%s) failed: %v", id, err)
	}
	return f.Balance
}

func TestSubmitAddFriend_RegistryGrowsWithZeroBalances(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()

	names := []string{"Ana", "Ben", "Cleo", "Dev", "Eve"}
	for i, name := range names {
		s.ToggleAddFriend()
		f := mustAdd(t, s, name)
		if !f.Balance.IsZero() {
			t.Errorf("%s balance = %s, want 0", name, f.Balance)
		}

		friends, err := s.Registry().Friends(ctx)
		if err != nil {
			t.Fatalf("Friends failed: %v", err)
		}
		count := 0
		for range friends {
			count++
		}
		if count != i+1 {
			t.Errorf("after %d adds registry has %d friends", i+1, count)
		}
	}

	friends, _ := s.Registry().Friends(ctx)
	i := 0
	for f := range friends {
		if f.Name != names[i] {
			t.Errorf("friends[%d] = %s, want %s (insertion order)", i, f.Name, names[i])
		}
		i++
	}
}

func TestSubmitAddFriend_AvatarSuffix(t *testing.T) {
	store := memory.New()
	defer store.Close()
	s := NewSession(store, "s")
	s.ToggleAddFriend()

	f, err := s.SubmitAddFriend(context.Background(), "Ana", "https://i.pravatar.cc/48")
	if err != nil {
		t.Fatalf("SubmitAddFriend failed: %v", err)
	}

	if f.ID == "" {
		t.Fatal("expected ID to be generated")
	}
	if !strings.HasSuffix(f.AvatarURL, "?="+f.ID) {
		t.Errorf("AvatarURL = %s, want suffix ?=%s", f.AvatarURL, f.ID)
	}
	if !strings.HasPrefix(f.AvatarURL, "https://i.pravatar.cc/48") {
		t.Errorf("AvatarURL = %s, want original URL as prefix", f.AvatarURL)
	}
	if !f.Balance.IsZero() {
		t.Errorf("balance = %s, want 0", f.Balance)
	}

	friends, _ := s.Registry().Friends(context.Background())
	count := 0
	for range friends {
		count++
	}
	if count != 1 {
		t.Errorf("expected 1 friend, got %d", count)
	}
}

func TestSubmitAddFriend_ClosesFormAndResetsDraft(t *testing.T) {
	s, _ := newTestSession(t, WithDefaultAvatarURL("https://example.com/a.png"))

	if m := s.ToggleAddFriend(); m.Kind != ModeAddingFriend {
		t.Fatalf("mode = %v, want adding_friend", m.Kind)
	}
	mustAdd(t, s, "Ana")

	if s.Mode().Kind != ModeNone {
		t.Errorf("mode after add = %v, want none", s.Mode().Kind)
	}
	draft := s.AddFriendDraft()
	if draft.Name != "" || draft.AvatarURL != "https://example.com/a.png" {
		t.Errorf("draft = %+v, want defaults", draft)
	}
}

func TestSubmitAddFriend_Validation(t *testing.T) {
	tests := []struct {
		name      string
		friend    string
		avatar    string
		wantField string
	}{
		{"empty name", "", DefaultAvatarURL, "name"},
		{"blank name", "   ", DefaultAvatarURL, "name"},
		{"empty avatar", "Ana", "", "avatar_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := &recordingObserver{}
			s, _ := newTestSession(t, WithObserver(obs))
			s.ToggleAddFriend()

			_, err := s.SubmitAddFriend(context.Background(), tt.friend, tt.avatar)
			var v *ValidationError
			if !errors.As(err, &v) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if v.Field != tt.wantField {
				t.Errorf("field = %s, want %s", v.Field, tt.wantField)
			}

			friends, _ := s.Registry().Friends(context.Background())
			for range friends {
				t.Error("registry should be unchanged")
			}
			if s.Mode().Kind != ModeAddingFriend {
				t.Errorf("form should remain open, mode = %v", s.Mode().Kind)
			}
			if obs.added != 0 || len(obs.rejected) != 1 {
				t.Errorf("observer = %+v, want one rejection", obs)
			}
		})
	}
}

func TestToggleSelect(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	a := mustAdd(t, s, "Ana")
	b := mustAdd(t, s, "Ben")

	t.Run("same friend twice deselects", func(t *testing.T) {
		if m, err := s.ToggleSelect(ctx, a.ID); err != nil || m.FriendID != a.ID {
			t.Fatalf("first toggle: mode = %+v, err = %v", m, err)
		}
		m, err := s.ToggleSelect(ctx, a.ID)
		if err != nil {
			t.Fatalf("second toggle failed: %v", err)
		}
		if m.Kind != ModeNone {
			t.Errorf("mode = %v, want none", m.Kind)
		}
	})

	t.Run("different friend switches selection", func(t *testing.T) {
		s.ToggleSelect(ctx, a.ID)
		m, err := s.ToggleSelect(ctx, b.ID)
		if err != nil {
			t.Fatalf("toggle failed: %v", err)
		}
		if id, ok := m.Selected(); !ok || id != b.ID {
			t.Errorf("selected = %q, %v; want %s", id, ok, b.ID)
		}
		s.ClearSelection()
	})

	t.Run("unknown friend is not found", func(t *testing.T) {
		_, err := s.ToggleSelect(ctx, "nope")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if s.Mode().Kind != ModeNone {
			t.Errorf("mode changed on failed toggle: %v", s.Mode().Kind)
		}
	})

	t.Run("selecting closes the add-friend form", func(t *testing.T) {
		s.ToggleAddFriend()
		m, _ := s.ToggleSelect(ctx, a.ID)
		if m.Kind != ModeSplitting {
			t.Errorf("mode = %v, want splitting", m.Kind)
		}
	})

	t.Run("opening the add-friend form clears the selection", func(t *testing.T) {
		m := s.ToggleAddFriend()
		if m.Kind != ModeAddingFriend {
			t.Errorf("mode = %v, want adding_friend", m.Kind)
		}
		if _, ok := m.Selected(); ok {
			t.Error("selection should be cleared")
		}
		if m := s.ToggleAddFriend(); m.Kind != ModeNone {
			t.Errorf("second toggle: mode = %v, want none", m.Kind)
		}
	})
}

func TestSubmitSplit(t *testing.T) {
	tests := []struct {
		name        string
		payer       string
		wantBalance string
	}{
		{"user pays", "user", "70"},
		{"friend pays", "friend", "-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := &recordingObserver{}
			s, _ := newTestSession(t, WithObserver(obs))
			ctx := context.Background()
			ana := mustAdd(t, s, "Ana")
			ben := mustAdd(t, s, "Ben")

			if _, err := s.ToggleSelect(ctx, ana.ID); err != nil {
				t.Fatalf("ToggleSelect failed: %v", err)
			}
			if err := s.SetBillTotal("100"); err != nil {
				t.Fatalf("SetBillTotal failed: %v", err)
			}
			if err := s.SetPayerShare("30"); err != nil {
				t.Fatalf("SetPayerShare failed: %v", err)
			}
			if err := s.SetPayer(tt.payer); err != nil {
				t.Fatalf("SetPayer failed: %v", err)
			}

			draft, err := s.SplitDraft()
			if err != nil {
				t.Fatalf("SplitDraft failed: %v", err)
			}
			if cp := draft.CounterpartyShare(); !cp.Valid || !cp.Decimal.Equal(decimal.NewFromInt(70)) {
				t.Errorf("counterparty share = %v, want 70", cp)
			}

			res, err := s.SubmitSplit(ctx)
			if err != nil {
				t.Fatalf("SubmitSplit failed: %v", err)
			}

			want := decimal.RequireFromString(tt.wantBalance)
			if !res.Friend.Balance.Equal(want) {
				t.Errorf("returned balance = %s, want %s", res.Friend.Balance, want)
			}
			if got := balanceOf(t, s, ana.ID); !got.Equal(want) {
				t.Errorf("stored balance = %s, want %s", got, want)
			}
			if got := balanceOf(t, s, ben.ID); !got.IsZero() {
				t.Errorf("other friend balance = %s, want 0", got)
			}
			if s.Mode().Kind != ModeNone {
				t.Errorf("mode after submit = %v, want none", s.Mode().Kind)
			}
			if _, err := s.SplitDraft(); !errors.Is(err, ErrNoSelection) {
				t.Errorf("draft should be gone, got %v", err)
			}

			if res.Expense == nil || !res.Expense.Delta.Equal(want) {
				t.Fatalf("expense = %+v, want delta %s", res.Expense, want)
			}
			expenses, err := s.Registry().Expenses(ctx, ana.ID)
			if err != nil {
				t.Fatalf("Expenses failed: %v", err)
			}
			if len(expenses) != 1 {
				t.Errorf("expected 1 expense, got %d", len(expenses))
			}
			if obs.submitted[models.Payer(tt.payer)] != 1 {
				t.Errorf("observer submitted = %v", obs.submitted)
			}
		})
	}
}

func TestSubmitSplit_Accumulates(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	ana := mustAdd(t, s, "Ana")

	split := func(total, share, payer string) {
		t.Helper()
		if _, err := s.ToggleSelect(ctx, ana.ID); err != nil {
			t.Fatalf("ToggleSelect failed: %v", err)
		}
		s.SetBillTotal(total)
		s.SetPayerShare(share)
		s.SetPayer(payer)
		if _, err := s.SubmitSplit(ctx); err != nil {
			t.Fatalf("SubmitSplit failed: %v", err)
		}
	}

	split("100", "30", "user")    // +70
	split("40", "25.5", "friend") // -25.5
	split("0.3", "0.1", "user")   // +0.2

	if got := balanceOf(t, s, ana.ID); !got.Equal(decimal.RequireFromString("44.7")) {
		t.Errorf("balance = %s, want 44.7", got)
	}
}

func TestSubmitSplit_Preconditions(t *testing.T) {
	tests := []struct {
		name      string
		total     string
		share     string
		wantField string
	}{
		{"bill total empty", "", "10", "bill_total"},
		{"bill total zero", "0", "", "bill_total"},
		{"bill total not a number", "abc", "", "bill_total"},
		{"share empty", "100", "", "payer_share"},
		{"share zero", "100", "0", "payer_share"},
		{"share zero with decimals", "100", "0.00", "payer_share"},
		{"share not a number", "100", "ten", "payer_share"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSession(t)
			ctx := context.Background()
			ana := mustAdd(t, s, "Ana")
			s.ToggleSelect(ctx, ana.ID)

			s.SetBillTotal(tt.total)
			s.SetPayerShare(tt.share)

			_, err := s.SubmitSplit(ctx)
			var v *ValidationError
			if !errors.As(err, &v) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if v.Field != tt.wantField {
				t.Errorf("field = %s, want %s", v.Field, tt.wantField)
			}
			if got := balanceOf(t, s, ana.ID); !got.IsZero() {
				t.Errorf("balance changed to %s", got)
			}
			if id, ok := s.Mode().Selected(); !ok || id != ana.ID {
				t.Error("selection should be kept after a rejected submit")
			}
		})
	}
}

func TestSubmitSplit_ShareAboveLoweredTotal(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	ana := mustAdd(t, s, "Ana")
	s.ToggleSelect(ctx, ana.ID)

	s.SetBillTotal("100")
	if err := s.SetPayerShare("80"); err != nil {
		t.Fatalf("SetPayerShare failed: %v", err)
	}
	if err := s.SetBillTotal("50"); err != nil {
		t.Fatalf("lowering the total should be accepted: %v", err)
	}

	if _, err := s.SubmitSplit(ctx); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSplitOperations_RequireSelection(t *testing.T) {
	s, _ := newTestSession(t)

	if err := s.SetBillTotal("10"); !errors.Is(err, ErrNoSelection) {
		t.Errorf("SetBillTotal: expected ErrNoSelection, got %v", err)
	}
	if err := s.SetPayerShare("1"); !errors.Is(err, ErrNoSelection) {
		t.Errorf("SetPayerShare: expected ErrNoSelection, got %v", err)
	}
	if err := s.SetPayer("friend"); !errors.Is(err, ErrNoSelection) {
		t.Errorf("SetPayer: expected ErrNoSelection, got %v", err)
	}
	if _, err := s.SubmitSplit(context.Background()); !errors.Is(err, ErrNoSelection) {
		t.Errorf("SubmitSplit: expected ErrNoSelection, got %v", err)
	}
}

func TestSplitDraft_DiscardedOnSelectionChange(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	ana := mustAdd(t, s, "Ana")
	ben := mustAdd(t, s, "Ben")

	s.ToggleSelect(ctx, ana.ID)
	s.SetBillTotal("100")
	s.SetPayerShare("30")
	s.SetPayer("friend")

	s.ToggleSelect(ctx, ben.ID)
	draft, err := s.SplitDraft()
	if err != nil {
		t.Fatalf("SplitDraft failed: %v", err)
	}
	if draft.BillTotal.Valid || draft.PayerShare.Valid || draft.Payer != models.PayerUser {
		t.Errorf("draft = %+v, want a fresh draft", draft)
	}
}

func TestSubmitSplit_MissingFriendIsInternal(t *testing.T) {
	s, store := newTestSession(t)
	ctx := context.Background()
	ana := mustAdd(t, s, "Ana")
	s.ToggleSelect(ctx, ana.ID)
	s.SetBillTotal("10")
	s.SetPayerShare("5")

	// Pull the friend out from under the session.
	if err := store.DeleteSession(ctx, s.ID()); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}

	_, err := s.SubmitSplit(ctx)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if IsValidation(err) {
		t.Error("a missing friend is not a validation failure")
	}
}

func TestSnapshot(t *testing.T) {
	s, _ := newTestSession(t)
	ctx := context.Background()
	ana := mustAdd(t, s, "Ana")
	ben := mustAdd(t, s, "Ben")

	s.ToggleSelect(ctx, ben.ID)
	s.SetBillTotal("20")
	s.SetPayer("friend")
	s.SetPayerShare("8")
	s.SubmitSplit(ctx)

	s.ToggleSelect(ctx, ana.ID)
	s.SetBillTotal("100")
	s.SetPayerShare("30")

	snap, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	if snap.Mode.Kind != ModeSplitting || snap.Mode.FriendID != ana.ID {
		t.Errorf("mode = %+v", snap.Mode)
	}
	if len(snap.Friends) != 2 {
		t.Fatalf("expected 2 friends, got %d", len(snap.Friends))
	}
	if !snap.Friends[0].Selected || snap.Friends[1].Selected {
		t.Error("only Ana should be selected")
	}
	if snap.Friends[1].Standing != models.StandingYouOwe || snap.Friends[1].Label != "You owe €8" {
		t.Errorf("Ben view = %+v", snap.Friends[1])
	}
	if snap.Friends[0].Label != "All settled up" {
		t.Errorf("Ana label = %q", snap.Friends[0].Label)
	}
	if snap.AddFriend != nil {
		t.Error("add-friend draft should be hidden while splitting")
	}
	if snap.Split == nil {
		t.Fatal("expected split view")
	}
	if snap.Split.FriendName != "Ana" {
		t.Errorf("split friend = %s, want Ana", snap.Split.FriendName)
	}
	if !snap.Split.CounterpartyShare.Decimal.Equal(decimal.NewFromInt(70)) {
		t.Errorf("counterparty share = %s, want 70", snap.Split.CounterpartyShare.Decimal)
	}
	if !snap.Summary.TotalOwing.Equal(decimal.NewFromInt(8)) || snap.Summary.FriendCount != 2 {
		t.Errorf("summary = %+v", snap.Summary)
	}

	s.ToggleAddFriend()
	snap, err = s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if snap.Split != nil {
		t.Error("split view should be gone once the form opens")
	}
	if snap.AddFriend == nil || snap.AddFriend.AvatarURL != DefaultAvatarURL {
		t.Errorf("add-friend draft = %+v", snap.AddFriend)
	}
}

func TestClose_DiscardsState(t *testing.T) {
	s, store := newTestSession(t)
	ctx := context.Background()
	mustAdd(t, s, "Ana")

	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	friends, err := store.ListFriends(ctx, s.ID())
	if err != nil {
		t.Fatalf("ListFriends failed: %v", err)
	}
	if len(friends) != 0 {
		t.Errorf("expected no friends after Close, got %d", len(friends))
	}
}

// expenseFailingStore stores friends but refuses expense records.
type expenseFailingStore struct {
	storage.Store
}

func (expenseFailingStore) CreateExpense(context.Context, string, *models.Expense) error {
	return errors.New("disk full")
}

func TestSubmitSplit_ExpenseFailureKeepsDelta(t *testing.T) {
	store := memory.New()
	defer store.Close()
	s := NewSession(expenseFailingStore{store}, "s")
	ctx := context.Background()
	ana := mustAdd(t, s, "Ana")

	if _, err := s.ToggleSelect(ctx, ana.ID); err != nil {
		t.Fatalf("ToggleSelect failed: %v", err)
	}
	s.SetBillTotal("100")
	s.SetPayerShare("30")

	res, err := s.SubmitSplit(ctx)
	if err != nil {
		t.Fatalf("SubmitSplit failed: %v", err)
	}
	if res.Expense != nil {
		t.Errorf("expected no expense record, got %+v", res.Expense)
	}
	if !res.Delta.Equal(decimal.NewFromInt(70)) {
		t.Errorf("delta = %s, want 70", res.Delta)
	}
	if got := balanceOf(t, s, ana.ID); !got.Equal(decimal.NewFromInt(70)) {
		t.Errorf("balance = %s, want 70", got)
	}
}

func TestSubmitAddFriend_TrimsName(t *testing.T) {
	s, _ := newTestSession(t)
	s.ToggleAddFriend()

	f, err := s.SubmitAddFriend(context.Background(), "  Ana ", " "+DefaultAvatarURL+" ")
	if err != nil {
		t.Fatalf("SubmitAddFriend failed: %v", err)
	}
	if f.Name != "Ana" {
		t.Errorf("name = %q, want Ana", f.Name)
	}
	if f.AvatarURL != DefaultAvatarURL+"?="+f.ID {
		t.Errorf("avatar = %q", f.AvatarURL)
	}
}
