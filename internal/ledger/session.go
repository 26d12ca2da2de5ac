package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/friendsplit/internal/models"
	"github.com/mmynk/friendsplit/internal/storage"
)

// Session is the state of one user's bill-splitting session.
type Session struct {
	id       string
	registry *Registry
	mode     Mode

	addDraft      AddFriendDraft
	splitDraft    SplitDraft
	defaultAvatar string

	newID    func() string
	now      func() time.Time
	observer Observer
	logger   *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithDefaultAvatarURL overrides the avatar URL the add-friend form starts with.
func WithDefaultAvatarURL(url string) Option {
	return func(s *Session) {
		if url != "" {
			s.defaultAvatar = url
		}
	}
}

// WithObserver registers an observer for completed and rejected operations.
func WithObserver(o Observer) Option {
	return func(s *Session) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithClock sets the time source used for CreatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithIDGenerator sets the generator for friend IDs. Defaults to random UUIDs.
func WithIDGenerator(newID func() string) Option {
	return func(s *Session) { s.newID = newID }
}

// NewSession starts an empty session stored in store under id.
func NewSession(store storage.Store, id string, opts ...Option) *Session {
	s := &Session{
		id:            id,
		registry:      NewRegistry(store, id),
		defaultAvatar: DefaultAvatarURL,
		newID:         func() string { return uuid.New().String() },
		now:           time.Now,
		observer:      nopObserver{},
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session_id", id)
	s.addDraft = newAddFriendDraft(s.defaultAvatar)
	s.splitDraft = newSplitDraft()
	return s
}

// ID returns the session ID.
func (s *Session) ID() string { return s.id }

// Mode returns the current interaction mode.
func (s *Session) Mode() Mode { return s.mode }

// Registry returns the session's friend registry.
func (s *Session) Registry() *Registry { return s.registry }

// setMode switches modes and resets the drafts that belong to the old mode.
func (s *Session) setMode(m Mode) {
	if m != s.mode {
		s.splitDraft = newSplitDraft()
		if m.Kind == ModeAddingFriend {
			s.addDraft = newAddFriendDraft(s.defaultAvatar)
		}
	}
	s.mode = m
}

// ToggleAddFriend opens the add-friend form, or closes it when already open.
func (s *Session) ToggleAddFriend() Mode {
	s.setMode(s.mode.toggleAddFriend())
	return s.mode
}

// CloseAddFriend closes the add-friend form if it is open.
func (s *Session) CloseAddFriend() {
	if s.mode.Kind == ModeAddingFriend {
		s.setMode(Mode{})
	}
}

// AddFriendDraft returns the add-friend form fields.
func (s *Session) AddFriendDraft() AddFriendDraft { return s.addDraft }

// SubmitAddFriend validates the form input and appends a new friend.
// On success the form closes and its fields reset to their defaults. On a
// *ValidationError nothing changes.
func (s *Session) SubmitAddFriend(ctx context.Context, name, avatarURL string) (*models.Friend, error) {
	friend, err := buildFriend(s.newID(), name, avatarURL, s.now().Unix())
	if err != nil {
		s.reject(err)
		return nil, err
	}

	if err := s.registry.Add(ctx, friend); err != nil {
		return nil, err
	}

	s.CloseAddFriend()
	s.addDraft = newAddFriendDraft(s.defaultAvatar)
	s.observer.FriendAdded()
	s.logger.Debug("Friend added", "friend_id", friend.ID, "name", friend.Name)
	return friend, nil
}

// ToggleSelect selects the friend, or deselects it when it is already
// selected. Selecting closes the add-friend form and starts a fresh split draft.
func (s *Session) ToggleSelect(ctx context.Context, friendID string) (Mode, error) {
	if _, err := s.registry.Get(ctx, friendID); err != nil {
		return s.mode, err
	}
	s.setMode(s.mode.toggleSelect(friendID))
	return s.mode, nil
}

// ClearSelection deselects the selected friend, if any.
func (s *Session) ClearSelection() {
	if s.mode.Kind == ModeSplitting {
		s.setMode(Mode{})
	}
}

// SplitDraft returns the pending split. It fails with ErrNoSelection when no
// friend is selected.
func (s *Session) SplitDraft() (SplitDraft, error) {
	if s.mode.Kind != ModeSplitting {
		return SplitDraft{}, ErrNoSelection
	}
	return s.splitDraft, nil
}

// SetBillTotal updates the bill total from text input.
func (s *Session) SetBillTotal(text string) error {
	return s.editSplit(func(d *SplitDraft) error { return d.setBillTotal(text) })
}

// SetPayerShare updates the user's share from text input. A share above the
// bill total is rejected and the previous share kept.
func (s *Session) SetPayerShare(text string) error {
	return s.editSplit(func(d *SplitDraft) error { return d.setPayerShare(text) })
}

// SetPayer sets who paid the bill: "user" or "friend".
func (s *Session) SetPayer(text string) error {
	return s.editSplit(func(d *SplitDraft) error { return d.setPayer(text) })
}

func (s *Session) editSplit(edit func(*SplitDraft) error) error {
	if s.mode.Kind != ModeSplitting {
		return ErrNoSelection
	}
	if err := edit(&s.splitDraft); err != nil {
		s.reject(err)
		return err
	}
	return nil
}

// SplitResult is the outcome of a submitted split.
type SplitResult struct {
	Friend  *models.Friend
	Delta   decimal.Decimal
	Expense *models.Expense // Nil when the history record could not be stored
}

// SubmitSplit applies the pending split to the selected friend's balance,
// clears the selection and discards the draft.
func (s *Session) SubmitSplit(ctx context.Context) (*SplitResult, error) {
	friendID, ok := s.mode.Selected()
	if !ok {
		return nil, ErrNoSelection
	}

	draft := s.splitDraft
	delta, err := draft.delta()
	if err != nil {
		s.reject(err)
		return nil, err
	}

	friend, err := s.registry.AdjustBalance(ctx, friendID, delta)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// The mode only ever holds IDs that were in the registry.
			s.logger.Error("Selected friend missing from registry", "friend_id", friendID, "error", err)
		}
		return nil, fmt.Errorf("submit split: %w", err)
	}

	expense := &models.Expense{
		FriendID:   friendID,
		BillTotal:  draft.BillTotal.Decimal,
		PayerShare: draft.PayerShare.Decimal,
		Payer:      draft.Payer,
		Delta:      delta,
		CreatedAt:  s.now().Unix(),
	}
	if err := s.registry.RecordExpense(ctx, expense); err != nil {
		// The balance is already updated; history is best effort.
		s.logger.Warn("Failed to record expense", "friend_id", friendID, "error", err)
		expense = nil
	}

	s.setMode(Mode{})
	s.observer.SplitSubmitted(draft.Payer)
	s.logger.Debug("Split submitted",
		"friend_id", friendID,
		"delta", delta.String(),
		"balance", friend.Balance.String(),
	)
	return &SplitResult{Friend: friend, Delta: delta, Expense: expense}, nil
}

// Close discards everything stored for the session.
func (s *Session) Close(ctx context.Context) error {
	s.mode = Mode{}
	return s.registry.Discard(ctx)
}

func (s *Session) reject(err error) {
	var v *ValidationError
	if errors.As(err, &v) {
		s.observer.Rejected(v.Op, v.Field)
		s.logger.Debug("Input rejected", "op", v.Op, "field", v.Field, "reason", v.Reason)
	}
}
