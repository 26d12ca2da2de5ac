package ledger

import (
	"context"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/mmynk/friendsplit/internal/calculator"
	"github.com/mmynk/friendsplit/internal/models"
)

// FriendView is a friend as a view renders it.
type FriendView struct {
	models.Friend
	Standing models.Standing
	Label    string
	Selected bool
}

// SplitView is the pending split with its derived share.
type SplitView struct {
	FriendID          string
	FriendName        string
	BillTotal         decimal.NullDecimal
	PayerShare        decimal.NullDecimal
	CounterpartyShare decimal.NullDecimal
	Payer             models.Payer
}

// Snapshot is everything a view needs to render a session.
type Snapshot struct {
	Mode      Mode
	Friends   []FriendView
	AddFriend *AddFriendDraft // Set only while the add-friend form is open
	Split     *SplitView      // Set only while a friend is selected
	Summary   calculator.Summary
}

// Snapshot captures the current state of the session.
func (s *Session) Snapshot(ctx context.Context) (*Snapshot, error) {
	friends, err := s.registry.Friends(ctx)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Mode:    s.mode,
		Summary: calculator.Summarize(friends),
	}

	selectedID, selected := s.mode.Selected()
	for f := range friends {
		snap.Friends = append(snap.Friends, FriendView{
			Friend:   f,
			Standing: f.Standing(),
			Label:    calculator.Describe(f.Balance),
			Selected: selected && f.ID == selectedID,
		})
	}

	switch s.mode.Kind {
	case ModeAddingFriend:
		draft := s.addDraft
		snap.AddFriend = &draft
	case ModeSplitting:
		view := &SplitView{
			FriendID:          selectedID,
			BillTotal:         s.splitDraft.BillTotal,
			PayerShare:        s.splitDraft.PayerShare,
			CounterpartyShare: s.splitDraft.CounterpartyShare(),
			Payer:             s.splitDraft.Payer,
		}
		if i := slices.IndexFunc(snap.Friends, func(f FriendView) bool { return f.Selected }); i >= 0 {
			view.FriendName = snap.Friends[i].Name
		}
		snap.Split = view
	}

	return snap, nil
}
