package service

import (
	"github.com/mmynk/friendsplit/internal/ledger"
	"github.com/mmynk/friendsplit/internal/models"
	"github.com/mmynk/friendsplit/pkg/api"
)

// toState converts a ledger snapshot to its wire form.
func toState(snap *ledger.Snapshot) *api.State {
	state := &api.State{
		Mode:    snap.Mode.Kind.String(),
		Friends: make([]api.Friend, len(snap.Friends)),
		Summary: api.Summary{
			FriendCount: snap.Summary.FriendCount,
			Settled:     snap.Summary.Settled,
			TotalOwed:   snap.Summary.TotalOwed,
			TotalOwing:  snap.Summary.TotalOwing,
			Net:         snap.Summary.Net,
		},
	}
	if id, ok := snap.Mode.Selected(); ok {
		state.SelectedFriendID = id
	}

	for i, f := range snap.Friends {
		state.Friends[i] = toFriend(f)
	}

	if snap.AddFriend != nil {
		state.AddFriend = &api.AddFriendDraft{
			Name:      snap.AddFriend.Name,
			AvatarURL: snap.AddFriend.AvatarURL,
		}
	}
	if snap.Split != nil {
		state.Split = &api.SplitDraft{
			FriendID:          snap.Split.FriendID,
			FriendName:        snap.Split.FriendName,
			BillTotal:         snap.Split.BillTotal,
			PayerShare:        snap.Split.PayerShare,
			CounterpartyShare: snap.Split.CounterpartyShare,
			Payer:             string(snap.Split.Payer),
		}
	}

	return state
}

func toFriend(f ledger.FriendView) api.Friend {
	return api.Friend{
		ID:        f.ID,
		Name:      f.Name,
		AvatarURL: f.AvatarURL,
		Balance:   f.Balance,
		Standing:  string(f.Standing),
		Label:     f.Label,
		Selected:  f.Selected,
		CreatedAt: f.CreatedAt,
	}
}

// findFriend returns the wire form of the friend with the given ID from a state.
func findFriend(state *api.State, id string) *api.Friend {
	for i := range state.Friends {
		if state.Friends[i].ID == id {
			return &state.Friends[i]
		}
	}
	return nil
}

func toExpense(e models.Expense) api.Expense {
	return api.Expense{
		ID:         e.ID,
		FriendID:   e.FriendID,
		BillTotal:  e.BillTotal,
		PayerShare: e.PayerShare,
		Payer:      string(e.Payer),
		Delta:      e.Delta,
		CreatedAt:  e.CreatedAt,
	}
}
