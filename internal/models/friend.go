package models

import "github.com/shopspring/decimal"

// Friend represents another participant with whom bills are split.
type Friend struct {
	// ID is the unique identifier for the friend (UUID format).
	// Assigned at creation and never changed.
	ID string

	// Name is the display name of the friend. Never empty.
	Name string

	// AvatarURL is an opaque image reference. It is stored as given, with the
	// friend's ID appended as a query suffix so every friend gets a distinct URL.
	AvatarURL string

	// Balance is the signed net amount between the user and this friend.
	// Positive means the friend owes the user, negative means the user owes
	// the friend, zero means settled.
	Balance decimal.Decimal

	// CreatedAt is the Unix timestamp when the friend was added.
	CreatedAt int64
}

// Standing classifies a balance from the user's point of view.
type Standing string

const (
	StandingSettled Standing = "settled"
	StandingOwesYou Standing = "owes_you"
	StandingYouOwe  Standing = "you_owe"
)

// Standing reports who owes whom.
func (f Friend) Standing() Standing {
	switch f.Balance.Sign() {
	case 1:
		return StandingOwesYou
	case -1:
		return StandingYouOwe
	default:
		return StandingSettled
	}
}
