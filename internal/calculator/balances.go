package calculator

import (
	"fmt"
	"iter"

	"github.com/shopspring/decimal"

	"github.com/mmynk/friendsplit/internal/models"
)

// Summary aggregates balances across all friends in a registry.
type Summary struct {
	FriendCount int
	TotalOwed   decimal.Decimal // Sum of positive balances: what friends owe the user
	TotalOwing  decimal.Decimal // Sum of negative balances, as a positive amount: what the user owes
	Net         decimal.Decimal // TotalOwed - TotalOwing
	Settled     int             // Friends with a zero balance
}

// Summarize walks the friends once and totals their balances.
func Summarize(friends iter.Seq[models.Friend]) Summary {
	s := Summary{
		TotalOwed:  decimal.Zero,
		TotalOwing: decimal.Zero,
	}
	for f := range friends {
		s.FriendCount++
		switch f.Standing() {
		case models.StandingOwesYou:
			s.TotalOwed = s.TotalOwed.Add(f.Balance)
		case models.StandingYouOwe:
			s.TotalOwing = s.TotalOwing.Add(f.Balance.Abs())
		default:
			s.Settled++
		}
	}
	s.Net = s.TotalOwed.Sub(s.TotalOwing)
	return s
}

// Describe renders a balance the way a friend card shows it.
func Describe(balance decimal.Decimal) string {
	switch balance.Sign() {
	case 1:
		return fmt.Sprintf("Owes you €%s", balance.Abs().String())
	case -1:
		return fmt.Sprintf("You owe €%s", balance.Abs().String())
	}
	return "All settled up"
}
