package models

import "github.com/shopspring/decimal"

// Expense records one successful split submitted against a friend.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// FriendID is the friend whose balance the split changed.
	FriendID string

	// BillTotal is the full amount of the bill.
	BillTotal decimal.Decimal

	// PayerShare is the user's own part of the bill.
	PayerShare decimal.Decimal

	// Payer is who paid the bill.
	Payer Payer

	// Delta is the signed amount that was added to the friend's balance.
	Delta decimal.Decimal

	// CreatedAt is the Unix timestamp when the split was submitted.
	CreatedAt int64
}
