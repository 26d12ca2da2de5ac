package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/friendsplit/internal/models"
)

// CounterpartyShare is the friend's part of the bill: billTotal - payerShare.
func CounterpartyShare(billTotal, payerShare decimal.Decimal) decimal.Decimal {
	return billTotal.Sub(payerShare)
}

// SplitDelta computes the signed amount to add to a friend's balance for one bill.
//
// payerShare is the user's own part of the bill. When the user paid, the friend
// now owes their part (positive delta). When the friend paid, the user owes
// their own part back to the friend (negative delta).
func SplitDelta(billTotal, payerShare decimal.Decimal, payer models.Payer) (decimal.Decimal, error) {
	if billTotal.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("bill total must be positive")
	}
	if payerShare.IsNegative() {
		return decimal.Zero, fmt.Errorf("share cannot be negative")
	}
	if payerShare.GreaterThan(billTotal) {
		return decimal.Zero, fmt.Errorf("share %s exceeds bill total %s", payerShare, billTotal)
	}

	switch payer {
	case models.PayerUser:
		return CounterpartyShare(billTotal, payerShare), nil
	case models.PayerFriend:
		return payerShare.Neg(), nil
	}
	return decimal.Zero, fmt.Errorf("unknown payer %q", payer)
}
