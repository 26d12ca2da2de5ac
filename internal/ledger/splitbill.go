package ledger

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/friendsplit/internal/calculator"
	"github.com/mmynk/friendsplit/internal/models"
)

const opSplitBill = "split_bill"

// Bounds on amount input. Anything larger is not a bill.
const (
	maxAmountText   = 32
	maxAmountDigits = 12 // digits before the decimal point
	maxAmountScale  = 4  // digits after the decimal point
)

// SplitDraft is the pending split against the selected friend.
// Amounts that were never entered, or were not numbers, are not Valid.
type SplitDraft struct {
	BillTotal  decimal.NullDecimal
	PayerShare decimal.NullDecimal // The user's own part of the bill
	Payer      models.Payer
}

func newSplitDraft() SplitDraft {
	return SplitDraft{Payer: models.PayerUser}
}

// parseAmount coerces numeric text for field. Anything that is not a number
// yields an unset amount. Numbers too large or too precise to be money are
// rejected.
func parseAmount(field, text string) (decimal.NullDecimal, error) {
	text = strings.TrimSpace(text)
	if len(text) > maxAmountText {
		return decimal.NullDecimal{}, invalid(opSplitBill, field, "out of range")
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.NullDecimal{}, nil
	}
	// Inspect exponent and digits only; arithmetic on d would rescale it.
	exp := int64(d.Exponent())
	if exp < -maxAmountScale || int64(d.NumDigits())+exp > maxAmountDigits {
		return decimal.NullDecimal{}, invalid(opSplitBill, field, "out of range")
	}
	return decimal.NewNullDecimal(d), nil
}

// CounterpartyShare is the friend's part of the bill. It is derived on every
// call and is unset while the bill total is unset.
func (d SplitDraft) CounterpartyShare() decimal.NullDecimal {
	if !d.BillTotal.Valid {
		return decimal.NullDecimal{}
	}
	share := decimal.Zero
	if d.PayerShare.Valid {
		share = d.PayerShare.Decimal
	}
	return decimal.NewNullDecimal(calculator.CounterpartyShare(d.BillTotal.Decimal, share))
}

// setBillTotal updates the bill total. Negative totals are rejected.
func (d *SplitDraft) setBillTotal(text string) error {
	total, err := parseAmount("bill_total", text)
	if err != nil {
		return err
	}
	if total.Valid && total.Decimal.IsNegative() {
		return invalid(opSplitBill, "bill_total", "cannot be negative")
	}
	d.BillTotal = total
	return nil
}

// setPayerShare updates the user's share. A share above the current bill
// total is rejected and the previous value kept.
func (d *SplitDraft) setPayerShare(text string) error {
	share, err := parseAmount("payer_share", text)
	if err != nil {
		return err
	}
	if !share.Valid {
		d.PayerShare = share
		return nil
	}
	if share.Decimal.IsNegative() {
		return invalid(opSplitBill, "payer_share", "cannot be negative")
	}
	total := decimal.Zero
	if d.BillTotal.Valid {
		total = d.BillTotal.Decimal
	}
	if share.Decimal.GreaterThan(total) {
		return invalid(opSplitBill, "payer_share", "cannot exceed the bill total")
	}
	d.PayerShare = share
	return nil
}

func (d *SplitDraft) setPayer(text string) error {
	payer, err := models.ParsePayer(text)
	if err != nil {
		return invalid(opSplitBill, "payer", err.Error())
	}
	d.Payer = payer
	return nil
}

// delta validates the draft for submission and returns the signed amount to
// add to the friend's balance.
func (d SplitDraft) delta() (decimal.Decimal, error) {
	if !d.BillTotal.Valid || d.BillTotal.Decimal.IsZero() {
		return decimal.Zero, invalid(opSplitBill, "bill_total", "required")
	}
	if !d.PayerShare.Valid || d.PayerShare.Decimal.IsZero() {
		return decimal.Zero, invalid(opSplitBill, "payer_share", "required")
	}
	delta, err := calculator.SplitDelta(d.BillTotal.Decimal, d.PayerShare.Decimal, d.Payer)
	if err != nil {
		return decimal.Zero, invalid(opSplitBill, "payer_share", err.Error())
	}
	return delta, nil
}
