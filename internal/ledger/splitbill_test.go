package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSplitDraft_PayerShareClampByRejection(t *testing.T) {
	d := newSplitDraft()
	if err := d.setBillTotal("50"); err != nil {
		t.Fatalf("setBillTotal failed: %v", err)
	}
	if err := d.setPayerShare("20"); err != nil {
		t.Fatalf("setPayerShare failed: %v", err)
	}

	for _, text := range []string{"50.01", "100", "-1"} {
		if err := d.setPayerShare(text); !IsValidation(err) {
			t.Errorf("setPayerShare(%s): expected validation error, got %v", text, err)
		}
		if !d.PayerShare.Valid || !d.PayerShare.Decimal.Equal(decimal.NewFromInt(20)) {
			t.Errorf("setPayerShare(%s) changed share to %v", text, d.PayerShare)
		}
	}

	if err := d.setPayerShare("50"); err != nil {
		t.Errorf("share equal to total should be accepted: %v", err)
	}
}

func TestSplitDraft_ShareRejectedWithoutTotal(t *testing.T) {
	d := newSplitDraft()
	if err := d.setPayerShare("1"); !IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
	if err := d.setPayerShare("0"); err != nil {
		t.Errorf("zero share should be accepted as input: %v", err)
	}
}

func TestSplitDraft_NonNumericInputUnsets(t *testing.T) {
	d := newSplitDraft()
	d.setBillTotal("100")
	d.setPayerShare("30")

	if err := d.setPayerShare("thirty"); err != nil {
		t.Fatalf("non-numeric input should not be rejected: %v", err)
	}
	if d.PayerShare.Valid {
		t.Error("non-numeric share should be unset")
	}
	if err := d.setBillTotal(""); err != nil {
		t.Fatalf("empty input should not be rejected: %v", err)
	}
	if d.BillTotal.Valid {
		t.Error("empty total should be unset")
	}
	if d.CounterpartyShare().Valid {
		t.Error("counterparty share should be unset without a total")
	}
}

func TestSplitDraft_NegativeTotalRejected(t *testing.T) {
	d := newSplitDraft()
	d.setBillTotal("10")
	if err := d.setBillTotal("-5"); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !d.BillTotal.Decimal.Equal(decimal.NewFromInt(10)) {
		t.Errorf("total changed to %s", d.BillTotal.Decimal)
	}
}

func TestSplitDraft_CounterpartyShareTracksInputs(t *testing.T) {
	tests := []struct {
		total, share, want string
	}{
		{"100", "30", "70"},
		{"100", "", "100"},
		{"100", "100", "0"},
		{"12.34", "0.34", "12"},
	}
	for _, tt := range tests {
		d := newSplitDraft()
		d.setBillTotal(tt.total)
		d.setPayerShare(tt.share)
		got := d.CounterpartyShare()
		if !got.Valid || !got.Decimal.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("total %s share %q: counterparty = %v, want %s", tt.total, tt.share, got, tt.want)
		}
	}
}

func TestSplitDraft_SetPayer(t *testing.T) {
	d := newSplitDraft()
	if err := d.setPayer("Friend"); err != nil {
		t.Fatalf("setPayer failed: %v", err)
	}
	if d.Payer != "friend" {
		t.Errorf("payer = %s, want friend", d.Payer)
	}
	if err := d.setPayer("nobody"); !IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
	if d.Payer != "friend" {
		t.Errorf("payer changed to %s", d.Payer)
	}
}

func TestSplitDraft_OutOfRangeAmountsRejected(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"huge exponent", "1e20000000"},
		{"exponent beyond int32 digits", "1e2000000000"},
		{"tiny exponent", "1e-2000000000"},
		{"zero with huge exponent", "0e20000000"},
		{"too many integer digits", "1234567890123"},
		{"too many fractional digits", "1.23456"},
		{"overlong text", "100.00000000000000000000000000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newSplitDraft()
			if err := d.setBillTotal("100"); err != nil {
				t.Fatalf("setBillTotal failed: %v", err)
			}
			if err := d.setPayerShare("40"); err != nil {
				t.Fatalf("setPayerShare failed: %v", err)
			}

			if err := d.setBillTotal(tt.text); !IsValidation(err) {
				t.Errorf("setBillTotal(%s): expected validation error, got %v", tt.text, err)
			}
			if err := d.setPayerShare(tt.text); !IsValidation(err) {
				t.Errorf("setPayerShare(%s): expected validation error, got %v", tt.text, err)
			}
			if !d.BillTotal.Decimal.Equal(decimal.NewFromInt(100)) {
				t.Errorf("total changed to %s", d.BillTotal.Decimal)
			}
			if !d.PayerShare.Decimal.Equal(decimal.NewFromInt(40)) {
				t.Errorf("share changed to %s", d.PayerShare.Decimal)
			}
		})
	}
}

func TestSplitDraft_LargestAmountsAccepted(t *testing.T) {
	d := newSplitDraft()
	if err := d.setBillTotal("999999999999.9999"); err != nil {
		t.Fatalf("setBillTotal failed: %v", err)
	}
	if err := d.setPayerShare("1e11"); err != nil {
		t.Fatalf("setPayerShare failed: %v", err)
	}
	want := decimal.RequireFromString("899999999999.9999")
	if got := d.CounterpartyShare(); !got.Valid || !got.Decimal.Equal(want) {
		t.Errorf("CounterpartyShare = %v, want %s", got, want)
	}
}
