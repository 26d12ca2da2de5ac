// Package api defines the request and response messages of the
// friendsplit.v1 FriendService. Messages travel as JSON; amounts are
// decimal strings.
package api

import "github.com/shopspring/decimal"

// SessionTokenHeader is the response header carrying a renewed session token.
// Clients replace their token with it when present.
const SessionTokenHeader = "Session-Token"

// Mode values reported in State.Mode.
const (
	ModeNone         = "none"
	ModeAddingFriend = "adding_friend"
	ModeSplitting    = "splitting"
)

// Split draft fields accepted by EditSplitRequest.Field.
const (
	FieldBillTotal  = "bill_total"
	FieldPayerShare = "payer_share"
	FieldPayer      = "payer"
)

// Friend is one entry of the friend list.
type Friend struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	AvatarURL string          `json:"avatar_url"`
	Balance   decimal.Decimal `json:"balance"`
	Standing  string          `json:"standing"` // settled | owes_you | you_owe
	Label     string          `json:"label"`
	Selected  bool            `json:"selected"`
	CreatedAt int64           `json:"created_at"`
}

// AddFriendDraft holds the add-friend form fields.
type AddFriendDraft struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// SplitDraft is the pending split against the selected friend.
// Unset amounts are null.
type SplitDraft struct {
	FriendID          string              `json:"friend_id"`
	FriendName        string              `json:"friend_name"`
	BillTotal         decimal.NullDecimal `json:"bill_total"`
	PayerShare        decimal.NullDecimal `json:"payer_share"`
	CounterpartyShare decimal.NullDecimal `json:"counterparty_share"`
	Payer             string              `json:"payer"`
}

// Summary totals balances across all friends.
type Summary struct {
	FriendCount int             `json:"friend_count"`
	Settled     int             `json:"settled"` // Friends with a zero balance
	TotalOwed   decimal.Decimal `json:"total_owed"`
	TotalOwing  decimal.Decimal `json:"total_owing"`
	Net         decimal.Decimal `json:"net"`
}

// State is a full snapshot of a session.
type State struct {
	Mode             string          `json:"mode"`
	SelectedFriendID string          `json:"selected_friend_id,omitempty"`
	Friends          []Friend        `json:"friends"`
	AddFriend        *AddFriendDraft `json:"add_friend,omitempty"`
	Split            *SplitDraft     `json:"split,omitempty"`
	Summary          Summary         `json:"summary"`
}

// Expense is one submitted split.
type Expense struct {
	ID         string          `json:"id"`
	FriendID   string          `json:"friend_id"`
	BillTotal  decimal.Decimal `json:"bill_total"`
	PayerShare decimal.Decimal `json:"payer_share"`
	Payer      string          `json:"payer"`
	Delta      decimal.Decimal `json:"delta"`
	CreatedAt  int64           `json:"created_at"`
}

type StartSessionRequest struct{}

type StartSessionResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
	State     *State `json:"state"`
}

type EndSessionRequest struct{}

type EndSessionResponse struct{}

type GetStateRequest struct{}

type GetStateResponse struct {
	State *State `json:"state"`
}

type ToggleAddFriendFormRequest struct{}

type ToggleAddFriendFormResponse struct {
	State *State `json:"state"`
}

type SubmitAddFriendRequest struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

type SubmitAddFriendResponse struct {
	Friend *Friend `json:"friend"`
	State  *State  `json:"state"`
}

type ToggleSelectRequest struct {
	FriendID string `json:"friend_id"`
}

type ToggleSelectResponse struct {
	State *State `json:"state"`
}

// EditSplitRequest sets one split draft field from text input.
type EditSplitRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type EditSplitResponse struct {
	State *State `json:"state"`
}

type SubmitSplitRequest struct{}

type SubmitSplitResponse struct {
	Friend  *Friend         `json:"friend"`
	Delta   decimal.Decimal `json:"delta"`
	Expense *Expense        `json:"expense,omitempty"`
	State   *State          `json:"state"`
}

type ListExpensesRequest struct {
	FriendID string `json:"friend_id"`
}

type ListExpensesResponse struct {
	Expenses []Expense `json:"expenses"`
}
