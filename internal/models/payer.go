package models

import (
	"fmt"
	"strings"
)

// Payer identifies who paid the bill in a two-person split.
type Payer string

const (
	PayerUser   Payer = "user"
	PayerFriend Payer = "friend"
)

// ParsePayer converts text input into a Payer. Matching is case-insensitive.
func ParsePayer(s string) (Payer, error) {
	switch Payer(strings.ToLower(strings.TrimSpace(s))) {
	case PayerUser:
		return PayerUser, nil
	case PayerFriend:
		return PayerFriend, nil
	}
	return "", fmt.Errorf("unknown payer %q", s)
}

func (p Payer) String() string { return string(p) }
