package ledger

import "github.com/mmynk/friendsplit/internal/models"

// Observer is notified of completed and rejected operations.
type Observer interface {
	FriendAdded()
	SplitSubmitted(payer models.Payer)
	Rejected(op, field string)
}

type nopObserver struct{}

func (nopObserver) FriendAdded()                {}
func (nopObserver) SplitSubmitted(models.Payer) {}
func (nopObserver) Rejected(string, string)     {}
