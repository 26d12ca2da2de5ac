package ledger

// ModeKind enumerates what the user is currently doing.
type ModeKind int

const (
	ModeNone ModeKind = iota
	ModeAddingFriend
	ModeSplitting
)

func (k ModeKind) String() string {
	switch k {
	case ModeAddingFriend:
		return "adding_friend"
	case ModeSplitting:
		return "splitting"
	default:
		return "none"
	}
}

// Mode is the interaction mode of a session. The add-friend form and the
// friend selection are mutually exclusive: FriendID is set only in ModeSplitting.
type Mode struct {
	Kind     ModeKind
	FriendID string
}

// Selected returns the selected friend's ID, if any.
func (m Mode) Selected() (string, bool) {
	if m.Kind == ModeSplitting {
		return m.FriendID, true
	}
	return "", false
}

// toggleSelect deselects friendID when it is already selected and selects it
// otherwise. Selecting closes the add-friend form.
func (m Mode) toggleSelect(friendID string) Mode {
	if m.Kind == ModeSplitting && m.FriendID == friendID {
		return Mode{}
	}
	return Mode{Kind: ModeSplitting, FriendID: friendID}
}

// toggleAddFriend opens the add-friend form, or closes it when open.
// Opening the form clears any selection.
func (m Mode) toggleAddFriend() Mode {
	if m.Kind == ModeAddingFriend {
		return Mode{}
	}
	return Mode{Kind: ModeAddingFriend}
}
