package ledger

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/friendsplit/internal/models"
)

// DefaultAvatarURL prefills the avatar field of the add-friend form.
const DefaultAvatarURL = "https://i.pravatar.cc/48"

const opAddFriend = "add_friend"

// AddFriendDraft holds the add-friend form fields.
type AddFriendDraft struct {
	Name      string
	AvatarURL string
}

func newAddFriendDraft(defaultAvatar string) AddFriendDraft {
	return AddFriendDraft{AvatarURL: defaultAvatar}
}

// buildFriend validates the form input and constructs a friend with a zero balance.
func buildFriend(id, name, avatarURL string, now int64) (*models.Friend, error) {
	name = strings.TrimSpace(name)
	avatarURL = strings.TrimSpace(avatarURL)
	if name == "" {
		return nil, invalid(opAddFriend, "name", "required")
	}
	if avatarURL == "" {
		return nil, invalid(opAddFriend, "avatar_url", "required")
	}

	return &models.Friend{
		ID:        id,
		Name:      name,
		AvatarURL: avatarURL + "?=" + id,
		Balance:   decimal.Zero,
		CreatedAt: now,
	}, nil
}
