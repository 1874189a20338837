package friend

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/flarexio/social/user"
)

type EventName int

const (
	FriendshipAdded EventName = iota
)

func (name EventName) String() string {
	switch name {
	case FriendshipAdded:
		return "friendship_added"
	default:
		return "unknown"
	}
}

type FriendshipAddedEvent struct {
	ID           string      `json:"id"`
	UserID       user.UserID `json:"userId"`
	FriendUserID user.UserID `json:"friendUserId"`
	OccurredAt   time.Time   `json:"occurredAt"`
}

func NewFriendshipAddedEvent(p *Pair) *FriendshipAddedEvent {
	return &FriendshipAddedEvent{
		ID:           ulid.Make().String(),
		UserID:       p.Friend.UserID,
		FriendUserID: p.Friend.FriendUserID,
		OccurredAt:   user.Now(),
	}
}

func (e *FriendshipAddedEvent) EventName() string {
	return FriendshipAdded.String()
}

// Topic: friends.<userId>.added
func (e *FriendshipAddedEvent) Topic() string {
	return "friends." + e.UserID.String() + ".added"
}
