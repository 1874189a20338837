package friend

import (
	"errors"
	"time"

	"github.com/flarexio/core/events"

	"github.com/flarexio/social/user"
)

var (
	ErrFriendshipExists = errors.New("friendship already exists")
	ErrSelfFriendship   = errors.New("cannot befriend oneself")
)

// Friendship is one directed edge: UserID considers FriendUserID a friend.
type Friendship struct {
	UserID       user.UserID `json:"userId"`
	FriendUserID user.UserID `json:"friendUserId"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// Pair holds both directed edges of one unordered friendship.
// Repositories persist the two edges together or not at all.
type Pair struct {
	Friend           *Friendship `json:"friend"`
	ReciprocalFriend *Friendship `json:"reciprocalFriend"`

	events.EventStore `json:"-"`
}

func NewPair(userID user.UserID, friendUserID user.UserID) (*Pair, error) {
	if userID == friendUserID {
		return nil, ErrSelfFriendship
	}

	now := user.Now()

	p := &Pair{
		Friend: &Friendship{
			UserID:       userID,
			FriendUserID: friendUserID,
			CreatedAt:    now,
		},
		ReciprocalFriend: &Friendship{
			UserID:       friendUserID,
			FriendUserID: userID,
			CreatedAt:    now,
		},

		EventStore: events.NewEventStore(),
	}

	return p, nil
}

// Added records FriendshipAddedEvent once both edges are stored.
func (p *Pair) Added() {
	e := NewFriendshipAddedEvent(p)
	p.AddEvent(e)
}

func (p *Pair) Edges() []*Friendship {
	return []*Friendship{p.Friend, p.ReciprocalFriend}
}
