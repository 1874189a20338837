package user

import (
	"time"

	"github.com/oklog/ulid/v2"
)

type EventName int

const (
	UserCreated EventName = iota
)

func (name EventName) String() string {
	switch name {
	case UserCreated:
		return "user_created"
	default:
		return "unknown"
	}
}

type Event struct {
	ID         string    `json:"id"`
	UserID     UserID    `json:"userId"`
	OccurredAt time.Time `json:"occurredAt"`
}

type UserCreatedEvent struct {
	Event
	Username string `json:"username"`
}

func NewUserCreatedEvent(u *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		Event: Event{
			ID:         ulid.Make().String(),
			UserID:     u.ID,
			OccurredAt: Now(),
		},
		Username: u.Username,
	}
}

func (e *UserCreatedEvent) EventName() string {
	return UserCreated.String()
}

// Topic: users.<id>.created
func (e *UserCreatedEvent) Topic() string {
	return "users." + e.UserID.String() + ".created"
}
