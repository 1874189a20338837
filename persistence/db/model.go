package db

import (
	"time"

	"github.com/flarexio/core/events"

	"github.com/flarexio/social/friend"
	"github.com/flarexio/social/user"
)

type User struct {
	ID        int    `gorm:"column:user_id;primaryKey;autoIncrement"`
	Username  string `gorm:"type:varchar(255);not null"`
	Password  string `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time
}

func (User) TableName() string {
	return "users"
}

func NewUser(u *user.User) *User {
	return &User{
		ID:        int(u.ID),
		Username:  u.Username,
		Password:  u.Password,
		CreatedAt: u.CreatedAt,
	}
}

func (u *User) reconstitute() *user.User {
	return &user.User{
		ID:        user.UserID(u.ID),
		Username:  u.Username,
		Password:  u.Password,
		CreatedAt: u.CreatedAt.UTC(),

		EventStore: events.NewEventStore(),
	}
}

// Friend is one directed edge keyed by (user_id, friend_user_id).
// Both columns reference users; deleting a referenced user is restricted.
type Friend struct {
	UserID       int `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	FriendUserID int `gorm:"column:friend_user_id;primaryKey;autoIncrement:false;index"`
	CreatedAt    time.Time

	User       *User `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	FriendUser *User `gorm:"foreignKey:FriendUserID;references:ID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
}

func (Friend) TableName() string {
	return "friends"
}

func NewFriend(f *friend.Friendship) *Friend {
	return &Friend{
		UserID:       int(f.UserID),
		FriendUserID: int(f.FriendUserID),
		CreatedAt:    f.CreatedAt,
	}
}

func (f *Friend) reconstitute() *friend.Friendship {
	return &friend.Friendship{
		UserID:       user.UserID(f.UserID),
		FriendUserID: user.UserID(f.FriendUserID),
		CreatedAt:    f.CreatedAt.UTC(),
	}
}
