package user

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/flarexio/core/events"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidID    = errors.New("invalid user id")
)

type UserID int // AggregateRoot

func ParseID(id string) (UserID, error) {
	n, err := strconv.Atoi(id)
	if err != nil || n <= 0 {
		return 0, ErrInvalidID
	}

	return UserID(n), nil
}

func (id UserID) String() string {
	return strconv.Itoa(int(id))
}

type User struct {
	ID        UserID    `json:"userId"`
	Username  string    `json:"username"`
	Password  string    `json:"-"` // bcrypt hash
	CreatedAt time.Time `json:"createdAt"`

	events.EventStore `json:"-"`
}

// Now returns the current time at the precision every store keeps.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// NewUser builds an unsaved user; the repository assigns the ID on Store.
func NewUser(username string, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword(digest(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &User{
		Username:  username,
		Password:  string(hash),
		CreatedAt: Now(),

		EventStore: events.NewEventStore(),
	}

	return u, nil
}

// digest keeps bcrypt input at 44 bytes, under its 72 byte limit,
// for passwords of any length.
func digest(password string) []byte {
	sum := sha256.Sum256([]byte(password))

	dst := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(dst, sum[:])
	return dst
}

func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), digest(password))
	return err == nil
}

// Created records UserCreatedEvent once the store has assigned the ID.
func (u *User) Created() {
	e := NewUserCreatedEvent(u)
	u.AddEvent(e)
}
