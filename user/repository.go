package user

import "context"

type Repository interface {
	// Command

	Store(ctx context.Context, u *User) error

	// Query

	Find(ctx context.Context, id UserID) (*User, error)

	Truncate() error
	Close() error
}
