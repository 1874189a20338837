package friend

import (
	"context"

	"github.com/flarexio/social/user"
)

type Repository interface {
	// Command

	// StorePair writes both edges in one unit of work. It returns
	// ErrFriendshipExists on a composite key collision and
	// user.ErrUserNotFound when either side does not exist.
	StorePair(ctx context.Context, p *Pair) error

	// Query

	Exists(ctx context.Context, a user.UserID, b user.UserID) (bool, error)
	ListByUser(ctx context.Context, id user.UserID) ([]*Friendship, error)

	Truncate() error
	Close() error
}
