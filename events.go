package social

import (
	"context"

	"go.uber.org/zap"

	"github.com/flarexio/social/friend"
	"github.com/flarexio/social/user"
)

// EventMiddleware notifies the events recorded by successful commands
// to the global pubsub. Requires events.ReplaceGlobals to have been called.
func EventMiddleware(log *zap.Logger) ServiceMiddleware {
	return func(next Service) Service {
		return &eventMiddleware{
			log.With(
				zap.String("service", "social"),
				zap.String("middleware", "event"),
			),
			next,
		}
	}
}

type eventMiddleware struct {
	log  *zap.Logger
	next Service
}

func (mw *eventMiddleware) AddUser(ctx context.Context, username string, password string) (*user.User, error) {
	u, err := mw.next.AddUser(ctx, username, password)
	if err != nil {
		return nil, err
	}

	for _, e := range u.Events() {
		mw.log.Debug("notify",
			zap.String("event", e.EventName()),
			zap.String("user_id", u.ID.String()),
		)
	}

	u.Notify()
	return u, nil
}

func (mw *eventMiddleware) User(ctx context.Context, id user.UserID) (*user.User, error) {
	return mw.next.User(ctx, id)
}

func (mw *eventMiddleware) AddFriend(ctx context.Context, userID user.UserID, friendUserID user.UserID) (*friend.Pair, error) {
	p, err := mw.next.AddFriend(ctx, userID, friendUserID)
	if err != nil {
		return nil, err
	}

	for _, e := range p.Events() {
		mw.log.Debug("notify",
			zap.String("event", e.EventName()),
			zap.String("user_id", userID.String()),
		)
	}

	p.Notify()
	return p, nil
}

func (mw *eventMiddleware) Friends(ctx context.Context, userID user.UserID) ([]*friend.Friendship, error) {
	return mw.next.Friends(ctx, userID)
}
