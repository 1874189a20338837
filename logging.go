package social

import (
	"context"

	"go.uber.org/zap"

	"github.com/flarexio/social/friend"
	"github.com/flarexio/social/user"
)

func LoggingMiddleware(log *zap.Logger) ServiceMiddleware {
	return func(next Service) Service {
		return &loggingMiddleware{
			log.With(
				zap.String("service", "social"),
				zap.String("middleware", "logging"),
			),
			next,
		}
	}
}

type loggingMiddleware struct {
	log  *zap.Logger
	next Service
}

func (mw *loggingMiddleware) AddUser(ctx context.Context, username string, password string) (*user.User, error) {
	log := mw.log.With(
		zap.String("action", "add_user"),
		zap.String("username", username),
	)

	u, err := mw.next.AddUser(ctx, username, password)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Info("user created", zap.Int("user_id", int(u.ID)))
	return u, nil
}

func (mw *loggingMiddleware) User(ctx context.Context, id user.UserID) (*user.User, error) {
	log := mw.log.With(
		zap.String("action", "user"),
		zap.Int("user_id", int(id)),
	)

	u, err := mw.next.User(ctx, id)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Debug("user found")
	return u, nil
}

func (mw *loggingMiddleware) AddFriend(ctx context.Context, userID user.UserID, friendUserID user.UserID) (*friend.Pair, error) {
	log := mw.log.With(
		zap.String("action", "add_friend"),
		zap.Int("user_id", int(userID)),
		zap.Int("friend_user_id", int(friendUserID)),
	)

	p, err := mw.next.AddFriend(ctx, userID, friendUserID)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Info("friendship added")
	return p, nil
}

func (mw *loggingMiddleware) Friends(ctx context.Context, userID user.UserID) ([]*friend.Friendship, error) {
	log := mw.log.With(
		zap.String("action", "friends"),
		zap.Int("user_id", int(userID)),
	)

	friends, err := mw.next.Friends(ctx, userID)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Debug("friends listed", zap.Int("count", len(friends)))
	return friends, nil
}
