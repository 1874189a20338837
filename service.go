package social

import (
	"context"

	"github.com/flarexio/social/friend"
	"github.com/flarexio/social/user"
)

type Service interface {
	AddUser(ctx context.Context, username string, password string) (*user.User, error)
	User(ctx context.Context, id user.UserID) (*user.User, error)
	AddFriend(ctx context.Context, userID user.UserID, friendUserID user.UserID) (*friend.Pair, error)
	Friends(ctx context.Context, userID user.UserID) ([]*friend.Friendship, error)
}

type ServiceMiddleware func(Service) Service

func NewService(users user.Repository, friends friend.Repository) Service {
	return &service{users, friends}
}

type service struct {
	users   user.Repository
	friends friend.Repository
}

func (svc *service) AddUser(ctx context.Context, username string, password string) (*user.User, error) {
	u, err := user.NewUser(username, password)
	if err != nil {
		return nil, err
	}

	if err := svc.users.Store(ctx, u); err != nil {
		return nil, err
	}

	u.Created()
	return u, nil
}

func (svc *service) User(ctx context.Context, id user.UserID) (*user.User, error) {
	return svc.users.Find(ctx, id)
}

func (svc *service) AddFriend(ctx context.Context, userID user.UserID, friendUserID user.UserID) (*friend.Pair, error) {
	p, err := friend.NewPair(userID, friendUserID)
	if err != nil {
		return nil, err
	}

	// Ensure the unordered pair is new
	exists, err := svc.friends.Exists(ctx, userID, friendUserID)
	if err != nil {
		return nil, err
	}

	if exists {
		return nil, friend.ErrFriendshipExists
	}

	// A concurrent add of the same pair loses here with ErrFriendshipExists
	if err := svc.friends.StorePair(ctx, p); err != nil {
		return nil, err
	}

	p.Added()
	return p, nil
}

func (svc *service) Friends(ctx context.Context, userID user.UserID) ([]*friend.Friendship, error) {
	return svc.friends.ListByUser(ctx, userID)
}
