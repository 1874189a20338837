package social

import (
	"context"
	"errors"

	"github.com/go-kit/kit/endpoint"

	"github.com/flarexio/social/user"
)

var ErrInvalidRequest = errors.New("invalid request")

type EndpointSet struct {
	AddUser   endpoint.Endpoint
	User      endpoint.Endpoint
	AddFriend endpoint.Endpoint
	Friends   endpoint.Endpoint
}

func NewEndpointSet(svc Service) EndpointSet {
	return EndpointSet{
		AddUser:   AddUserEndpoint(svc),
		User:      UserEndpoint(svc),
		AddFriend: AddFriendEndpoint(svc),
		Friends:   FriendsEndpoint(svc),
	}
}

// Wrap applies mw to every endpoint of the set.
func (set EndpointSet) Wrap(mw endpoint.Middleware) EndpointSet {
	return EndpointSet{
		AddUser:   mw(set.AddUser),
		User:      mw(set.User),
		AddFriend: mw(set.AddFriend),
		Friends:   mw(set.Friends),
	}
}

type AddUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func AddUserEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		req, ok := request.(AddUserRequest)
		if !ok {
			return nil, ErrInvalidRequest
		}

		u, err := svc.AddUser(ctx, req.Username, req.Password)
		if err != nil {
			return nil, err
		}

		return u, nil
	}
}

func UserEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		id, ok := request.(user.UserID)
		if !ok {
			return nil, ErrInvalidRequest
		}

		u, err := svc.User(ctx, id)
		if err != nil {
			return nil, err
		}

		return u, nil
	}
}

type AddFriendRequest struct {
	UserID       user.UserID `json:"userId" binding:"required"`
	FriendUserID user.UserID `json:"friendUserId" binding:"required"`
}

func AddFriendEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		req, ok := request.(AddFriendRequest)
		if !ok {
			return nil, ErrInvalidRequest
		}

		p, err := svc.AddFriend(ctx, req.UserID, req.FriendUserID)
		if err != nil {
			return nil, err
		}

		return p, nil
	}
}

func FriendsEndpoint(svc Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		id, ok := request.(user.UserID)
		if !ok {
			return nil, ErrInvalidRequest
		}

		friends, err := svc.Friends(ctx, id)
		if err != nil {
			return nil, err
		}

		return friends, nil
	}
}
