package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/go-kit/kit/endpoint"
	"github.com/nats-io/nats.go/micro"

	"github.com/flarexio/social"
	"github.com/flarexio/social/friend"
	"github.com/flarexio/social/user"
)

type UserQuery struct {
	UserID user.UserID `json:"userId"`
}

// ErrorCode maps service errors to micro error codes.
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		return 404

	case errors.Is(err, friend.ErrFriendshipExists):
		return 409

	case errors.Is(err, friend.ErrSelfFriendship),
		errors.Is(err, user.ErrInvalidID),
		errors.Is(err, social.ErrInvalidRequest):
		return 400

	default:
		return 500
	}
}

func respondError(r micro.Request, err error) {
	r.Error(strconv.Itoa(ErrorCode(err)), err.Error(), nil)
}

func AddUserHandler(endpoint endpoint.Endpoint) micro.HandlerFunc {
	return func(r micro.Request) {
		var req social.AddUserRequest
		if err := json.Unmarshal(r.Data(), &req); err != nil {
			r.Error("400", err.Error(), nil)
			return
		}

		if req.Username == "" || req.Password == "" {
			respondError(r, social.ErrInvalidRequest)
			return
		}

		ctx := context.Background()
		resp, err := endpoint(ctx, req)
		if err != nil {
			respondError(r, err)
			return
		}

		r.RespondJSON(&resp)
	}
}

func UserHandler(endpoint endpoint.Endpoint) micro.HandlerFunc {
	return func(r micro.Request) {
		var query UserQuery
		if err := json.Unmarshal(r.Data(), &query); err != nil {
			r.Error("400", err.Error(), nil)
			return
		}

		if query.UserID <= 0 {
			respondError(r, user.ErrInvalidID)
			return
		}

		ctx := context.Background()
		resp, err := endpoint(ctx, query.UserID)
		if err != nil {
			respondError(r, err)
			return
		}

		r.RespondJSON(&resp)
	}
}

func AddFriendHandler(endpoint endpoint.Endpoint) micro.HandlerFunc {
	return func(r micro.Request) {
		var req social.AddFriendRequest
		if err := json.Unmarshal(r.Data(), &req); err != nil {
			r.Error("400", err.Error(), nil)
			return
		}

		ctx := context.Background()
		resp, err := endpoint(ctx, req)
		if err != nil {
			respondError(r, err)
			return
		}

		r.RespondJSON(&resp)
	}
}

func FriendsHandler(endpoint endpoint.Endpoint) micro.HandlerFunc {
	return func(r micro.Request) {
		var query UserQuery
		if err := json.Unmarshal(r.Data(), &query); err != nil {
			r.Error("400", err.Error(), nil)
			return
		}

		if query.UserID <= 0 {
			respondError(r, user.ErrInvalidID)
			return
		}

		ctx := context.Background()
		resp, err := endpoint(ctx, query.UserID)
		if err != nil {
			respondError(r, err)
			return
		}

		r.RespondJSON(&resp)
	}
}

// AddEndpoints registers the social endpoints under the service's
// "social" group, e.g. social.users.add.
func AddEndpoints(srv micro.Service, endpoints social.EndpointSet) error {
	root := srv.AddGroup("social")

	handlers := []struct {
		name    string
		subject string
		handler micro.HandlerFunc
	}{
		{"users_add", "users.add", AddUserHandler(endpoints.AddUser)},
		{"users_get", "users.get", UserHandler(endpoints.User)},
		{"friends_add", "friends.add", AddFriendHandler(endpoints.AddFriend)},
		{"friends_list", "friends.list", FriendsHandler(endpoints.Friends)},
	}

	for _, h := range handlers {
		err := root.AddEndpoint(h.name, h.handler, micro.WithEndpointSubject(h.subject))
		if err != nil {
			return err
		}
	}

	return nil
}
