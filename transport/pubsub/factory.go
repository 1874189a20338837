package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/sd"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"

	"github.com/flarexio/social"
	"github.com/flarexio/social/friend"
	"github.com/flarexio/social/user"
)

const requestTimeout = 5000 * time.Millisecond

type Requester interface {
	Request(subj string, data []byte, timeout time.Duration) (*nats.Msg, error)
}

// UserFactory builds user lookup endpoints against remote instances,
// where the instance is the subject prefix of a social service.
func UserFactory(nc Requester) sd.Factory {
	return func(instance string) (endpoint.Endpoint, io.Closer, error) {
		return UserEndpoint(nc, instance+".users.get"), nil, nil
	}
}

// NewClientEndpointSet returns endpoints that call a remote social service
// over NATS request-reply.
func NewClientEndpointSet(nc Requester, prefix string) social.EndpointSet {
	return social.EndpointSet{
		AddUser:   AddUserEndpoint(nc, prefix+".users.add"),
		User:      UserEndpoint(nc, prefix+".users.get"),
		AddFriend: AddFriendEndpoint(nc, prefix+".friends.add"),
		Friends:   FriendsEndpoint(nc, prefix+".friends.list"),
	}
}

func call(ctx context.Context, nc Requester, topic string, req any, resp any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(req)
	if err != nil {
		return err
	}

	msg, err := nc.Request(topic, data, requestTimeout)
	if err != nil {
		return err
	}

	if code := msg.Header.Get(micro.ErrorCodeHeader); code != "" {
		return decodeError(code, msg.Header.Get(micro.ErrorHeader))
	}

	return json.Unmarshal(msg.Data, resp)
}

func decodeError(code string, description string) error {
	switch code {
	case "404":
		return user.ErrUserNotFound
	case "409":
		return friend.ErrFriendshipExists
	}

	switch description {
	case friend.ErrSelfFriendship.Error():
		return friend.ErrSelfFriendship
	case user.ErrInvalidID.Error():
		return user.ErrInvalidID
	case social.ErrInvalidRequest.Error():
		return social.ErrInvalidRequest
	}

	return errors.New(description)
}

func AddUserEndpoint(nc Requester, topic string) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		req, ok := request.(social.AddUserRequest)
		if !ok {
			return nil, social.ErrInvalidRequest
		}

		var u *user.User
		if err := call(ctx, nc, topic, req, &u); err != nil {
			return nil, err
		}

		return u, nil
	}
}

func UserEndpoint(nc Requester, topic string) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		id, ok := request.(user.UserID)
		if !ok {
			return nil, social.ErrInvalidRequest
		}

		var u *user.User
		if err := call(ctx, nc, topic, UserQuery{id}, &u); err != nil {
			return nil, err
		}

		return u, nil
	}
}

func AddFriendEndpoint(nc Requester, topic string) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		req, ok := request.(social.AddFriendRequest)
		if !ok {
			return nil, social.ErrInvalidRequest
		}

		var p *friend.Pair
		if err := call(ctx, nc, topic, req, &p); err != nil {
			return nil, err
		}

		return p, nil
	}
}

func FriendsEndpoint(nc Requester, topic string) endpoint.Endpoint {
	return func(ctx context.Context, request any) (response any, err error) {
		id, ok := request.(user.UserID)
		if !ok {
			return nil, social.ErrInvalidRequest
		}

		friends := make([]*friend.Friendship, 0)
		if err := call(ctx, nc, topic, UserQuery{id}, &friends); err != nil {
			return nil, err
		}

		return friends, nil
	}
}
