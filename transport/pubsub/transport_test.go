package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/flarexio/social"
	"github.com/flarexio/social/friend"
	"github.com/flarexio/social/persistence/inmem"
	"github.com/flarexio/social/user"
)

type fakeRequest struct {
	subject string
	data    []byte

	resp []byte
	code string
	desc string
}

func (r *fakeRequest) Respond(data []byte, opts ...micro.RespondOpt) error {
	r.resp = data
	return nil
}

func (r *fakeRequest) RespondJSON(v any, opts ...micro.RespondOpt) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return r.Respond(data, opts...)
}

func (r *fakeRequest) Error(code string, description string, data []byte, opts ...micro.RespondOpt) error {
	r.code = code
	r.desc = description
	return nil
}

func (r *fakeRequest) Data() []byte           { return r.data }
func (r *fakeRequest) Headers() micro.Headers { return nil }
func (r *fakeRequest) Subject() string        { return r.subject }
func (r *fakeRequest) Reply() string          { return "" }

// loopback routes requests straight into micro handlers.
type loopback struct {
	handlers map[string]micro.HandlerFunc
}

func (l *loopback) Request(subj string, data []byte, timeout time.Duration) (*nats.Msg, error) {
	h, ok := l.handlers[subj]
	if !ok {
		return nil, nats.ErrNoResponders
	}

	req := &fakeRequest{subject: subj, data: data}
	h(req)

	msg := nats.NewMsg(subj)
	msg.Data = req.resp
	if req.code != "" {
		msg.Header.Set(micro.ErrorCodeHeader, req.code)
		msg.Header.Set(micro.ErrorHeader, req.desc)
	}

	return msg, nil
}

type pubsubTestSuite struct {
	suite.Suite
	conn    *loopback
	clients social.EndpointSet
}

func (suite *pubsubTestSuite) SetupTest() {
	repo := inmem.NewRepository()
	svc := social.NewService(repo, repo)
	endpoints := social.NewEndpointSet(svc)

	suite.conn = &loopback{
		handlers: map[string]micro.HandlerFunc{
			"social.users.add":    AddUserHandler(endpoints.AddUser),
			"social.users.get":    UserHandler(endpoints.User),
			"social.friends.add":  AddFriendHandler(endpoints.AddFriend),
			"social.friends.list": FriendsHandler(endpoints.Friends),
		},
	}

	suite.clients = NewClientEndpointSet(suite.conn, "social")
}

func (suite *pubsubTestSuite) addUser(username string) *user.User {
	resp, err := suite.clients.AddUser(context.Background(), social.AddUserRequest{
		Username: username,
		Password: "secret",
	})
	suite.Require().NoError(err)
	return resp.(*user.User)
}

func (suite *pubsubTestSuite) TestScenario() {
	ctx := context.Background()

	alice := suite.addUser("alice")
	bob := suite.addUser("bob")

	suite.Equal(user.UserID(1), alice.ID)
	suite.Equal(user.UserID(2), bob.ID)
	suite.Empty(alice.Password)

	resp, err := suite.clients.AddFriend(ctx, social.AddFriendRequest{
		UserID:       alice.ID,
		FriendUserID: bob.ID,
	})
	suite.Require().NoError(err)

	p := resp.(*friend.Pair)
	suite.Equal(bob.ID, p.Friend.FriendUserID)
	suite.Equal(alice.ID, p.ReciprocalFriend.FriendUserID)

	resp, err = suite.clients.Friends(ctx, bob.ID)
	suite.Require().NoError(err)
	suite.Len(resp.([]*friend.Friendship), 1)

	_, err = suite.clients.AddFriend(ctx, social.AddFriendRequest{
		UserID:       bob.ID,
		FriendUserID: alice.ID,
	})
	suite.ErrorIs(err, friend.ErrFriendshipExists)
}

func (suite *pubsubTestSuite) TestUserNotFound() {
	_, err := suite.clients.User(context.Background(), user.UserID(9))
	suite.ErrorIs(err, user.ErrUserNotFound)
}

func (suite *pubsubTestSuite) TestSelfFriendship() {
	alice := suite.addUser("alice")

	_, err := suite.clients.AddFriend(context.Background(), social.AddFriendRequest{
		UserID:       alice.ID,
		FriendUserID: alice.ID,
	})
	suite.ErrorIs(err, friend.ErrSelfFriendship)
}

func (suite *pubsubTestSuite) TestInvalidPayload() {
	req := &fakeRequest{data: []byte("{")}
	UserHandler(nil)(req)
	suite.Equal("400", req.code)

	req = &fakeRequest{data: []byte(`{"userId":0}`)}
	FriendsHandler(nil)(req)
	suite.Equal("400", req.code)
	suite.Equal(user.ErrInvalidID.Error(), req.desc)

	req = &fakeRequest{data: []byte(`{"username":"alice"}`)}
	AddUserHandler(nil)(req)
	suite.Equal("400", req.code)
}

func (suite *pubsubTestSuite) TestUserFactory() {
	alice := suite.addUser("alice")

	ep, closer, err := UserFactory(suite.conn)("social")
	suite.Require().NoError(err)
	suite.Nil(closer)

	resp, err := ep(context.Background(), alice.ID)
	suite.Require().NoError(err)
	suite.Equal("alice", resp.(*user.User).Username)
}

func TestPubSubTestSuite(t *testing.T) {
	suite.Run(t, new(pubsubTestSuite))
}

func TestErrorCode(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(404, ErrorCode(user.ErrUserNotFound))
	assert.Equal(409, ErrorCode(friend.ErrFriendshipExists))
	assert.Equal(400, ErrorCode(friend.ErrSelfFriendship))
	assert.Equal(400, ErrorCode(social.ErrInvalidRequest))
	assert.Equal(500, ErrorCode(errors.New("boom")))
}
