package social

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/flarexio/social/friend"
	"github.com/flarexio/social/persistence/inmem"
	"github.com/flarexio/social/user"
)

type serviceTestSuite struct {
	suite.Suite
	repo *inmem.Repository
	svc  Service
}

func (suite *serviceTestSuite) SetupTest() {
	repo := inmem.NewRepository()

	suite.repo = repo
	suite.svc = NewService(repo, repo)
}

func (suite *serviceTestSuite) addUser(username string, password string) *user.User {
	u, err := suite.svc.AddUser(context.Background(), username, password)
	suite.Require().NoError(err)
	return u
}

func (suite *serviceTestSuite) TestScenario() {
	ctx := context.Background()

	alice := suite.addUser("alice", "pw1")
	bob := suite.addUser("bob", "pw2")

	suite.Equal(user.UserID(1), alice.ID)
	suite.Equal(user.UserID(2), bob.ID)

	p, err := suite.svc.AddFriend(ctx, 1, 2)
	suite.Require().NoError(err)
	suite.Equal(user.UserID(1), p.Friend.UserID)
	suite.Equal(user.UserID(2), p.Friend.FriendUserID)
	suite.Equal(user.UserID(2), p.ReciprocalFriend.UserID)
	suite.Equal(user.UserID(1), p.ReciprocalFriend.FriendUserID)

	friends, err := suite.svc.Friends(ctx, 1)
	suite.Require().NoError(err)
	suite.Len(friends, 1)
	suite.Equal(user.UserID(2), friends[0].FriendUserID)

	friends, err = suite.svc.Friends(ctx, 2)
	suite.Require().NoError(err)
	suite.Len(friends, 1)
	suite.Equal(user.UserID(1), friends[0].FriendUserID)

	_, err = suite.svc.AddFriend(ctx, 2, 1)
	suite.ErrorIs(err, friend.ErrFriendshipExists)
}

func (suite *serviceTestSuite) TestAddUserThenUser() {
	ctx := context.Background()

	created := suite.addUser("alice", "pw1")

	found, err := suite.svc.User(ctx, created.ID)
	suite.Require().NoError(err)
	suite.Equal(created.ID, found.ID)
	suite.Equal(created.Username, found.Username)
	suite.Equal(created.Password, found.Password)
	suite.Equal(created.CreatedAt, found.CreatedAt)
	suite.True(found.VerifyPassword("pw1"))
}

func (suite *serviceTestSuite) TestAddUserLongPassword() {
	ctx := context.Background()

	password := strings.Repeat("p", 100)

	u, err := suite.svc.AddUser(ctx, "alice", password)
	suite.Require().NoError(err)

	found, err := suite.svc.User(ctx, u.ID)
	suite.Require().NoError(err)
	suite.True(found.VerifyPassword(password))
	suite.False(found.VerifyPassword(password[:72]))
}

func (suite *serviceTestSuite) TestAddUserNoUsernameUniqueness() {
	a := suite.addUser("same", "pw")
	b := suite.addUser("same", "pw")

	suite.NotEqual(a.ID, b.ID)
}

func (suite *serviceTestSuite) TestUserNotFound() {
	_, err := suite.svc.User(context.Background(), 42)
	suite.ErrorIs(err, user.ErrUserNotFound)
}

func (suite *serviceTestSuite) TestAddFriendTwice() {
	ctx := context.Background()

	a := suite.addUser("alice", "pw1")
	b := suite.addUser("bob", "pw2")

	_, err := suite.svc.AddFriend(ctx, a.ID, b.ID)
	suite.Require().NoError(err)

	_, err = suite.svc.AddFriend(ctx, a.ID, b.ID)
	suite.ErrorIs(err, friend.ErrFriendshipExists)

	for _, id := range []user.UserID{a.ID, b.ID} {
		friends, err := suite.svc.Friends(ctx, id)
		suite.Require().NoError(err)
		suite.Len(friends, 1)
	}
}

func (suite *serviceTestSuite) TestAddFriendUnknownUser() {
	ctx := context.Background()

	a := suite.addUser("alice", "pw1")

	_, err := suite.svc.AddFriend(ctx, a.ID, 99)
	suite.ErrorIs(err, user.ErrUserNotFound)

	friends, err := suite.svc.Friends(ctx, a.ID)
	suite.Require().NoError(err)
	suite.Empty(friends)

	friends, err = suite.svc.Friends(ctx, 99)
	suite.Require().NoError(err)
	suite.Empty(friends)
}

func (suite *serviceTestSuite) TestAddFriendSelf() {
	ctx := context.Background()

	a := suite.addUser("alice", "pw1")

	_, err := suite.svc.AddFriend(ctx, a.ID, a.ID)
	suite.ErrorIs(err, friend.ErrSelfFriendship)

	friends, err := suite.svc.Friends(ctx, a.ID)
	suite.Require().NoError(err)
	suite.Empty(friends)
}

func (suite *serviceTestSuite) TestFriendsEmpty() {
	a := suite.addUser("alice", "pw1")

	friends, err := suite.svc.Friends(context.Background(), a.ID)
	suite.Require().NoError(err)
	suite.NotNil(friends)
	suite.Len(friends, 0)
}

func (suite *serviceTestSuite) TestConcurrentAddFriend() {
	ctx := context.Background()

	a := suite.addUser("alice", "pw1")
	b := suite.addUser("bob", "pw2")

	const n = 16

	var wg sync.WaitGroup
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(reverse bool) {
			defer wg.Done()

			var err error
			if reverse {
				_, err = suite.svc.AddFriend(ctx, b.ID, a.ID)
			} else {
				_, err = suite.svc.AddFriend(ctx, a.ID, b.ID)
			}

			errs <- err
		}(i%2 == 1)
	}

	wg.Wait()
	close(errs)

	var succeeded, conflicted int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case suite.ErrorIs(err, friend.ErrFriendshipExists):
			conflicted++
		}
	}

	suite.Equal(1, succeeded)
	suite.Equal(n-1, conflicted)
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(serviceTestSuite))
}
