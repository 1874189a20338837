// Package repotest holds the behaviour every persistence driver must share.
package repotest

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/flarexio/social/friend"
	"github.com/flarexio/social/user"
)

type Repository interface {
	user.Repository
	friend.Repository
}

type RepositoryTestSuite struct {
	suite.Suite
	Repo Repository

	// Concurrent enables the racing pair writes test for drivers whose
	// transactions tolerate parallel writers.
	Concurrent bool

	alice *user.User
	bob   *user.User
	carol *user.User
}

func (suite *RepositoryTestSuite) newUser(username string, password string) *user.User {
	u, err := user.NewUser(username, password)
	suite.Require().NoError(err)

	err = suite.Repo.Store(context.Background(), u)
	suite.Require().NoError(err)

	return u
}

func (suite *RepositoryTestSuite) SetupTest() {
	// 每個測試前清空資料
	suite.Require().NoError(suite.Repo.Truncate())

	suite.alice = suite.newUser("alice", "pw1")
	suite.bob = suite.newUser("bob", "pw2")
	suite.carol = suite.newUser("carol", "pw3")
}

func (suite *RepositoryTestSuite) pair(a *user.User, b *user.User) *friend.Pair {
	p, err := friend.NewPair(a.ID, b.ID)
	suite.Require().NoError(err)
	return p
}

func (suite *RepositoryTestSuite) TestStoreAssignsID() {
	suite.Positive(int(suite.alice.ID))
	suite.NotEqual(suite.alice.ID, suite.bob.ID)
	suite.NotEqual(suite.bob.ID, suite.carol.ID)
	suite.NotEqual(suite.alice.ID, suite.carol.ID)
}

func (suite *RepositoryTestSuite) TestFind() {
	ctx := context.Background()

	u, err := suite.Repo.Find(ctx, suite.alice.ID)
	suite.Require().NoError(err)

	suite.Equal(suite.alice.ID, u.ID)
	suite.Equal("alice", u.Username)
	suite.Equal(suite.alice.Password, u.Password)
	suite.True(u.VerifyPassword("pw1"))
	suite.Equal(suite.alice.CreatedAt.UnixNano(), u.CreatedAt.UnixNano())
	suite.Equal(time.UTC, u.CreatedAt.Location())
}

func (suite *RepositoryTestSuite) TestFindNotFound() {
	_, err := suite.Repo.Find(context.Background(), 999999)
	suite.ErrorIs(err, user.ErrUserNotFound)
}

func (suite *RepositoryTestSuite) TestStorePair() {
	ctx := context.Background()

	p := suite.pair(suite.alice, suite.bob)

	err := suite.Repo.StorePair(ctx, p)
	suite.Require().NoError(err)

	aliceFriends, err := suite.Repo.ListByUser(ctx, suite.alice.ID)
	suite.Require().NoError(err)
	suite.Len(aliceFriends, 1)
	suite.Equal(suite.alice.ID, aliceFriends[0].UserID)
	suite.Equal(suite.bob.ID, aliceFriends[0].FriendUserID)
	suite.Equal(p.Friend.CreatedAt.UnixNano(), aliceFriends[0].CreatedAt.UnixNano())

	bobFriends, err := suite.Repo.ListByUser(ctx, suite.bob.ID)
	suite.Require().NoError(err)
	suite.Len(bobFriends, 1)
	suite.Equal(suite.bob.ID, bobFriends[0].UserID)
	suite.Equal(suite.alice.ID, bobFriends[0].FriendUserID)
}

func (suite *RepositoryTestSuite) TestStorePairDuplicate() {
	ctx := context.Background()

	err := suite.Repo.StorePair(ctx, suite.pair(suite.alice, suite.bob))
	suite.Require().NoError(err)

	err = suite.Repo.StorePair(ctx, suite.pair(suite.alice, suite.bob))
	suite.ErrorIs(err, friend.ErrFriendshipExists)

	err = suite.Repo.StorePair(ctx, suite.pair(suite.bob, suite.alice))
	suite.ErrorIs(err, friend.ErrFriendshipExists)

	// row set unchanged
	aliceFriends, err := suite.Repo.ListByUser(ctx, suite.alice.ID)
	suite.Require().NoError(err)
	suite.Len(aliceFriends, 1)

	bobFriends, err := suite.Repo.ListByUser(ctx, suite.bob.ID)
	suite.Require().NoError(err)
	suite.Len(bobFriends, 1)
}

func (suite *RepositoryTestSuite) TestStorePairUnknownUser() {
	ctx := context.Background()

	ghost := &user.User{ID: 999999}

	err := suite.Repo.StorePair(ctx, suite.pair(suite.alice, ghost))
	suite.ErrorIs(err, user.ErrUserNotFound)

	err = suite.Repo.StorePair(ctx, suite.pair(ghost, suite.alice))
	suite.ErrorIs(err, user.ErrUserNotFound)

	// neither edge persisted
	exists, err := suite.Repo.Exists(ctx, suite.alice.ID, ghost.ID)
	suite.Require().NoError(err)
	suite.False(exists)

	friends, err := suite.Repo.ListByUser(ctx, suite.alice.ID)
	suite.Require().NoError(err)
	suite.Empty(friends)

	friends, err = suite.Repo.ListByUser(ctx, ghost.ID)
	suite.Require().NoError(err)
	suite.Empty(friends)
}

func (suite *RepositoryTestSuite) TestExistsEitherDirection() {
	ctx := context.Background()

	exists, err := suite.Repo.Exists(ctx, suite.alice.ID, suite.bob.ID)
	suite.Require().NoError(err)
	suite.False(exists)

	err = suite.Repo.StorePair(ctx, suite.pair(suite.alice, suite.bob))
	suite.Require().NoError(err)

	exists, err = suite.Repo.Exists(ctx, suite.alice.ID, suite.bob.ID)
	suite.Require().NoError(err)
	suite.True(exists)

	exists, err = suite.Repo.Exists(ctx, suite.bob.ID, suite.alice.ID)
	suite.Require().NoError(err)
	suite.True(exists)

	exists, err = suite.Repo.Exists(ctx, suite.alice.ID, suite.carol.ID)
	suite.Require().NoError(err)
	suite.False(exists)
}

func (suite *RepositoryTestSuite) TestListByUserEmpty() {
	friends, err := suite.Repo.ListByUser(context.Background(), suite.carol.ID)
	suite.Require().NoError(err)
	suite.NotNil(friends)
	suite.Len(friends, 0)
}

func (suite *RepositoryTestSuite) TestListByUserMany() {
	ctx := context.Background()

	suite.Require().NoError(suite.Repo.StorePair(ctx, suite.pair(suite.alice, suite.bob)))
	suite.Require().NoError(suite.Repo.StorePair(ctx, suite.pair(suite.carol, suite.alice)))

	friends, err := suite.Repo.ListByUser(ctx, suite.alice.ID)
	suite.Require().NoError(err)
	suite.Len(friends, 2)

	ids := []user.UserID{friends[0].FriendUserID, friends[1].FriendUserID}
	suite.ElementsMatch([]user.UserID{suite.bob.ID, suite.carol.ID}, ids)

	for _, f := range friends {
		suite.Equal(suite.alice.ID, f.UserID)
	}
}

func (suite *RepositoryTestSuite) TestConcurrentStorePair() {
	if !suite.Concurrent {
		suite.T().Skip("driver serialises writers")
		return
	}

	ctx := context.Background()

	const n = 8

	// half the callers add the pair reversed
	pairs := make([]*friend.Pair, n)
	for i := range pairs {
		pairs[i] = suite.pair(suite.alice, suite.bob)
		if i%2 == 1 {
			pairs[i] = suite.pair(suite.bob, suite.alice)
		}
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)

	for _, p := range pairs {
		wg.Add(1)
		go func(p *friend.Pair) {
			defer wg.Done()
			errs <- suite.Repo.StorePair(ctx, p)
		}(p)
	}

	wg.Wait()
	close(errs)

	var succeeded int
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}

		suite.ErrorIs(err, friend.ErrFriendshipExists)
	}

	suite.Equal(1, succeeded)

	friends, err := suite.Repo.ListByUser(ctx, suite.alice.ID)
	suite.Require().NoError(err)
	suite.Len(friends, 1)
}
