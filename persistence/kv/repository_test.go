package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/flarexio/social/conf"
	"github.com/flarexio/social/persistence/repotest"
	"github.com/flarexio/social/user"
)

type kvRepositoryTestSuite struct {
	repotest.RepositoryTestSuite
	repo *Repository
}

func (suite *kvRepositoryTestSuite) SetupSuite() {
	cfg := conf.Persistence{
		Driver: conf.BadgerDB,
		Name:   "social",
		InMem:  true,
	}

	repo, err := NewRepository(cfg)
	if err != nil {
		suite.Fail(err.Error())
		return
	}

	suite.repo = repo
	suite.Repo = repo
	suite.Concurrent = true
}

func (suite *kvRepositoryTestSuite) TestTruncateRestartsSequence() {
	ctx := context.Background()

	suite.Require().NoError(suite.repo.Truncate())

	u, err := user.NewUser("alice", "pw1")
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repo.Store(ctx, u))

	suite.Equal(user.UserID(1), u.ID)
}

func (suite *kvRepositoryTestSuite) TearDownSuite() {
	suite.repo.Truncate()
	suite.repo.Close()
}

func TestKVRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(kvRepositoryTestSuite))
}
