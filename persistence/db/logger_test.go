package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	gormlogger "gorm.io/gorm/logger"

	"github.com/flarexio/social/friend"
	"github.com/flarexio/social/user"
)

func TestLogger(t *testing.T) {
	assert := assert.New(t)

	core, logs := observer.New(zapcore.DebugLevel)
	l := NewLogger(zap.New(core))

	ctx := context.Background()
	fc := func() (string, int64) {
		return "INSERT INTO friends ...", 0
	}

	l.Trace(ctx, time.Now(), fc, gorm.ErrDuplicatedKey)
	l.Trace(ctx, time.Now(), fc, gorm.ErrForeignKeyViolated)
	l.Trace(ctx, time.Now(), fc, gorm.ErrRecordNotFound)
	assert.Equal(0, logs.Len())

	l.Trace(ctx, time.Now(), fc, errors.New("no such table: friends"))
	if assert.Equal(1, logs.Len()) {
		entry := logs.All()[0]
		assert.Equal(zapcore.WarnLevel, entry.Level)
		assert.Contains(entry.Message, "no such table: friends")
	}

	// a silenced copy stays silent on real errors too
	silent := l.LogMode(gormlogger.Silent)
	silent.Trace(ctx, time.Now(), fc, errors.New("boom"))
	assert.Equal(1, logs.Len())
}

func (suite *dbRepositoryTestSuite) TestDuplicatePairNotLogged() {
	core, logs := observer.New(zapcore.DebugLevel)

	db := suite.repo.DB().Session(&gorm.Session{
		Logger: NewLogger(zap.New(core)),
	})

	repo := &Repository{db: db}
	ctx := context.Background()

	u1, _ := user.NewUser("ivan", "pw")
	u2, _ := user.NewUser("judy", "pw")
	suite.Require().NoError(repo.Store(ctx, u1))
	suite.Require().NoError(repo.Store(ctx, u2))

	p, err := friend.NewPair(u1.ID, u2.ID)
	suite.Require().NoError(err)
	suite.Require().NoError(repo.StorePair(ctx, p))

	p, err = friend.NewPair(u2.ID, u1.ID)
	suite.Require().NoError(err)

	err = repo.StorePair(ctx, p)
	suite.ErrorIs(err, friend.ErrFriendshipExists)
	suite.Equal(0, logs.Len())
}
