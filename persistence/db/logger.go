package db

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	gormlogger "gorm.io/gorm/logger"
)

// NewLogger writes gorm's slow query and error lines through zap.
// Duplicate key and foreign key errors are mapped to domain errors by
// the repository and are not logged.
func NewLogger(log *zap.Logger) gormlogger.Interface {
	w, err := zap.NewStdLogAt(log.With(zap.String("infra", "persistence")), zap.WarnLevel)
	if err != nil {
		w = zap.NewStdLog(log)
	}

	l := gormlogger.New(w, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Error,
		IgnoreRecordNotFoundError: true,
	})

	return &logger{l}
}

type logger struct {
	gormlogger.Interface
}

func (l *logger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return &logger{l.Interface.LogMode(level)}
}

func (l *logger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		errors.Is(err, gorm.ErrForeignKeyViolated) {
		err = nil
	}

	l.Interface.Trace(ctx, begin, fc, err)
}
