package db

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/flarexio/social/user"
)

func (repo *Repository) Store(ctx context.Context, u *user.User) error {
	record := NewUser(u) // convert Domain to Data model

	if err := repo.db.WithContext(ctx).Create(record).Error; err != nil {
		return errors.Wrap(err, "failed to store user")
	}

	u.ID = user.UserID(record.ID)
	return nil
}

func (repo *Repository) Find(ctx context.Context, id user.UserID) (*user.User, error) {
	var u *User

	result := repo.db.WithContext(ctx).Take(&u, "user_id = ?", int(id))
	if err := result.Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user")
	}

	return u.reconstitute(), nil
}
