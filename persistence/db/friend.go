package db

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/flarexio/social/friend"
	"github.com/flarexio/social/user"
)

func (repo *Repository) StorePair(ctx context.Context, p *friend.Pair) error {
	a := int(p.Friend.UserID)
	b := int(p.Friend.FriendUserID)

	records := []*Friend{
		NewFriend(p.Friend),
		NewFriend(p.ReciprocalFriend),
	}

	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&User{}).
			Where("user_id IN ?", []int{a, b}).
			Count(&count).
			Error; err != nil {
			return err
		}

		if count != 2 {
			return user.ErrUserNotFound
		}

		return tx.Omit(clause.Associations).Create(&records).Error
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, gorm.ErrForeignKeyViolated):
		return user.ErrUserNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return friend.ErrFriendshipExists
	default:
		return errors.Wrap(err, "failed to store friendship")
	}
}

func (repo *Repository) Exists(ctx context.Context, a user.UserID, b user.UserID) (bool, error) {
	var count int64

	result := repo.db.WithContext(ctx).
		Model(&Friend{}).
		Where("(user_id = ? AND friend_user_id = ?) OR (user_id = ? AND friend_user_id = ?)",
			int(a), int(b), int(b), int(a)).
		Count(&count)

	if err := result.Error; err != nil {
		return false, errors.Wrap(err, "failed to check friendship")
	}

	return count > 0, nil
}

func (repo *Repository) ListByUser(ctx context.Context, id user.UserID) ([]*friend.Friendship, error) {
	var records []*Friend

	result := repo.db.WithContext(ctx).Where("user_id = ?", int(id)).Find(&records)
	if err := result.Error; err != nil {
		return nil, errors.Wrap(err, "failed to list friends")
	}

	friends := make([]*friend.Friendship, 0, len(records))
	for _, f := range records {
		friends = append(friends, f.reconstitute())
	}

	return friends, nil
}
