package kv

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"github.com/flarexio/social/friend"
	"github.com/flarexio/social/user"
)

type Friend struct {
	UserID       int       `json:"user_id"`
	FriendUserID int       `json:"friend_user_id"`
	CreatedAt    time.Time `json:"created_at"`
}

func (repo *Repository) StorePair(ctx context.Context, p *friend.Pair) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	a := p.Friend.UserID
	b := p.Friend.FriendUserID

	err := repo.db.Update(func(txn *badger.Txn) error {
		for _, id := range []user.UserID{a, b} {
			if _, err := txn.Get(userKey(id)); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					return user.ErrUserNotFound
				}

				return err
			}
		}

		for _, f := range p.Edges() {
			key := friendKey(f.UserID, f.FriendUserID)

			_, err := txn.Get(key)
			if err == nil {
				return friend.ErrFriendshipExists
			}

			if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}

			record := Friend{
				UserID:       int(f.UserID),
				FriendUserID: int(f.FriendUserID),
				CreatedAt:    f.CreatedAt,
			}

			bs, err := json.Marshal(&record)
			if err != nil {
				return err
			}

			if err := txn.Set(key, bs); err != nil {
				return err
			}
		}

		return nil
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, user.ErrUserNotFound):
		return user.ErrUserNotFound
	case errors.Is(err, friend.ErrFriendshipExists),
		errors.Is(err, badger.ErrConflict):
		// users are never rewritten, so a conflict means a concurrent
		// write of the same edge keys
		return friend.ErrFriendshipExists
	default:
		return errors.Wrap(err, "failed to store friendship")
	}
}

func (repo *Repository) Exists(ctx context.Context, a user.UserID, b user.UserID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var exists bool
	err := repo.db.View(func(txn *badger.Txn) error {
		for _, key := range [][]byte{friendKey(a, b), friendKey(b, a)} {
			_, err := txn.Get(key)
			if err == nil {
				exists = true
				return nil
			}

			if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return false, errors.Wrap(err, "failed to check friendship")
	}

	return exists, nil
}

func (repo *Repository) ListByUser(ctx context.Context, id user.UserID) ([]*friend.Friendship, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	friends := make([]*friend.Friendship, 0)
	err := repo.db.View(func(txn *badger.Txn) error {
		prefix := friendPrefix(id)

		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var record Friend
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			}); err != nil {
				return err
			}

			friends = append(friends, &friend.Friendship{
				UserID:       user.UserID(record.UserID),
				FriendUserID: user.UserID(record.FriendUserID),
				CreatedAt:    record.CreatedAt,
			})
		}

		return nil
	})

	if err != nil {
		return nil, errors.Wrap(err, "failed to list friends")
	}

	return friends, nil
}
