package kv

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"github.com/flarexio/core/events"

	"github.com/flarexio/social/user"
)

type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"created_at"`
}

func (repo *Repository) Store(ctx context.Context, u *user.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	id, err := repo.nextID()
	if err != nil {
		return errors.Wrap(err, "failed to assign user id")
	}

	record := User{
		ID:        int(id),
		Username:  u.Username,
		Password:  u.Password,
		CreatedAt: u.CreatedAt,
	}

	bs, err := json.Marshal(&record)
	if err != nil {
		return err
	}

	if err := repo.db.Update(func(txn *badger.Txn) error {
		return txn.Set(userKey(id), bs)
	}); err != nil {
		return errors.Wrap(err, "failed to store user")
	}

	u.ID = id
	return nil
}

func (repo *Repository) Find(ctx context.Context, id user.UserID) (*user.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var record User
	err := repo.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(id))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})

	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, user.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user")
	}

	u := &user.User{
		ID:        user.UserID(record.ID),
		Username:  record.Username,
		Password:  record.Password,
		CreatedAt: record.CreatedAt.UTC(),

		EventStore: events.NewEventStore(),
	}

	return u, nil
}
