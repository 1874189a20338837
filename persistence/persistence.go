package persistence

import (
	"errors"

	"github.com/flarexio/social/conf"
	"github.com/flarexio/social/friend"
	"github.com/flarexio/social/persistence/db"
	"github.com/flarexio/social/persistence/inmem"
	"github.com/flarexio/social/persistence/kv"
	"github.com/flarexio/social/user"
)

// Repository is the combined store every driver provides. Users and
// friendships share one backend so a pair write can check both users
// in the same unit of work.
type Repository interface {
	user.Repository
	friend.Repository
}

func NewRepository(cfg conf.Persistence) (Repository, error) {
	switch cfg.Driver {
	case conf.SQLite, conf.MySQL, conf.Postgres:
		repo, err := db.NewRepository(cfg)
		if err != nil {
			return nil, err
		}

		return repo, nil

	case conf.BadgerDB:
		repo, err := kv.NewRepository(cfg)
		if err != nil {
			return nil, err
		}

		return repo, nil

	case conf.InMem:
		return inmem.NewRepository(), nil

	default:
		return nil, errors.New("driver not supported")
	}
}
