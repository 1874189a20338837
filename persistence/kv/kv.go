package kv

import (
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"github.com/flarexio/social/conf"
	"github.com/flarexio/social/user"
)

const seqBandwidth = 100

var seqKey = []byte("seq/users")

// Keys are zero padded so that prefix iteration follows numeric order.
func userKey(id user.UserID) []byte {
	return []byte(fmt.Sprintf("users/%020d", int(id)))
}

func friendPrefix(id user.UserID) []byte {
	return []byte(fmt.Sprintf("friends/%020d/", int(id)))
}

func friendKey(a user.UserID, b user.UserID) []byte {
	return []byte(fmt.Sprintf("friends/%020d/%020d", int(a), int(b)))
}

func NewRepository(cfg conf.Persistence) (*Repository, error) {
	opts := badger.DefaultOptions(cfg.Host + "/" + cfg.Name)
	if cfg.InMem {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}

	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open badger")
	}

	seq, err := db.GetSequence(seqKey, seqBandwidth)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to lease user sequence")
	}

	repo := new(Repository)
	repo.db = db
	repo.seq = seq
	return repo, nil
}

// Repository implements both user.Repository and friend.Repository on one
// badger instance.
type Repository struct {
	db   *badger.DB
	seq  *badger.Sequence
	mu   sync.Mutex // guards seq across Truncate
	once sync.Once
}

func (repo *Repository) nextID() (user.UserID, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	n, err := repo.seq.Next()
	if err != nil {
		return 0, err
	}

	return user.UserID(n + 1), nil
}

// Truncate drops every key and restarts the id sequence.
func (repo *Repository) Truncate() error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if err := repo.seq.Release(); err != nil {
		return err
	}

	if err := repo.db.DropAll(); err != nil {
		return err
	}

	seq, err := repo.db.GetSequence(seqKey, seqBandwidth)
	if err != nil {
		return err
	}

	repo.seq = seq
	return nil
}

func (repo *Repository) Close() error {
	var err error
	repo.once.Do(func() {
		repo.mu.Lock()
		defer repo.mu.Unlock()

		if e := repo.seq.Release(); e != nil {
			err = e
		}

		if e := repo.db.Close(); e != nil {
			err = e
		}
	})

	return err
}
