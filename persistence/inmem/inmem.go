package inmem

import (
	"context"
	"sync"
	"time"

	"github.com/flarexio/core/events"

	"github.com/flarexio/social/friend"
	"github.com/flarexio/social/user"
)

type record struct {
	username  string
	password  string
	createdAt time.Time
}

type edge struct {
	from user.UserID
	to   user.UserID
}

func NewRepository() *Repository {
	repo := new(Repository)
	repo.reset()
	return repo
}

// Repository implements both user.Repository and friend.Repository.
// A single lock makes the pair insert one critical section.
type Repository struct {
	sync.RWMutex
	lastID  user.UserID
	users   map[user.UserID]record
	edges   map[edge]friend.Friendship
	byOwner map[user.UserID][]edge // insertion order
}

func (repo *Repository) reset() {
	repo.lastID = 0
	repo.users = make(map[user.UserID]record)
	repo.edges = make(map[edge]friend.Friendship)
	repo.byOwner = make(map[user.UserID][]edge)
}

func (repo *Repository) Store(ctx context.Context, u *user.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	repo.Lock()
	defer repo.Unlock()

	repo.lastID++
	u.ID = repo.lastID
	repo.users[u.ID] = record{
		username:  u.Username,
		password:  u.Password,
		createdAt: u.CreatedAt,
	}

	return nil
}

func (repo *Repository) Find(ctx context.Context, id user.UserID) (*user.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	repo.RLock()
	defer repo.RUnlock()

	r, ok := repo.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}

	u := &user.User{
		ID:        id,
		Username:  r.username,
		Password:  r.password,
		CreatedAt: r.createdAt,

		EventStore: events.NewEventStore(),
	}

	return u, nil
}

func (repo *Repository) StorePair(ctx context.Context, p *friend.Pair) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	repo.Lock()
	defer repo.Unlock()

	edges := p.Edges()
	for _, f := range edges {
		if _, ok := repo.users[f.UserID]; !ok {
			return user.ErrUserNotFound
		}

		if _, ok := repo.edges[edge{f.UserID, f.FriendUserID}]; ok {
			return friend.ErrFriendshipExists
		}
	}

	for _, f := range edges {
		e := edge{f.UserID, f.FriendUserID}
		repo.edges[e] = *f
		repo.byOwner[f.UserID] = append(repo.byOwner[f.UserID], e)
	}

	return nil
}

func (repo *Repository) Exists(ctx context.Context, a user.UserID, b user.UserID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	repo.RLock()
	defer repo.RUnlock()

	_, forward := repo.edges[edge{a, b}]
	_, reverse := repo.edges[edge{b, a}]
	return forward || reverse, nil
}

func (repo *Repository) ListByUser(ctx context.Context, id user.UserID) ([]*friend.Friendship, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	repo.RLock()
	defer repo.RUnlock()

	friends := make([]*friend.Friendship, 0, len(repo.byOwner[id]))
	for _, e := range repo.byOwner[id] {
		f := repo.edges[e]
		friends = append(friends, &f)
	}

	return friends, nil
}

func (repo *Repository) Truncate() error {
	repo.Lock()
	defer repo.Unlock()

	repo.reset()
	return nil
}

func (repo *Repository) Close() error {
	return nil
}
