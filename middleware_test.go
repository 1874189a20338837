package social

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/flarexio/core/events"
	"github.com/flarexio/core/pubsub"
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/flarexio/social/friend"
	"github.com/flarexio/social/persistence/inmem"
	"github.com/flarexio/social/user"
)

func newTestService() Service {
	repo := inmem.NewRepository()
	return NewService(repo, repo)
}

type recordingCounter struct {
	mu      *sync.Mutex
	records *[][]string
	lvs     []string
}

func newRecordingCounter() *recordingCounter {
	return &recordingCounter{
		mu:      new(sync.Mutex),
		records: new([][]string),
	}
}

func (c *recordingCounter) With(labelValues ...string) metrics.Counter {
	lvs := append(append([]string{}, c.lvs...), labelValues...)
	return &recordingCounter{c.mu, c.records, lvs}
}

func (c *recordingCounter) Add(delta float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	*c.records = append(*c.records, c.lvs)
}

func TestLoggingMiddleware(t *testing.T) {
	assert := assert.New(t)

	core, logs := observer.New(zapcore.DebugLevel)
	svc := LoggingMiddleware(zap.New(core))(newTestService())

	ctx := context.Background()

	u, err := svc.AddUser(ctx, "alice", "pw1")
	require.NoError(t, err)

	_, err = svc.User(ctx, 99)
	assert.ErrorIs(err, user.ErrUserNotFound)

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)

	assert.Equal("user created", entries[0].Message)
	assert.Equal("add_user", entries[0].ContextMap()["action"])
	assert.EqualValues(u.ID, entries[0].ContextMap()["user_id"])

	assert.Equal(zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(user.ErrUserNotFound.Error(), entries[1].Message)
	assert.Equal("social", entries[1].ContextMap()["service"])
}

func TestInstrumentingMiddleware(t *testing.T) {
	assert := assert.New(t)

	counter := newRecordingCounter()
	svc := InstrumentingMiddleware(counter, discard.NewHistogram())(newTestService())

	ctx := context.Background()

	a, _ := svc.AddUser(ctx, "alice", "pw1")
	b, _ := svc.AddUser(ctx, "bob", "pw2")
	svc.AddFriend(ctx, a.ID, b.ID)
	svc.AddFriend(ctx, b.ID, a.ID)
	svc.Friends(ctx, a.ID)
	svc.User(ctx, 99)

	assert.Equal([][]string{
		{"method", "add_user", "outcome", "success"},
		{"method", "add_user", "outcome", "success"},
		{"method", "add_friend", "outcome", "success"},
		{"method", "add_friend", "outcome", "conflict"},
		{"method", "friends", "outcome", "success"},
		{"method", "user", "outcome", "not_found"},
	}, *counter.records)
}

func TestEventMiddleware(t *testing.T) {
	assert := assert.New(t)

	ps := pubsub.NewSimplePubSub()
	events.ReplaceGlobals(ps)

	received := make(chan *pubsub.Message, 8)
	handler := func(ctx context.Context, msg *pubsub.Message) error {
		received <- msg
		return nil
	}

	require.NoError(t, ps.Subscribe("users.#.created", handler))
	require.NoError(t, ps.Subscribe("friends.#.added", handler))

	svc := EventMiddleware(zap.NewNop())(newTestService())

	ctx := context.Background()

	a, err := svc.AddUser(ctx, "alice", "pw1")
	require.NoError(t, err)

	b, err := svc.AddUser(ctx, "bob", "pw2")
	require.NoError(t, err)

	p, err := svc.AddFriend(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(friend.FriendshipAdded.String(), p.Events()[0].EventName())

	// failed commands and queries notify nothing
	_, err = svc.AddFriend(ctx, b.ID, a.ID)
	assert.ErrorIs(err, friend.ErrFriendshipExists)

	_, err = svc.User(ctx, a.ID)
	assert.NoError(err)

	topics := make([]string, 0, 3)
	for len(topics) < 3 {
		select {
		case msg := <-received:
			topics = append(topics, msg.Topic)
		case <-time.After(5 * time.Second):
			require.FailNow(t, "expected 3 events", "got %v", topics)
		}
	}

	assert.ElementsMatch([]string{
		"users." + a.ID.String() + ".created",
		"users." + b.ID.String() + ".created",
		"friends." + a.ID.String() + ".added",
	}, topics)

	select {
	case msg := <-received:
		assert.Fail("unexpected event", msg.Topic)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestServiceRecordsEvents(t *testing.T) {
	assert := assert.New(t)

	svc := newTestService()
	ctx := context.Background()

	u, err := svc.AddUser(ctx, "alice", "pw1")
	require.NoError(t, err)
	require.Len(t, u.Events(), 1)
	assert.Equal(user.UserCreated.String(), u.Events()[0].EventName())

	e, ok := u.Events()[0].(*user.UserCreatedEvent)
	require.True(t, ok)
	assert.Equal(u.ID, e.UserID)
}

func TestNewPrometheusMetrics(t *testing.T) {
	assert := assert.New(t)

	for i := 0; i < 2; i++ {
		reg := prometheus.NewRegistry()

		counter, latency, err := NewPrometheusMetrics(reg)
		require.NoError(t, err)

		svc := InstrumentingMiddleware(counter, latency)(newTestService())
		svc.AddUser(context.Background(), "alice", "pw1")

		families, err := reg.Gather()
		require.NoError(t, err)
		assert.Len(families, 2)

		// a second registration on the same registry is an error, not a panic
		_, _, err = NewPrometheusMetrics(reg)
		assert.Error(err)
	}
}

func TestOutcome(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("success", Outcome(nil))
	assert.Equal("not_found", Outcome(user.ErrUserNotFound))
	assert.Equal("conflict", Outcome(friend.ErrFriendshipExists))
	assert.Equal("invalid", Outcome(friend.ErrSelfFriendship))
	assert.Equal("invalid", Outcome(ErrInvalidRequest))
	assert.Equal("canceled", Outcome(context.Canceled))
	assert.Equal("internal", Outcome(context.DeadlineExceeded))
	assert.Equal("internal", Outcome(errors.New("disk full")))
}
