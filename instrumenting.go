package social

import (
	"context"
	"errors"
	"time"

	"github.com/go-kit/kit/metrics"

	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"

	"github.com/flarexio/social/friend"
	"github.com/flarexio/social/user"
)

// NewPrometheusMetrics builds the request counter and latency summary
// and registers them with reg.
func NewPrometheusMetrics(reg stdprometheus.Registerer) (metrics.Counter, metrics.Histogram, error) {
	fieldKeys := []string{"method", "outcome"}

	counterVec := stdprometheus.NewCounterVec(stdprometheus.CounterOpts{
		Namespace: "social",
		Subsystem: "service",
		Name:      "request_count",
		Help:      "Number of requests received.",
	}, fieldKeys)

	latencyVec := stdprometheus.NewSummaryVec(stdprometheus.SummaryOpts{
		Namespace: "social",
		Subsystem: "service",
		Name:      "request_latency_seconds",
		Help:      "Total duration of requests in seconds.",
	}, fieldKeys)

	if err := reg.Register(counterVec); err != nil {
		return nil, nil, err
	}

	if err := reg.Register(latencyVec); err != nil {
		reg.Unregister(counterVec)
		return nil, nil, err
	}

	return kitprometheus.NewCounter(counterVec), kitprometheus.NewSummary(latencyVec), nil
}

func InstrumentingMiddleware(counter metrics.Counter, latency metrics.Histogram) ServiceMiddleware {
	return func(next Service) Service {
		return &instrumentingMiddleware{counter, latency, next}
	}
}

type instrumentingMiddleware struct {
	requestCount   metrics.Counter
	requestLatency metrics.Histogram
	next           Service
}

func (mw *instrumentingMiddleware) observe(method string, begin time.Time, err error) {
	lvs := []string{"method", method, "outcome", Outcome(err)}
	mw.requestCount.With(lvs...).Add(1)
	mw.requestLatency.With(lvs...).Observe(time.Since(begin).Seconds())
}

func (mw *instrumentingMiddleware) AddUser(ctx context.Context, username string, password string) (u *user.User, err error) {
	defer func(begin time.Time) {
		mw.observe("add_user", begin, err)
	}(time.Now())

	return mw.next.AddUser(ctx, username, password)
}

func (mw *instrumentingMiddleware) User(ctx context.Context, id user.UserID) (u *user.User, err error) {
	defer func(begin time.Time) {
		mw.observe("user", begin, err)
	}(time.Now())

	return mw.next.User(ctx, id)
}

func (mw *instrumentingMiddleware) AddFriend(ctx context.Context, userID user.UserID, friendUserID user.UserID) (p *friend.Pair, err error) {
	defer func(begin time.Time) {
		mw.observe("add_friend", begin, err)
	}(time.Now())

	return mw.next.AddFriend(ctx, userID, friendUserID)
}

func (mw *instrumentingMiddleware) Friends(ctx context.Context, userID user.UserID) (friends []*friend.Friendship, err error) {
	defer func(begin time.Time) {
		mw.observe("friends", begin, err)
	}(time.Now())

	return mw.next.Friends(ctx, userID)
}

// Outcome classifies an error for metrics and breaker accounting.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, user.ErrUserNotFound):
		return "not_found"
	case errors.Is(err, friend.ErrFriendshipExists):
		return "conflict"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, friend.ErrSelfFriendship),
		errors.Is(err, user.ErrInvalidID),
		errors.Is(err, ErrInvalidRequest):
		return "invalid"
	default:
		return "internal"
	}
}
