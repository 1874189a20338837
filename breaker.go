package social

import (
	"github.com/go-kit/kit/circuitbreaker"
	"github.com/go-kit/kit/endpoint"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/flarexio/social/conf"
)

// CircuitBreaker trips on infrastructure failures only; not found, conflict
// and invalid input are successful outcomes for the breaker.
func CircuitBreaker(name string, cfg conf.Breaker, log *zap.Logger) endpoint.Middleware {
	threshold := cfg.ConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			return Outcome(err) != "internal"
		},
	})

	return circuitbreaker.Gobreaker(cb)
}
