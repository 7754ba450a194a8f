package persistence

import (
	"context"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// BreakerPersister stops calling a failing backend for a while. With the
// breaker open, Load and Save fail with gobreaker.ErrOpenState.
type BreakerPersister struct {
	next   Persister
	cb     *gobreaker.CircuitBreaker[struct{}]
	logger *zap.Logger
}

func NewBreakerPersister(next Persister, failures uint32, cooldown time.Duration, logger *zap.Logger) *BreakerPersister {
	settings := gobreaker.Settings{
		Name:    "cart-persistence",
		Timeout: cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}
	return &BreakerPersister{
		next:   next,
		cb:     gobreaker.NewCircuitBreaker[struct{}](settings),
		logger: logger,
	}
}

func (b *BreakerPersister) Load(ctx context.Context, key string) (domain.CartState, bool, error) {
	var (
		state domain.CartState
		ok    bool
	)
	_, err := b.cb.Execute(func() (struct{}, error) {
		var err error
		state, ok, err = b.next.Load(ctx, key)
		return struct{}{}, err
	})
	if err != nil {
		b.logger.Warn("cart load failed", zap.String("key", key), zap.Error(err))
		return nil, false, err
	}
	return state, ok, nil
}

func (b *BreakerPersister) Save(ctx context.Context, key string, state domain.CartState) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, b.next.Save(ctx, key, state)
	})
	return err
}

func (b *BreakerPersister) State() gobreaker.State {
	return b.cb.State()
}
