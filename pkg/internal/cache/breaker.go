package cache

import (
	"context"
	"time"

	gocache "github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// BreakerCache guards a cache backend with a circuit breaker.
// While the breaker is open every call fails fast with gobreaker.ErrOpenState,
// which callers treat like any other backend failure.
type BreakerCache struct {
	next gocache.CacheInterface[any]
	cb   *gobreaker.CircuitBreaker
}

var _ gocache.CacheInterface[any] = (*BreakerCache)(nil)

func NewBreakerCache(name string, next gocache.CacheInterface[any], threshold uint32, timeout time.Duration) *BreakerCache {
	if threshold == 0 {
		threshold = 5
	}
	return &BreakerCache{
		next: next,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			IsSuccessful: func(err error) bool {
				return err == nil || IsNotFound(err)
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
					Msg("Cache circuit breaker changed state...")
			},
		}),
	}
}

func (b *BreakerCache) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerCache) Get(ctx context.Context, key any) (any, error) {
	return b.cb.Execute(func() (any, error) {
		return b.next.Get(ctx, key)
	})
}

func (b *BreakerCache) Set(ctx context.Context, key any, object any, options ...store.Option) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.next.Set(ctx, key, object, options...)
	})
	return err
}

func (b *BreakerCache) Delete(ctx context.Context, key any) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.next.Delete(ctx, key)
	})
	return err
}

func (b *BreakerCache) Invalidate(ctx context.Context, options ...store.InvalidateOption) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.next.Invalidate(ctx, options...)
	})
	return err
}

func (b *BreakerCache) Clear(ctx context.Context) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.next.Clear(ctx)
	})
	return err
}

func (b *BreakerCache) GetType() string {
	return b.next.GetType()
}
