package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
	gocache "github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisStore "github.com/eko/gocache/store/redis/v4"
	ristrettoStore "github.com/eko/gocache/store/ristretto/v4"
	"github.com/redis/go-redis/v9"
)

const (
	DriverRistretto = "ristretto"
	DriverRedis     = "redis"
)

type Config struct {
	Driver string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// BreakerThreshold is the count of consecutive backend failures that opens the breaker.
	BreakerThreshold uint32
	BreakerTimeout   time.Duration
}

func DefaultConfig() Config {
	return Config{
		Driver:           DriverRistretto,
		RedisAddr:        "localhost:6379",
		BreakerThreshold: 5,
		BreakerTimeout:   30 * time.Second,
	}
}

// Store is a gocache manager bound to either an in-process ristretto cache or a redis server.
type Store struct {
	driver  string
	manager *gocache.Cache[any]
	local   *ristretto.Cache
	remote  *redis.Client
}

var _ gocache.CacheInterface[any] = (*Store)(nil)

func NewStore(cfg Config) (*Store, error) {
	switch cfg.Driver {
	case "", DriverRistretto:
		client, err := ristretto.NewCache(&ristretto.Config{
			NumCounters: 1e7,
			MaxCost:     1 << 30,
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("unable to create ristretto cache: %v", err)
		}
		return &Store{
			driver:  DriverRistretto,
			manager: gocache.New[any](ristrettoStore.NewRistretto(client)),
			local:   client,
		}, nil
	case DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return &Store{
			driver:  DriverRedis,
			manager: gocache.New[any](redisStore.NewRedis(client)),
			remote:  client,
		}, nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}

func (s *Store) Get(ctx context.Context, key any) (any, error) {
	return s.manager.Get(ctx, key)
}

// Set writes the value and, for ristretto, waits until the write is visible to readers.
func (s *Store) Set(ctx context.Context, key any, object any, options ...store.Option) error {
	if err := s.manager.Set(ctx, key, object, options...); err != nil {
		return err
	}
	if s.local != nil {
		s.local.Wait()
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key any) error {
	return s.manager.Delete(ctx, key)
}

func (s *Store) Invalidate(ctx context.Context, options ...store.InvalidateOption) error {
	return s.manager.Invalidate(ctx, options...)
}

func (s *Store) Clear(ctx context.Context) error {
	return s.manager.Clear(ctx)
}

func (s *Store) GetType() string {
	return s.driver
}

func (s *Store) Ping(ctx context.Context) error {
	if s.remote == nil {
		return nil
	}
	return s.remote.Ping(ctx).Err()
}

func (s *Store) Close() error {
	if s.local != nil {
		s.local.Close()
	}
	if s.remote != nil {
		return s.remote.Close()
	}
	return nil
}

// IsNotFound reports whether err is the miss signal of a gocache store.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var ptr *store.NotFound
	if errors.As(err, &ptr) {
		return true
	}
	var val store.NotFound
	return errors.As(err, &val)
}
