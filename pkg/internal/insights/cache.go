package insights

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	localCache "git.solsynth.dev/hypernet/questionnaire/pkg/internal/cache"
	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/models"
	gocache "github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
)

const CacheTag = "category-insights"

func GetInsightCacheKey(categoryID uint) string {
	return fmt.Sprintf("category-insight#%d", categoryID)
}

// Cache stores full category insights in a gocache backend and ranks them for eviction.
// The backend enforces expiration, the ranking enforces capacity.
type Cache struct {
	backend  gocache.CacheInterface[any]
	capacity int
	ttl      time.Duration
	now      func() time.Time

	mu          sync.Mutex
	rank        *ranking
	epoch       uint64
	generations map[uint]uint64
}

func NewCache(backend gocache.CacheInterface[any], capacity int, ttl time.Duration) *Cache {
	return &Cache{
		backend:     backend,
		capacity:    capacity,
		ttl:         ttl,
		now:         time.Now,
		rank:        newRanking(),
		generations: make(map[uint]uint64),
	}
}

func (v *Cache) Capacity() int {
	return v.capacity
}

func (v *Cache) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rank.Len()
}

// Get returns the cached insight. A miss is (nil, false, nil).
func (v *Cache) Get(ctx context.Context, categoryID uint) (*models.CategoryInsight, bool, error) {
	v.mu.Lock()
	expired := v.rank.Expired(categoryID, v.now())
	v.mu.Unlock()
	if expired {
		return nil, false, nil
	}

	raw, err := v.backend.Get(ctx, GetInsightCacheKey(categoryID))
	if err != nil {
		if localCache.IsNotFound(err) {
			v.forget(categoryID)
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: unable to read insight cache: %v", ErrInternal, err)
	}

	var data []byte
	switch val := raw.(type) {
	case []byte:
		data = val
	case string:
		data = []byte(val)
	default:
		return nil, false, fmt.Errorf("%w: unexpected insight cache value %T", ErrInternal, raw)
	}

	var insight models.CategoryInsight
	if err := jsoniter.Unmarshal(data, &insight); err != nil {
		return nil, false, fmt.Errorf("%w: unable to decode cached insight: %v", ErrInternal, err)
	}
	return &insight, true, nil
}

// RecordAccess bumps the access score of a cached category.
func (v *Cache) RecordAccess(categoryID uint) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rank.Touch(categoryID)
}

// Generation returns a token that changes whenever the category is invalidated.
func (v *Cache) Generation(categoryID uint) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.epoch + v.generations[categoryID]
}

func (v *Cache) Put(ctx context.Context, categoryID uint, insight *models.CategoryInsight) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.put(ctx, categoryID, insight)
}

// PutAt stores the insight only if the category was not invalidated since gen was taken.
// It reports whether the insight was stored.
func (v *Cache) PutAt(ctx context.Context, categoryID uint, insight *models.CategoryInsight, gen uint64) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.epoch+v.generations[categoryID] != gen {
		return false, nil
	}
	if err := v.put(ctx, categoryID, insight); err != nil {
		return false, err
	}
	return true, nil
}

func (v *Cache) put(ctx context.Context, categoryID uint, insight *models.CategoryInsight) error {
	now := v.now()
	for _, id := range v.rank.Expire(now) {
		v.deleteKey(ctx, id)
	}

	if !v.rank.Has(categoryID) && v.rank.Len() >= v.capacity {
		if victim, ok := v.rank.PopMin(); ok {
			if err := v.deleteKey(ctx, victim); err != nil {
				return err
			}
			cacheEvictionsTotal.Inc()
			log.Debug().Uint("category", victim).Msg("Evicted category insight from cache...")
		}
	}

	data, err := jsoniter.Marshal(insight)
	if err != nil {
		return fmt.Errorf("%w: unable to encode insight: %v", ErrInternal, err)
	}
	if err := v.backend.Set(
		ctx,
		GetInsightCacheKey(categoryID),
		data,
		store.WithExpiration(v.ttl),
		store.WithTags([]string{CacheTag}),
		store.WithCost(1),
	); err != nil {
		return fmt.Errorf("%w: unable to write insight cache: %v", ErrInternal, err)
	}

	v.rank.Track(categoryID, now.Add(v.ttl))
	return nil
}

// Invalidate drops the cached insight and its access score.
func (v *Cache) Invalidate(ctx context.Context, categoryID uint) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.generations[categoryID]++
	v.rank.Remove(categoryID)
	return v.deleteKey(ctx, categoryID)
}

// InvalidateAll drops every insight, including those written by other instances sharing the backend.
func (v *Cache) InvalidateAll(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.epoch++

	var errs []error
	for _, id := range v.rank.IDs() {
		if err := v.deleteKey(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	v.rank.Reset()

	if err := v.backend.Invalidate(ctx, store.WithInvalidateTags([]string{CacheTag})); err != nil && !localCache.IsNotFound(err) {
		errs = append(errs, fmt.Errorf("%w: unable to invalidate insight cache tag: %v", ErrInternal, err))
	}
	return errors.Join(errs...)
}

func (v *Cache) forget(categoryID uint) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rank.Remove(categoryID)
}

func (v *Cache) deleteKey(ctx context.Context, categoryID uint) error {
	if err := v.backend.Delete(ctx, GetInsightCacheKey(categoryID)); err != nil && !localCache.IsNotFound(err) {
		return fmt.Errorf("%w: unable to delete cached insight of category #%d: %v", ErrInternal, categoryID, err)
	}
	return nil
}
