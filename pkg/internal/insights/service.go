package insights

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/singleflight"
)

// Service serves paginated insights and keeps the cache consistent with writes.
type Service struct {
	cfg        Config
	store      Store
	snapshots  SnapshotStore
	aggregator *Aggregator
	cache      *Cache
	flights    singleflight.Group
}

// NewService wires the service. snapshots may be nil, in which case no durable copy is kept.
func NewService(cfg Config, store Store, snapshots SnapshotStore, cache *Cache) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Service{
		cfg:        cfg,
		store:      store,
		snapshots:  snapshots,
		aggregator: NewAggregator(store),
		cache:      cache,
	}, nil
}

func (v *Service) Config() Config {
	return v.cfg
}

func (v *Service) Cache() *Cache {
	return v.cache
}

func ParseCategoryID(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid category id %q", ErrBadRequest, raw)
	}
	return uint(id), nil
}

func (v *Service) GetCategoryInsights(ctx context.Context, rawCategoryID string, page, limit int) (*models.CategoryInsightPage, error) {
	categoryID, err := ParseCategoryID(rawCategoryID)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		return nil, fmt.Errorf("%w: page must be a positive integer", ErrBadRequest)
	}
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit must be a positive integer", ErrBadRequest)
	}

	insight, err := v.GetInsight(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return Paginate(insight, page, limit), nil
}

// GetInsight returns the full insight of a category, computing and caching it on a miss.
// Cache failures never fail the call, they are treated as misses.
func (v *Service) GetInsight(ctx context.Context, categoryID uint) (*models.CategoryInsight, error) {
	insight, hit, err := v.cache.Get(ctx, categoryID)
	if err != nil {
		cacheErrorsTotal.Inc()
		log.Warn().Err(err).Uint("category", categoryID).Msg("An error occurred when reading insight cache, computing instead...")
	} else if hit {
		cacheHitsTotal.Inc()
		v.cache.RecordAccess(categoryID)
		return insight, nil
	}
	cacheMissesTotal.Inc()

	gen := v.cache.Generation(categoryID)
	key := fmt.Sprintf("%d@%d", categoryID, gen)
	ch := v.flights.DoChan(key, func() (any, error) {
		computeCtx := context.WithoutCancel(ctx)
		if v.cfg.ComputeTimeout > 0 {
			var cancel context.CancelFunc
			computeCtx, cancel = context.WithTimeout(computeCtx, v.cfg.ComputeTimeout)
			defer cancel()
		}
		return v.populate(computeCtx, categoryID, gen)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrInternal, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.CategoryInsight), nil
	}
}

func (v *Service) populate(ctx context.Context, categoryID uint, gen uint64) (*models.CategoryInsight, error) {
	if v.cfg.ServeSnapshots && v.snapshots != nil {
		snapshot, err := v.snapshots.GetSnapshot(ctx, categoryID)
		if err == nil {
			v.fill(ctx, categoryID, &snapshot, gen)
			return &snapshot, nil
		} else if !errors.Is(err, ErrNotFound) {
			log.Warn().Err(err).Uint("category", categoryID).Msg("An error occurred when loading insight snapshot...")
		}
	}

	start := time.Now()
	insight, err := v.aggregator.Compute(ctx, categoryID)
	computeSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	log.Debug().Uint("category", categoryID).Dur("elapsed", time.Since(start)).Msg("Computed category insight.")

	v.fill(ctx, categoryID, insight, gen)
	return insight, nil
}

func (v *Service) fill(ctx context.Context, categoryID uint, insight *models.CategoryInsight, gen uint64) {
	stored, err := v.cache.PutAt(ctx, categoryID, insight, gen)
	if err != nil {
		cacheErrorsTotal.Inc()
		log.Warn().Err(err).Uint("category", categoryID).Msg("An error occurred when caching category insight...")
	} else if !stored {
		log.Debug().Uint("category", categoryID).Msg("Category was invalidated during computation, skipped caching.")
	}
}

// Paginate slices the questions of a full insight. Pages past the end are empty.
func Paginate(insight *models.CategoryInsight, page, limit int) *models.CategoryInsightPage {
	totalPages := int((insight.TotalQuestions + int64(limit) - 1) / int64(limit))

	questions := []models.QuestionTally{}
	offset := int64(page-1) * int64(limit)
	if offset < int64(len(insight.Questions)) {
		end := min(offset+int64(limit), int64(len(insight.Questions)))
		questions = append(questions, insight.Questions[offset:end]...)
	}

	return &models.CategoryInsightPage{
		CategoryID:     insight.CategoryID,
		Category:       insight.Category.Data(),
		Questions:      questions,
		TotalQuestions: insight.TotalQuestions,
		TotalPages:     totalPages,
		Page:           page,
		Limit:          limit,
		HasMore:        page < totalPages,
		ComputedAt:     insight.ComputedAt,
	}
}

// InvalidateCategories drops the cached insight and durable snapshot of every given category.
func (v *Service) InvalidateCategories(ctx context.Context, categoryIDs ...uint) error {
	var errs []error
	for _, id := range lo.Uniq(categoryIDs) {
		if err := v.cache.Invalidate(ctx, id); err != nil {
			errs = append(errs, err)
		}
		if v.snapshots != nil {
			if err := v.snapshots.DeleteSnapshot(ctx, id); err != nil {
				errs = append(errs, fmt.Errorf("%w: unable to delete insight snapshot of category #%d: %v", ErrInternal, id, err))
			}
		}
	}
	return errors.Join(errs...)
}

func (v *Service) InvalidateAll(ctx context.Context) error {
	var errs []error
	if err := v.cache.InvalidateAll(ctx); err != nil {
		errs = append(errs, err)
	}
	if v.snapshots != nil {
		if err := v.snapshots.ClearSnapshots(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%w: unable to clear insight snapshots: %v", ErrInternal, err))
		}
	}
	return errors.Join(errs...)
}

// ComputeAllCategoryInsights recomputes every category without reading the cache,
// saves the durable snapshots and overwrites the cached entries.
// It returns how many categories were refreshed.
func (v *Service) ComputeAllCategoryInsights(ctx context.Context) (int, error) {
	ids, err := v.store.ListCategoryIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: unable to list categories: %v", ErrInternal, err)
	}

	var count int
	var errs []error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		gen := v.cache.Generation(id)
		start := time.Now()
		insight, err := v.aggregator.Compute(ctx, id)
		computeSeconds.Observe(time.Since(start).Seconds())
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			errs = append(errs, err)
			continue
		}

		if v.cache.Generation(id) != gen {
			log.Debug().Uint("category", id).Msg("Category was invalidated during computation, skipped snapshot.")
			continue
		}
		if v.snapshots != nil {
			if err := v.snapshots.SaveSnapshot(ctx, *insight); err != nil {
				errs = append(errs, fmt.Errorf("%w: unable to save insight snapshot of category #%d: %v", ErrInternal, id, err))
				continue
			}
			// Invalidation bumps the generation before deleting the snapshot,
			// so a bump seen here may have deleted before the save landed.
			if v.cache.Generation(id) != gen {
				if err := v.snapshots.DeleteSnapshot(ctx, id); err != nil {
					errs = append(errs, fmt.Errorf("%w: unable to delete insight snapshot of category #%d: %v", ErrInternal, id, err))
				}
				continue
			}
		}
		v.fill(ctx, id, insight, gen)
		count++
	}

	return count, errors.Join(errs...)
}

// RefreshAll is the scheduled form of ComputeAllCategoryInsights.
func (v *Service) RefreshAll() {
	ctx := context.Background()
	if v.cfg.ComputeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.cfg.ComputeTimeout)
		defer cancel()
	}

	start := time.Now()
	count, err := v.ComputeAllCategoryInsights(ctx)
	if err != nil {
		log.Error().Err(err).Int("refreshed", count).Msg("An error occurred when refreshing category insights...")
		return
	}
	log.Info().Int("refreshed", count).Dur("elapsed", time.Since(start)).Msg("Refreshed category insights.")
}
