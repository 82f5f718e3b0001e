package insights

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/models"
	"github.com/eko/gocache/lib/v4/store"
	"github.com/samber/lo"
)

var errUnavailable = errors.New("backend unavailable")

type memoryStore struct {
	mu         sync.Mutex
	categories map[uint]models.Category
	questions  []models.Question
	responses  []models.Response
	snapshots  map[uint]models.CategoryInsight
	computes   atomic.Int64
	failing    bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		categories: make(map[uint]models.Category),
		snapshots:  make(map[uint]models.CategoryInsight),
	}
}

func (s *memoryStore) addCategory(id uint, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[id] = models.Category{BaseModel: models.BaseModel{ID: id}, Name: name}
}

func (s *memoryStore) addQuestion(q models.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions = append(s.questions, q)
}

func (s *memoryStore) addResponse(answers ...models.ResponseAnswer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = append(s.responses, models.Response{
		BaseModel: models.BaseModel{ID: uint(len(s.responses) + 1)},
		Answers:   answers,
	})
}

func (s *memoryStore) GetCategory(_ context.Context, id uint) (models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.computes.Add(1)
	if s.failing {
		return models.Category{}, errUnavailable
	}
	category, ok := s.categories[id]
	if !ok {
		return category, fmt.Errorf("%w: category #%d", ErrNotFound, id)
	}
	return category, nil
}

func (s *memoryStore) ListQuestionsByCategory(_ context.Context, categoryID uint) ([]models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := lo.Filter(s.questions, func(item models.Question, _ int) bool {
		return item.CategoryID == categoryID
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memoryStore) ListResponsesByQuestions(_ context.Context, questionIDs []uint) ([]models.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.Filter(s.responses, func(item models.Response, _ int) bool {
		return lo.SomeBy(item.Answers, func(answer models.ResponseAnswer) bool {
			return lo.Contains(questionIDs, answer.QuestionID)
		})
	}), nil
}

func (s *memoryStore) CountQuestions(_ context.Context, categoryID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(lo.CountBy(s.questions, func(item models.Question) bool {
		return item.CategoryID == categoryID
	})), nil
}

func (s *memoryStore) ListCategoryIDs(_ context.Context) ([]uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := lo.Keys(s.categories)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *memoryStore) SaveSnapshot(_ context.Context, insight models.CategoryInsight) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[insight.CategoryID] = insight
	return nil
}

func (s *memoryStore) GetSnapshot(_ context.Context, categoryID uint) (models.CategoryInsight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	insight, ok := s.snapshots[categoryID]
	if !ok {
		return insight, fmt.Errorf("%w: snapshot #%d", ErrNotFound, categoryID)
	}
	return insight, nil
}

func (s *memoryStore) DeleteSnapshot(_ context.Context, categoryID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, categoryID)
	return nil
}

func (s *memoryStore) ClearSnapshots(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = make(map[uint]models.CategoryInsight)
	return nil
}

// memoryBackend is a gocache backend over a plain map.
type memoryBackend struct {
	mu      sync.Mutex
	values  map[string]any
	tags    map[string][]string
	failing bool
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{values: make(map[string]any), tags: make(map[string][]string)}
}

func (b *memoryBackend) setFailing(failing bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failing = failing
}

func (b *memoryBackend) has(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.values[key]
	return ok
}

func (b *memoryBackend) Get(_ context.Context, key any) (any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failing {
		return nil, errUnavailable
	}
	value, ok := b.values[key.(string)]
	if !ok {
		return nil, store.NotFoundWithCause(errors.New("value not found"))
	}
	return value, nil
}

func (b *memoryBackend) Set(_ context.Context, key any, object any, options ...store.Option) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failing {
		return errUnavailable
	}
	opts := store.ApplyOptions(options...)
	b.values[key.(string)] = object
	for _, tag := range opts.Tags {
		b.tags[tag] = append(b.tags[tag], key.(string))
	}
	return nil
}

func (b *memoryBackend) Delete(_ context.Context, key any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failing {
		return errUnavailable
	}
	delete(b.values, key.(string))
	return nil
}

func (b *memoryBackend) Invalidate(_ context.Context, options ...store.InvalidateOption) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failing {
		return errUnavailable
	}
	opts := store.ApplyInvalidateOptions(options...)
	for _, tag := range opts.Tags {
		for _, key := range b.tags[tag] {
			delete(b.values, key)
		}
		delete(b.tags, tag)
	}
	return nil
}

func (b *memoryBackend) Clear(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values = make(map[string]any)
	b.tags = make(map[string][]string)
	return nil
}

func (b *memoryBackend) GetType() string {
	return "memory"
}
