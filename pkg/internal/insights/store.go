package insights

import (
	"context"

	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/models"
)

// Store is the read side the aggregator needs.
// Implementations return an error wrapping ErrNotFound for an unknown category.
type Store interface {
	GetCategory(ctx context.Context, id uint) (models.Category, error)
	ListQuestionsByCategory(ctx context.Context, categoryID uint) ([]models.Question, error)
	// ListResponsesByQuestions returns every response with at least one answer to the given
	// questions, each carrying its full answer list.
	ListResponsesByQuestions(ctx context.Context, questionIDs []uint) ([]models.Response, error)
	CountQuestions(ctx context.Context, categoryID uint) (int64, error)
	ListCategoryIDs(ctx context.Context) ([]uint, error)
}

// SnapshotStore keeps the durable copy of computed insights.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, insight models.CategoryInsight) error
	GetSnapshot(ctx context.Context, categoryID uint) (models.CategoryInsight, error)
	DeleteSnapshot(ctx context.Context, categoryID uint) error
	ClearSnapshots(ctx context.Context) error
}
