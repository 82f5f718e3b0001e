package services

import (
	"context"
	"errors"
	"fmt"

	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/insights"
	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InsightStore serves the insights package from the relational database.
type InsightStore struct {
	db *gorm.DB
}

var (
	_ insights.Store         = (*InsightStore)(nil)
	_ insights.SnapshotStore = (*InsightStore)(nil)
)

func NewInsightStore(db *gorm.DB) *InsightStore {
	return &InsightStore{db: db}
}

func (v *InsightStore) GetCategory(ctx context.Context, id uint) (models.Category, error) {
	category, err := GetCategory(v.db.WithContext(ctx), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return category, fmt.Errorf("%w: category #%d", insights.ErrNotFound, id)
	}
	return category, err
}

func (v *InsightStore) ListQuestionsByCategory(ctx context.Context, categoryID uint) ([]models.Question, error) {
	var questions []models.Question
	err := v.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("id ASC").
		Find(&questions).Error
	return questions, err
}

func (v *InsightStore) ListResponsesByQuestions(ctx context.Context, questionIDs []uint) ([]models.Response, error) {
	var responses []models.Response
	if len(questionIDs) == 0 {
		return responses, nil
	}

	tx := v.db.WithContext(ctx)
	referencing := tx.Model(&models.ResponseAnswer{}).
		Select("response_id").
		Where("question_id IN ?", questionIDs)

	err := preloadAnswers(tx).
		Where("id IN (?)", referencing).
		Order("id ASC").
		Find(&responses).Error
	return responses, err
}

func (v *InsightStore) CountQuestions(ctx context.Context, categoryID uint) (int64, error) {
	var count int64
	err := v.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}

func (v *InsightStore) ListCategoryIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := v.db.WithContext(ctx).
		Model(&models.Category{}).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func (v *InsightStore) SaveSnapshot(ctx context.Context, insight models.CategoryInsight) error {
	insight.ID = 0
	return v.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "category_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"category", "questions", "total_questions", "computed_at", "updated_at"}),
		}).
		Create(&insight).Error
}

func (v *InsightStore) GetSnapshot(ctx context.Context, categoryID uint) (models.CategoryInsight, error) {
	var insight models.CategoryInsight
	err := v.db.WithContext(ctx).Where("category_id = ?", categoryID).First(&insight).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return insight, fmt.Errorf("%w: snapshot of category #%d", insights.ErrNotFound, categoryID)
	}
	return insight, err
}

func (v *InsightStore) DeleteSnapshot(ctx context.Context, categoryID uint) error {
	return v.db.WithContext(ctx).Where("category_id = ?", categoryID).Delete(&models.CategoryInsight{}).Error
}

func (v *InsightStore) ClearSnapshots(ctx context.Context) error {
	return v.db.WithContext(ctx).Where("1 = 1").Delete(&models.CategoryInsight{}).Error
}
