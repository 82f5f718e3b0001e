package services

import (
	"fmt"
	"strings"

	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/models"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// LinkCategoryQuestions fills QuestionIDs from the questions table.
func LinkCategoryQuestions(tx *gorm.DB, categories []models.Category) error {
	if len(categories) == 0 {
		return nil
	}

	var questions []models.Question
	if err := tx.Model(&models.Question{}).
		Select("id", "category_id").
		Where("category_id IN ?", lo.Map(categories, func(item models.Category, _ int) uint {
			return item.ID
		})).
		Order("id ASC").
		Find(&questions).Error; err != nil {
		return err
	}

	grouped := lo.GroupBy(questions, func(item models.Question) uint {
		return item.CategoryID
	})
	for idx := range categories {
		categories[idx].QuestionIDs = lo.Map(grouped[categories[idx].ID], func(item models.Question, _ int) uint {
			return item.ID
		})
		if categories[idx].QuestionIDs == nil {
			categories[idx].QuestionIDs = []uint{}
		}
	}
	return nil
}

func ListCategory(tx *gorm.DB) ([]models.Category, error) {
	var categories []models.Category
	if err := tx.Order("id ASC").Find(&categories).Error; err != nil {
		return categories, err
	}
	return categories, LinkCategoryQuestions(tx, categories)
}

func GetCategory(tx *gorm.DB, id uint) (models.Category, error) {
	var category models.Category
	if err := tx.Where("id = ?", id).First(&category).Error; err != nil {
		return category, err
	}
	out := []models.Category{category}
	if err := LinkCategoryQuestions(tx, out); err != nil {
		return category, err
	}
	return out[0], nil
}

func NewCategory(tx *gorm.DB, name string) (models.Category, error) {
	category := models.Category{Name: strings.TrimSpace(name), QuestionIDs: []uint{}}
	if len(category.Name) == 0 {
		return category, fmt.Errorf("category name is required")
	}

	var count int64
	if err := tx.Model(&models.Category{}).Where("name = ?", category.Name).Count(&count).Error; err != nil {
		return category, err
	} else if count > 0 {
		return category, fmt.Errorf("category %q already exists", category.Name)
	}

	err := tx.Create(&category).Error
	return category, err
}

// SeedCategories creates every name that does not exist yet and returns the created categories.
func SeedCategories(tx *gorm.DB, names []string) ([]models.Category, error) {
	names = lo.Uniq(lo.FilterMap(names, func(item string, _ int) (string, bool) {
		item = strings.TrimSpace(item)
		return item, len(item) > 0
	}))
	if len(names) == 0 {
		return nil, fmt.Errorf("at least one category name is required")
	}

	var existing []string
	if err := tx.Model(&models.Category{}).Where("name IN ?", names).Pluck("name", &existing).Error; err != nil {
		return nil, err
	}

	categories := lo.FilterMap(names, func(item string, _ int) (models.Category, bool) {
		return models.Category{Name: item, QuestionIDs: []uint{}}, !lo.Contains(existing, item)
	})
	if len(categories) == 0 {
		return categories, nil
	}

	err := tx.Create(&categories).Error
	return categories, err
}

func EditCategory(tx *gorm.DB, category models.Category, name string) (models.Category, error) {
	name = strings.TrimSpace(name)
	if len(name) == 0 {
		return category, fmt.Errorf("category name is required")
	}

	var count int64
	if err := tx.Model(&models.Category{}).Where("name = ? AND id <> ?", name, category.ID).Count(&count).Error; err != nil {
		return category, err
	} else if count > 0 {
		return category, fmt.Errorf("category %q already exists", name)
	}

	category.Name = name
	err := tx.Model(&category).Update("name", name).Error
	return category, err
}

// DeleteCategory removes the category and its questions.
func DeleteCategory(tx *gorm.DB, category models.Category) error {
	return tx.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", category.ID).Delete(&models.Question{}).Error; err != nil {
			return err
		}
		if err := tx.Where("category_id = ?", category.ID).Delete(&models.CategoryInsight{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Category{}, category.ID).Error
	})
}
