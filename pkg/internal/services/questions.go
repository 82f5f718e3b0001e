package services

import (
	"fmt"

	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/models"
	"gorm.io/gorm"
)

func ListQuestion(tx *gorm.DB) ([]models.Question, error) {
	var questions []models.Question
	err := tx.Order("id ASC").Find(&questions).Error
	return questions, err
}

func ListQuestionWithPagination(tx *gorm.DB, take int, offset int) ([]models.Question, error) {
	var questions []models.Question
	err := tx.Order("id ASC").Offset(offset).Limit(take).Find(&questions).Error
	return questions, err
}

func CountQuestion(tx *gorm.DB) (int64, error) {
	var count int64
	err := tx.Model(&models.Question{}).Count(&count).Error
	return count, err
}

func GetQuestion(tx *gorm.DB, id uint) (models.Question, error) {
	var question models.Question
	if err := tx.Where("id = ?", id).First(&question).Error; err != nil {
		return question, err
	}
	return question, nil
}

func ensureQuestionCategory(tx *gorm.DB, question models.Question) error {
	if question.CategoryID == 0 {
		return fmt.Errorf("question %q must belong to a category", question.Label)
	}
	var count int64
	if err := tx.Model(&models.Category{}).Where("id = ?", question.CategoryID).Count(&count).Error; err != nil {
		return err
	} else if count == 0 {
		return fmt.Errorf("category #%d was not found", question.CategoryID)
	}
	return nil
}

// NewQuestions creates the questions in one transaction, all or none.
func NewQuestions(tx *gorm.DB, questions []models.Question) ([]models.Question, error) {
	if len(questions) == 0 {
		return questions, fmt.Errorf("at least one question is required")
	}

	err := tx.Transaction(func(tx *gorm.DB) error {
		for idx := range questions {
			questions[idx].ID = 0
			if err := questions[idx].Validate(); err != nil {
				return err
			}
			if err := ensureQuestionCategory(tx, questions[idx]); err != nil {
				return err
			}
			if err := tx.Create(&questions[idx]).Error; err != nil {
				return err
			}
		}
		return nil
	})

	return questions, err
}

func EditQuestion(tx *gorm.DB, question models.Question) (models.Question, error) {
	if err := question.Validate(); err != nil {
		return question, err
	}
	if err := ensureQuestionCategory(tx, question); err != nil {
		return question, err
	}

	err := tx.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&question).Error; err != nil {
			return err
		}
		// Answers follow their question when it moves to another category.
		return tx.Model(&models.ResponseAnswer{}).
			Where("question_id = ? AND category_id <> ?", question.ID, question.CategoryID).
			Update("category_id", question.CategoryID).Error
	})
	return question, err
}

func DeleteQuestion(tx *gorm.DB, question models.Question) error {
	return tx.Delete(&models.Question{}, question.ID).Error
}
