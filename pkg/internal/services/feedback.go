package services

import (
	"fmt"
	"strings"

	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/models"
	"gorm.io/gorm"
)

func NewFeedback(tx *gorm.DB, message string) (models.Feedback, error) {
	feedback := models.Feedback{Message: strings.TrimSpace(message)}
	if len(feedback.Message) == 0 {
		return feedback, fmt.Errorf("feedback message is required")
	}
	err := tx.Create(&feedback).Error
	return feedback, err
}

func CountFeedback(tx *gorm.DB) (int64, error) {
	var count int64
	err := tx.Model(&models.Feedback{}).Count(&count).Error
	return count, err
}

// ListFeedbackWithPagination returns the newest feedback first.
func ListFeedbackWithPagination(tx *gorm.DB, take int, offset int) ([]models.Feedback, error) {
	feedback := []models.Feedback{}
	err := tx.Order("created_at DESC, id DESC").Limit(take).Offset(offset).Find(&feedback).Error
	return feedback, err
}

func GetFeedback(tx *gorm.DB, id uint) (models.Feedback, error) {
	var feedback models.Feedback
	err := tx.Where("id = ?", id).First(&feedback).Error
	return feedback, err
}

func DeleteFeedback(tx *gorm.DB, feedback models.Feedback) error {
	return tx.Delete(&models.Feedback{}, feedback.ID).Error
}
