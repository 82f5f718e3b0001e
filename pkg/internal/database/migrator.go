package database

import (
	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/models"
	"gorm.io/gorm"
)

var AutoMaintainRange = []any{
	&models.Category{},
	&models.Question{},
	&models.Response{},
	&models.ResponseAnswer{},
	&models.Feedback{},
}

func RunMigration(source *gorm.DB) error {
	if err := source.AutoMigrate(
		append(
			AutoMaintainRange,
			&models.CategoryInsight{},
		)...,
	); err != nil {
		return err
	}

	return nil
}
