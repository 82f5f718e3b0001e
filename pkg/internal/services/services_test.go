package services

import (
	"fmt"
	"strings"
	"testing"

	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/database"
	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.RunMigration(db))
	t.Cleanup(func() {
		if raw, err := db.DB(); err == nil {
			_ = raw.Close()
		}
	})
	return db
}

type fixture struct {
	experience models.Category
	other      models.Category
	radio      models.Question
	checkbox   models.Question
	text       models.Question
	elsewhere  models.Question
}

func seedFixture(t *testing.T, db *gorm.DB) fixture {
	t.Helper()
	categories, err := SeedCategories(db, []string{"Experience", "Other"})
	require.NoError(t, err)
	require.Len(t, categories, 2)

	questions, err := NewQuestions(db, []models.Question{
		{CategoryID: categories[0].ID, Label: "Recommend?", Type: models.QuestionTypeRadio, Options: []string{"Yes", "No"}},
		{CategoryID: categories[0].ID, Label: "Features", Type: models.QuestionTypeCheckbox, Options: []string{"A", "B", "C"}},
		{CategoryID: categories[0].ID, Label: "Comments", Type: models.QuestionTypeText},
		{CategoryID: categories[1].ID, Label: "Elsewhere", Type: models.QuestionTypeTextarea},
	})
	require.NoError(t, err)

	return fixture{
		experience: categories[0],
		other:      categories[1],
		radio:      questions[0],
		checkbox:   questions[1],
		text:       questions[2],
		elsewhere:  questions[3],
	}
}
