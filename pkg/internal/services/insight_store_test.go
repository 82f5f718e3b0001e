package services

import (
	"context"
	"testing"
	"time"

	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/insights"
	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsightStoreAggregation(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	ctx := context.Background()

	_, err := NewResponse(db, nil, []models.ResponseAnswer{
		{QuestionID: f.radio.ID, Value: models.SingleAnswer("Yes")},
		{QuestionID: f.checkbox.ID, Value: models.MultipleAnswer("A", "B")},
		{QuestionID: f.elsewhere.ID, Value: models.SingleAnswer("other")},
	})
	require.NoError(t, err)
	_, err = NewResponse(db, nil, []models.ResponseAnswer{
		{QuestionID: f.text.ID, Value: models.SingleAnswer("great")},
		{QuestionID: f.radio.ID, Value: models.SingleAnswer("Yes")},
	})
	require.NoError(t, err)
	// Legacy row with a shape the question does not accept.
	require.NoError(t, db.Create(&models.ResponseAnswer{
		ResponseID: 2,
		Position:   2,
		QuestionID: f.checkbox.ID,
		CategoryID: f.experience.ID,
		Value:      models.SingleAnswer("A"),
	}).Error)

	store := NewInsightStore(db)
	insight, err := insights.NewAggregator(store).Compute(ctx, f.experience.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(3), insight.TotalQuestions)
	require.Len(t, insight.Questions, 3)
	assert.Equal(t, 2, insight.Questions[0].Answers.Count("Yes"))
	assert.Equal(t, 2, insight.Questions[1].TotalResponses)
	assert.Equal(t, map[string]int{"A": 1, "B": 1, "C": 0}, insight.Questions[1].Answers.Counts())
	assert.Equal(t, []string{"great"}, insight.Questions[2].Answers.Values())

	_, err = insights.NewAggregator(store).Compute(ctx, 999)
	assert.ErrorIs(t, err, insights.ErrNotFound)
}

func TestInsightStoreSnapshots(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	ctx := context.Background()
	store := NewInsightStore(db)

	_, err := store.GetSnapshot(ctx, f.experience.ID)
	assert.ErrorIs(t, err, insights.ErrNotFound)

	insight, err := insights.NewAggregator(store).Compute(ctx, f.experience.ID)
	require.NoError(t, err)
	require.NoError(t, store.SaveSnapshot(ctx, *insight))

	insight.TotalQuestions = 42
	insight.ComputedAt = time.Now()
	require.NoError(t, store.SaveSnapshot(ctx, *insight))

	snapshot, err := store.GetSnapshot(ctx, f.experience.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), snapshot.TotalQuestions)
	assert.Equal(t, "Experience", snapshot.Category.Data().Name)
	require.Len(t, snapshot.Questions, 3)
	assert.Equal(t, []string{"Yes", "No"}, snapshot.Questions[0].Answers.Options())

	require.NoError(t, store.DeleteSnapshot(ctx, f.experience.ID))
	_, err = store.GetSnapshot(ctx, f.experience.ID)
	assert.ErrorIs(t, err, insights.ErrNotFound)

	require.NoError(t, store.SaveSnapshot(ctx, *insight))
	require.NoError(t, store.ClearSnapshots(ctx))
	_, err = store.GetSnapshot(ctx, f.experience.ID)
	assert.ErrorIs(t, err, insights.ErrNotFound)
}

func TestInsightStoreListCategoryIDs(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)

	ids, err := NewInsightStore(db).ListCategoryIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []uint{f.experience.ID, f.other.ID}, ids)
}
