package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	localCache "git.solsynth.dev/hypernet/questionnaire/pkg/internal/cache"
	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/database"
	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/insights"
	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestApp(t *testing.T) *HTTPApp {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.RunMigration(db))

	backend, err := localCache.NewStore(localCache.DefaultConfig())
	require.NoError(t, err)

	store := services.NewInsightStore(db)
	cfg := insights.DefaultConfig()
	svc, err := insights.NewService(cfg, store, store, insights.NewCache(backend, cfg.Capacity, cfg.TTL))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = backend.Close()
		if raw, err := db.DB(); err == nil {
			_ = raw.Close()
		}
	})
	return NewServer(db, svc)
}

func call(t *testing.T, app *HTTPApp, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.App().Test(req, int((5 * time.Second).Milliseconds()))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func seedSurvey(t *testing.T, app *HTTPApp) (uint, []uint) {
	t.Helper()
	status, body := call(t, app, nethttp.MethodPost, "/categories/seed-categories", []map[string]any{
		{"name": "Experience"},
	})
	require.Equal(t, nethttp.StatusCreated, status)
	categoryID := uint(body["data"].([]any)[0].(map[string]any)["id"].(float64))

	status, body = call(t, app, nethttp.MethodPost, "/questions", []map[string]any{
		{"label": "Recommend?", "type": "radio", "options": []string{"Yes", "No"}, "categoryId": categoryID},
		{"label": "Features", "type": "checkbox", "options": []string{"A", "B", "C"}, "categoryId": categoryID},
		{"label": "Comments", "type": "text", "categoryId": categoryID},
		{"label": "More", "type": "textarea", "categoryId": categoryID},
	})
	require.Equal(t, nethttp.StatusCreated, status)

	var questionIDs []uint
	for _, item := range body["data"].([]any) {
		questionIDs = append(questionIDs, uint(item.(map[string]any)["id"].(float64)))
	}
	return categoryID, questionIDs
}

func TestInsightsFollowWrites(t *testing.T) {
	app := newTestApp(t)
	categoryID, questionIDs := seedSurvey(t, app)
	insightsPath := fmt.Sprintf("/questions/%d/insights", categoryID)

	status, _ := call(t, app, nethttp.MethodPost, "/responses", map[string]any{
		"email": "first@example.com",
		"answers": []map[string]any{
			{"questionId": questionIDs[0], "value": "Yes"},
			{"questionId": questionIDs[1], "value": []string{"A", "B"}},
			{"questionId": questionIDs[2], "value": "great"},
		},
	})
	require.Equal(t, nethttp.StatusCreated, status)

	status, body := call(t, app, nethttp.MethodGet, insightsPath, nil)
	require.Equal(t, nethttp.StatusOK, status)
	data := body["data"].(map[string]any)
	assert.EqualValues(t, 4, data["totalQuestions"])
	assert.EqualValues(t, 2, data["totalPages"])
	assert.EqualValues(t, 3, data["limit"])
	assert.Equal(t, true, data["hasMore"])
	questions := data["questions"].([]any)
	require.Len(t, questions, 3)
	assert.Equal(t, map[string]any{"Yes": float64(1), "No": float64(0)}, questions[0].(map[string]any)["answers"])
	assert.Equal(t, []any{"great"}, questions[2].(map[string]any)["answers"])

	status, _ = call(t, app, nethttp.MethodPost, "/responses", map[string]any{
		"answers": []map[string]any{
			{"questionId": questionIDs[0], "value": "Yes"},
		},
	})
	require.Equal(t, nethttp.StatusCreated, status)

	status, body = call(t, app, nethttp.MethodGet, insightsPath+"?page=1&limit=1", nil)
	require.Equal(t, nethttp.StatusOK, status)
	data = body["data"].(map[string]any)
	questions = data["questions"].([]any)
	require.Len(t, questions, 1)
	assert.Equal(t, map[string]any{"Yes": float64(2), "No": float64(0)}, questions[0].(map[string]any)["answers"])
	assert.EqualValues(t, 2, questions[0].(map[string]any)["totalResponses"])
	assert.EqualValues(t, 4, data["totalPages"])
}

func TestInsightsFollowResponseMerge(t *testing.T) {
	app := newTestApp(t)
	categoryID, questionIDs := seedSurvey(t, app)
	insightsPath := fmt.Sprintf("/questions/%d/insights", categoryID)

	status, body := call(t, app, nethttp.MethodPost, "/responses", map[string]any{
		"email":   "merge@example.com",
		"answers": []map[string]any{{"questionId": questionIDs[0], "value": "Yes"}},
	})
	require.Equal(t, nethttp.StatusCreated, status)
	responseID := uint(body["data"].(map[string]any)["id"].(float64))

	status, _ = call(t, app, nethttp.MethodGet, insightsPath, nil)
	require.Equal(t, nethttp.StatusOK, status)

	status, _ = call(t, app, nethttp.MethodPut, fmt.Sprintf("/responses/%d", responseID), map[string]any{
		"email":   "merge@example.com",
		"answers": []map[string]any{{"questionId": questionIDs[0], "value": "No"}},
	})
	require.Equal(t, nethttp.StatusOK, status)

	status, body = call(t, app, nethttp.MethodGet, insightsPath, nil)
	require.Equal(t, nethttp.StatusOK, status)
	first := body["data"].(map[string]any)["questions"].([]any)[0].(map[string]any)
	assert.Equal(t, map[string]any{"Yes": float64(0), "No": float64(1)}, first["answers"])

	status, _ = call(t, app, nethttp.MethodDelete, fmt.Sprintf("/responses/%d", responseID), nil)
	require.Equal(t, nethttp.StatusOK, status)

	status, body = call(t, app, nethttp.MethodGet, insightsPath, nil)
	require.Equal(t, nethttp.StatusOK, status)
	first = body["data"].(map[string]any)["questions"].([]any)[0].(map[string]any)
	assert.EqualValues(t, 0, first["totalResponses"])
}

func TestInsightsErrors(t *testing.T) {
	app := newTestApp(t)
	categoryID, _ := seedSurvey(t, app)

	status, body := call(t, app, nethttp.MethodGet, "/questions/abc/insights", nil)
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.EqualValues(t, 400, body["status"])
	assert.NotEmpty(t, body["message"])

	status, body = call(t, app, nethttp.MethodGet, "/questions/999/insights", nil)
	assert.Equal(t, nethttp.StatusNotFound, status)
	assert.EqualValues(t, 404, body["status"])

	status, _ = call(t, app, nethttp.MethodGet, fmt.Sprintf("/questions/%d/insights?page=0", categoryID), nil)
	assert.Equal(t, nethttp.StatusBadRequest, status)

	status, _ = call(t, app, nethttp.MethodGet, fmt.Sprintf("/questions/%d/insights?limit=x", categoryID), nil)
	assert.Equal(t, nethttp.StatusBadRequest, status)
}

func TestWriteValidation(t *testing.T) {
	app := newTestApp(t)
	categoryID, questionIDs := seedSurvey(t, app)

	status, _ := call(t, app, nethttp.MethodPost, "/questions", []map[string]any{
		{"label": "No options", "type": "radio", "categoryId": categoryID},
	})
	assert.Equal(t, nethttp.StatusBadRequest, status)

	status, _ = call(t, app, nethttp.MethodPost, "/responses", map[string]any{
		"answers": []map[string]any{{"questionId": questionIDs[1], "value": "A"}},
	})
	assert.Equal(t, nethttp.StatusBadRequest, status)

	status, _ = call(t, app, nethttp.MethodPost, "/responses", map[string]any{"answers": []any{}})
	assert.Equal(t, nethttp.StatusBadRequest, status)

	status, _ = call(t, app, nethttp.MethodGet, "/responses/12345", nil)
	assert.Equal(t, nethttp.StatusNotFound, status)
}

func TestDeleteQuestionUpdatesInsights(t *testing.T) {
	app := newTestApp(t)
	categoryID, questionIDs := seedSurvey(t, app)
	insightsPath := fmt.Sprintf("/questions/%d/insights?limit=10", categoryID)

	status, body := call(t, app, nethttp.MethodGet, insightsPath, nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.EqualValues(t, 4, body["data"].(map[string]any)["totalQuestions"])

	status, _ = call(t, app, nethttp.MethodDelete, fmt.Sprintf("/questions/%d", questionIDs[3]), nil)
	require.Equal(t, nethttp.StatusOK, status)

	status, body = call(t, app, nethttp.MethodGet, insightsPath, nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.EqualValues(t, 3, body["data"].(map[string]any)["totalQuestions"])
	assert.Len(t, body["data"].(map[string]any)["category"].(map[string]any)["questionIds"], 3)
}

func TestAdminInvalidateAndMetrics(t *testing.T) {
	app := newTestApp(t)
	categoryID, _ := seedSurvey(t, app)

	status, _ := call(t, app, nethttp.MethodPost, "/categories/populating", nil)
	require.Equal(t, nethttp.StatusOK, status)

	status, _ = call(t, app, nethttp.MethodDelete, "/admin/insights/cache", nil)
	assert.Equal(t, nethttp.StatusOK, status)

	status, _ = call(t, app, nethttp.MethodGet, fmt.Sprintf("/questions/%d/insights", categoryID), nil)
	assert.Equal(t, nethttp.StatusOK, status)

	status, _ = call(t, app, nethttp.MethodGet, "/metrics", nil)
	assert.Equal(t, nethttp.StatusOK, status)
}

func TestFeedbackEndpoints(t *testing.T) {
	app := newTestApp(t)

	status, _ := call(t, app, nethttp.MethodPost, "/feedback", map[string]any{"message": ""})
	assert.Equal(t, nethttp.StatusBadRequest, status)

	var lastID uint
	for _, message := range []string{"slow pages", "love it", "more options"} {
		status, body := call(t, app, nethttp.MethodPost, "/feedback", map[string]any{"message": message})
		require.Equal(t, nethttp.StatusCreated, status)
		lastID = uint(body["data"].(map[string]any)["id"].(float64))
	}

	status, body := call(t, app, nethttp.MethodGet, "/feedback?page=1&limit=2", nil)
	require.Equal(t, nethttp.StatusOK, status)
	data := body["data"].(map[string]any)
	assert.EqualValues(t, 3, data["totalFeedbacks"])
	assert.EqualValues(t, 2, data["totalPages"])
	assert.Equal(t, true, data["hasMore"])
	assert.Len(t, data["feedback"], 2)

	status, _ = call(t, app, nethttp.MethodDelete, fmt.Sprintf("/feedback/%d", lastID), nil)
	assert.Equal(t, nethttp.StatusOK, status)
	status, _ = call(t, app, nethttp.MethodDelete, fmt.Sprintf("/feedback/%d", lastID), nil)
	assert.Equal(t, nethttp.StatusNotFound, status)

	status, body = call(t, app, nethttp.MethodGet, "/feedback?page=3", nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Len(t, body["data"].(map[string]any)["feedback"], 0)
}
