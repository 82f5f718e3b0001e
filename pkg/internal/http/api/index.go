package api

import (
	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/insights"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const DashboardPageSize = 10

type Server struct {
	db       *gorm.DB
	insights *insights.Service
}

func MapAPIs(app *fiber.App, baseURL string, db *gorm.DB, svc *insights.Service) {
	v := &Server{db: db, insights: svc}

	api := app.Group(baseURL).Name("API")
	{
		categories := api.Group("/categories").Name("Categories API")
		{
			categories.Post("/", v.createCategory)
			categories.Post("/seed-categories", v.seedCategories)
			categories.Post("/populating", v.populateCategoryInsights)
			categories.Get("/", v.listCategory)
			categories.Get("/:categoryId", v.getCategory)
			categories.Put("/:categoryId", v.editCategory)
			categories.Delete("/:categoryId", v.deleteCategory)
		}

		questions := api.Group("/questions").Name("Questions API")
		{
			questions.Post("/", v.createQuestions)
			questions.Get("/", v.listQuestion)
			questions.Get("/dashboard", v.listDashboardQuestion)
			questions.Get("/:categoryId/insights", v.getCategoryInsights)
			questions.Get("/:questionId", v.getQuestion)
			questions.Put("/:questionId", v.editQuestion)
			questions.Delete("/:questionId", v.deleteQuestion)
		}

		responses := api.Group("/responses").Name("Responses API")
		{
			responses.Post("/", v.createResponse)
			responses.Get("/", v.listResponse)
			responses.Post("/search", v.searchResponses)
			responses.Get("/search/:responseId", v.getLabelledResponse)
			responses.Post("/email", v.getResponseByEmail)
			responses.Get("/:responseId", v.getResponse)
			responses.Put("/:responseId", v.editResponse)
			responses.Delete("/:responseId", v.deleteResponse)
		}

		feedback := api.Group("/feedback").Name("Feedback API")
		{
			feedback.Post("/", v.createFeedback)
			feedback.Get("/", v.listFeedback)
			feedback.Delete("/:feedbackId", v.deleteFeedback)
		}
	}
}

// invalidate drops the insights of the categories a write touched.
// It runs before the write is acknowledged and never fails the write.
func (v *Server) invalidate(c *fiber.Ctx, categories ...uint) {
	if len(categories) == 0 {
		return
	}
	if err := v.insights.InvalidateCategories(c.UserContext(), categories...); err != nil {
		log.Error().Err(err).Uints("categories", categories).Msg("An error occurred when invalidating category insights...")
	}
}
