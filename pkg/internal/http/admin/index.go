package admin

import (
	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/insights"
	"github.com/gofiber/fiber/v2"
)

type Server struct {
	insights *insights.Service
}

func MapControllers(app *fiber.App, baseURL string, svc *insights.Service) {
	v := &Server{insights: svc}

	admin := app.Group(baseURL)
	{
		admin.Post("/insights/compute", v.adminTriggerInsightsCompute)
		admin.Delete("/insights/cache", v.adminInvalidateInsights)
	}
}
