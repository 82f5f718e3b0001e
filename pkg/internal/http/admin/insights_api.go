package admin

import (
	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/http/exts"
	"github.com/gofiber/fiber/v2"
)

func (v *Server) adminTriggerInsightsCompute(c *fiber.Ctx) error {
	go v.insights.RefreshAll()

	return c.SendStatus(fiber.StatusAccepted)
}

func (v *Server) adminInvalidateInsights(c *fiber.Ctx) error {
	if err := v.insights.InvalidateAll(c.UserContext()); err != nil {
		return err
	}

	return exts.Respond(c, fiber.StatusOK, "Category insights invalidated", nil)
}
