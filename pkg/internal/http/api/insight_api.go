package api

import (
	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/http/exts"
	"github.com/gofiber/fiber/v2"
)

func (v *Server) getCategoryInsights(c *fiber.Ctx) error {
	page, err := exts.QueryPositiveInt(c, "page", 1)
	if err != nil {
		return err
	}
	limit, err := exts.QueryPositiveInt(c, "limit", v.insights.Config().PageSize)
	if err != nil {
		return err
	}

	result, err := v.insights.GetCategoryInsights(c.UserContext(), c.Params("categoryId"), page, limit)
	if err != nil {
		return err
	}

	return exts.Respond(c, fiber.StatusOK, "Category insights fetched", result)
}
