package api

import (
	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

func (v *Server) createFeedback(c *fiber.Ctx) error {
	var data struct {
		Message string `json:"message" validate:"required,max=4096"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	feedback, err := services.NewFeedback(v.db, data.Message)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return exts.Respond(c, fiber.StatusCreated, "Feedback created successfully", feedback)
}

func (v *Server) listFeedback(c *fiber.Ctx) error {
	page, err := exts.QueryPositiveInt(c, "page", 1)
	if err != nil {
		return err
	}
	limit, err := exts.QueryPositiveInt(c, "limit", DashboardPageSize)
	if err != nil {
		return err
	}
	if page < 1 || limit < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "page and limit must be positive integers")
	}

	count, err := services.CountFeedback(v.db)
	if err != nil {
		return err
	}
	feedback, err := services.ListFeedbackWithPagination(v.db, limit, (page-1)*limit)
	if err != nil {
		return err
	}

	totalPages := int((count + int64(limit) - 1) / int64(limit))
	return exts.Respond(c, fiber.StatusOK, "Feedback fetched successfully", fiber.Map{
		"feedback":       feedback,
		"totalFeedbacks": count,
		"totalPages":     totalPages,
		"hasMore":        page < totalPages,
		"page":           page,
		"limit":          limit,
	})
}

func (v *Server) deleteFeedback(c *fiber.Ctx) error {
	id, err := exts.ParamsID(c, "feedbackId")
	if err != nil {
		return err
	}

	feedback, err := services.GetFeedback(v.db, id)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "feedback not found")
	}

	if err := services.DeleteFeedback(v.db, feedback); err != nil {
		return err
	}

	return exts.Respond(c, fiber.StatusOK, "Feedback deleted successfully", feedback)
}
