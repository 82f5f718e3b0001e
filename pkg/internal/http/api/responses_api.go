package api

import (
	"errors"

	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/models"
	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

type answerRequest struct {
	QuestionID uint               `json:"questionId" validate:"required"`
	CategoryID uint               `json:"categoryId"`
	Value      models.AnswerValue `json:"value"`
}

type responseRequest struct {
	Email   *string         `json:"email" validate:"omitempty,email"`
	Answers []answerRequest `json:"answers" validate:"required,min=1,dive"`
}

func (v responseRequest) toAnswers() []models.ResponseAnswer {
	return lo.Map(v.Answers, func(item answerRequest, _ int) models.ResponseAnswer {
		return models.ResponseAnswer{
			QuestionID: item.QuestionID,
			CategoryID: item.CategoryID,
			Value:      item.Value,
		}
	})
}

func (v *Server) createResponse(c *fiber.Ctx) error {
	var data responseRequest

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	response, err := services.NewResponse(v.db, data.Email, data.toAnswers())
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	v.invalidate(c, response.CategoryIDs()...)

	return exts.Respond(c, fiber.StatusCreated, "Response submitted successfully", response)
}

func (v *Server) listResponse(c *fiber.Ctx) error {
	responses, err := services.ListResponse(v.db)
	if err != nil {
		return err
	}

	return exts.Respond(c, fiber.StatusOK, "Responses fetched successfully", responses)
}

func (v *Server) getResponse(c *fiber.Ctx) error {
	id, err := exts.ParamsID(c, "responseId")
	if err != nil {
		return err
	}

	response, err := services.GetResponse(v.db, id)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "response not found")
	}

	return exts.Respond(c, fiber.StatusOK, "Response retrieved successfully", response)
}

func (v *Server) getLabelledResponse(c *fiber.Ctx) error {
	id, err := exts.ParamsID(c, "responseId")
	if err != nil {
		return err
	}

	response, err := services.GetResponse(v.db, id)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "response not found")
	}

	answers, err := services.LabelResponseAnswers(v.db, response)
	if err != nil {
		return err
	}

	return exts.Respond(c, fiber.StatusOK, "Response retrieved successfully", answers)
}

func (v *Server) getResponseByEmail(c *fiber.Ctx) error {
	var data struct {
		Email string `json:"email" validate:"required,email"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	response, err := services.GetResponseByEmail(v.db, data.Email)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "response not found")
	}

	return exts.Respond(c, fiber.StatusOK, "Response retrieved successfully", fiber.Map{
		"id":             response.ID,
		"email":          response.Email,
		"answers":        response.Answers,
		"totalResponses": len(response.Answers),
		"submittedAt":    response.CreatedAt,
	})
}

func (v *Server) editResponse(c *fiber.Ctx) error {
	id, err := exts.ParamsID(c, "responseId")
	if err != nil {
		return err
	}

	var data responseRequest

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	response, affected, err := services.EditResponse(v.db, id, data.Email, data.toAnswers())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "response not found")
		}
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	v.invalidate(c, affected...)

	return exts.Respond(c, fiber.StatusOK, "Response updated successfully", response)
}

func (v *Server) deleteResponse(c *fiber.Ctx) error {
	id, err := exts.ParamsID(c, "responseId")
	if err != nil {
		return err
	}

	response, err := services.GetResponse(v.db, id)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "response not found")
	}

	affected, err := services.DeleteResponse(v.db, response)
	if err != nil {
		return err
	}
	v.invalidate(c, affected...)

	return exts.Respond(c, fiber.StatusOK, "Response deleted successfully", nil)
}

func (v *Server) searchResponses(c *fiber.Ctx) error {
	var data struct {
		QuestionID uint               `json:"questionId" validate:"required"`
		CategoryID uint               `json:"categoryId"`
		Value      models.AnswerValue `json:"value"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

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

	var values []string
	switch data.Value.Kind() {
	case models.AnswerKindSingle:
		values = []string{data.Value.String()}
	case models.AnswerKindMultiple:
		values = data.Value.Values()
	}

	ids, total, err := services.SearchResponses(v.db, data.QuestionID, data.CategoryID, values, limit, (page-1)*limit)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return exts.Respond(c, fiber.StatusOK, "Responses filtered successfully", fiber.Map{
		"page":    page,
		"limit":   limit,
		"total":   total,
		"hasMore": int64((page-1)*limit+len(ids)) < total,
		"results": ids,
	})
}
