package api

import (
	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/models"
	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type questionRequest struct {
	Label      string   `json:"label" validate:"required,max=1024"`
	Type       string   `json:"type" validate:"required"`
	Options    []string `json:"options" validate:"omitempty,dive,required"`
	CategoryID uint     `json:"categoryId" validate:"required"`
}

func (v questionRequest) toModel() models.Question {
	return models.Question{
		Label:      v.Label,
		Type:       v.Type,
		Options:    v.Options,
		CategoryID: v.CategoryID,
	}
}

func (v *Server) createQuestions(c *fiber.Ctx) error {
	var data []questionRequest

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	questions, err := services.NewQuestions(v.db, lo.Map(data, func(item questionRequest, _ int) models.Question {
		return item.toModel()
	}))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	v.invalidate(c, lo.Map(questions, func(item models.Question, _ int) uint {
		return item.CategoryID
	})...)

	return exts.Respond(c, fiber.StatusCreated, "All questions saved successfully!", questions)
}

func (v *Server) listQuestion(c *fiber.Ctx) error {
	questions, err := services.ListQuestion(v.db)
	if err != nil {
		return err
	}

	return exts.Respond(c, fiber.StatusOK, "Questions fetched successfully", questions)
}

func (v *Server) listDashboardQuestion(c *fiber.Ctx) error {
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

	count, err := services.CountQuestion(v.db)
	if err != nil {
		return err
	}
	questions, err := services.ListQuestionWithPagination(v.db, limit, (page-1)*limit)
	if err != nil {
		return err
	}

	return exts.Respond(c, fiber.StatusOK, "Questions fetched successfully", fiber.Map{
		"page":    page,
		"limit":   limit,
		"total":   count,
		"hasMore": int64((page-1)*limit+len(questions)) < count,
		"data":    questions,
	})
}

func (v *Server) getQuestion(c *fiber.Ctx) error {
	id, err := exts.ParamsID(c, "questionId")
	if err != nil {
		return err
	}

	question, err := services.GetQuestion(v.db, id)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "question not found")
	}

	return exts.Respond(c, fiber.StatusOK, "Question fetched successfully", question)
}

func (v *Server) editQuestion(c *fiber.Ctx) error {
	id, err := exts.ParamsID(c, "questionId")
	if err != nil {
		return err
	}

	var data questionRequest

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	question, err := services.GetQuestion(v.db, id)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "question not found")
	}

	previous := question.CategoryID
	question.Label = data.Label
	question.Type = data.Type
	question.Options = data.Options
	question.CategoryID = data.CategoryID

	if question, err = services.EditQuestion(v.db, question); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	v.invalidate(c, previous, question.CategoryID)

	return exts.Respond(c, fiber.StatusOK, "Question updated successfully", question)
}

func (v *Server) deleteQuestion(c *fiber.Ctx) error {
	id, err := exts.ParamsID(c, "questionId")
	if err != nil {
		return err
	}

	question, err := services.GetQuestion(v.db, id)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "question not found")
	}

	if err := services.DeleteQuestion(v.db, question); err != nil {
		return err
	}
	v.invalidate(c, question.CategoryID)

	return exts.Respond(c, fiber.StatusOK, "Question deleted and removed from category successfully", nil)
}
