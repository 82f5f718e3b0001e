package api

import (
	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/questionnaire/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

func (v *Server) createCategory(c *fiber.Ctx) error {
	var data struct {
		Name string `json:"name" validate:"required,max=256"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	category, err := services.NewCategory(v.db, data.Name)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return exts.Respond(c, fiber.StatusCreated, "Category created successfully", category)
}

func (v *Server) seedCategories(c *fiber.Ctx) error {
	var data []struct {
		Name string `json:"name" validate:"required,max=256"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	names := make([]string, len(data))
	for idx, item := range data {
		names[idx] = item.Name
	}

	categories, err := services.SeedCategories(v.db, names)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return exts.Respond(c, fiber.StatusCreated, "Categories seeded successfully", categories)
}

func (v *Server) listCategory(c *fiber.Ctx) error {
	categories, err := services.ListCategory(v.db)
	if err != nil {
		return err
	}

	return exts.Respond(c, fiber.StatusOK, "Categories fetched successfully", categories)
}

func (v *Server) getCategory(c *fiber.Ctx) error {
	id, err := exts.ParamsID(c, "categoryId")
	if err != nil {
		return err
	}

	category, err := services.GetCategory(v.db, id)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "category not found")
	}

	return exts.Respond(c, fiber.StatusOK, "Category fetched successfully", category)
}

func (v *Server) editCategory(c *fiber.Ctx) error {
	id, err := exts.ParamsID(c, "categoryId")
	if err != nil {
		return err
	}

	var data struct {
		Name string `json:"name" validate:"required,max=256"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	category, err := services.GetCategory(v.db, id)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "category not found")
	}

	if category, err = services.EditCategory(v.db, category, data.Name); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	v.invalidate(c, category.ID)

	return exts.Respond(c, fiber.StatusOK, "Category updated successfully", category)
}

func (v *Server) deleteCategory(c *fiber.Ctx) error {
	id, err := exts.ParamsID(c, "categoryId")
	if err != nil {
		return err
	}

	category, err := services.GetCategory(v.db, id)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "category not found")
	}

	if err := services.DeleteCategory(v.db, category); err != nil {
		return err
	}
	v.invalidate(c, category.ID)

	return exts.Respond(c, fiber.StatusOK, "Category and associated questions deleted successfully", nil)
}

func (v *Server) populateCategoryInsights(c *fiber.Ctx) error {
	count, err := v.insights.ComputeAllCategoryInsights(c.UserContext())
	if err != nil {
		return err
	}

	return exts.Respond(c, fiber.StatusOK, "Category insights populated successfully", fiber.Map{
		"refreshed": count,
	})
}
