package controller

import (
	"classguard-be/internal/dto"
	"classguard-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAiController interface {
	RegisterRoutes(r fiber.Router, middleware ...fiber.Handler)
	ClassroomInsights(ctx *fiber.Ctx) error
	CheckAllCode(ctx *fiber.Ctx) error
	MessageSuggestions(ctx *fiber.Ctx) error
}

type aiController struct {
	service service.IAiService
}

func NewAiController(service service.IAiService) IAiController {
	return &aiController{service: service}
}

func (c *aiController) RegisterRoutes(r fiber.Router, middleware ...fiber.Handler) {
	h := r.Group("/ai")
	for _, m := range middleware {
		h.Use(m)
	}
	h.Post("/insights", c.ClassroomInsights)
	h.Post("/check-code", c.CheckAllCode)
	h.Post("/suggestions", c.MessageSuggestions)
}

func (c *aiController) ClassroomInsights(ctx *fiber.Ctx) error {
	var req dto.ClassroomInsightsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	res, err := c.service.ClassroomInsights(ctx.Context(), &req)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"code":    500,
			"message": err.Error(),
		})
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"data":    res,
	})
}

func (c *aiController) CheckAllCode(ctx *fiber.Ctx) error {
	var req dto.CheckAllCodeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if len(req.Students) == 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"code":    400,
			"message": "no students submitted",
		})
	}

	res, err := c.service.CheckAllCode(ctx.Context(), &req)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"code":    500,
			"message": err.Error(),
		})
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"data":    res,
	})
}

func (c *aiController) MessageSuggestions(ctx *fiber.Ctx) error {
	var req dto.StudentContext
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	res, err := c.service.MessageSuggestions(ctx.Context(), &req)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"code":    500,
			"message": err.Error(),
		})
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"data":    res,
	})
}
