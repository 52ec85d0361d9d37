package controller

import (
	"errors"

	"browser-connector-be/internal/dto"
	"browser-connector-be/internal/pkg/serverutils"
	"browser-connector-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IScreenshotController interface {
	RegisterRoutes(r fiber.Router)
	Save(ctx *fiber.Ctx) error
	Recent(ctx *fiber.Ctx) error
}

type screenshotController struct {
	service service.IScreenshotService
}

func NewScreenshotController(service service.IScreenshotService) IScreenshotController {
	return &screenshotController{service: service}
}

func (c *screenshotController) RegisterRoutes(r fiber.Router) {
	r.Post("/screenshot", c.Save)
	r.Get("/screenshots", c.Recent)
}

func (c *screenshotController) Save(ctx *fiber.Ctx) error {
	var req dto.ScreenshotRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Save(ctx.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDataURL) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}

	return ctx.JSON(res)
}

func (c *screenshotController) Recent(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", 20)

	res, err := c.service.ListRecent(ctx.Context(), limit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get recent screenshots", res))
}
