package controller

import (
	"browser-connector-be/internal/dto"
	"browser-connector-be/internal/pkg/serverutils"
	"browser-connector-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ITelemetryController interface {
	RegisterRoutes(r fiber.Router)
	UpdateCurrentURL(ctx *fiber.Ctx) error
	CurrentURL(ctx *fiber.Ctx) error
}

type telemetryController struct {
	service service.ITelemetryService
}

func NewTelemetryController(service service.ITelemetryService) ITelemetryController {
	return &telemetryController{service: service}
}

func (c *telemetryController) RegisterRoutes(r fiber.Router) {
	r.Post("/current-url", c.UpdateCurrentURL)
	r.Get("/current-url", c.CurrentURL)
}

func (c *telemetryController) UpdateCurrentURL(ctx *fiber.Ctx) error {
	var req dto.CurrentURLRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.UpdateCurrentURL(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *telemetryController) CurrentURL(ctx *fiber.Ctx) error {
	tabID := ctx.Query("tabId")

	var (
		url string
		ok  bool
	)
	if tabID != "" {
		url, ok = c.service.CurrentURL(tabID)
	} else {
		url, ok = c.service.LatestURL()
	}
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "no url recorded")
	}

	return ctx.JSON(dto.CurrentURLResponse{Status: "ok", URL: url})
}
