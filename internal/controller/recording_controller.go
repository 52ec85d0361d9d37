package controller

import (
	"errors"

	"browser-connector-be/internal/dto"
	"browser-connector-be/internal/pkg/serverutils"
	"browser-connector-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IRecordingController interface {
	RegisterRoutes(r fiber.Router)
	Start(ctx *fiber.Ctx) error
	Stop(ctx *fiber.Ctx) error
	Data(ctx *fiber.Ctx) error
	Recent(ctx *fiber.Ctx) error
}

type recordingController struct {
	service service.IRecordingService
}

func NewRecordingController(service service.IRecordingService) IRecordingController {
	return &recordingController{service: service}
}

// The protocol endpoints live at the root and answer with the bare shapes the
// extension parses. Only the listing endpoint wears the response envelope.
func (c *recordingController) RegisterRoutes(r fiber.Router) {
	r.Post("/start-recording", c.Start)
	r.Post("/stop-recording", c.Stop)
	r.Post("/recording-data", c.Data)
	r.Get("/recordings", c.Recent)
}

func (c *recordingController) Start(ctx *fiber.Ctx) error {
	var req dto.StartRecordingRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.AnnounceStart(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *recordingController) Stop(ctx *fiber.Ctx) error {
	var req dto.StopRecordingRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.AnnounceStop(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *recordingController) Data(ctx *fiber.Ctx) error {
	var req dto.RecordingDataRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SaveArtifact(ctx.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDataURL) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}

	return ctx.JSON(res)
}

func (c *recordingController) Recent(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", 20)

	res, err := c.service.ListRecent(ctx.Context(), limit)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get recent recordings", res))
}
