package controller

import (
	"errors"

	"ai-studynotes-be/internal/dto"
	"ai-studynotes-be/internal/pkg/serverutils"
	"ai-studynotes-be/internal/service"
	"ai-studynotes-be/pkg/access"

	"github.com/gofiber/fiber/v2"
)

type ICaptureController interface {
	RegisterRoutes(r fiber.Router)
}

type captureController struct {
	pipelineService service.IPipelineService
}

func NewCaptureController(pipelineService service.IPipelineService) ICaptureController {
	return &captureController{
		pipelineService: pipelineService,
	}
}

func (c *captureController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/capture/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("audio", c.Audio)
	h.Post("document", c.Document)
	h.Post("link", c.Link)
	h.Post("text", c.Text)
}

func captureError(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, access.ErrNoCredits):
		return ctx.Status(fiber.StatusPaymentRequired).JSON(serverutils.ErrorResponse(402, err.Error()))
	case errors.Is(err, service.ErrRecordingTooShort):
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(serverutils.ErrorResponse(422, err.Error()))
	default:
		return err
	}
}

func (c *captureController) Audio(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	file, err := ctx.FormFile("audio")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Audio file is required"))
	}

	req := dto.CaptureAudioRequest{
		DurationSeconds: parseFloat(ctx.FormValue("duration_seconds")),
	}
	if raw := ctx.FormValue("folder_id"); raw != "" {
		if id, err := parseUUID(raw); err == nil {
			req.FolderId = &id
		}
	}

	res, err := c.pipelineService.ProcessAudio(ctx.Context(), userId, &req, file)
	if err != nil {
		return captureError(ctx, err)
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Processing started", res))
}

func (c *captureController) Document(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	var req dto.CaptureTextRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.pipelineService.ProcessDocument(ctx.Context(), userId, &req)
	if err != nil {
		return captureError(ctx, err)
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Processing started", res))
}

func (c *captureController) Link(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	var req struct {
		dto.CaptureLinkRequest
		Transcript string `json:"transcript" validate:"required"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.pipelineService.ProcessLink(ctx.Context(), userId, &req.CaptureLinkRequest, req.Transcript)
	if err != nil {
		return captureError(ctx, err)
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Processing started", res))
}

func (c *captureController) Text(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	var req dto.CaptureTextRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.pipelineService.ProcessText(ctx.Context(), userId, &req)
	if err != nil {
		return captureError(ctx, err)
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Processing started", res))
}
