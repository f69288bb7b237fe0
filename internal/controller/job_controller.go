package controller

import (
	"ai-studynotes-be/internal/pkg/serverutils"
	"ai-studynotes-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IJobController interface {
	RegisterRoutes(r fiber.Router)
}

type jobController struct {
	jobService service.IJobService
}

func NewJobController(jobService service.IJobService) IJobController {
	return &jobController{
		jobService: jobService,
	}
}

func (c *jobController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/job/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.GetAll)
	h.Delete(":id", c.Dismiss)
}

func (c *jobController) GetAll(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	res, err := c.jobService.GetAll(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Active jobs", res))
}

func (c *jobController) Dismiss(ctx *fiber.Ctx) error {
	userId := currentUserId(ctx)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid job ID"))
	}

	if err := c.jobService.Dismiss(ctx.Context(), userId, id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Job dismissed", nil))
}
