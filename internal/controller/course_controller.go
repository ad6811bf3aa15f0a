package controller

import (
	"ai-coursebuilder-be/internal/pkg/serverutils"
	"ai-coursebuilder-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ICourseController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type courseController struct {
	courseService service.ICourseService
}

func NewCourseController(courseService service.ICourseService) ICourseController {
	return &courseController{
		courseService: courseService,
	}
}

func (c *courseController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/course/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.List)
	h.Get(":id", c.Show)
	h.Delete(":id", c.Delete)
}

func (c *courseController) List(ctx *fiber.Ctx) error {
	creatorId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	limit := ctx.QueryInt("limit", 0)
	offset := ctx.QueryInt("offset", 0)

	res, err := c.courseService.List(ctx.Context(), creatorId, limit, offset)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list courses", res))
}

func (c *courseController) Show(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewAppError(fiber.StatusBadRequest, "Invalid course id")
	}

	res, err := c.courseService.Show(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get course", res))
}

func (c *courseController) Delete(ctx *fiber.Ctx) error {
	creatorId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return serverutils.NewAppError(fiber.StatusBadRequest, "Invalid course id")
	}

	if err := c.courseService.Delete(ctx.Context(), creatorId, id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Course deleted", fiber.Map{"id": id}))
}
