package controller

import (
	"bufio"
	"context"

	"ai-coursebuilder-be/internal/dto"
	"ai-coursebuilder-be/internal/pkg/serverutils"
	"ai-coursebuilder-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ITutorController interface {
	RegisterRoutes(r fiber.Router)
	Turn(ctx *fiber.Ctx) error
	StreamTurn(ctx *fiber.Ctx) error
	GetState(ctx *fiber.Ctx) error
	EndSession(ctx *fiber.Ctx) error
}

type tutorController struct {
	tutorService service.ITutorService
}

func NewTutorController(tutorService service.ITutorService) ITutorController {
	return &tutorController{
		tutorService: tutorService,
	}
}

func (c *tutorController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/tutor/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("sessions/turn", c.Turn)
	h.Post("sessions/turn/stream", c.StreamTurn)
	h.Get("sessions/:id", c.GetState)
	h.Delete("sessions/:id", c.EndSession)
}

func (c *tutorController) Turn(ctx *fiber.Ctx) error {
	studentId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.TutorTurnRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.tutorService.Turn(ctx.Context(), studentId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Turn completed", res))
}

func (c *tutorController) StreamTurn(ctx *fiber.Ctx) error {
	studentId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.TutorTurnRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	setSSEHeaders(ctx)
	ctx.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		streamCtx, cancel := context.WithCancel(context.Background())
		defer cancel()

		steps, err := c.tutorService.StreamTurn(streamCtx, studentId, &req)
		if err != nil {
			_ = writeSSE(w, "error", fiber.Map{"message": err.Error()})
			return
		}
		for ev := range steps {
			if err := writeSSE(w, "step", ev); err != nil {
				return
			}
		}
		_ = writeSSE(w, "done", fiber.Map{"session_id": req.SessionId})
	})
	return nil
}

func (c *tutorController) GetState(ctx *fiber.Ctx) error {
	res, err := c.tutorService.GetState(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get session", res))
}

func (c *tutorController) EndSession(ctx *fiber.Ctx) error {
	res, err := c.tutorService.EndSession(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session ended", res))
}
