package controller

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"ai-coursebuilder-be/internal/dto"
	"ai-coursebuilder-be/internal/entity"
	"ai-coursebuilder-be/internal/pkg/serverutils"
	"ai-coursebuilder-be/internal/service"
	"ai-coursebuilder-be/pkg/extract"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IConstructorController interface {
	RegisterRoutes(r fiber.Router)
	Turn(ctx *fiber.Ctx) error
	StreamTurn(ctx *fiber.Ctx) error
	GetState(ctx *fiber.Ctx) error
	UpdateState(ctx *fiber.Ctx) error
	Upload(ctx *fiber.Ctx) error
	EndSession(ctx *fiber.Ctx) error
}

type constructorController struct {
	constructorService service.IConstructorService
	uploadDir          string
}

func NewConstructorController(constructorService service.IConstructorService, uploadDir string) IConstructorController {
	return &constructorController{
		constructorService: constructorService,
		uploadDir:          uploadDir,
	}
}

func (c *constructorController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/constructor/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("sessions/turn", c.Turn)
	h.Post("sessions/turn/stream", c.StreamTurn)
	h.Get("sessions/:id", c.GetState)
	h.Patch("sessions/:id", c.UpdateState)
	h.Post("sessions/:id/files", c.Upload)
	h.Delete("sessions/:id", c.EndSession)
}

func (c *constructorController) Turn(ctx *fiber.Ctx) error {
	creatorId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.ConstructorTurnRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.constructorService.Turn(ctx.Context(), creatorId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Turn completed", res))
}

// StreamTurn runs a turn and delivers its step events as server-sent
// events. The stream ends with a "done" frame once the turn finishes.
func (c *constructorController) StreamTurn(ctx *fiber.Ctx) error {
	creatorId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.ConstructorTurnRequest
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

		steps, err := c.constructorService.StreamTurn(streamCtx, creatorId, &req)
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

func (c *constructorController) GetState(ctx *fiber.Ctx) error {
	res, err := c.constructorService.GetState(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get session", res))
}

func (c *constructorController) UpdateState(ctx *fiber.Ctx) error {
	var req dto.UpdateConstructorStateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = ctx.Params("id")
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.constructorService.UpdateInfo(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update session", res))
}

// Upload accepts multipart files, stores them under the upload dir and
// registers them with the construction session.
func (c *constructorController) Upload(ctx *fiber.Ctx) error {
	creatorId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	sessionId := ctx.Params("id")

	form, err := ctx.MultipartForm()
	if err != nil {
		return serverutils.NewAppError(fiber.StatusBadRequest, "Expected multipart form upload")
	}
	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		return serverutils.NewAppError(fiber.StatusBadRequest, "No files in upload")
	}

	sessionDir := filepath.Join(c.uploadDir, sessionId)
	if err := os.MkdirAll(sessionDir, 0o755); err != nil {
		return err
	}

	uploads := make([]*entity.CourseUpload, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		id := uuid.New()
		dest := filepath.Join(sessionDir, fmt.Sprintf("%s_%s", id.String(), filepath.Base(fh.Filename)))
		if err := ctx.SaveFile(fh, dest); err != nil {
			return err
		}
		uploads = append(uploads, &entity.CourseUpload{
			Id:       id,
			Filename: fh.Filename,
			Path:     dest,
			Type:     extract.DetectType(fh.Filename),
			Size:     fh.Size,
		})
	}

	res, err := c.constructorService.RegisterUploads(ctx.Context(), creatorId, sessionId, uploads)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Files registered", res))
}

func (c *constructorController) EndSession(ctx *fiber.Ctx) error {
	if err := c.constructorService.EndSession(ctx.Context(), ctx.Params("id")); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session ended", fiber.Map{"session_id": ctx.Params("id")}))
}

// currentUserId pulls the authenticated user out of the JWT claims.
func currentUserId(ctx *fiber.Ctx) (uuid.UUID, error) {
	raw, ok := ctx.Locals("user_id").(string)
	if !ok {
		return uuid.Nil, serverutils.NewAppError(fiber.StatusUnauthorized, "Missing user identity")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, serverutils.NewAppError(fiber.StatusUnauthorized, "Invalid user identity")
	}
	return id, nil
}
