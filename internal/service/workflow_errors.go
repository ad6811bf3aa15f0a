package service

import (
	"errors"

	"ai-coursebuilder-be/internal/pkg/serverutils"
	"ai-coursebuilder-be/pkg/workflow/checkpoint"
	"ai-coursebuilder-be/pkg/workflow/constructor"
	"ai-coursebuilder-be/pkg/workflow/registry"
	"ai-coursebuilder-be/pkg/workflow/tutor"

	"github.com/gofiber/fiber/v2"
)

// mapWorkflowError translates workflow sentinel errors into HTTP-aware
// app errors. Anything else passes through for the 500 handler.
func mapWorkflowError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, constructor.ErrSessionNotFound),
		errors.Is(err, tutor.ErrSessionNotFound),
		errors.Is(err, checkpoint.ErrNotFound):
		return serverutils.NewAppError(fiber.StatusNotFound, "Session not found")
	case errors.Is(err, registry.ErrTurnInProgress):
		return serverutils.NewAppError(fiber.StatusConflict, "A turn is already running for this session")
	default:
		return err
	}
}
