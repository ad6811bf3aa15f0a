package controller

import (
	"bufio"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// setSSEHeaders prepares a response for a server-sent event stream.
func setSSEHeaders(ctx *fiber.Ctx) {
	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
}

// writeSSE emits one event frame and flushes it. A client that has
// gone away surfaces as a flush error, which the caller uses to stop.
func writeSSE(w *bufio.Writer, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	return w.Flush()
}
