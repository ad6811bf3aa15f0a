package websocket

import (
	"context"
	"encoding/json"

	wfevents "ai-coursebuilder-be/pkg/workflow/events"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs attaches one connection to a workflow session's step-event
// stream. Events published while the session runs arrive as JSON
// frames until the client disconnects.
func ServeWs(hub *Hub, bus *wfevents.Bus, c *websocket.Conn, userID uuid.UUID, sessionID string) {
	ctx, cancel := context.WithCancel(context.Background())
	client := &Client{
		Hub:       hub,
		Conn:      c,
		UserID:    userID,
		SessionID: sessionID,
		Send:      make(chan []byte, 256),
		cancel:    cancel,
	}
	client.Hub.register <- client

	if bus != nil {
		events, err := bus.Subscribe(ctx, sessionID)
		if err == nil {
			go forwardSteps(ctx, client, events)
		}
	}

	go client.writePump()
	client.readPump() // blocks until the connection closes
}

func forwardSteps(ctx context.Context, client *Client, events <-chan wfevents.StepEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(map[string]interface{}{
				"type": "workflow_step",
				"data": ev,
			})
			if err != nil {
				continue
			}
			select {
			case client.Send <- data:
			case <-ctx.Done():
				return
			}
		}
	}
}
