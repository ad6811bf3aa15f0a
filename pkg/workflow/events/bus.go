// Package events carries per-step progress events from a running
// workflow to stream consumers (websocket, SSE). Delivery is in-order
// per session and finite: one event per completed step.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// StepEvent is emitted once after every completed workflow step.
type StepEvent struct {
	SessionID string    `json:"session_id"`
	Workflow  string    `json:"workflow"`
	Step      string    `json:"step"`
	Phase     string    `json:"phase"`
	Progress  float64   `json:"progress"`
	Message   string    `json:"message,omitempty"`
	Error     string    `json:"error,omitempty"`
	Final     bool      `json:"final"`
	At        time.Time `json:"at"`
}

// Bus is an in-process step-event bus on top of a watermill go-channel
// pub/sub. Topics are per session so subscribers only see their own
// session's steps.
type Bus struct {
	pubsub *gochannel.GoChannel
}

func NewBus(logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 64,
		}, logger),
	}
}

func topicFor(sessionID string) string {
	return "workflow.steps." + sessionID
}

// Publish emits one step event. Publishing never blocks the workflow
// beyond the channel buffer.
func (b *Bus) Publish(ev StepEvent) error {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("step event marshal: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	return b.pubsub.Publish(topicFor(ev.SessionID), msg)
}

// Subscribe returns an ordered channel of step events for one session.
// The channel closes when ctx is cancelled or the bus shuts down.
func (b *Bus) Subscribe(ctx context.Context, sessionID string) (<-chan StepEvent, error) {
	msgs, err := b.pubsub.Subscribe(ctx, topicFor(sessionID))
	if err != nil {
		return nil, fmt.Errorf("step event subscribe: %w", err)
	}

	out := make(chan StepEvent)
	go func() {
		defer close(out)
		for msg := range msgs {
			var ev StepEvent
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				msg.Ack()
				continue
			}
			msg.Ack()
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (b *Bus) Close() error {
	return b.pubsub.Close()
}
