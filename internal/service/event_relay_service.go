package service

import (
	"context"

	"ai-coursebuilder-be/internal/pkg/logger"
	"ai-coursebuilder-be/pkg/events"
	pktNats "ai-coursebuilder-be/pkg/nats"
)

// EventDelivery pushes a domain event to connected clients. Implemented
// by the websocket hub.
type EventDelivery interface {
	BroadcastEvent(eventType string, payload map[string]interface{})
}

// EventRelayService bridges the NATS event stream to live clients so
// the frontend hears about published courses and ended sessions
// without polling.
type EventRelayService struct {
	subscriber *pktNats.Subscriber
	delivery   EventDelivery
	logger     logger.ILogger
}

func NewEventRelayService(sub *pktNats.Subscriber, delivery EventDelivery, log logger.ILogger) *EventRelayService {
	return &EventRelayService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus with a durable consumer.
func (s *EventRelayService) Start() {
	err := s.subscriber.Subscribe("events.>", "course-events-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("EventRelay", "failed to start event subscriber", map[string]interface{}{"error": err})
	}
}

func (s *EventRelayService) handleEvent(ctx context.Context, event events.Event) error {
	s.logger.Info("EventRelay", "relaying event", map[string]interface{}{
		"type": event.EventType(),
	})
	if s.delivery != nil {
		s.delivery.BroadcastEvent(event.EventType(), event.Payload())
	}
	return nil
}
