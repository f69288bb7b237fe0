package service

import (
	"context"

	"ai-studynotes-be/internal/pkg/logger"
	"ai-studynotes-be/pkg/events"
	pktNats "ai-studynotes-be/pkg/nats"

	"github.com/google/uuid"
)

// xpNotifier is the slice of the websocket hub the listener needs.
type xpNotifier interface {
	Send(userID uuid.UUID, eventType string, data interface{})
}

// IXpListenerService relays XP_AWARDED events from the bus to the owning
// user's open websocket connections, so the client can show the award the
// moment a note finishes.
type IXpListenerService interface {
	Listen() error
}

type xpListenerService struct {
	subscriber *pktNats.Subscriber
	notifier   xpNotifier
	logger     logger.ILogger
}

func NewXpListenerService(subscriber *pktNats.Subscriber, notifier xpNotifier, log logger.ILogger) IXpListenerService {
	return &xpListenerService{
		subscriber: subscriber,
		notifier:   notifier,
		logger:     log,
	}
}

func (s *xpListenerService) Listen() error {
	if s.subscriber == nil {
		// Bus is optional, same as the publishing side.
		return nil
	}
	return s.subscriber.Subscribe("events."+events.TypeXpAwarded, "xp-toasts", s.handle)
}

func (s *xpListenerService) handle(_ context.Context, event events.Event) error {
	payload := event.Payload()

	userIDStr, _ := payload["user_id"].(string)
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		// Malformed events are dropped, a redelivery cannot fix them.
		s.logger.Warn("XpListener", "Event without a valid user_id", map[string]interface{}{"payload": payload})
		return nil
	}

	if s.notifier != nil {
		s.notifier.Send(userID, "xp_awarded", payload)
	}
	return nil
}
