package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"school-assistant-be/internal/model"
	"school-assistant-be/internal/pkg/logger"
	"school-assistant-be/internal/websocket"
	"school-assistant-be/pkg/events"
	pktNats "school-assistant-be/pkg/nats"

	"github.com/google/uuid"
)

// NotificationService bridges the NATS event bus back into websocket
// delivery. Events published by this process (or another instance behind the
// same bus) become notifications for the session that caused them.
type NotificationService struct {
	subscriber *pktNats.Subscriber
	hub        *websocket.Hub
	log        logger.ILogger
}

func NewNotificationService(sub *pktNats.Subscriber, hub *websocket.Hub, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber: sub,
		hub:        hub,
		log:        log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("events.>", "notif-service-worker", s.handleEvent)
	if err != nil {
		s.log.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.log.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	// NATS subjects arrive as "events.<TYPE>"
	typeCode := strings.TrimPrefix(event.EventType(), "events.")

	switch typeCode {
	case events.TypeStudentLoggedIn:
		return s.notifyLogin(event)
	case events.TypeDocumentIngested:
		// Already broadcast to the hub directly on the ingest path.
		return nil
	default:
		s.log.Info("NotificationService", "Ignoring event with no notification mapping", map[string]interface{}{"type": typeCode})
		return nil
	}
}

func (s *NotificationService) notifyLogin(event events.Event) error {
	payload := event.Payload()

	rawSession, _ := payload["session_id"].(string)
	sessionID, err := uuid.Parse(rawSession)
	if err != nil {
		s.log.Warn("NotificationService", "Login event without a usable session id", map[string]interface{}{
			"session_id": rawSession,
		})
		return nil
	}

	name, _ := payload["name"].(string)
	sid, _ := payload["sid"].(string)

	s.hub.Send(sessionID, model.Notification{
		Type:      "student_logged_in",
		Title:     "Portal login",
		Body:      fmt.Sprintf("Logged in to the school portal as %s", name),
		Data:      map[string]interface{}{"sid": sid, "name": name},
		CreatedAt: time.Now(),
	})
	return nil
}
