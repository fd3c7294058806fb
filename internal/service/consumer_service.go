package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"school-assistant-be/internal/dto"
	"school-assistant-be/internal/model"
	"school-assistant-be/internal/pkg/logger"
	"school-assistant-be/internal/websocket"
	"school-assistant-be/pkg/events"
	pktNats "school-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService turns committed-document events into client notifications:
// a websocket broadcast for connected sessions and a NATS event for anything
// listening outside this process.
type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	hub            *websocket.Hub
	eventPublisher *pktNats.Publisher
	log            logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	hub *websocket.Hub,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		hub:            hub,
		eventPublisher: eventPublisher,
		log:            log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishDocumentIngestedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("consumer", "failed to unmarshal message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // invalid payloads never become valid, do not retry
		return
	}

	if cs.hub != nil {
		cs.hub.Broadcast(model.Notification{
			Type:  "document_ingested",
			Title: "Document ready",
			Body:  fmt.Sprintf("'%s' was indexed (%d chunks)", payload.Filename, payload.ChunkCount),
			Data: map[string]interface{}{
				"document_id": payload.DocumentId.String(),
				"chunk_count": payload.ChunkCount,
			},
			CreatedAt: time.Now(),
		})
	}

	if cs.eventPublisher != nil {
		evt := events.NewDocumentIngested(payload.DocumentId.String(), payload.Filename, payload.ChunkCount)
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			cs.log.Warn("consumer", "failed to forward event to NATS", map[string]interface{}{
				"document_id": payload.DocumentId.String(), "error": err.Error(),
			})
		}
	}

	msg.Ack()
}
