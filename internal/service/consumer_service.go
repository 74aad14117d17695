package service

import (
	"context"
	"encoding/json"
	"time"

	"classguard-be/internal/dto"
	"classguard-be/internal/pkg/logger"
	ws "classguard-be/internal/websocket"
	"classguard-be/pkg/events"
	pktNats "classguard-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IConsumerService drains violation events off the internal bus, alerts
// the supervising teachers and exports the event for external consumers.
type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	hub       Broadcaster
	natsPub   *pktNats.Publisher
	logger    logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	hub Broadcaster,
	natsPub *pktNats.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		hub:       hub,
		natsPub:   natsPub,
		logger:    log,
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
	var payload dto.ViolationDetectedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("consumer", "failed to unmarshal violation event", map[string]interface{}{
			"error": err,
		})
		msg.Ack() // malformed, never retriable
		return
	}

	cs.hub.Broadcast(ws.RoomTeachers, ws.EventViolationAlert, dto.ViolationAlert{
		UserId:    payload.UserId,
		Username:  payload.Username,
		Category:  payload.Category,
		Detail:    payload.Detail,
		Timestamp: payload.DetectedAt.Format(time.RFC3339),
	})

	if cs.natsPub != nil {
		evt := events.NewViolationDetected(
			payload.UserId.String(),
			payload.Username,
			payload.Category,
			payload.Detail,
		)
		if err := cs.natsPub.Publish(ctx, evt); err != nil {
			cs.logger.Warn("consumer", "failed to export violation to NATS", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	msg.Ack()
}
