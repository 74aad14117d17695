package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"classguard-be/internal/dto"
	"classguard-be/internal/pkg/logger"
	ws "classguard-be/internal/websocket"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumerBroadcastsViolationAlerts(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	hub := &fakeHub{}

	consumer := NewConsumerService(pubSub, "violations.test", hub, nil, logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewPublisherService("violations.test", pubSub)
	event := dto.ViolationDetectedMessage{
		ViolationId: uuid.New(),
		UserId:      uuid.New(),
		Username:    "budi",
		Category:    "game",
		Detail:      "fortnite.exe",
		Severity:    "high",
		DetectedAt:  time.Now(),
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	require.NoError(t, publisher.Publish(ctx, payload))

	require.Eventually(t, func() bool {
		return len(hub.callsFor(ws.EventViolationAlert)) == 1
	}, 2*time.Second, 10*time.Millisecond)

	call := hub.callsFor(ws.EventViolationAlert)[0]
	assert.Equal(t, ws.RoomTeachers, call.Room)

	alert := call.Data.(dto.ViolationAlert)
	assert.Equal(t, event.UserId, alert.UserId)
	assert.Equal(t, "budi", alert.Username)
	assert.Equal(t, "game", alert.Category)
	assert.Equal(t, "fortnite.exe", alert.Detail)
}

func TestConsumerDropsMalformedPayloads(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	hub := &fakeHub{}

	consumer := NewConsumerService(pubSub, "violations.test", hub, nil, logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewPublisherService("violations.test", pubSub)
	require.NoError(t, publisher.Publish(ctx, []byte("not json")))

	good := dto.ViolationDetectedMessage{UserId: uuid.New(), Username: "sari", Category: "video", DetectedAt: time.Now()}
	payload, _ := json.Marshal(good)
	require.NoError(t, publisher.Publish(ctx, payload))

	// The malformed payload is acked away; the good one still arrives.
	require.Eventually(t, func() bool {
		return len(hub.callsFor(ws.EventViolationAlert)) == 1
	}, 2*time.Second, 10*time.Millisecond)
}
