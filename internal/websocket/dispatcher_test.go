package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"classguard-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func testClient() *Client {
	return &Client{
		ConnID: "conn-test",
		Send:   newSendChan(),
		logger: logger.NewNop(),
	}
}

func TestDispatchRoutesToHandler(t *testing.T) {
	d := NewDispatcher(logger.NewNop())

	var gotEvent string
	var gotPayload string
	d.Handle("ping", func(ctx context.Context, c *Client, payload json.RawMessage) error {
		gotEvent = "ping"
		gotPayload = string(payload)
		return nil
	})

	d.Dispatch(context.Background(), testClient(), []byte(`{"event":"ping","data":{"n":1}}`))

	assert.Equal(t, "ping", gotEvent)
	assert.JSONEq(t, `{"n":1}`, gotPayload)
}

func TestDispatchIgnoresUnknownEvent(t *testing.T) {
	d := NewDispatcher(logger.NewNop())

	called := false
	d.Handle("known", func(ctx context.Context, c *Client, payload json.RawMessage) error {
		called = true
		return nil
	})

	d.Dispatch(context.Background(), testClient(), []byte(`{"event":"mystery","data":{}}`))
	assert.False(t, called)
}

func TestDispatchSurvivesMalformedFrame(t *testing.T) {
	d := NewDispatcher(logger.NewNop())
	d.Dispatch(context.Background(), testClient(), []byte(`{not json`))
}

func TestDispatchSwallowsHandlerError(t *testing.T) {
	d := NewDispatcher(logger.NewNop())
	d.Handle("boom", func(ctx context.Context, c *Client, payload json.RawMessage) error {
		return errors.New("handler exploded")
	})

	// Must not panic or propagate; the read loop keeps going.
	d.Dispatch(context.Background(), testClient(), []byte(`{"event":"boom"}`))
}

func TestLastHandlerRegistrationWins(t *testing.T) {
	d := NewDispatcher(logger.NewNop())

	var winner string
	d.Handle("e", func(ctx context.Context, c *Client, payload json.RawMessage) error {
		winner = "first"
		return nil
	})
	d.Handle("e", func(ctx context.Context, c *Client, payload json.RawMessage) error {
		winner = "second"
		return nil
	})

	d.Dispatch(context.Background(), testClient(), []byte(`{"event":"e"}`))
	assert.Equal(t, "second", winner)
}
