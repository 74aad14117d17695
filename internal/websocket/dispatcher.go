package websocket

import (
	"context"
	"encoding/json"

	"classguard-be/internal/pkg/logger"
)

// HandlerFunc processes one inbound event for a connection. The client gives
// access to the session (nil until registration) and to the reply channel.
type HandlerFunc func(ctx context.Context, c *Client, payload json.RawMessage) error

// Dispatcher maps event names to handlers. It replaces transport-level
// callback registration with a plain typed table, so the whole relay is
// testable without a live socket.
type Dispatcher struct {
	handlers map[string]HandlerFunc
	logger   logger.ILogger
}

func NewDispatcher(log logger.ILogger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string]HandlerFunc),
		logger:   log,
	}
}

// Handle registers the handler for an event name. Last registration wins.
func (d *Dispatcher) Handle(event string, handler HandlerFunc) {
	d.handlers[event] = handler
}

// Dispatch decodes a wire frame and routes it. Unknown events and handler
// errors are logged, never propagated: no inbound frame may kill a
// connection's read loop.
func (d *Dispatcher) Dispatch(ctx context.Context, c *Client, frame []byte) {
	var envelope Envelope
	if err := json.Unmarshal(frame, &envelope); err != nil {
		d.logger.Warn("Dispatcher", "Malformed frame, dropping", map[string]interface{}{"conn_id": c.ConnID, "error": err.Error()})
		return
	}

	handler, ok := d.handlers[envelope.Event]
	if !ok {
		d.logger.Debug("Dispatcher", "No handler for event", map[string]interface{}{"event": envelope.Event, "conn_id": c.ConnID})
		return
	}

	if err := handler(ctx, c, envelope.Data); err != nil {
		d.logger.Error("Dispatcher", "Handler failed", map[string]interface{}{"event": envelope.Event, "conn_id": c.ConnID, "error": err.Error()})
	}
}
