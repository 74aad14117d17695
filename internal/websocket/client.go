package websocket

import (
	"context"
	"sync"
	"time"

	"classguard-be/internal/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Screenshots ride the socket base64-encoded, so the read limit has to
	// fit a full frame, not just control traffic.
	maxMessageSize = 10 * 1024 * 1024

	sendBufferSize = 256
)

// Client is the middleman between one websocket connection and the
// dispatcher. A client exists from accept; its Session only exists once the
// peer registers.
type Client struct {
	ConnID string
	Conn   *websocket.Conn
	Send   chan []byte

	registry   *Registry
	dispatcher *Dispatcher
	logger     logger.ILogger

	// OnDisconnect runs after the session is unregistered, for offline
	// bookkeeping and teacher notification.
	OnDisconnect func(*Client, *Session)

	mu      sync.RWMutex
	session *Session
}

func NewClient(conn *websocket.Conn, registry *Registry, dispatcher *Dispatcher, log logger.ILogger) *Client {
	return &Client{
		ConnID:     uuid.NewString(),
		Conn:       conn,
		Send:       make(chan []byte, sendBufferSize),
		registry:   registry,
		dispatcher: dispatcher,
		logger:     log,
	}
}

func (c *Client) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func (c *Client) SetSession(s *Session) {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
}

// Emit sends an event straight to this connection, bypassing room
// addressing. Used for handshake replies and error frames.
func (c *Client) Emit(event string, data interface{}) {
	payload, err := marshalEnvelope(event, data)
	if err != nil {
		c.logger.Error("Client", "Failed to marshal emit", map[string]interface{}{"event": event, "error": err.Error()})
		return
	}
	select {
	case c.Send <- payload:
	default:
		c.logger.Warn("Client", "Send buffer full, dropping frame", map[string]interface{}{"conn_id": c.ConnID, "event": event})
	}
}

// Serve runs the write pump in a new goroutine and the read pump in the
// caller's, which is the fiber websocket handler goroutine.
func (c *Client) Serve(ctx context.Context) {
	go c.writePump()
	c.readPump(ctx)
}

// readPump pumps frames from the websocket connection into the dispatcher.
// Frames from one connection are dispatched sequentially, which is what
// keeps per-connection telemetry ordering intact.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		unregistered := c.registry.Unregister(c.ConnID)
		if c.OnDisconnect != nil {
			c.OnDisconnect(c, unregistered)
		}
		// The session shares its close-once with the hub's eviction path;
		// an unregistered client owns the channel alone.
		if s := c.Session(); s != nil {
			s.CloseSend()
		} else {
			close(c.Send)
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, frame, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("Client", "Unexpected close", map[string]interface{}{"conn_id": c.ConnID, "error": err.Error()})
			}
			break
		}
		c.dispatcher.Dispatch(ctx, c, frame)
	}
}

// writePump pumps frames from the send buffer to the websocket connection,
// coalescing queued frames and keeping the peer alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed on eviction or disconnect.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Drain whatever queued up behind this frame.
			n := len(c.Send)
			for i := 0; i < n; i++ {
				queued, ok := <-c.Send
				if !ok {
					break
				}
				w.Write(queued)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
