package websocket

import (
	"encoding/json"

	"classguard-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// Envelope is the wire frame for every event in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Hub provides the two fan-out primitives, broadcast to a room and unicast
// to an identity, on top of the Registry. Sends never block: a receiver
// whose buffer is full is evicted rather than allowed to stall the sender.
type Hub struct {
	registry *Registry
	logger   logger.ILogger
}

func NewHub(registry *Registry, log logger.ILogger) *Hub {
	return &Hub{
		registry: registry,
		logger:   log,
	}
}

func (h *Hub) Registry() *Registry {
	return h.registry
}

// Broadcast emits an event to every current member of a room. Membership is
// snapshotted at call time; a concurrent disconnect may silently miss the
// event, which is acceptable for unacknowledged commands.
func (h *Hub) Broadcast(room, event string, data interface{}) {
	payload, err := marshalEnvelope(event, data)
	if err != nil {
		h.logger.Error("Hub", "Failed to marshal broadcast", map[string]interface{}{"event": event, "error": err.Error()})
		return
	}

	for _, session := range h.registry.Members(room) {
		h.send(session, payload)
	}
}

// Unicast emits an event to the identity's active session. No active
// session means the command is dropped; senders are not notified.
func (h *Hub) Unicast(userID uuid.UUID, event string, data interface{}) {
	session, ok := h.registry.ByIdentity(userID)
	if !ok {
		h.logger.Debug("Hub", "Unicast target offline, dropping", map[string]interface{}{"user_id": userID, "event": event})
		return
	}

	payload, err := marshalEnvelope(event, data)
	if err != nil {
		h.logger.Error("Hub", "Failed to marshal unicast", map[string]interface{}{"event": event, "error": err.Error()})
		return
	}
	h.send(session, payload)
}

func (h *Hub) send(session *Session, payload []byte) {
	select {
	case session.Send <- payload:
	default:
		h.logger.Warn("Hub", "Send buffer full, evicting client", map[string]interface{}{"user_id": session.UserID, "conn_id": session.ConnID})
		h.registry.Unregister(session.ConnID)
		session.CloseSend()
	}
}

func marshalEnvelope(event string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}
