package handler

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"classguard-be/internal/dto"
	"classguard-be/internal/entity"
	"classguard-be/internal/pkg/logger"
	"classguard-be/internal/service"
	internalWS "classguard-be/internal/websocket"
	"classguard-be/pkg/events"
	pktNats "classguard-be/pkg/nats"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// MonitorHandler owns the websocket endpoint: it upgrades connections,
// wires inbound events to the services and reacts to disconnects.
type MonitorHandler struct {
	auth       service.IAuthService
	monitor    service.IMonitorService
	relay      service.IRelayService
	registry   *internalWS.Registry
	hub        *internalWS.Hub
	dispatcher *internalWS.Dispatcher
	natsPub    *pktNats.Publisher
	logger     logger.ILogger
}

func NewMonitorHandler(
	auth service.IAuthService,
	monitor service.IMonitorService,
	relay service.IRelayService,
	registry *internalWS.Registry,
	hub *internalWS.Hub,
	natsPub *pktNats.Publisher,
	log logger.ILogger,
) *MonitorHandler {
	h := &MonitorHandler{
		auth:       auth,
		monitor:    monitor,
		relay:      relay,
		registry:   registry,
		hub:        hub,
		dispatcher: internalWS.NewDispatcher(log),
		natsPub:    natsPub,
		logger:     log,
	}
	h.registerHandlers()
	return h
}

func (h *MonitorHandler) registerHandlers() {
	h.dispatcher.Handle(internalWS.EventRegisterStudent, h.handleRegisterStudent)
	h.dispatcher.Handle(internalWS.EventRegisterTeacher, h.handleRegisterTeacher)
	h.dispatcher.Handle(internalWS.EventScreenUpdate, h.handleScreenUpdate)
	h.dispatcher.Handle(internalWS.EventProcessUpdate, h.handleProcessUpdate)
	h.dispatcher.Handle(internalWS.EventSendMessage, h.handleSendMessage)
	h.dispatcher.Handle(internalWS.EventLockScreens, h.handleLockScreens)
	h.dispatcher.Handle(internalWS.EventUnlockScreens, h.handleUnlockScreens)
	h.dispatcher.Handle(internalWS.EventCreatePoll, h.handleCreatePoll)
	h.dispatcher.Handle(internalWS.EventPollResponse, h.handlePollResponse)
	h.dispatcher.Handle(internalWS.EventShutdownServer, h.handleShutdownServer)
}

func (h *MonitorHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/ws", h.ServeWs)
}

// ServeWs upgrades the connection. Agents identify themselves with a
// register event as their first frame; a dashboard holding a teacher token
// may instead present it at handshake time and skip the register round trip.
func (h *MonitorHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	var claims *service.TokenClaims
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr != "" {
		parsed, err := h.auth.ParseToken(tokenStr)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
		}
		claims = parsed
	}

	return websocket.New(func(conn *websocket.Conn) {
		client := internalWS.NewClient(conn, h.registry, h.dispatcher, h.logger)
		client.OnDisconnect = h.onDisconnect

		if claims != nil && claims.Role == entity.UserRoleTeacher {
			session := h.registry.Register(client.ConnID, claims.UserId, claims.Username, claims.Role, client.Send)
			client.SetSession(session)
		}

		h.logger.Info("MonitorHandler", "WebSocket session started", map[string]interface{}{
			"conn_id": client.ConnID,
		})
		client.Serve(context.Background())
		h.logger.Info("MonitorHandler", "WebSocket session ended", map[string]interface{}{
			"conn_id": client.ConnID,
		})
	})(c)
}

func (h *MonitorHandler) handleRegisterStudent(ctx context.Context, c *internalWS.Client, payload json.RawMessage) error {
	var req dto.RegisterStudentRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		c.Emit(internalWS.EventError, dto.ErrorNotice{Message: "malformed register_student payload"})
		return nil
	}

	user, err := h.monitor.RegisterStudent(ctx, &req)
	if err != nil {
		c.Emit(internalWS.EventError, dto.ErrorNotice{Message: err.Error()})
		return nil
	}

	session := h.registry.Register(c.ConnID, user.Id, user.Username, user.Role, c.Send)
	c.SetSession(session)

	// Agents authenticate by registering, so the ack carries a token they
	// can reuse on reconnect.
	token, err := h.auth.IssueToken(user)
	if err != nil {
		h.logger.Warn("MonitorHandler", "failed to issue agent token", map[string]interface{}{
			"error": err.Error(),
		})
	}
	c.Emit(internalWS.EventRegistered, dto.RegisteredResponse{
		UserId:   user.Id,
		Username: user.Username,
		Token:    token,
	})

	h.hub.Broadcast(internalWS.RoomTeachers, internalWS.EventStudentConnected, dto.StudentConnectedNotice{
		UserId:    user.Id,
		Username:  user.Username,
		Timestamp: time.Now().Format(time.RFC3339),
	})

	if h.natsPub != nil {
		evt := events.NewStudentConnected(user.Id.String(), user.Username)
		if err := h.natsPub.Publish(ctx, evt); err != nil {
			h.logger.Warn("MonitorHandler", "failed to export connect event", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return nil
}

func (h *MonitorHandler) handleRegisterTeacher(ctx context.Context, c *internalWS.Client, payload json.RawMessage) error {
	var req dto.RegisterTeacherRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		c.Emit(internalWS.EventError, dto.ErrorNotice{Message: "malformed register_teacher payload"})
		return nil
	}

	user, err := h.monitor.RegisterTeacher(ctx, &req)
	if err != nil {
		c.Emit(internalWS.EventError, dto.ErrorNotice{Message: err.Error()})
		return nil
	}

	session := h.registry.Register(c.ConnID, user.Id, user.Username, user.Role, c.Send)
	c.SetSession(session)

	c.Emit(internalWS.EventRegistered, dto.RegisteredResponse{
		UserId:   user.Id,
		Username: user.Username,
	})

	// New viewers get the roster immediately, before any telemetry arrives.
	if list, err := h.monitor.StudentList(ctx); err == nil {
		c.Emit(internalWS.EventStudentList, list)
	}
	return nil
}

func (h *MonitorHandler) requireRegistered(c *internalWS.Client, role entity.UserRole) *internalWS.Session {
	session := c.Session()
	if session == nil {
		c.Emit(internalWS.EventError, dto.ErrorNotice{Message: "not registered"})
		return nil
	}
	if role != "" && session.Role != role {
		c.Emit(internalWS.EventError, dto.ErrorNotice{Message: "not permitted for this role"})
		return nil
	}
	return session
}

func (h *MonitorHandler) handleScreenUpdate(ctx context.Context, c *internalWS.Client, payload json.RawMessage) error {
	session := h.requireRegistered(c, entity.UserRoleStudent)
	if session == nil {
		return nil
	}

	var req dto.ScreenUpdateRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		c.Emit(internalWS.EventError, dto.ErrorNotice{Message: "malformed screen_update payload"})
		return nil
	}

	err := h.monitor.IngestScreen(ctx, session.UserID, session.Username, &req)
	if errors.Is(err, service.ErrRateLimited) {
		c.Emit(internalWS.EventRateLimited, dto.RateLimitedNotice{RetryAfter: h.monitor.RetryAfterSeconds()})
		return nil
	}
	return err
}

func (h *MonitorHandler) handleProcessUpdate(ctx context.Context, c *internalWS.Client, payload json.RawMessage) error {
	session := h.requireRegistered(c, entity.UserRoleStudent)
	if session == nil {
		return nil
	}

	var req dto.ProcessUpdateRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		c.Emit(internalWS.EventError, dto.ErrorNotice{Message: "malformed process_update payload"})
		return nil
	}

	err := h.monitor.IngestProcesses(ctx, session.UserID, session.Username, &req)
	if errors.Is(err, service.ErrRateLimited) {
		c.Emit(internalWS.EventRateLimited, dto.RateLimitedNotice{RetryAfter: h.monitor.RetryAfterSeconds()})
		return nil
	}
	return err
}

func senderFromSession(session *internalWS.Session) service.Sender {
	return service.Sender{
		UserId:   session.UserID,
		Username: session.Username,
		Role:     session.Role,
	}
}

func (h *MonitorHandler) relayError(c *internalWS.Client, err error) error {
	if errors.Is(err, service.ErrNotAuthorized) {
		c.Emit(internalWS.EventError, dto.ErrorNotice{Message: err.Error()})
		return nil
	}
	return err
}

func (h *MonitorHandler) handleSendMessage(ctx context.Context, c *internalWS.Client, payload json.RawMessage) error {
	session := h.requireRegistered(c, "")
	if session == nil {
		return nil
	}

	var req dto.SendMessageRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		c.Emit(internalWS.EventError, dto.ErrorNotice{Message: "malformed send_message payload"})
		return nil
	}
	if err := h.relay.SendMessage(ctx, senderFromSession(session), &req); err != nil {
		return h.relayError(c, err)
	}
	return nil
}

func (h *MonitorHandler) handleLockScreens(ctx context.Context, c *internalWS.Client, payload json.RawMessage) error {
	session := h.requireRegistered(c, "")
	if session == nil {
		return nil
	}

	var req dto.LockScreensRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		c.Emit(internalWS.EventError, dto.ErrorNotice{Message: "malformed lock_screens payload"})
		return nil
	}
	if err := h.relay.LockScreens(ctx, senderFromSession(session), &req); err != nil {
		return h.relayError(c, err)
	}
	return nil
}

func (h *MonitorHandler) handleUnlockScreens(ctx context.Context, c *internalWS.Client, payload json.RawMessage) error {
	session := h.requireRegistered(c, "")
	if session == nil {
		return nil
	}

	var req dto.UnlockScreensRequest
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			c.Emit(internalWS.EventError, dto.ErrorNotice{Message: "malformed unlock_screens payload"})
			return nil
		}
	}
	if req.Students.IDs == nil && !req.Students.All {
		req.Students.All = true
	}
	if err := h.relay.UnlockScreens(ctx, senderFromSession(session), &req); err != nil {
		return h.relayError(c, err)
	}
	return nil
}

func (h *MonitorHandler) handleCreatePoll(ctx context.Context, c *internalWS.Client, payload json.RawMessage) error {
	session := h.requireRegistered(c, "")
	if session == nil {
		return nil
	}

	var req dto.CreatePollRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		c.Emit(internalWS.EventError, dto.ErrorNotice{Message: "malformed create_poll payload"})
		return nil
	}
	if _, err := h.relay.CreatePoll(ctx, senderFromSession(session), &req); err != nil {
		if errors.Is(err, service.ErrNotAuthorized) {
			return h.relayError(c, err)
		}
		c.Emit(internalWS.EventError, dto.ErrorNotice{Message: err.Error()})
	}
	return nil
}

func (h *MonitorHandler) handlePollResponse(ctx context.Context, c *internalWS.Client, payload json.RawMessage) error {
	session := h.requireRegistered(c, entity.UserRoleStudent)
	if session == nil {
		return nil
	}

	var req dto.PollResponseRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		c.Emit(internalWS.EventError, dto.ErrorNotice{Message: "malformed poll_response payload"})
		return nil
	}
	return h.relay.PollResponse(ctx, senderFromSession(session), &req)
}

func (h *MonitorHandler) handleShutdownServer(ctx context.Context, c *internalWS.Client, payload json.RawMessage) error {
	session := h.requireRegistered(c, "")
	if session == nil {
		return nil
	}
	if err := h.relay.Shutdown(ctx, senderFromSession(session)); err != nil {
		return h.relayError(c, err)
	}
	return nil
}

func (h *MonitorHandler) onDisconnect(c *internalWS.Client, session *internalWS.Session) {
	if session == nil || session.Role != entity.UserRoleStudent {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.monitor.MarkOffline(ctx, session.UserID); err != nil {
		h.logger.Error("MonitorHandler", "failed to mark student offline", map[string]interface{}{
			"error":   err,
			"user_id": session.UserID.String(),
		})
	}

	h.hub.Broadcast(internalWS.RoomTeachers, internalWS.EventStudentDisconnected, dto.StudentDisconnectedNotice{
		UserId:    session.UserID,
		Username:  session.Username,
		Timestamp: time.Now().Format(time.RFC3339),
	})

	if h.natsPub != nil {
		evt := events.NewStudentDisconnected(session.UserID.String(), session.Username)
		if err := h.natsPub.Publish(ctx, evt); err != nil {
			h.logger.Warn("MonitorHandler", "failed to export disconnect event", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}
