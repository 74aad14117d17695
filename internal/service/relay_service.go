package service

import (
	"context"
	"errors"
	"time"

	"classguard-be/internal/dto"
	"classguard-be/internal/entity"
	"classguard-be/internal/pkg/logger"
	"classguard-be/internal/repository/unitofwork"
	ws "classguard-be/internal/websocket"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// ErrNotAuthorized is returned when a non-teacher invokes a supervisory
// command. The command is dropped without side effects.
var ErrNotAuthorized = errors.New("command requires teacher role")

// Sender identifies the connection invoking a relay command.
type Sender struct {
	UserId   uuid.UUID
	Username string
	Role     entity.UserRole
}

type IRelayService interface {
	SendMessage(ctx context.Context, sender Sender, req *dto.SendMessageRequest) error
	LockScreens(ctx context.Context, sender Sender, req *dto.LockScreensRequest) error
	UnlockScreens(ctx context.Context, sender Sender, req *dto.UnlockScreensRequest) error
	CreatePoll(ctx context.Context, sender Sender, req *dto.CreatePollRequest) (*dto.ShowPollPayload, error)
	PollResponse(ctx context.Context, sender Sender, req *dto.PollResponseRequest) error
	Shutdown(ctx context.Context, sender Sender) error
}

type relayService struct {
	uowFactory unitofwork.RepositoryFactory
	hub        Broadcaster
	polls      *gocache.Cache
	shutdownFn func()
	logger     logger.ILogger
}

func NewRelayService(uowFactory unitofwork.RepositoryFactory, hub Broadcaster, shutdownFn func(), log logger.ILogger) IRelayService {
	return &relayService{
		uowFactory: uowFactory,
		hub:        hub,
		polls:      gocache.New(1*time.Hour, 10*time.Minute),
		shutdownFn: shutdownFn,
		logger:     log,
	}
}

func requireTeacher(sender Sender) error {
	if sender.Role != entity.UserRoleTeacher {
		return ErrNotAuthorized
	}
	return nil
}

func (s *relayService) SendMessage(ctx context.Context, sender Sender, req *dto.SendMessageRequest) error {
	if err := requireTeacher(sender); err != nil {
		return err
	}
	if req.Message == "" {
		return errors.New("message is empty")
	}

	msgType := req.Type
	if msgType == "" {
		msgType = string(entity.MessageTypeNormal)
	}

	payload := dto.ReceiveMessagePayload{
		Message:   req.Message,
		Type:      msgType,
		From:      sender.Username,
		Timestamp: time.Now().Format(time.RFC3339),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	persist := func(receiver *uuid.UUID) {
		msg := &entity.Message{
			Id:         uuid.New(),
			SenderId:   sender.UserId,
			ReceiverId: receiver,
			Type:       entity.MessageType(msgType),
			Content:    req.Message,
			CreatedAt:  time.Now(),
		}
		if err := uow.MessageRepository().Create(ctx, msg); err != nil {
			s.logger.Error("relay", "failed to persist message", map[string]interface{}{
				"error": err,
			})
		}
	}

	if req.Target.All {
		persist(nil)
		s.hub.Broadcast(ws.RoomStudents, ws.EventReceiveMessage, payload)
		return nil
	}

	for _, id := range req.Target.IDs {
		receiver := id
		persist(&receiver)
		s.hub.Unicast(id, ws.EventReceiveMessage, payload)
	}
	return nil
}

func (s *relayService) LockScreens(ctx context.Context, sender Sender, req *dto.LockScreensRequest) error {
	if err := requireTeacher(sender); err != nil {
		return err
	}

	payload := dto.ScreenLockPayload{
		Duration: req.Duration,
		Message:  req.Message,
	}
	if payload.Message == "" {
		payload.Message = "Screen locked by teacher"
	}

	if req.Students.All {
		s.hub.Broadcast(ws.RoomStudents, ws.EventScreenLock, payload)
		return nil
	}
	for _, id := range req.Students.IDs {
		s.hub.Unicast(id, ws.EventScreenLock, payload)
	}
	return nil
}

func (s *relayService) UnlockScreens(ctx context.Context, sender Sender, req *dto.UnlockScreensRequest) error {
	if err := requireTeacher(sender); err != nil {
		return err
	}

	if req.Students.All {
		s.hub.Broadcast(ws.RoomStudents, ws.EventScreenUnlock, struct{}{})
		return nil
	}
	for _, id := range req.Students.IDs {
		s.hub.Unicast(id, ws.EventScreenUnlock, struct{}{})
	}
	return nil
}

func (s *relayService) CreatePoll(ctx context.Context, sender Sender, req *dto.CreatePollRequest) (*dto.ShowPollPayload, error) {
	if err := requireTeacher(sender); err != nil {
		return nil, err
	}
	if req.Question == "" || len(req.Options) < 2 {
		return nil, errors.New("poll needs a question and at least two options")
	}

	payload := &dto.ShowPollPayload{
		PollId:    uuid.NewString(),
		Question:  req.Question,
		Options:   req.Options,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	s.polls.Set(payload.PollId, payload, gocache.DefaultExpiration)

	s.hub.Broadcast(ws.RoomStudents, ws.EventShowPoll, payload)
	s.hub.Broadcast(ws.RoomTeachers, ws.EventShowPoll, payload)
	return payload, nil
}

func (s *relayService) PollResponse(ctx context.Context, sender Sender, req *dto.PollResponseRequest) error {
	if req.PollId == "" {
		return errors.New("poll id is required")
	}
	// Expired or unknown polls are dropped quietly; late agents are not an
	// error condition.
	if _, found := s.polls.Get(req.PollId); !found {
		return nil
	}

	s.hub.Broadcast(ws.RoomTeachers, ws.EventPollResults, dto.PollResultsPayload{
		PollId:    req.PollId,
		Answer:    req.Answer,
		Username:  sender.Username,
		Timestamp: time.Now().Format(time.RFC3339),
	})
	return nil
}

func (s *relayService) Shutdown(ctx context.Context, sender Sender) error {
	if err := requireTeacher(sender); err != nil {
		return err
	}

	s.hub.Broadcast(ws.RoomStudents, ws.EventReceiveMessage, dto.ReceiveMessagePayload{
		Message:   "Monitoring server is shutting down",
		Type:      string(entity.MessageTypeWarning),
		From:      sender.Username,
		Timestamp: time.Now().Format(time.RFC3339),
	})

	s.logger.Warn("relay", "shutdown requested", map[string]interface{}{
		"teacher": sender.Username,
	})

	if s.shutdownFn != nil {
		go s.shutdownFn()
	}
	return nil
}
