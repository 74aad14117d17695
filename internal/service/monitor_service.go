package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"classguard-be/internal/dto"
	"classguard-be/internal/entity"
	"classguard-be/internal/pkg/logger"
	"classguard-be/internal/repository/specification"
	"classguard-be/internal/repository/unitofwork"
	ws "classguard-be/internal/websocket"
	"classguard-be/pkg/imaging"
	"classguard-be/pkg/ratelimit"
	"classguard-be/pkg/screenstore"

	"github.com/google/uuid"
)

// ErrRateLimited is returned when a student submits telemetry faster than
// the ingest window allows. The frame is dropped, never queued.
var ErrRateLimited = errors.New("telemetry rate limit exceeded")

// Broadcaster is the fan-out surface the services push through. Satisfied
// by the websocket hub; faked in tests.
type Broadcaster interface {
	Broadcast(room, event string, data interface{})
	Unicast(userID uuid.UUID, event string, data interface{})
}

type IMonitorService interface {
	RegisterStudent(ctx context.Context, req *dto.RegisterStudentRequest) (*entity.User, error)
	RegisterTeacher(ctx context.Context, req *dto.RegisterTeacherRequest) (*entity.User, error)
	IngestScreen(ctx context.Context, userId uuid.UUID, username string, req *dto.ScreenUpdateRequest) error
	IngestProcesses(ctx context.Context, userId uuid.UUID, username string, req *dto.ProcessUpdateRequest) error
	StudentList(ctx context.Context) (*dto.StudentListResponse, error)
	MarkOffline(ctx context.Context, userId uuid.UUID) error

	// RetryAfterSeconds is the backoff hint sent with rate_limited notices.
	RetryAfterSeconds() int
}

type monitorService struct {
	uowFactory    unitofwork.RepositoryFactory
	compressor    *imaging.Compressor
	screens       *screenstore.Store
	ingestLimiter *ratelimit.Limiter
	detector      *ViolationDetector
	violationPub  IPublisherService
	hub           Broadcaster
	logger        logger.ILogger
}

func NewMonitorService(
	uowFactory unitofwork.RepositoryFactory,
	compressor *imaging.Compressor,
	screens *screenstore.Store,
	ingestLimiter *ratelimit.Limiter,
	detector *ViolationDetector,
	violationPub IPublisherService,
	hub Broadcaster,
	log logger.ILogger,
) IMonitorService {
	return &monitorService{
		uowFactory:    uowFactory,
		compressor:    compressor,
		screens:       screens,
		ingestLimiter: ingestLimiter,
		detector:      detector,
		violationPub:  violationPub,
		hub:           hub,
		logger:        log,
	}
}

func (s *monitorService) RegisterStudent(ctx context.Context, req *dto.RegisterStudentRequest) (*entity.User, error) {
	if req.Name == "" {
		return nil, errors.New("student name is required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	// Returning devices are recognised by machine identity first, so a
	// renamed student keeps their history.
	var user *entity.User
	var err error
	if req.ComputerId != "" {
		user, err = uow.UserRepository().FindOne(ctx, specification.ByComputerID{ComputerID: req.ComputerId})
		if err != nil {
			return nil, err
		}
	}
	if user == nil {
		user, err = uow.UserRepository().FindOne(ctx,
			specification.ByUsername{Username: req.Name},
			specification.ByRole{Role: entity.UserRoleStudent},
		)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()
	if user == nil {
		user = &entity.User{
			Id:        uuid.New(),
			Username:  req.Name,
			Role:      entity.UserRoleStudent,
			Status:    entity.UserStatusOnline,
			LastSeen:  now,
			CreatedAt: now,
			UpdatedAt: now,
		}
		applyAgentIdentity(user, req)
		if err := uow.UserRepository().Create(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}

	user.Username = req.Name
	user.Status = entity.UserStatusOnline
	user.LastSeen = now
	user.UpdatedAt = now
	applyAgentIdentity(user, req)
	if err := uow.UserRepository().Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func applyAgentIdentity(user *entity.User, req *dto.RegisterStudentRequest) {
	if req.ComputerId != "" {
		user.ComputerId = &req.ComputerId
	}
	if req.Platform != "" {
		user.Platform = &req.Platform
	}
	if req.Hostname != "" {
		user.Hostname = &req.Hostname
	}
}

func (s *monitorService) RegisterTeacher(ctx context.Context, req *dto.RegisterTeacherRequest) (*entity.User, error) {
	if req.Name == "" {
		return nil, errors.New("teacher name is required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx,
		specification.ByUsername{Username: req.Name},
		specification.ByRole{Role: entity.UserRoleTeacher},
	)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if user == nil {
		user = &entity.User{
			Id:        uuid.New(),
			Username:  req.Name,
			Role:      entity.UserRoleTeacher,
			Status:    entity.UserStatusOnline,
			LastSeen:  now,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := uow.UserRepository().Create(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}

	user.Status = entity.UserStatusOnline
	user.LastSeen = now
	user.UpdatedAt = now
	if err := uow.UserRepository().Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *monitorService) IngestScreen(ctx context.Context, userId uuid.UUID, username string, req *dto.ScreenUpdateRequest) error {
	if !s.ingestLimiter.Allow(userId.String()) {
		return ErrRateLimited
	}

	broadcast := dto.ScreenDataBroadcast{
		UserId:       userId,
		Username:     username,
		ActiveWindow: req.ActiveWindow,
		ActiveApp:    req.ActiveApp,
		Timestamp:    time.Now().Format(time.RFC3339),
	}

	var digest *string
	switch {
	case req.Screenshot != "":
		result, err := s.compressor.CompressBase64(req.Screenshot)
		if err != nil {
			// A bad frame never blocks the activity trail; the record is
			// simply saved without an image.
			s.logger.Warn("monitor", "screenshot compression failed", map[string]interface{}{
				"error":   err.Error(),
				"user_id": userId.String(),
			})
			break
		}
		if err := s.screens.Put(ctx, result.Digest, result.Bytes); err != nil {
			s.logger.Warn("monitor", "screenshot store write failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		digest = &result.Digest
		broadcast.Image = result.Base64
		broadcast.Hash = result.Digest
	case req.Hash != "":
		// Digest-only frame: the screen did not change, viewers reuse the
		// frame they already hold.
		digest = &req.Hash
		broadcast.Hash = req.Hash
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	activity := &entity.Activity{
		Id:             uuid.New(),
		UserId:         userId,
		ScreenshotHash: digest,
		ActiveWindow:   req.ActiveWindow,
		ActiveApp:      req.ActiveApp,
		CapturedAt:     parseAgentTimestamp(req.Timestamp),
		CreatedAt:      time.Now(),
	}
	if err := uow.ActivityRepository().Create(ctx, activity); err != nil {
		return err
	}

	s.hub.Broadcast(ws.RoomTeachers, ws.EventScreenData, broadcast)
	return nil
}

func (s *monitorService) IngestProcesses(ctx context.Context, userId uuid.UUID, username string, req *dto.ProcessUpdateRequest) error {
	if !s.ingestLimiter.Allow(userId.String()) {
		return ErrRateLimited
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	activity := &entity.Activity{
		Id:         uuid.New(),
		UserId:     userId,
		Processes:  req.Processes,
		URLs:       req.URLs,
		CapturedAt: parseAgentTimestamp(req.Timestamp),
		CreatedAt:  time.Now(),
	}
	if err := uow.ActivityRepository().Create(ctx, activity); err != nil {
		return err
	}

	for _, match := range s.detector.Scan(req.Processes, req.URLs) {
		violation := &entity.Violation{
			Id:         uuid.New(),
			UserId:     userId,
			Category:   match.Category,
			Detail:     match.Detail,
			Severity:   match.Severity,
			DetectedAt: time.Now(),
		}
		if err := uow.ViolationRepository().Create(ctx, violation); err != nil {
			s.logger.Error("monitor", "failed to persist violation", map[string]interface{}{
				"error":    err,
				"user_id":  userId.String(),
				"category": match.Category,
			})
			continue
		}

		payload, err := json.Marshal(dto.ViolationDetectedMessage{
			ViolationId: violation.Id,
			UserId:      userId,
			Username:    username,
			Category:    violation.Category,
			Detail:      violation.Detail,
			Severity:    string(violation.Severity),
			DetectedAt:  violation.DetectedAt,
		})
		if err != nil {
			continue
		}
		if err := s.violationPub.Publish(ctx, payload); err != nil {
			s.logger.Error("monitor", "failed to publish violation event", map[string]interface{}{
				"error":   err,
				"user_id": userId.String(),
			})
		}
	}

	return nil
}

func (s *monitorService) StudentList(ctx context.Context) (*dto.StudentListResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	students, err := uow.UserRepository().FindAll(ctx,
		specification.ByRole{Role: entity.UserRoleStudent},
		specification.OrderBy{Field: "username"},
	)
	if err != nil {
		return nil, err
	}

	resp := &dto.StudentListResponse{Students: make([]dto.StudentSummary, 0, len(students))}
	for _, student := range students {
		resp.Students = append(resp.Students, dto.StudentSummary{
			Id:       student.Id,
			Username: student.Username,
			Status:   string(student.Status),
			LastSeen: student.LastSeen.Format(time.RFC3339),
		})
	}
	return resp, nil
}

func (s *monitorService) MarkOffline(ctx context.Context, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.UserRepository().UpdateStatus(ctx, userId, entity.UserStatusOffline)
}

func (s *monitorService) RetryAfterSeconds() int {
	return int(s.ingestLimiter.Window().Seconds())
}

func parseAgentTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Now()
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts
	}
	return time.Now()
}
