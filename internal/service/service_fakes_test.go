package service

import (
	"context"
	"sync"
	"time"

	"classguard-be/internal/entity"
	"classguard-be/internal/repository/contract"
	"classguard-be/internal/repository/specification"
	"classguard-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// In-memory doubles for the persistence layer. Specifications are matched
// structurally instead of being applied to a live gorm session.

type fakeUserRepo struct {
	mu       sync.Mutex
	users    []*entity.User
	statuses map[uuid.UUID]entity.UserStatus
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{statuses: make(map[uuid.UUID]entity.UserStatus)}
}

func matchUser(u *entity.User, spec specification.Specification) bool {
	switch s := spec.(type) {
	case specification.ByID:
		return u.Id == s.ID
	case specification.ByUsername:
		return u.Username == s.Username
	case specification.ByComputerID:
		return u.ComputerId != nil && *u.ComputerId == s.ComputerID
	case specification.ByRole:
		return u.Role == s.Role
	default:
		return true
	}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, user)
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, u := range r.users {
		if u.Id == user.Id {
			r.users[i] = user
			return nil
		}
	}
	r.users = append(r.users, user)
	return nil
}

func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
outer:
	for _, u := range r.users {
		for _, spec := range specs {
			if !matchUser(u, spec) {
				continue outer
			}
		}
		return u, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.User
outer:
	for _, u := range r.users {
		for _, spec := range specs {
			if !matchUser(u, spec) {
				continue outer
			}
		}
		out = append(out, u)
	}
	return out, nil
}

func (r *fakeUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func (r *fakeUserRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.UserStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[id] = status
	for _, u := range r.users {
		if u.Id == id {
			u.Status = status
		}
	}
	return nil
}

type fakeActivityRepo struct {
	mu         sync.Mutex
	activities []*entity.Activity
}

func (r *fakeActivityRepo) Create(ctx context.Context, activity *entity.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activities = append(r.activities, activity)
	return nil
}

func (r *fakeActivityRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*entity.Activity(nil), r.activities...), nil
}

func (r *fakeActivityRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.activities)), nil
}

type fakeViolationRepo struct {
	mu         sync.Mutex
	violations []*entity.Violation
}

func (r *fakeViolationRepo) Create(ctx context.Context, violation *entity.Violation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.violations = append(r.violations, violation)
	return nil
}

func (r *fakeViolationRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Violation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*entity.Violation(nil), r.violations...), nil
}

func (r *fakeViolationRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.violations)), nil
}

func (r *fakeViolationRepo) CountByUserSince(ctx context.Context, userId uuid.UUID, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, v := range r.violations {
		if v.UserId == userId && v.DetectedAt.After(since) {
			n++
		}
	}
	return n, nil
}

func (r *fakeViolationRepo) Resolve(ctx context.Context, id uuid.UUID, resolvedBy uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.violations {
		if v.Id == id {
			v.Resolved = true
			v.ResolvedBy = &resolvedBy
		}
	}
	return nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []*entity.Message
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
	return nil
}

func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*entity.Message(nil), r.messages...), nil
}

func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.messages)), nil
}

func (r *fakeMessageRepo) MarkRead(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.Id == id {
			m.Read = true
		}
	}
	return nil
}

type fakeUow struct {
	users      *fakeUserRepo
	activities *fakeActivityRepo
	violations *fakeViolationRepo
	messages   *fakeMessageRepo
}

func newFakeUow() *fakeUow {
	return &fakeUow{
		users:      newFakeUserRepo(),
		activities: &fakeActivityRepo{},
		violations: &fakeViolationRepo{},
		messages:   &fakeMessageRepo{},
	}
}

func (u *fakeUow) Begin(ctx context.Context) error { return nil }
func (u *fakeUow) Commit() error                   { return nil }
func (u *fakeUow) Rollback() error                 { return nil }

func (u *fakeUow) UserRepository() contract.UserRepository           { return u.users }
func (u *fakeUow) ActivityRepository() contract.ActivityRepository   { return u.activities }
func (u *fakeUow) ViolationRepository() contract.ViolationRepository { return u.violations }
func (u *fakeUow) MessageRepository() contract.MessageRepository     { return u.messages }

type fakeFactory struct {
	uow *fakeUow
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{uow: newFakeUow()}
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

// fakeHub records fan-out calls instead of delivering them.

type hubCall struct {
	Room    string
	UserID  uuid.UUID
	Event   string
	Data    interface{}
	Unicast bool
}

type fakeHub struct {
	mu    sync.Mutex
	calls []hubCall
}

func (h *fakeHub) Broadcast(room, event string, data interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, hubCall{Room: room, Event: event, Data: data})
}

func (h *fakeHub) Unicast(userID uuid.UUID, event string, data interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, hubCall{UserID: userID, Event: event, Data: data, Unicast: true})
}

func (h *fakeHub) callsFor(event string) []hubCall {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []hubCall
	for _, c := range h.calls {
		if c.Event == event {
			out = append(out, c)
		}
	}
	return out
}

type fakePublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *fakePublisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return nil
}
