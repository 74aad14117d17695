package websocket

import (
	"sync"
	"time"

	"classguard-be/internal/entity"

	"github.com/google/uuid"
)

// Room names. Fan-out is addressed exclusively through rooms: the two base
// rooms per role, plus a synthetic per-student room used for unicast.
const (
	RoomStudents = "students"
	RoomTeachers = "teachers"
)

// StudentRoom returns the per-identity unicast room for a student.
func StudentRoom(userID uuid.UUID) string {
	return "student:" + userID.String()
}

// Session binds one live connection to an identity, a role and its room
// memberships. It is owned by the Registry; everything here is written under
// the registry lock after construction, except Send which is only ever
// pushed to.
type Session struct {
	ConnID      string
	UserID      uuid.UUID
	Username    string
	Role        entity.UserRole
	Rooms       map[string]struct{}
	ConnectedAt time.Time

	// Send is the outbound buffer shared with the connection's write pump.
	Send chan []byte

	closeOnce sync.Once
}

// CloseSend closes the outbound buffer exactly once, regardless of whether
// the eviction came from the read pump or from a slow-receiver drop.
func (s *Session) CloseSend() {
	s.closeOnce.Do(func() { close(s.Send) })
}

// Registry is the presence map for every live connection: primary index by
// connection id, secondary index by identity, and a room index for fan-out.
// It is an explicit object passed to every component that needs it, never
// ambient state.
type Registry struct {
	mu         sync.RWMutex
	sessions   map[string]*Session
	byIdentity map[uuid.UUID]*Session
	rooms      map[string]map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions:   make(map[string]*Session),
		byIdentity: make(map[uuid.UUID]*Session),
		rooms:      make(map[string]map[string]*Session),
	}
}

// Register creates the Session for a connection and joins it to its role's
// rooms. If the identity already has a live session, the old one is
// superseded: it stops being addressable immediately, but its transport
// teardown stays with the transport layer.
func (r *Registry) Register(connID string, userID uuid.UUID, username string, role entity.UserRole, send chan []byte) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byIdentity[userID]; ok {
		r.removeLocked(old)
	}

	session := &Session{
		ConnID:      connID,
		UserID:      userID,
		Username:    username,
		Role:        role,
		Rooms:       make(map[string]struct{}),
		ConnectedAt: time.Now().UTC(),
		Send:        send,
	}

	r.sessions[connID] = session
	r.byIdentity[userID] = session

	if role == entity.UserRoleTeacher {
		r.joinLocked(session, RoomTeachers)
	} else {
		r.joinLocked(session, RoomStudents)
		r.joinLocked(session, StudentRoom(userID))
	}

	return session
}

// Unregister removes the session for a connection. Unknown connections are a
// no-op: disconnects race with supersession and with each other.
func (r *Registry) Unregister(connID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[connID]
	if !ok {
		return nil
	}
	r.removeLocked(session)
	return session
}

// ByConnection resolves a connection id. Misses are expected during
// disconnect races and are not an error.
func (r *Registry) ByConnection(connID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[connID]
	return session, ok
}

// ByIdentity resolves the currently addressable session for an identity.
func (r *Registry) ByIdentity(userID uuid.UUID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.byIdentity[userID]
	return session, ok
}

// Members returns a snapshot of the sessions in a room, safe to iterate
// while the registry keeps mutating.
func (r *Registry) Members(room string) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := make([]*Session, 0, len(r.rooms[room]))
	for _, session := range r.rooms[room] {
		members = append(members, session)
	}
	return members
}

// Join adds a session to an extra room. The base rooms are joined during
// Register; this exists for ad-hoc groups (e.g. a poll cohort).
func (r *Registry) Join(connID, room string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[connID]
	if !ok {
		return false
	}
	r.joinLocked(session, room)
	return true
}

func (r *Registry) joinLocked(session *Session, room string) {
	session.Rooms[room] = struct{}{}
	if r.rooms[room] == nil {
		r.rooms[room] = make(map[string]*Session)
	}
	r.rooms[room][session.ConnID] = session
}

func (r *Registry) removeLocked(session *Session) {
	delete(r.sessions, session.ConnID)
	// The identity index may already point at a superseding session.
	if current, ok := r.byIdentity[session.UserID]; ok && current == session {
		delete(r.byIdentity, session.UserID)
	}
	for room := range session.Rooms {
		delete(r.rooms[room], session.ConnID)
		if len(r.rooms[room]) == 0 {
			delete(r.rooms, room)
		}
	}
}
