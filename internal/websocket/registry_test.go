package websocket

import (
	"testing"

	"classguard-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newSendChan() chan []byte {
	return make(chan []byte, sendBufferSize)
}

func TestRegisterJoinsRoleRooms(t *testing.T) {
	r := NewRegistry()
	studentID := uuid.New()
	teacherID := uuid.New()

	student := r.Register("conn-s", studentID, "ana", entity.UserRoleStudent, newSendChan())
	teacher := r.Register("conn-t", teacherID, "ms-lee", entity.UserRoleTeacher, newSendChan())

	assert.Contains(t, student.Rooms, RoomStudents)
	assert.Contains(t, student.Rooms, StudentRoom(studentID))
	assert.NotContains(t, student.Rooms, RoomTeachers)

	assert.Contains(t, teacher.Rooms, RoomTeachers)
	assert.NotContains(t, teacher.Rooms, RoomStudents)

	assert.Len(t, r.Members(RoomStudents), 1)
	assert.Len(t, r.Members(RoomTeachers), 1)
}

func TestReRegisterSupersedesOldSession(t *testing.T) {
	r := NewRegistry()
	userID := uuid.New()

	r.Register("conn-old", userID, "ana", entity.UserRoleStudent, newSendChan())
	fresh := r.Register("conn-new", userID, "ana", entity.UserRoleStudent, newSendChan())

	_, oldFound := r.ByConnection("conn-old")
	assert.False(t, oldFound, "superseded connection should no longer resolve")

	byIdentity, ok := r.ByIdentity(userID)
	assert.True(t, ok)
	assert.Same(t, fresh, byIdentity, "identity must resolve to the most recent session")

	// Exactly one addressable session for the identity.
	assert.Len(t, r.Members(RoomStudents), 1)
	assert.Len(t, r.Members(StudentRoom(userID)), 1)
}

func TestUnregisterIsIdempotent(t *testing.T) {
	r := NewRegistry()
	userID := uuid.New()
	r.Register("conn-1", userID, "ana", entity.UserRoleStudent, newSendChan())

	first := r.Unregister("conn-1")
	assert.NotNil(t, first)

	second := r.Unregister("conn-1")
	assert.Nil(t, second, "second unregister must be a no-op")

	assert.Nil(t, r.Unregister("never-existed"))

	_, ok := r.ByIdentity(userID)
	assert.False(t, ok)
	assert.Empty(t, r.Members(RoomStudents))
}

func TestUnregisterOldConnAfterSupersedeKeepsNewSession(t *testing.T) {
	r := NewRegistry()
	userID := uuid.New()

	r.Register("conn-old", userID, "ana", entity.UserRoleStudent, newSendChan())
	r.Register("conn-new", userID, "ana", entity.UserRoleStudent, newSendChan())

	// The stale read pump tears down afterwards. That must not evict the
	// superseding session from the identity index.
	r.Unregister("conn-old")

	session, ok := r.ByIdentity(userID)
	assert.True(t, ok)
	assert.Equal(t, "conn-new", session.ConnID)
}

func TestLookupMissesFailSoftly(t *testing.T) {
	r := NewRegistry()

	_, ok := r.ByConnection("ghost")
	assert.False(t, ok)

	_, ok = r.ByIdentity(uuid.New())
	assert.False(t, ok)

	assert.Empty(t, r.Members("no-such-room"))
}

func TestJoinExtraRoom(t *testing.T) {
	r := NewRegistry()
	userID := uuid.New()
	r.Register("conn-1", userID, "ana", entity.UserRoleStudent, newSendChan())

	assert.True(t, r.Join("conn-1", "poll:42"))
	assert.Len(t, r.Members("poll:42"), 1)

	assert.False(t, r.Join("ghost", "poll:42"))
}
