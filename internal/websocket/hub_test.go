package websocket

import (
	"encoding/json"
	"testing"

	"classguard-be/internal/entity"
	"classguard-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drainOne(t *testing.T, ch chan []byte) Envelope {
	t.Helper()
	select {
	case frame := <-ch:
		var env Envelope
		require.NoError(t, json.Unmarshal(frame, &env))
		return env
	default:
		t.Fatal("expected a frame, channel empty")
		return Envelope{}
	}
}

func TestBroadcastReachesOnlyTheRoom(t *testing.T) {
	r := NewRegistry()
	h := NewHub(r, logger.NewNop())

	studentSend := newSendChan()
	teacherSend := newSendChan()
	r.Register("conn-s", uuid.New(), "ana", entity.UserRoleStudent, studentSend)
	r.Register("conn-t", uuid.New(), "ms-lee", entity.UserRoleTeacher, teacherSend)

	h.Broadcast(RoomStudents, EventScreenLock, map[string]interface{}{"duration": 60, "message": "Quiz time"})

	env := drainOne(t, studentSend)
	assert.Equal(t, EventScreenLock, env.Event)

	assert.Empty(t, teacherSend, "teachers must not receive student-room events")
	assert.Empty(t, studentSend, "each member receives exactly one frame")
}

func TestUnicastToOfflineIdentityIsSilentDrop(t *testing.T) {
	r := NewRegistry()
	h := NewHub(r, logger.NewNop())

	// Must not panic, must not deliver anywhere.
	h.Unicast(uuid.New(), EventReceiveMessage, map[string]interface{}{"message": "hi"})
	assert.Empty(t, r.sessions)
}

func TestUnicastDeliversToIdentity(t *testing.T) {
	r := NewRegistry()
	h := NewHub(r, logger.NewNop())

	userID := uuid.New()
	send := newSendChan()
	r.Register("conn-1", userID, "ana", entity.UserRoleStudent, send)

	h.Unicast(userID, EventScreenUnlock, map[string]interface{}{})

	env := drainOne(t, send)
	assert.Equal(t, EventScreenUnlock, env.Event)
}

func TestSlowReceiverIsEvictedNotBlocking(t *testing.T) {
	r := NewRegistry()
	h := NewHub(r, logger.NewNop())

	userID := uuid.New()
	full := make(chan []byte, 1)
	full <- []byte(`{}`) // nobody reading: the buffer stays full
	r.Register("conn-1", userID, "ana", entity.UserRoleStudent, full)

	// Must return immediately and evict, never park on the send.
	h.Broadcast(RoomStudents, EventReceiveMessage, map[string]interface{}{"message": "x"})

	_, ok := r.ByConnection("conn-1")
	assert.False(t, ok, "slow receiver should be unregistered")

	<-full // the backlog the receiver never drained
	_, open := <-full
	assert.False(t, open, "send channel should be closed on eviction")
}
