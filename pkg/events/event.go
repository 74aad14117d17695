package events

import "time"

// Event is the contract every classroom event satisfies.
type Event interface {
	// EventType returns the unique code for this event (e.g. "VIOLATION_DETECTED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const (
	TypeViolationDetected   = "VIOLATION_DETECTED"
	TypeStudentConnected    = "STUDENT_CONNECTED"
	TypeStudentDisconnected = "STUDENT_DISCONNECTED"
)

// NewViolationDetected builds the event emitted when the ingestion pipeline
// flags a student's process or browsing activity.
func NewViolationDetected(studentID, studentName, category, detail string) Event {
	return BaseEvent{
		Type: TypeViolationDetected,
		Data: map[string]interface{}{
			"student_id":   studentID,
			"student_name": studentName,
			"category":     category,
			"detail":       detail,
		},
		OccurredAt: time.Now(),
	}
}

func NewStudentConnected(studentID, studentName string) Event {
	return BaseEvent{
		Type: TypeStudentConnected,
		Data: map[string]interface{}{
			"student_id":   studentID,
			"student_name": studentName,
		},
		OccurredAt: time.Now(),
	}
}

func NewStudentDisconnected(studentID, studentName string) Event {
	return BaseEvent{
		Type: TypeStudentDisconnected,
		Data: map[string]interface{}{
			"student_id":   studentID,
			"student_name": studentName,
		},
		OccurredAt: time.Now(),
	}
}
