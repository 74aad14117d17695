package entity

import (
	"time"

	"github.com/google/uuid"
)

type ViolationSeverity string

const (
	ViolationSeverityLow    ViolationSeverity = "low"
	ViolationSeverityMedium ViolationSeverity = "medium"
	ViolationSeverityHigh   ViolationSeverity = "high"
)

// Violation records one taxonomy match against a submitted process or URL.
// Immutable after creation, except for the resolution fields a teacher sets
// later.
type Violation struct {
	Id       uuid.UUID
	UserId   uuid.UUID
	Category string
	Detail   string
	Severity ViolationSeverity

	Resolved   bool
	ResolvedBy *uuid.UUID
	ResolvedAt *time.Time

	DetectedAt time.Time
}
