package dto

import (
	"time"

	"github.com/google/uuid"
)

// ViolationDetectedMessage travels over the internal event bus from the
// ingestion pipeline to the alert consumer.
type ViolationDetectedMessage struct {
	ViolationId uuid.UUID `json:"violation_id"`
	UserId      uuid.UUID `json:"user_id"`
	Username    string    `json:"username"`
	Category    string    `json:"category"`
	Detail      string    `json:"detail"`
	Severity    string    `json:"severity"`
	DetectedAt  time.Time `json:"detected_at"`
}
