package entity

import (
	"time"

	"github.com/google/uuid"
)

// Activity is one accepted telemetry submission from a student agent. The
// raw screenshot never lives here; ScreenshotHash addresses the encoded
// bytes in the screenshot store.
type Activity struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	ScreenshotHash *string
	ActiveWindow   string
	ActiveApp      string
	Processes      []string
	URLs           []string
	CapturedAt     time.Time
	CreatedAt      time.Time
}
