package dto

import (
	"github.com/google/uuid"
)

// Inbound agent payloads.

type RegisterStudentRequest struct {
	Name       string `json:"name"`
	ComputerId string `json:"computer_id"`
	Platform   string `json:"platform"`
	Hostname   string `json:"hostname"`
}

type RegisterTeacherRequest struct {
	Name string `json:"name"`
}

type ScreenUpdateRequest struct {
	// Screenshot is base64-encoded image bytes; empty when the agent sends a
	// digest-only frame (unchanged screen).
	Screenshot   string  `json:"screenshot,omitempty"`
	Hash         string  `json:"hash,omitempty"`
	SizeKB       float64 `json:"size_kb,omitempty"`
	ActiveWindow string  `json:"active_window"`
	ActiveApp    string  `json:"active_app"`
	Timestamp    string  `json:"timestamp,omitempty"`
}

type ProcessUpdateRequest struct {
	Processes []string `json:"processes"`
	URLs      []string `json:"urls"`
	Timestamp string   `json:"timestamp,omitempty"`
}

// Outbound payloads.

type RegisteredResponse struct {
	UserId   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Token    string    `json:"token,omitempty"`
}

type StudentConnectedNotice struct {
	UserId    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	Timestamp string    `json:"timestamp"`
}

type StudentDisconnectedNotice struct {
	UserId    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	Timestamp string    `json:"timestamp"`
}

type StudentSummary struct {
	Id       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Status   string    `json:"status"`
	LastSeen string    `json:"last_seen,omitempty"`
}

type StudentListResponse struct {
	Students []StudentSummary `json:"students"`
}

type ScreenDataBroadcast struct {
	UserId       uuid.UUID `json:"user_id"`
	Username     string    `json:"username"`
	Image        string    `json:"image,omitempty"`
	Hash         string    `json:"hash,omitempty"`
	ActiveWindow string    `json:"active_window"`
	ActiveApp    string    `json:"active_app"`
	Timestamp    string    `json:"timestamp"`
}

type ViolationAlert struct {
	UserId    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	Category  string    `json:"category"`
	Detail    string    `json:"detail"`
	Timestamp string    `json:"timestamp"`
}

type RateLimitedNotice struct {
	RetryAfter int `json:"retry_after"`
}

type ErrorNotice struct {
	Message string `json:"message"`
}
