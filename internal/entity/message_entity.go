package entity

import (
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	MessageTypeNormal  MessageType = "normal"
	MessageTypeWarning MessageType = "warning"
	MessageTypeInfo    MessageType = "info"
	MessageTypeSuccess MessageType = "success"
)

type Message struct {
	Id       uuid.UUID
	SenderId uuid.UUID
	// Nil receiver means a broadcast to every student.
	ReceiverId *uuid.UUID
	Type       MessageType
	Content    string
	Read       bool
	ReadAt     *time.Time
	CreatedAt  time.Time
}
