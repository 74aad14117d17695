package model

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	Id         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SenderId   uuid.UUID  `gorm:"type:uuid;not null;index"`
	ReceiverId *uuid.UUID `gorm:"type:uuid;index"`
	Type       string     `gorm:"type:varchar(20);not null;default:'normal'"`
	Content    string     `gorm:"type:text;not null"`
	Read       bool       `gorm:"default:false"`
	ReadAt     *time.Time
	CreatedAt  time.Time `gorm:"autoCreateTime;index"`
}

func (Message) TableName() string {
	return "messages"
}
