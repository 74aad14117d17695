package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"type:varchar(80);uniqueIndex;not null"`
	Email        string    `gorm:"type:varchar(120);uniqueIndex;not null"`
	PasswordHash *string   `gorm:"type:varchar(255)"`
	Role         string    `gorm:"type:varchar(20);not null;default:'student'"`
	ComputerId   *string   `gorm:"type:varchar(100);uniqueIndex"`
	Platform     *string   `gorm:"type:varchar(50)"`
	Hostname     *string   `gorm:"type:varchar(255)"`
	Status       string    `gorm:"type:varchar(20);not null;default:'offline'"`
	LastSeen     time.Time
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
