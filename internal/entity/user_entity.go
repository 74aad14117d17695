package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string
type UserStatus string

const (
	UserRoleTeacher UserRole = "teacher"
	UserRoleStudent UserRole = "student"

	UserStatusOnline  UserStatus = "online"
	UserStatusOffline UserStatus = "offline"
	UserStatusAway    UserStatus = "away"
)

type User struct {
	Id           uuid.UUID
	Username     string
	Email        string
	PasswordHash *string
	Role         UserRole

	// Agent-side identity: the machine the student agent runs on. Nil for
	// teachers.
	ComputerId *string
	Platform   *string
	Hostname   *string

	Status   UserStatus
	LastSeen time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
