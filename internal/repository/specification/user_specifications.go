package specification

import (
	"classguard-be/internal/entity"

	"gorm.io/gorm"
)

type ByUsername struct {
	Username string
}

func (s ByUsername) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("username = ?", s.Username)
}

type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ?", s.Email)
}

type ByComputerID struct {
	ComputerID string
}

func (s ByComputerID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("computer_id = ?", s.ComputerID)
}

type ByRole struct {
	Role entity.UserRole
}

func (s ByRole) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("role = ?", s.Role)
}
