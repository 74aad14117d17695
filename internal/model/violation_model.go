package model

import (
	"time"

	"github.com/google/uuid"
)

type Violation struct {
	Id         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId     uuid.UUID  `gorm:"type:uuid;not null;index:idx_user_category_time,priority:1"`
	Category   string     `gorm:"type:varchar(50);not null;index:idx_user_category_time,priority:2"`
	Detail     string     `gorm:"type:text"`
	Severity   string     `gorm:"type:varchar(20);not null;default:'medium'"`
	Resolved   bool       `gorm:"default:false"`
	ResolvedBy *uuid.UUID `gorm:"type:uuid"`
	ResolvedAt *time.Time
	DetectedAt time.Time `gorm:"index:idx_user_category_time,priority:3"`
}

func (Violation) TableName() string {
	return "violations"
}
