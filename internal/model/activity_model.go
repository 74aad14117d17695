package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Activity struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId         uuid.UUID `gorm:"type:uuid;not null;index"`
	ScreenshotHash *string   `gorm:"type:varchar(64);index"`
	ActiveWindow   string    `gorm:"type:varchar(500)"`
	ActiveApp      string    `gorm:"type:varchar(200);index"`
	Processes      datatypes.JSON
	URLs           datatypes.JSON `gorm:"column:urls"`
	CapturedAt     time.Time      `gorm:"index"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
}

func (Activity) TableName() string {
	return "activities"
}
