package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Report struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	FullName  string         `gorm:"type:varchar(255);not null"`
	Document  datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
}

func (Report) TableName() string {
	return "reports"
}
