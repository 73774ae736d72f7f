package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Query struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    string         `gorm:"type:varchar(255);not null;index"`
	Kind      string         `gorm:"type:varchar(32);not null;default:'chat';index"`
	Message   string         `gorm:"type:text"`
	Response  string         `gorm:"type:text"`
	Sources   datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index"`
}

func (Query) TableName() string {
	return "queries"
}

// All lists every model managed by AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Query{},
	}
}
