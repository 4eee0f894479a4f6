package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Click is an append-only analytics fact recorded once per view or
// redirect. Country is best-effort geolocation and may stay empty.
type Click struct {
	ID        uuid.UUID      `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	BlockID   uuid.UUID      `json:"blockId" db:"block_id" gorm:"type:uuid;not null;index:idx_clicks_block_id"`
	Timestamp time.Time      `json:"timestamp" db:"timestamp" gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP"`
	Referrer  string         `json:"referrer,omitempty" db:"referrer" gorm:"type:text"`
	UserAgent string         `json:"userAgent,omitempty" db:"user_agent" gorm:"type:text"`
	IPAddress string         `json:"ipAddress,omitempty" db:"ip_address" gorm:"type:text"`
	Country   *string        `json:"country,omitempty" db:"country" gorm:"type:text"`
	Meta      datatypes.JSON `json:"metadata,omitempty" db:"metadata" gorm:"column:metadata;type:jsonb"`
}

func (Click) TableName() string {
	return "clicks"
}
