package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// BlockRevision is a snapshot of a block's payload taken before each data
// update. Revisions are audit history only; they never occupy a slug.
type BlockRevision struct {
	ID        uuid.UUID      `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	BlockID   uuid.UUID      `json:"blockId" db:"block_id" gorm:"type:uuid;not null;index:idx_block_revisions_block_id"`
	Data      datatypes.JSON `json:"data" db:"data" gorm:"type:jsonb"`
	Meta      datatypes.JSON `json:"metadata,omitempty" db:"metadata" gorm:"column:metadata;type:jsonb"`
	CreatedAt time.Time      `json:"createdAt" db:"created_at" gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP"`
}

func (BlockRevision) TableName() string {
	return "block_revisions"
}
