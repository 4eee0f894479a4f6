package models

import "github.com/google/uuid"

// BlockTag labels a content block for admin filtering and index grouping.
type BlockTag struct {
	ID      uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	BlockID uuid.UUID `json:"blockId" db:"block_id" gorm:"type:uuid;not null;index:idx_block_tags_block_id;uniqueIndex:idx_block_tags_unique"`
	Value   string    `json:"value" db:"value" gorm:"type:text;not null;uniqueIndex:idx_block_tags_unique"`
}

func (BlockTag) TableName() string {
	return "block_tags"
}
