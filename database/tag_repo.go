package database

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tmarek/blockpress-backend/models"
)

type TagRepo struct {
	db *gorm.DB
}

func NewTagRepo(db *gorm.DB) *TagRepo {
	return &TagRepo{db}
}

// FindByBlock returns all tags attached to a block.
func (r *TagRepo) FindByBlock(blockID uuid.UUID) ([]*models.BlockTag, error) {
	var tags []*models.BlockTag
	err := r.db.Where("block_id = ?", blockID).Find(&tags).Error
	return tags, err
}

// Add inserts a new tag for a block.
func (r *TagRepo) Add(tag *models.BlockTag) error {
	if tag.ID == uuid.Nil {
		tag.ID = uuid.New()
	}
	return r.db.Create(tag).Error
}

// Delete removes one tag from a block by value.
func (r *TagRepo) Delete(blockID uuid.UUID, value string) error {
	return r.db.Where("block_id = ? AND value = ?", blockID, value).Delete(&models.BlockTag{}).Error
}
