package database

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tmarek/blockpress-backend/models"
)

type RevisionRepo struct {
	db *gorm.DB
}

func NewRevisionRepo(db *gorm.DB) *RevisionRepo {
	return &RevisionRepo{db}
}

// FindByBlock returns a block's payload revisions, newest first.
func (r *RevisionRepo) FindByBlock(blockID uuid.UUID, limit int) ([]*models.BlockRevision, error) {
	query := r.db.Where("block_id = ?", blockID).Order("created_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var revisions []*models.BlockRevision
	err := query.Find(&revisions).Error
	return revisions, err
}
