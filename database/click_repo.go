package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tmarek/blockpress-backend/models"
)

type ClickRepo struct {
	db *gorm.DB
}

func NewClickRepo(db *gorm.DB) *ClickRepo {
	return &ClickRepo{db}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *ClickRepo) GetDB() *gorm.DB {
	return r.db
}

// Add appends one click fact.
func (r *ClickRepo) Add(click *models.Click) error {
	if click.ID == uuid.Nil {
		click.ID = uuid.New()
	}
	if click.Timestamp.IsZero() {
		click.Timestamp = time.Now()
	}
	return r.db.Create(click).Error
}

// CountByBlock returns the total number of clicks recorded for a block.
func (r *ClickRepo) CountByBlock(blockID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Click{}).Where("block_id = ?", blockID).Count(&count).Error
	return count, err
}

// ReferrerCount is one row of the per-referrer click aggregation.
type ReferrerCount struct {
	Referrer string `json:"referrer"`
	Count    int64  `json:"count"`
}

// CountByReferrer aggregates a block's clicks per referrer, most frequent
// first.
func (r *ClickRepo) CountByReferrer(blockID uuid.UUID, limit int) ([]ReferrerCount, error) {
	query := r.db.Model(&models.Click{}).
		Select("referrer, count(*) as count").
		Where("block_id = ?", blockID).
		Group("referrer").
		Order("count desc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []ReferrerCount
	err := query.Scan(&rows).Error
	return rows, err
}

// RecentByBlock returns a block's newest click facts.
func (r *ClickRepo) RecentByBlock(blockID uuid.UUID, limit int) ([]*models.Click, error) {
	if limit <= 0 {
		limit = 50
	}
	var clicks []*models.Click
	err := r.db.
		Where("block_id = ?", blockID).
		Order("timestamp desc").
		Limit(limit).
		Find(&clicks).Error
	return clicks, err
}
