package database

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tmarek/blockpress-backend/errs"
	"github.com/tmarek/blockpress-backend/models"
	"github.com/tmarek/blockpress-backend/registry"
)

type BlockRepo struct {
	db        *gorm.DB
	validator *registry.SlugValidator
}

func NewBlockRepo(db *gorm.DB, validator *registry.SlugValidator) *BlockRepo {
	return &BlockRepo{db: db, validator: validator}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *BlockRepo) GetDB() *gorm.DB {
	return r.db
}

// CreateBlockSpec carries everything needed to reserve a slug and insert a
// block. Slug must already be chosen (caller-supplied or generated).
type CreateBlockSpec struct {
	Slug         string
	Renderer     string
	ParentID     *uuid.UUID
	Data         datatypes.JSON
	Meta         datatypes.JSON
	DisplayOrder int
	Status       string
	IsPrivate    bool
}

// CreateBlock validates the slug and payload, then inserts the block inside
// one transaction. Creation-time writes are deliberately
// uniqueness-enforcing: an existing published block holding the slug is a
// conflict, even though read-time resolution tolerates legacy duplicates.
func (r *BlockRepo) CreateBlock(spec CreateBlockSpec) (*models.ContentBlock, error) {
	if !models.ValidRenderer(spec.Renderer) {
		return nil, errs.NewValidationError("renderer", "unknown renderer "+spec.Renderer)
	}
	if err := r.validator.Validate(spec.Slug); err != nil {
		return nil, err
	}
	if _, err := models.DecodeBlockData(spec.Renderer, spec.Data); err != nil {
		return nil, errs.NewValidationError("data", err.Error())
	}

	status := spec.Status
	if status == "" {
		status = models.StatusPublished
	}
	if status != models.StatusDraft && status != models.StatusPublished {
		return nil, errs.NewValidationError("status", "status must be draft or published")
	}

	now := time.Now()
	block := &models.ContentBlock{
		ID:           uuid.New(),
		Slug:         spec.Slug,
		Kind:         models.KindRoot,
		Renderer:     spec.Renderer,
		Data:         spec.Data,
		Meta:         spec.Meta,
		DisplayOrder: spec.DisplayOrder,
		Status:       status,
		IsPrivate:    spec.IsPrivate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if spec.ParentID != nil {
			var parent models.ContentBlock
			if err := tx.First(&parent, "id = ?", *spec.ParentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errs.NewNotFoundError("parent block")
				}
				return err
			}
			if parent.Renderer != models.RendererPage {
				return errs.NewValidationError("parentId", "parent block is not a page")
			}
			block.ParentID = spec.ParentID
			block.Kind = models.KindChild
		}

		var count int64
		if err := tx.Model(&models.ContentBlock{}).
			Where("slug = ? AND status = ?", spec.Slug, models.StatusPublished).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errs.NewSlugTakenError(spec.Slug)
		}

		return tx.Create(block).Error
	})
	if err != nil {
		return nil, err
	}
	return block, nil
}

// UpdateBlockData merges the provided data and metadata into the block and
// bumps its updated_at. A payload revision is snapshotted before the change
// so the previous content stays recoverable.
func (r *BlockRepo) UpdateBlockData(id uuid.UUID, data, meta datatypes.JSON) (*models.ContentBlock, error) {
	var block models.ContentBlock

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&block, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NewNotFoundError("block")
			}
			return err
		}

		revision := &models.BlockRevision{
			ID:        uuid.New(),
			BlockID:   block.ID,
			Data:      block.Data,
			Meta:      block.Meta,
			CreatedAt: time.Now(),
		}
		if err := tx.Create(revision).Error; err != nil {
			return err
		}

		if len(data) > 0 {
			if _, err := models.DecodeBlockData(block.Renderer, data); err != nil {
				return errs.NewValidationError("data", err.Error())
			}
			block.Data = data
		}
		if len(meta) > 0 {
			merged, err := models.MergeJSON(block.Meta, meta)
			if err != nil {
				return errs.NewValidationError("metadata", err.Error())
			}
			block.Meta = merged
		}
		block.UpdatedAt = time.Now()

		return tx.Save(&block).Error
	})
	if err != nil {
		return nil, err
	}
	return &block, nil
}

// DeactivateBlock archives the block, freeing its slug for reuse. The row
// survives for audit history; CascadeDeleter is the only hard-delete path.
func (r *BlockRepo) DeactivateBlock(id uuid.UUID) error {
	result := r.db.Model(&models.ContentBlock{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":           models.StatusArchived,
			"is_landing_block": false,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewNotFoundError("block")
	}
	return nil
}

// PublishBlock moves a draft or archived block back into the published
// namespace, re-checking that its slug is free.
func (r *BlockRepo) PublishBlock(id uuid.UUID) (*models.ContentBlock, error) {
	var block models.ContentBlock

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&block, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NewNotFoundError("block")
			}
			return err
		}
		if block.IsPublished() {
			return nil
		}

		var count int64
		if err := tx.Model(&models.ContentBlock{}).
			Where("slug = ? AND status = ? AND id <> ?", block.Slug, models.StatusPublished, id).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errs.NewSlugTakenError(block.Slug)
		}

		block.Status = models.StatusPublished
		block.UpdatedAt = time.Now()
		return tx.Save(&block).Error
	})
	if err != nil {
		return nil, err
	}
	return &block, nil
}

// GetBlockByID returns a block regardless of status.
func (r *BlockRepo) GetBlockByID(id uuid.UUID) (*models.ContentBlock, error) {
	var block models.ContentBlock
	err := r.db.Preload("Tags").First(&block, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewNotFoundError("block")
		}
		return nil, err
	}
	return &block, nil
}

// GetBlockBySlug returns the oldest published block holding slug.
func (r *BlockRepo) GetBlockBySlug(slug string) (*models.ContentBlock, error) {
	var block models.ContentBlock
	err := r.db.Preload("Tags").
		Where("slug = ? AND status = ?", slug, models.StatusPublished).
		Order("created_at asc").
		First(&block).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewNotFoundError("block")
		}
		return nil, err
	}
	return &block, nil
}

// GetBlocksByRenderer lists blocks of one renderer, newest first.
// Published-only unless includeUnpublished is set.
func (r *BlockRepo) GetBlocksByRenderer(renderer string, limit int, includeUnpublished bool) ([]*models.ContentBlock, error) {
	query := r.db.Where("renderer = ?", renderer)
	if !includeUnpublished {
		query = query.Where("status = ?", models.StatusPublished)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var blocks []*models.ContentBlock
	err := query.Order("created_at desc").Find(&blocks).Error
	return blocks, err
}

// ListRootBlocks returns the published root blocks that belong on the
// public index listing, in display order. Private blocks are excluded.
func (r *BlockRepo) ListRootBlocks() ([]*models.ContentBlock, error) {
	var blocks []*models.ContentBlock
	err := r.db.
		Where("kind = ? AND status = ? AND is_private = ?", models.KindRoot, models.StatusPublished, false).
		Order("display_order asc, created_at asc").
		Find(&blocks).Error
	return blocks, err
}

// GetLandingBlock returns the block designated to render at the site root.
func (r *BlockRepo) GetLandingBlock() (*models.ContentBlock, error) {
	var block models.ContentBlock
	err := r.db.
		Where("is_landing_block = ? AND status = ?", true, models.StatusPublished).
		First(&block).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewNotFoundError("landing block")
		}
		return nil, err
	}
	return &block, nil
}

// SetLandingBlock designates id as the single landing block. Clearing the
// previous holder and setting the new one happen in the same transaction so
// at most one block ever holds the flag.
func (r *BlockRepo) SetLandingBlock(id uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var block models.ContentBlock
		if err := tx.First(&block, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NewNotFoundError("block")
			}
			return err
		}

		if err := tx.Model(&models.ContentBlock{}).
			Where("is_landing_block = ?", true).
			Update("is_landing_block", false).Error; err != nil {
			return err
		}

		return tx.Model(&models.ContentBlock{}).
			Where("id = ?", id).
			Update("is_landing_block", true).Error
	})
}

// SlugInUse reports whether any published block currently holds slug.
// Implements registry.SlugAvailability.
func (r *BlockRepo) SlugInUse(slug string) (bool, error) {
	var count int64
	err := r.db.Model(&models.ContentBlock{}).
		Where("slug = ? AND status = ?", slug, models.StatusPublished).
		Count(&count).Error
	return count > 0, err
}

// PublishedBySlug returns every published block holding slug. Implements
// registry.BlockFinder.
func (r *BlockRepo) PublishedBySlug(slug string) ([]*models.ContentBlock, error) {
	var blocks []*models.ContentBlock
	err := r.db.
		Where("slug = ? AND status = ?", slug, models.StatusPublished).
		Find(&blocks).Error
	return blocks, err
}

// OldestRedirectData returns only the id and data columns of the oldest
// published redirect holding slug, keeping the redirect hot path free of
// full-row hydration. Implements registry.BlockFinder.
func (r *BlockRepo) OldestRedirectData(slug string) (uuid.UUID, datatypes.JSON, bool, error) {
	var row struct {
		ID   uuid.UUID
		Data datatypes.JSON
	}
	err := r.db.Model(&models.ContentBlock{}).
		Select("id, data").
		Where("slug = ? AND renderer = ? AND status = ?", slug, models.RendererRedirect, models.StatusPublished).
		Order("created_at asc").
		Limit(1).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, nil, false, nil
		}
		return uuid.Nil, nil, false, err
	}
	return row.ID, row.Data, true, nil
}
