package database

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tmarek/blockpress-backend/errs"
	"github.com/tmarek/blockpress-backend/models"
)

// CascadeDeleter physically removes a block subtree and its dependent rows.
// This is the only hard-delete path in the system; every other mutation is
// soft.
type CascadeDeleter struct {
	db *gorm.DB
}

func NewCascadeDeleter(db *gorm.DB) *CascadeDeleter {
	return &CascadeDeleter{db}
}

// DeleteSubtree removes the block, every descendant at any depth, and
// their click, tag and revision rows, all inside one transaction. Any
// failure at any depth rolls the whole deletion back, leaving the tree
// untouched.
func (d *CascadeDeleter) DeleteSubtree(id uuid.UUID) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		var root models.ContentBlock
		if err := tx.First(&root, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NewNotFoundError("block")
			}
			return err
		}

		ids, err := collectSubtreeIDs(tx, id)
		if err != nil {
			return err
		}

		// Dependent rows first, then the block rows child-first so no
		// child ever outlives its parent mid-transaction.
		for i := len(ids) - 1; i >= 0; i-- {
			blockID := ids[i]
			if err := tx.Where("block_id = ?", blockID).Delete(&models.Click{}).Error; err != nil {
				return err
			}
			if err := tx.Where("block_id = ?", blockID).Delete(&models.BlockTag{}).Error; err != nil {
				return err
			}
			if err := tx.Where("block_id = ?", blockID).Delete(&models.BlockRevision{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.ContentBlock{}, "id = ?", blockID).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// collectSubtreeIDs gathers the subtree breadth-first, parents before
// children, regardless of publication status. The visited set keeps
// malformed cyclic chains from looping forever.
func collectSubtreeIDs(tx *gorm.DB, rootID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{rootID}
	visited := map[uuid.UUID]struct{}{rootID: {}}
	frontier := []uuid.UUID{rootID}

	for len(frontier) > 0 {
		var children []uuid.UUID
		if err := tx.Model(&models.ContentBlock{}).
			Where("parent_id IN ?", frontier).
			Pluck("id", &children).Error; err != nil {
			return nil, err
		}

		frontier = frontier[:0]
		for _, childID := range children {
			if _, seen := visited[childID]; seen {
				continue
			}
			visited[childID] = struct{}{}
			ids = append(ids, childID)
			frontier = append(frontier, childID)
		}
	}
	return ids, nil
}
