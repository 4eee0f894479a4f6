package database

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tmarek/blockpress-backend/errs"
	"github.com/tmarek/blockpress-backend/models"
)

// TreeComposer attaches, detaches and reorders blocks as children of a
// page block. Every structural mutation runs inside one transaction.
type TreeComposer struct {
	db *gorm.DB
}

func NewTreeComposer(db *gorm.DB) *TreeComposer {
	return &TreeComposer{db}
}

// AddChild attaches blockID under pageID at the given position, folding
// layoutHint into the child's metadata. A block already attached to any
// page cannot be attached again; two pages never share a child
// concurrently. Attaching an ancestor of the page is rejected so the
// ownership tree stays acyclic.
func (c *TreeComposer) AddChild(pageID, blockID uuid.UUID, order int, layoutHint datatypes.JSON) (*models.ContentBlock, error) {
	if pageID == blockID {
		return nil, errs.NewValidationError("blockId", "a page cannot be its own child")
	}

	var block models.ContentBlock

	err := c.db.Transaction(func(tx *gorm.DB) error {
		var page models.ContentBlock
		if err := tx.First(&page, "id = ?", pageID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NewNotFoundError("page")
			}
			return err
		}
		if page.Renderer != models.RendererPage {
			return errs.NewValidationError("pageId", "target block is not a page")
		}

		if err := tx.First(&block, "id = ?", blockID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NewNotFoundError("block")
			}
			return err
		}
		if block.ParentID != nil {
			return errs.NewAlreadyParentedError(blockID.String())
		}

		onAncestorChain, err := hasAncestor(tx, pageID, blockID)
		if err != nil {
			return err
		}
		if onAncestorChain {
			return errs.NewValidationError("blockId", "attaching this block would create a cycle")
		}

		merged, err := models.MergeJSON(block.Meta, layoutHint)
		if err != nil {
			return errs.NewValidationError("layoutHint", err.Error())
		}

		block.ParentID = &pageID
		block.Kind = models.KindChild
		block.DisplayOrder = order
		block.Meta = merged
		block.UpdatedAt = time.Now()
		return tx.Save(&block).Error
	})
	if err != nil {
		return nil, err
	}
	return &block, nil
}

// RemoveChild detaches blockID from pageID, restoring it to a standalone
// root block with display order zero.
func (c *TreeComposer) RemoveChild(pageID, blockID uuid.UUID) (*models.ContentBlock, error) {
	var block models.ContentBlock

	err := c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&block, "id = ?", blockID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NewNotFoundError("block")
			}
			return err
		}
		if block.ParentID == nil || *block.ParentID != pageID {
			return errs.NewNotFoundError("child block")
		}

		block.ParentID = nil
		block.Kind = models.KindRoot
		block.DisplayOrder = 0
		block.UpdatedAt = time.Now()
		return tx.Save(&block).Error
	})
	if err != nil {
		return nil, err
	}
	return &block, nil
}

// Reorder rewrites every listed sibling's display_order to its position in
// orderedIDs, in a single transaction. Ids that are not children of
// parentID are rejected with a validation error rather than silently
// ignored; siblings missing from the list keep their current order.
func (c *TreeComposer) Reorder(parentID uuid.UUID, orderedIDs []uuid.UUID) error {
	return c.db.Transaction(func(tx *gorm.DB) error {
		var children []*models.ContentBlock
		if err := tx.Where("parent_id = ?", parentID).Find(&children).Error; err != nil {
			return err
		}

		childSet := make(map[uuid.UUID]struct{}, len(children))
		for _, child := range children {
			childSet[child.ID] = struct{}{}
		}

		for position, id := range orderedIDs {
			if _, ok := childSet[id]; !ok {
				return errs.NewValidationError("orderedIds", "block "+id.String()+" is not a child of this page")
			}
			if err := tx.Model(&models.ContentBlock{}).
				Where("id = ?", id).
				Updates(map[string]any{
					"display_order": position,
					"updated_at":    time.Now(),
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadChildren populates root.Children with its published descendants,
// ordered by display_order at each level. Callers resolve the root block
// first and hand it here. Traversal is breadth-first over an id index
// rather than recursive pointer-following, so deep or malformed trees
// cannot blow the stack and revisited ids are simply skipped.
func (c *TreeComposer) LoadChildren(root *models.ContentBlock) error {
	visited := map[uuid.UUID]*models.ContentBlock{root.ID: root}
	frontier := []uuid.UUID{root.ID}

	for len(frontier) > 0 {
		var rows []*models.ContentBlock
		if err := c.db.
			Where("parent_id IN ? AND status = ?", frontier, models.StatusPublished).
			Order("display_order asc, created_at asc").
			Find(&rows).Error; err != nil {
			return err
		}

		frontier = frontier[:0]
		for _, row := range rows {
			if _, seen := visited[row.ID]; seen {
				continue
			}
			visited[row.ID] = row
			parent := visited[*row.ParentID]
			parent.Children = append(parent.Children, row)
			frontier = append(frontier, row.ID)
		}
	}
	return nil
}

// hasAncestor walks up from startID's parent chain and reports whether
// target appears on it. The visited set guards against malformed cyclic
// chains already present in storage.
func hasAncestor(tx *gorm.DB, startID, target uuid.UUID) (bool, error) {
	visited := map[uuid.UUID]struct{}{}
	current := startID

	for {
		if _, seen := visited[current]; seen {
			return false, nil
		}
		visited[current] = struct{}{}

		var row struct {
			ParentID *uuid.UUID
		}
		err := tx.Model(&models.ContentBlock{}).
			Select("parent_id").
			Where("id = ?", current).
			Take(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, nil
			}
			return false, err
		}
		if row.ParentID == nil {
			return false, nil
		}
		if *row.ParentID == target {
			return true, nil
		}
		current = *row.ParentID
	}
}
