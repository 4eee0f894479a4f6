package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Block lifecycle statuses. Archived rows are kept for history but no
// longer occupy the slug namespace.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// Block kinds: a root block is addressable at top level, a child block is
// owned by exactly one page block.
const (
	KindRoot  = "root"
	KindChild = "child"
)

// Renderer tags. The renderer is immutable after creation; changing it is
// modeled as delete-and-recreate.
const (
	RendererRedirect = "redirect"
	RendererArticle  = "article"
	RendererImage    = "image"
	RendererCard     = "card"
	RendererGallery  = "gallery"
	RendererPage     = "page"
	RendererHeading  = "heading"
	RendererText     = "text"
)

// ContentBlock is the sole content entity: redirects, articles, images,
// cards, galleries, composite pages, headings and plain text all share this
// row shape and one flat slug namespace.
type ContentBlock struct {
	ID             uuid.UUID      `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Slug           string         `json:"slug" db:"slug" gorm:"type:text;not null;index:idx_content_blocks_slug"`
	Kind           string         `json:"kind" db:"kind" gorm:"type:text;not null;default:'root'"`
	ParentID       *uuid.UUID     `json:"parentId,omitempty" db:"parent_id" gorm:"type:uuid;index:idx_content_blocks_parent_id"`
	Renderer       string         `json:"renderer" db:"renderer" gorm:"type:text;not null"`
	Data           datatypes.JSON `json:"data" db:"data" gorm:"type:jsonb"`
	Meta           datatypes.JSON `json:"metadata,omitempty" db:"metadata" gorm:"column:metadata;type:jsonb"`
	DisplayOrder   int            `json:"displayOrder" db:"display_order" gorm:"type:integer;not null;default:0"`
	Status         string         `json:"status" db:"status" gorm:"type:text;not null;default:'published'"`
	IsLandingBlock bool           `json:"isLandingBlock" db:"is_landing_block" gorm:"type:boolean;not null;default:false"`
	IsPrivate      bool           `json:"isPrivate" db:"is_private" gorm:"type:boolean;not null;default:false"`
	CreatedAt      time.Time      `json:"createdAt" db:"created_at" gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time      `json:"updatedAt" db:"updated_at" gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP"`

	Tags     []BlockTag      `json:"tags,omitempty" gorm:"foreignKey:BlockID;references:ID;constraint:OnDelete:CASCADE"`
	Children []*ContentBlock `json:"children,omitempty" gorm:"-"`
}

func (ContentBlock) TableName() string {
	return "content_blocks"
}

// IsPublished reports whether the block currently occupies its slug.
func (b *ContentBlock) IsPublished() bool {
	return b.Status == StatusPublished
}

// IsDraft reports whether the block has never been published.
func (b *ContentBlock) IsDraft() bool {
	return b.Status == StatusDraft
}

// ValidRenderer reports whether tag names a known renderer.
func ValidRenderer(tag string) bool {
	switch tag {
	case RendererRedirect, RendererArticle, RendererImage, RendererCard,
		RendererGallery, RendererPage, RendererHeading, RendererText:
		return true
	}
	return false
}
