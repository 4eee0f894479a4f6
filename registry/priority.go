package registry

import "github.com/tmarek/blockpress-backend/models"

// DefaultPriority is assigned to any renderer absent from the table, so
// page/heading/text blocks always lose collisions against linkable content.
const DefaultPriority = 999

// PriorityPolicy is a static total order over renderer tags used to break
// slug collisions; a lower rank wins. Redirects rank first because they are
// the product's original primary use case and must win when a slug is
// ambiguously shared with richer content added later.
type PriorityPolicy struct {
	ranks map[string]int
}

// NewPriorityPolicy builds a policy from an explicit rank table. The table
// is copied so callers cannot mutate the policy afterwards.
func NewPriorityPolicy(ranks map[string]int) PriorityPolicy {
	copied := make(map[string]int, len(ranks))
	for renderer, rank := range ranks {
		copied[renderer] = rank
	}
	return PriorityPolicy{ranks: copied}
}

// DefaultPriorityPolicy returns the production rank table.
func DefaultPriorityPolicy() PriorityPolicy {
	return NewPriorityPolicy(map[string]int{
		models.RendererRedirect: 1,
		models.RendererArticle:  2,
		models.RendererCard:     3,
		models.RendererImage:    4,
		models.RendererGallery:  5,
	})
}

// Rank returns the collision rank for a renderer tag.
func (p PriorityPolicy) Rank(renderer string) int {
	if rank, ok := p.ranks[renderer]; ok {
		return rank
	}
	return DefaultPriority
}
