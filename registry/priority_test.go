package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tmarek/blockpress-backend/models"
)

func TestDefaultPriorityPolicyOrder(t *testing.T) {
	p := DefaultPriorityPolicy()

	assert.Less(t, p.Rank(models.RendererRedirect), p.Rank(models.RendererArticle))
	assert.Less(t, p.Rank(models.RendererArticle), p.Rank(models.RendererCard))
	assert.Less(t, p.Rank(models.RendererCard), p.Rank(models.RendererImage))
	assert.Less(t, p.Rank(models.RendererImage), p.Rank(models.RendererGallery))
}

func TestUnrankedRenderersGetDefaultPriority(t *testing.T) {
	p := DefaultPriorityPolicy()

	assert.Equal(t, DefaultPriority, p.Rank(models.RendererPage))
	assert.Equal(t, DefaultPriority, p.Rank(models.RendererHeading))
	assert.Equal(t, DefaultPriority, p.Rank("nonsense"))
}

func TestNewPriorityPolicyCopiesRanks(t *testing.T) {
	ranks := map[string]int{"a": 1}
	p := NewPriorityPolicy(ranks)

	ranks["a"] = 7
	assert.Equal(t, 1, p.Rank("a"))
}
