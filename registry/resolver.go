package registry

import (
	"sort"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/tmarek/blockpress-backend/errs"
	"github.com/tmarek/blockpress-backend/models"
)

// BlockFinder is the read surface the resolver needs from storage.
// Implemented by database.BlockRepo.
type BlockFinder interface {
	// PublishedBySlug returns every published block holding slug.
	PublishedBySlug(slug string) ([]*models.ContentBlock, error)
	// OldestRedirectData returns the id and data payload of the oldest
	// published redirect block holding slug, without hydrating the full
	// row. The bool return is false when no such block exists.
	OldestRedirectData(slug string) (uuid.UUID, datatypes.JSON, bool, error)
}

// RedirectTarget is the fast-path resolution result: just enough to answer
// the redirect and fire the analytics side channel.
type RedirectTarget struct {
	BlockID    uuid.UUID
	URL        string
	StatusCode int
}

// SlugResolver returns the single winning block for a slug. Published
// duplicates should be structurally impossible on the write path, but
// legacy imports can still produce them; arbitration stays deterministic
// regardless.
type SlugResolver struct {
	finder BlockFinder
	policy PriorityPolicy
}

func NewSlugResolver(finder BlockFinder, policy PriorityPolicy) *SlugResolver {
	return &SlugResolver{finder: finder, policy: policy}
}

// Resolve returns the published block that wins slug, or a not-found error
// the caller turns into a plain not-found result on public paths.
//
// Candidates are ordered by (priority rank, created_at, id) so that
// repeated resolution of the same slug set always yields the same winner;
// the id tiebreak makes the order total even for equal timestamps.
func (r *SlugResolver) Resolve(slug string) (*models.ContentBlock, error) {
	candidates, err := r.finder.PublishedBySlug(slug)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, errs.NewNotFoundError("block")
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		ri, rj := r.policy.Rank(candidates[i].Renderer), r.policy.Rank(candidates[j].Renderer)
		if ri != rj {
			return ri < rj
		}
		if !candidates[i].CreatedAt.Equal(candidates[j].CreatedAt) {
			return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
		}
		return candidates[i].ID.String() < candidates[j].ID.String()
	})
	return candidates[0], nil
}

// ResolveRedirectTarget is the latency-critical fast path for the redirect
// hot path: it skips full-block hydration and returns only the destination
// URL. Non-redirect blocks holding the slug are invisible to it.
func (r *SlugResolver) ResolveRedirectTarget(slug string) (*RedirectTarget, error) {
	id, raw, found, err := r.finder.OldestRedirectData(slug)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errs.NewNotFoundError("redirect")
	}

	data, err := models.DecodeBlockData(models.RendererRedirect, raw)
	if err != nil {
		return nil, errs.NewDatabaseError("decode", "redirect data", err)
	}
	redirect := data.(*models.RedirectData)
	return &RedirectTarget{BlockID: id, URL: redirect.URL, StatusCode: redirect.StatusCode}, nil
}
