package database

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/tmarek/blockpress-backend/errs"
	"github.com/tmarek/blockpress-backend/models"
)

func TestAddChildAttachesBlock(t *testing.T) {
	d, _ := newTestDatabase(t)
	page := mustCreateBlock(t, d.BlockRepo(), pageSpec("home"))
	block := mustCreateBlock(t, d.BlockRepo(), textSpec("intro"))

	child, err := d.TreeComposer().AddChild(page.ID, block.ID, 2, nil)
	require.NoError(t, err)

	assert.Equal(t, models.KindChild, child.Kind)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, page.ID, *child.ParentID)
	assert.Equal(t, 2, child.DisplayOrder)
}

func TestAddChildFoldsLayoutHintIntoMetadata(t *testing.T) {
	d, _ := newTestDatabase(t)
	page := mustCreateBlock(t, d.BlockRepo(), pageSpec("home"))

	spec := textSpec("intro")
	spec.Meta = datatypes.JSON(`{"theme":"dark"}`)
	block := mustCreateBlock(t, d.BlockRepo(), spec)

	child, err := d.TreeComposer().AddChild(page.ID, block.ID, 0, datatypes.JSON(`{"width":"half"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":"dark","width":"half"}`, string(child.Meta))
}

func TestAddChildRejectsSecondParent(t *testing.T) {
	d, _ := newTestDatabase(t)
	repo := d.BlockRepo()
	pageA := mustCreateBlock(t, repo, pageSpec("page-a"))
	pageB := mustCreateBlock(t, repo, pageSpec("page-b"))
	block := mustCreateBlock(t, repo, textSpec("intro"))

	_, err := d.TreeComposer().AddChild(pageA.ID, block.ID, 0, nil)
	require.NoError(t, err)

	_, err = d.TreeComposer().AddChild(pageB.ID, block.ID, 0, nil)
	require.Error(t, err)
	assert.True(t, errs.IsConflict(err))
}

func TestRemoveChildThenReattach(t *testing.T) {
	d, _ := newTestDatabase(t)
	repo := d.BlockRepo()
	pageA := mustCreateBlock(t, repo, pageSpec("page-a"))
	pageB := mustCreateBlock(t, repo, pageSpec("page-b"))
	block := mustCreateBlock(t, repo, textSpec("intro"))
	composer := d.TreeComposer()

	_, err := composer.AddChild(pageA.ID, block.ID, 3, nil)
	require.NoError(t, err)

	detached, err := composer.RemoveChild(pageA.ID, block.ID)
	require.NoError(t, err)
	assert.Equal(t, models.KindRoot, detached.Kind)
	assert.Nil(t, detached.ParentID)
	assert.Equal(t, 0, detached.DisplayOrder)

	// Freed from its first parent, the block is attachable elsewhere.
	_, err = composer.AddChild(pageB.ID, block.ID, 0, nil)
	assert.NoError(t, err)
}

func TestRemoveChildOfWrongPageIsNotFound(t *testing.T) {
	d, _ := newTestDatabase(t)
	repo := d.BlockRepo()
	pageA := mustCreateBlock(t, repo, pageSpec("page-a"))
	pageB := mustCreateBlock(t, repo, pageSpec("page-b"))
	block := mustCreateBlock(t, repo, textSpec("intro"))

	_, err := d.TreeComposer().AddChild(pageA.ID, block.ID, 0, nil)
	require.NoError(t, err)

	_, err = d.TreeComposer().RemoveChild(pageB.ID, block.ID)
	assert.True(t, errs.IsNotFound(err))
}

func TestAddChildValidation(t *testing.T) {
	d, _ := newTestDatabase(t)
	repo := d.BlockRepo()
	page := mustCreateBlock(t, repo, pageSpec("home"))
	notAPage := mustCreateBlock(t, repo, articleSpec("post"))
	block := mustCreateBlock(t, repo, textSpec("intro"))
	composer := d.TreeComposer()

	_, err := composer.AddChild(page.ID, page.ID, 0, nil)
	assert.True(t, errs.IsValidation(err), "self-attachment")

	_, err = composer.AddChild(notAPage.ID, block.ID, 0, nil)
	assert.True(t, errs.IsValidation(err), "parent must be a page")

	_, err = composer.AddChild(uuid.New(), block.ID, 0, nil)
	assert.True(t, errs.IsNotFound(err), "unknown page")

	_, err = composer.AddChild(page.ID, uuid.New(), 0, nil)
	assert.True(t, errs.IsNotFound(err), "unknown block")
}

func TestAddChildRejectsCycles(t *testing.T) {
	d, _ := newTestDatabase(t)
	repo := d.BlockRepo()
	outer := mustCreateBlock(t, repo, pageSpec("outer"))
	inner := mustCreateBlock(t, repo, pageSpec("inner"))
	composer := d.TreeComposer()

	_, err := composer.AddChild(outer.ID, inner.ID, 0, nil)
	require.NoError(t, err)

	// outer is an ancestor of inner; attaching it under inner would loop.
	_, err = composer.AddChild(inner.ID, outer.ID, 0, nil)
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func TestReorderRewritesSiblingOrder(t *testing.T) {
	d, _ := newTestDatabase(t)
	repo := d.BlockRepo()
	page := mustCreateBlock(t, repo, pageSpec("home"))
	composer := d.TreeComposer()

	a := mustCreateBlock(t, repo, textSpec("part-a"))
	b := mustCreateBlock(t, repo, textSpec("part-b"))
	c := mustCreateBlock(t, repo, textSpec("part-c"))
	for i, block := range []*models.ContentBlock{a, b, c} {
		_, err := composer.AddChild(page.ID, block.ID, i, nil)
		require.NoError(t, err)
	}

	require.NoError(t, composer.Reorder(page.ID, []uuid.UUID{c.ID, a.ID, b.ID}))

	root, err := repo.GetBlockByID(page.ID)
	require.NoError(t, err)
	require.NoError(t, composer.LoadChildren(root))
	require.Len(t, root.Children, 3)
	assert.Equal(t, c.ID, root.Children[0].ID)
	assert.Equal(t, a.ID, root.Children[1].ID)
	assert.Equal(t, b.ID, root.Children[2].ID)
}

func TestReorderRejectsForeignIDs(t *testing.T) {
	d, _ := newTestDatabase(t)
	repo := d.BlockRepo()
	page := mustCreateBlock(t, repo, pageSpec("home"))
	composer := d.TreeComposer()

	// Nonzero seed order so a non-rolled-back write would be visible.
	a := mustCreateBlock(t, repo, textSpec("part-a"))
	_, err := composer.AddChild(page.ID, a.ID, 4, nil)
	require.NoError(t, err)

	stranger := mustCreateBlock(t, repo, textSpec("stranger"))
	err = composer.Reorder(page.ID, []uuid.UUID{a.ID, stranger.ID})
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))

	// The rejected reorder must not have moved anything: a would have
	// been rewritten to position 0 before the foreign id was hit.
	reloaded, err := repo.GetBlockByID(a.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, reloaded.DisplayOrder)
}

func TestReorderAllowsPartialLists(t *testing.T) {
	d, _ := newTestDatabase(t)
	repo := d.BlockRepo()
	page := mustCreateBlock(t, repo, pageSpec("home"))
	composer := d.TreeComposer()

	a := mustCreateBlock(t, repo, textSpec("part-a"))
	b := mustCreateBlock(t, repo, textSpec("part-b"))
	for i, block := range []*models.ContentBlock{a, b} {
		_, err := composer.AddChild(page.ID, block.ID, i+5, nil)
		require.NoError(t, err)
	}

	require.NoError(t, composer.Reorder(page.ID, []uuid.UUID{b.ID}))

	reloadedB, err := repo.GetBlockByID(b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reloadedB.DisplayOrder)

	reloadedA, err := repo.GetBlockByID(a.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, reloadedA.DisplayOrder)
}

func TestLoadChildrenBuildsNestedTree(t *testing.T) {
	d, _ := newTestDatabase(t)
	repo := d.BlockRepo()
	composer := d.TreeComposer()

	top := mustCreateBlock(t, repo, pageSpec("top"))
	section := mustCreateBlock(t, repo, pageSpec("section"))
	leaf := mustCreateBlock(t, repo, textSpec("leaf"))

	_, err := composer.AddChild(top.ID, section.ID, 0, nil)
	require.NoError(t, err)
	_, err = composer.AddChild(section.ID, leaf.ID, 0, nil)
	require.NoError(t, err)

	root, err := repo.GetBlockByID(top.ID)
	require.NoError(t, err)
	require.NoError(t, composer.LoadChildren(root))

	require.Len(t, root.Children, 1)
	assert.Equal(t, section.ID, root.Children[0].ID)
	require.Len(t, root.Children[0].Children, 1)
	assert.Equal(t, leaf.ID, root.Children[0].Children[0].ID)
}

func TestLoadChildrenSkipsUnpublished(t *testing.T) {
	d, _ := newTestDatabase(t)
	repo := d.BlockRepo()
	composer := d.TreeComposer()

	page := mustCreateBlock(t, repo, pageSpec("home"))
	visible := mustCreateBlock(t, repo, textSpec("visible"))
	hidden := mustCreateBlock(t, repo, textSpec("hidden"))

	_, err := composer.AddChild(page.ID, visible.ID, 0, nil)
	require.NoError(t, err)
	_, err = composer.AddChild(page.ID, hidden.ID, 1, nil)
	require.NoError(t, err)
	require.NoError(t, repo.DeactivateBlock(hidden.ID))

	root, err := repo.GetBlockByID(page.ID)
	require.NoError(t, err)
	require.NoError(t, composer.LoadChildren(root))

	require.Len(t, root.Children, 1)
	assert.Equal(t, visible.ID, root.Children[0].ID)
}
