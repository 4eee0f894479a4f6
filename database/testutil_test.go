package database

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tmarek/blockpress-backend/models"
	"github.com/tmarek/blockpress-backend/registry"
)

// newTestDatabase opens a throwaway sqlite database, runs the full
// migration against it and returns the repo aggregate.
func newTestDatabase(t *testing.T) (Database, *gorm.DB) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "registry.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	validator := registry.NewSlugValidator(registry.DefaultSlugConfig())
	return New(db, validator), db
}

func mustCreateBlock(t *testing.T, repo *BlockRepo, spec CreateBlockSpec) *models.ContentBlock {
	t.Helper()
	block, err := repo.CreateBlock(spec)
	require.NoError(t, err)
	return block
}

func redirectSpec(slug, destination string) CreateBlockSpec {
	return CreateBlockSpec{
		Slug:     slug,
		Renderer: models.RendererRedirect,
		Data:     datatypes.JSON(`{"url":"` + destination + `"}`),
	}
}

func articleSpec(slug string) CreateBlockSpec {
	return CreateBlockSpec{
		Slug:     slug,
		Renderer: models.RendererArticle,
		Data:     datatypes.JSON(`{"title":"Title","content":"<p>Content</p>"}`),
	}
}

func pageSpec(slug string) CreateBlockSpec {
	return CreateBlockSpec{
		Slug:     slug,
		Renderer: models.RendererPage,
		Data:     datatypes.JSON(`{"title":"Page"}`),
	}
}

func textSpec(slug string) CreateBlockSpec {
	return CreateBlockSpec{
		Slug:     slug,
		Renderer: models.RendererText,
		Data:     datatypes.JSON(`{"text":"hello"}`),
	}
}

func countRows(t *testing.T, db *gorm.DB, model any, blockID uuid.UUID) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(model).Where("block_id = ?", blockID).Count(&count).Error)
	return count
}
