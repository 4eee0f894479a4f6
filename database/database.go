package database

import (
	"gorm.io/gorm"

	"github.com/tmarek/blockpress-backend/models"
	"github.com/tmarek/blockpress-backend/registry"
)

type Database struct {
	blockRepo      *BlockRepo
	clickRepo      *ClickRepo
	tagRepo        *TagRepo
	revisionRepo   *RevisionRepo
	treeComposer   *TreeComposer
	cascadeDeleter *CascadeDeleter
}

// New initializes a new Database struct with each repository using a shared
// GORM database instance.
func New(db *gorm.DB, validator *registry.SlugValidator) Database {
	return Database{
		blockRepo:      NewBlockRepo(db, validator),
		clickRepo:      NewClickRepo(db),
		tagRepo:        NewTagRepo(db),
		revisionRepo:   NewRevisionRepo(db),
		treeComposer:   NewTreeComposer(db),
		cascadeDeleter: NewCascadeDeleter(db),
	}
}

// Accessor methods for each repository

func (d Database) BlockRepo() *BlockRepo {
	return d.blockRepo
}

func (d Database) ClickRepo() *ClickRepo {
	return d.clickRepo
}

func (d Database) TagRepo() *TagRepo {
	return d.tagRepo
}

func (d Database) RevisionRepo() *RevisionRepo {
	return d.revisionRepo
}

func (d Database) TreeComposer() *TreeComposer {
	return d.treeComposer
}

func (d Database) CascadeDeleter() *CascadeDeleter {
	return d.cascadeDeleter
}

// Migrate creates the registry tables and the partial unique index that
// backstops slug uniqueness at the storage engine, closing the
// check-then-insert race between two simultaneous creates. Legacy
// databases imported from before the index existed may still carry
// duplicate published slugs; the resolver arbitrates those.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.ContentBlock{},
		&models.Click{},
		&models.BlockTag{},
		&models.BlockRevision{},
	); err != nil {
		return err
	}

	return db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_content_blocks_published_slug
		 ON content_blocks (slug) WHERE status = 'published'`,
	).Error
}
