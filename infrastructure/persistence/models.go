// Package persistence provides GORM-backed storage for the document
// aggregate.
package persistence

import (
	"github.com/docsight/docsight/internal/database"
)

// DocumentModel is the GORM model for documents.
type DocumentModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"not null"`
	Mime      string `gorm:"not null"`
	CreatedAt int64  `gorm:"not null"`
	Indexed   bool   `gorm:"not null;default:false"`
}

// TableName returns the documents table name.
func (DocumentModel) TableName() string { return "documents" }

// ContentModel is the GORM model for original uploaded bytes (1:1 with a
// document).
type ContentModel struct {
	ID      int64  `gorm:"primaryKey;autoIncrement"`
	DocID   int64  `gorm:"index;not null"`
	Content []byte `gorm:"not null"`
}

// TableName returns the document contents table name.
func (ContentModel) TableName() string { return "document_contents" }

// PageModel is the GORM model for rasterized pages.
type PageModel struct {
	ID     int64  `gorm:"primaryKey;autoIncrement"`
	DocID  int64  `gorm:"index;not null"`
	Number int    `gorm:"not null"`
	Image  []byte `gorm:"not null"`
}

// TableName returns the document pages table name.
func (PageModel) TableName() string { return "document_pages" }

// ChunkModel is the GORM model for retrievable chunks. The primary key is
// also the point id in the vector index.
type ChunkModel struct {
	ID     int64  `gorm:"primaryKey;autoIncrement"`
	DocID  int64  `gorm:"index;not null"`
	PageID int64  `gorm:"index;not null"`
	Image  []byte `gorm:"not null"`
}

// TableName returns the document chunks table name.
func (ChunkModel) TableName() string { return "document_chunks" }

// Migrate creates or updates the schema for all persistence models.
func Migrate(db database.Database) error {
	return db.GORM().AutoMigrate(
		&DocumentModel{},
		&ContentModel{},
		&PageModel{},
		&ChunkModel{},
	)
}
