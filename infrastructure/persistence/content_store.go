package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/docsight/docsight/domain/document"
	"github.com/docsight/docsight/internal/database"
	"gorm.io/gorm"
)

// ContentStore implements document.ContentStore using GORM.
type ContentStore struct {
	db     database.Database
	mapper ContentMapper
}

// NewContentStore creates a new ContentStore.
func NewContentStore(db database.Database) ContentStore {
	return ContentStore{db: db, mapper: ContentMapper{}}
}

// ByDocument returns the content owned by a document.
func (s ContentStore) ByDocument(ctx context.Context, docID int64) (document.Content, error) {
	var model ContentModel
	err := s.db.Session(ctx).Where("doc_id = ?", docID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return document.Content{}, fmt.Errorf("%w: content of document %d", document.ErrNotFound, docID)
		}
		return document.Content{}, err
	}
	return s.mapper.ToDomain(model), nil
}
