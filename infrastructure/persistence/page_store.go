package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/docsight/docsight/domain/document"
	"github.com/docsight/docsight/internal/database"
	"gorm.io/gorm"
)

// PageStore implements document.PageStore using GORM.
type PageStore struct {
	db     database.Database
	mapper PageMapper
}

// NewPageStore creates a new PageStore.
func NewPageStore(db database.Database) PageStore {
	return PageStore{db: db, mapper: PageMapper{}}
}

// Get returns a page by id.
func (s PageStore) Get(ctx context.Context, id int64) (document.Page, error) {
	var model PageModel
	err := s.db.Session(ctx).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return document.Page{}, fmt.Errorf("%w: page %d", document.ErrNotFound, id)
		}
		return document.Page{}, err
	}
	return s.mapper.ToDomain(model), nil
}

// IDsByDocument returns page ids in canonical page order.
func (s PageStore) IDsByDocument(ctx context.Context, docID int64) ([]int64, error) {
	var ids []int64
	err := s.db.Session(ctx).
		Model(&PageModel{}).
		Where("doc_id = ?", docID).
		Order("number ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("page ids of document %d: %w", docID, err)
	}
	return ids, nil
}
