package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/docsight/docsight/domain/document"
	"github.com/docsight/docsight/internal/database"
	"gorm.io/gorm"
)

// sortColumns is the allowlist for listing sort keys.
var sortColumns = map[string]bool{
	"id":         true,
	"name":       true,
	"mime":       true,
	"created_at": true,
	"indexed":    true,
}

// DocumentStore implements document.Store using GORM.
type DocumentStore struct {
	db     database.Database
	mapper DocumentMapper
}

// NewDocumentStore creates a new DocumentStore.
func NewDocumentStore(db database.Database) DocumentStore {
	return DocumentStore{db: db, mapper: DocumentMapper{}}
}

// Create persists the whole aggregate in one transaction. Chunks arrive
// paired with the page they were cut from; the store wires the generated
// page ids by page number.
func (s DocumentStore) Create(
	ctx context.Context,
	doc document.Document,
	content document.Content,
	pages []document.Page,
	chunks []document.PageChunk,
) (document.Document, error) {
	return database.WithTransactionResult(ctx, s.db, func(tx *gorm.DB) (document.Document, error) {
		docModel := s.mapper.ToModel(doc)
		if err := tx.Create(&docModel).Error; err != nil {
			return document.Document{}, fmt.Errorf("create document: %w", err)
		}

		contentModel := ContentModel{DocID: docModel.ID, Content: content.Data()}
		if err := tx.Create(&contentModel).Error; err != nil {
			return document.Document{}, fmt.Errorf("create content: %w", err)
		}

		pageIDByNumber := make(map[int]int64, len(pages))
		for _, page := range pages {
			pageModel := PageModel{DocID: docModel.ID, Number: page.Number(), Image: page.Image()}
			if err := tx.Create(&pageModel).Error; err != nil {
				return document.Document{}, fmt.Errorf("create page %d: %w", page.Number(), err)
			}
			pageIDByNumber[page.Number()] = pageModel.ID
		}

		for i, chunk := range chunks {
			pageID, ok := pageIDByNumber[chunk.Page.Number()]
			if !ok {
				return document.Document{}, fmt.Errorf("chunk %d references unknown page %d", i, chunk.Page.Number())
			}
			chunkModel := ChunkModel{DocID: docModel.ID, PageID: pageID, Image: chunk.Image}
			if err := tx.Create(&chunkModel).Error; err != nil {
				return document.Document{}, fmt.Errorf("create chunk %d: %w", i, err)
			}
		}

		return s.mapper.ToDomain(docModel), nil
	})
}

// Get returns a document by id.
func (s DocumentStore) Get(ctx context.Context, id int64) (document.Document, error) {
	var model DocumentModel
	err := s.db.Session(ctx).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return document.Document{}, fmt.Errorf("%w: document %d", document.ErrNotFound, id)
		}
		return document.Document{}, err
	}
	return s.mapper.ToDomain(model), nil
}

// Unindexed returns all documents with indexed = false.
func (s DocumentStore) Unindexed(ctx context.Context) ([]document.Document, error) {
	var models []DocumentModel
	err := s.db.Session(ctx).Where("indexed = ?", false).Order("id ASC").Find(&models).Error
	if err != nil {
		return nil, err
	}

	docs := make([]document.Document, len(models))
	for i, m := range models {
		docs[i] = s.mapper.ToDomain(m)
	}
	return docs, nil
}

// MarkIndexed sets the indexed flag in a short standalone commit.
func (s DocumentStore) MarkIndexed(ctx context.Context, id int64) error {
	res := s.db.Session(ctx).Model(&DocumentModel{}).Where("id = ?", id).Update("indexed", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: document %d", document.ErrNotFound, id)
	}
	return nil
}

// Delete removes chunks, pages, content, and the document in one
// transaction.
func (s DocumentStore) Delete(ctx context.Context, id int64) error {
	return database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		var model DocumentModel
		if err := tx.First(&model, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: document %d", document.ErrNotFound, id)
			}
			return err
		}

		if err := tx.Where("doc_id = ?", id).Delete(&ChunkModel{}).Error; err != nil {
			return fmt.Errorf("delete chunks: %w", err)
		}
		if err := tx.Where("doc_id = ?", id).Delete(&PageModel{}).Error; err != nil {
			return fmt.Errorf("delete pages: %w", err)
		}
		if err := tx.Where("doc_id = ?", id).Delete(&ContentModel{}).Error; err != nil {
			return fmt.Errorf("delete content: %w", err)
		}
		if err := tx.Delete(&model).Error; err != nil {
			return fmt.Errorf("delete document: %w", err)
		}
		return nil
	})
}

// listRow scans one aggregated listing row.
type listRow struct {
	ID        int64
	Name      string
	Mime      string
	CreatedAt int64
	Indexed   bool
	NumPages  int64
	NumChunks int64
}

// List returns paginated document metadata with page and chunk counts
// computed by outer joins against grouped subqueries, never by loading
// child rows.
func (s DocumentStore) List(ctx context.Context, filter document.ListFilter) (document.ListResult, error) {
	session := s.db.Session(ctx)

	q := session.Table("documents").
		Select("documents.*, COALESCE(p.cnt, 0) AS num_pages, COALESCE(c.cnt, 0) AS num_chunks").
		Joins("LEFT JOIN (SELECT doc_id, COUNT(id) AS cnt FROM document_pages GROUP BY doc_id) p ON p.doc_id = documents.id").
		Joins("LEFT JOIN (SELECT doc_id, COUNT(id) AS cnt FROM document_chunks GROUP BY doc_id) c ON c.doc_id = documents.id")

	countQ := session.Model(&DocumentModel{})

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("documents.name LIKE ?", like)
		countQ = countQ.Where("name LIKE ?", like)
	}

	var total int64
	if err := countQ.Count(&total).Error; err != nil {
		return document.ListResult{}, fmt.Errorf("count documents: %w", err)
	}

	sortBy := filter.SortBy
	if !sortColumns[sortBy] {
		sortBy = "id"
	}
	dir := "ASC"
	if filter.Order == document.SortDesc {
		dir = "DESC"
	}
	q = q.Order(fmt.Sprintf("documents.%s %s", sortBy, dir))

	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var rows []listRow
	if err := q.Scan(&rows).Error; err != nil {
		return document.ListResult{}, fmt.Errorf("list documents: %w", err)
	}

	items := make([]document.Info, len(rows))
	for i, row := range rows {
		items[i] = document.Info{
			Document: s.mapper.ToDomain(DocumentModel{
				ID:        row.ID,
				Name:      row.Name,
				Mime:      row.Mime,
				CreatedAt: row.CreatedAt,
				Indexed:   row.Indexed,
			}),
			NumPages:  row.NumPages,
			NumChunks: row.NumChunks,
		}
	}

	return document.ListResult{Items: items, Total: total}, nil
}
