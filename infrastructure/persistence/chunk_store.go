package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/docsight/docsight/domain/document"
	"github.com/docsight/docsight/internal/database"
	"gorm.io/gorm"
)

// ChunkStore implements document.ChunkStore using GORM.
type ChunkStore struct {
	db        database.Database
	mapper    ChunkMapper
	docMapper DocumentMapper
}

// NewChunkStore creates a new ChunkStore.
func NewChunkStore(db database.Database) ChunkStore {
	return ChunkStore{db: db, mapper: ChunkMapper{}, docMapper: DocumentMapper{}}
}

// Get returns a chunk by id.
func (s ChunkStore) Get(ctx context.Context, id int64) (document.Chunk, error) {
	var model ChunkModel
	err := s.db.Session(ctx).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return document.Chunk{}, fmt.Errorf("%w: chunk %d", document.ErrNotFound, id)
		}
		return document.Chunk{}, err
	}
	return s.mapper.ToDomain(model), nil
}

// ByIDs returns chunks by id in one batch query. Missing ids are absent
// from the result.
func (s ChunkStore) ByIDs(ctx context.Context, ids []int64) ([]document.Chunk, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var models []ChunkModel
	err := s.db.Session(ctx).Where("id IN ?", ids).Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("chunks by ids: %w", err)
	}

	chunks := make([]document.Chunk, len(models))
	for i, m := range models {
		chunks[i] = s.mapper.ToDomain(m)
	}
	return chunks, nil
}

// ByDocument returns all chunks owned by a document.
func (s ChunkStore) ByDocument(ctx context.Context, docID int64) ([]document.Chunk, error) {
	var models []ChunkModel
	err := s.db.Session(ctx).Where("doc_id = ?", docID).Order("id ASC").Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("chunks of document %d: %w", docID, err)
	}

	chunks := make([]document.Chunk, len(models))
	for i, m := range models {
		chunks[i] = s.mapper.ToDomain(m)
	}
	return chunks, nil
}

// IDsByDocument returns the ids of all chunks owned by a document.
func (s ChunkStore) IDsByDocument(ctx context.Context, docID int64) ([]int64, error) {
	var ids []int64
	err := s.db.Session(ctx).
		Model(&ChunkModel{}).
		Where("doc_id = ?", docID).
		Order("id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("chunk ids of document %d: %w", docID, err)
	}
	return ids, nil
}

// resolveRow scans one chunk-to-document join row.
type resolveRow struct {
	ChunkID   int64
	PageID    int64
	DocID     int64
	Name      string
	Mime      string
	CreatedAt int64
	Indexed   bool
}

// Resolve maps chunk ids to their owning document and page in one batch
// join query.
func (s ChunkStore) Resolve(ctx context.Context, ids []int64) (map[int64]document.ChunkRef, error) {
	if len(ids) == 0 {
		return map[int64]document.ChunkRef{}, nil
	}

	var rows []resolveRow
	err := s.db.Session(ctx).
		Table("document_chunks").
		Select("document_chunks.id AS chunk_id, document_chunks.page_id, documents.id AS doc_id, documents.name, documents.mime, documents.created_at, documents.indexed").
		Joins("JOIN documents ON documents.id = document_chunks.doc_id").
		Where("document_chunks.id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("resolve chunks: %w", err)
	}

	refs := make(map[int64]document.ChunkRef, len(rows))
	for _, row := range rows {
		refs[row.ChunkID] = document.ChunkRef{
			Document: s.docMapper.ToDomain(DocumentModel{
				ID:        row.DocID,
				Name:      row.Name,
				Mime:      row.Mime,
				CreatedAt: row.CreatedAt,
				Indexed:   row.Indexed,
			}),
			PageID: row.PageID,
		}
	}
	return refs, nil
}
