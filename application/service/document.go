// Package service provides application layer services that orchestrate the
// document pipeline: ingestion, indexing, search, and answering.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/docsight/docsight/domain/document"
	"github.com/docsight/docsight/domain/index"
	"github.com/docsight/docsight/internal/metrics"
)

// PreviewInfo is a document's page ids in page order, for thumbnail strips.
type PreviewInfo struct {
	ID      int64
	Name    string
	PageIDs []int64
}

// DownloadInfo is the original uploaded file, ready to serve.
type DownloadInfo struct {
	Name    string
	Mime    document.MimeType
	Content []byte
}

// Document manages the document aggregate lifecycle.
type Document struct {
	store     document.Store
	contents  document.ContentStore
	pages     document.PageStore
	chunks    document.ChunkStore
	processor document.Processor
	indexer   index.Indexer
	logger    *slog.Logger
}

// NewDocument creates the document service.
func NewDocument(
	store document.Store,
	contents document.ContentStore,
	pages document.PageStore,
	chunks document.ChunkStore,
	processor document.Processor,
	indexer index.Indexer,
	logger *slog.Logger,
) *Document {
	if logger == nil {
		logger = slog.Default()
	}
	return &Document{
		store:     store,
		contents:  contents,
		pages:     pages,
		chunks:    chunks,
		processor: processor,
		indexer:   indexer,
		logger:    logger,
	}
}

// Create ingests an upload: validates the MIME type, rasterizes pages, cuts
// chunks, and persists the whole aggregate in one transaction. The document
// comes back unindexed; the indexing sweep picks it up.
func (s *Document) Create(ctx context.Context, name string, mime document.MimeType, content []byte) (document.Document, error) {
	if !mime.IsSupported() {
		return document.Document{}, fmt.Errorf("%w: %s", document.ErrUnsupportedFormat, mime)
	}

	doc := document.NewDocument(name, mime)
	docContent := document.NewContent(content)

	pageImages, err := s.processor.ExtractPages(ctx, doc, docContent)
	if err != nil {
		return document.Document{}, fmt.Errorf("extract pages: %w", err)
	}

	pages := make([]document.Page, len(pageImages))
	for i, img := range pageImages {
		pages[i] = document.NewPage(i+1, img)
	}

	chunks, err := s.processor.ChunkPages(pages)
	if err != nil {
		return document.Document{}, fmt.Errorf("chunk pages: %w", err)
	}

	stored, err := s.store.Create(ctx, doc, docContent, pages, chunks)
	if err != nil {
		return document.Document{}, fmt.Errorf("persist document: %w", err)
	}

	metrics.DocumentCreated()
	s.logger.Info("created document",
		"document_id", stored.ID(), "name", name, "mime", mime,
		"pages", len(pages), "chunks", len(chunks))
	return stored, nil
}

// Get returns a document by id.
func (s *Document) Get(ctx context.Context, id int64) (document.Document, error) {
	return s.store.Get(ctx, id)
}

// List returns paginated document metadata with page and chunk counts.
func (s *Document) List(ctx context.Context, filter document.ListFilter) (document.ListResult, error) {
	return s.store.List(ctx, filter)
}

// Delete removes a document everywhere. The vector points go first: if the
// backend refuses, nothing is deleted from the database and the document
// stays consistent.
func (s *Document) Delete(ctx context.Context, id int64) error {
	doc, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}

	chunkIDs, err := s.chunks.IDsByDocument(ctx, id)
	if err != nil {
		return fmt.Errorf("load chunk ids: %w", err)
	}

	if err := s.indexer.Delete(ctx, chunkIDs); err != nil {
		return fmt.Errorf("delete vectors: %w", err)
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("deleted document", "document_id", id, "name", doc.Name(), "chunks", len(chunkIDs))
	return nil
}

// Preview returns the document's page ids ordered by page number.
func (s *Document) Preview(ctx context.Context, id int64) (PreviewInfo, error) {
	doc, err := s.store.Get(ctx, id)
	if err != nil {
		return PreviewInfo{}, err
	}

	pageIDs, err := s.pages.IDsByDocument(ctx, id)
	if err != nil {
		return PreviewInfo{}, fmt.Errorf("load page ids: %w", err)
	}

	return PreviewInfo{ID: doc.ID(), Name: doc.Name(), PageIDs: pageIDs}, nil
}

// Download returns the original uploaded bytes with name and MIME type.
func (s *Document) Download(ctx context.Context, id int64) (DownloadInfo, error) {
	doc, err := s.store.Get(ctx, id)
	if err != nil {
		return DownloadInfo{}, err
	}

	content, err := s.contents.ByDocument(ctx, id)
	if err != nil {
		return DownloadInfo{}, fmt.Errorf("load content: %w", err)
	}

	return DownloadInfo{Name: doc.Name(), Mime: doc.Mime(), Content: content.Data()}, nil
}

// PageImage returns a page's JPEG image.
func (s *Document) PageImage(ctx context.Context, pageID int64) ([]byte, error) {
	page, err := s.pages.Get(ctx, pageID)
	if err != nil {
		return nil, err
	}
	return page.Image(), nil
}

// ChunkImage returns a chunk's JPEG image.
func (s *Document) ChunkImage(ctx context.Context, chunkID int64) ([]byte, error) {
	chunk, err := s.chunks.Get(ctx, chunkID)
	if err != nil {
		return nil, err
	}
	return chunk.Image(), nil
}
