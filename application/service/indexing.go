package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/docsight/docsight/domain/document"
	"github.com/docsight/docsight/domain/index"
	"github.com/docsight/docsight/internal/metrics"
)

// Indexing sweeps unindexed documents into the vector backend.
//
// Sweeps may run concurrently (every upload triggers one), so an in-flight
// set guarantees at most one indexing run per document at a time.
type Indexing struct {
	store   document.Store
	chunks  document.ChunkStore
	indexer index.Indexer
	logger  *slog.Logger

	mu       sync.Mutex
	inFlight map[int64]struct{}
}

// NewIndexing creates the indexing service.
func NewIndexing(store document.Store, chunks document.ChunkStore, indexer index.Indexer, logger *slog.Logger) *Indexing {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexing{
		store:    store,
		chunks:   chunks,
		indexer:  indexer,
		logger:   logger,
		inFlight: make(map[int64]struct{}),
	}
}

// IndexPending indexes every document with indexed = false. Documents already
// being indexed by another sweep are skipped. A failing document is recorded
// and the sweep moves on; the joined per-document errors come back at the end.
func (s *Indexing) IndexPending(ctx context.Context) error {
	docs, err := s.store.Unindexed(ctx)
	if err != nil {
		return fmt.Errorf("scan unindexed: %w", err)
	}

	var errs []error
	for _, doc := range docs {
		if !s.acquire(doc.ID()) {
			s.logger.Debug("indexing already in flight", "document_id", doc.ID())
			continue
		}
		if err := s.indexDocument(ctx, doc); err != nil {
			metrics.IndexFailed()
			s.logger.Error("indexing failed", "document_id", doc.ID(), "error", err)
			errs = append(errs, fmt.Errorf("document %d: %w", doc.ID(), err))
		}
	}
	return errors.Join(errs...)
}

func (s *Indexing) indexDocument(ctx context.Context, doc document.Document) error {
	defer s.release(doc.ID())

	chunks, err := s.chunks.ByDocument(ctx, doc.ID())
	if err != nil {
		return fmt.Errorf("load chunks: %w", err)
	}

	if err := s.indexer.Index(ctx, doc, chunks); err != nil {
		return err
	}

	// The external write succeeded; flip the flag in its own short commit
	// so a crash between the two at worst re-indexes.
	if err := s.store.MarkIndexed(ctx, doc.ID()); err != nil {
		return fmt.Errorf("mark indexed: %w", err)
	}

	metrics.DocumentIndexed()
	s.logger.Info("indexed document", "document_id", doc.ID(), "chunks", len(chunks))
	return nil
}

func (s *Indexing) acquire(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[id]; busy {
		return false
	}
	s.inFlight[id] = struct{}{}
	return true
}

func (s *Indexing) release(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, id)
}
