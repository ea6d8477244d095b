package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/docsight/docsight/domain/answer"
	"github.com/docsight/docsight/domain/document"
	"github.com/docsight/docsight/domain/index"
)

// DefaultMaxAnswerImages caps how many chunk images one answer request sends
// to the language model.
const DefaultMaxAnswerImages = 2

// SearchResult is one hit: a chunk resolved to its document and page.
type SearchResult struct {
	DocID     int64
	PageID    int64
	ChunkID   int64
	Name      string
	Mime      document.MimeType
	CreatedAt int64
}

// Search answers text queries against the vector index.
type Search struct {
	chunks    document.ChunkStore
	indexer   index.Indexer
	answerer  answer.Answerer
	maxImages int
	logger    *slog.Logger
}

// NewSearch creates the search service. maxImages <= 0 falls back to
// DefaultMaxAnswerImages.
func NewSearch(chunks document.ChunkStore, indexer index.Indexer, answerer answer.Answerer, maxImages int, logger *slog.Logger) *Search {
	if maxImages <= 0 {
		maxImages = DefaultMaxAnswerImages
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Search{
		chunks:    chunks,
		indexer:   indexer,
		answerer:  answerer,
		maxImages: maxImages,
		logger:    logger,
	}
}

// Find queries the index and resolves the hits to documents and pages. The
// result keeps the backend's relevance order. Chunk ids the index returns
// but the database no longer knows are logged and dropped.
func (s *Search) Find(ctx context.Context, query string) ([]SearchResult, error) {
	chunkIDs, err := s.indexer.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	if len(chunkIDs) == 0 {
		return nil, nil
	}

	refs, err := s.chunks.Resolve(ctx, chunkIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve chunks: %w", err)
	}

	results := make([]SearchResult, 0, len(chunkIDs))
	for _, chunkID := range chunkIDs {
		ref, ok := refs[chunkID]
		if !ok {
			s.logger.Error("inconsistent index: unknown chunk id", "chunk_id", chunkID)
			continue
		}
		results = append(results, SearchResult{
			DocID:     ref.Document.ID(),
			PageID:    ref.PageID,
			ChunkID:   chunkID,
			Name:      ref.Document.Name(),
			Mime:      ref.Document.Mime(),
			CreatedAt: ref.Document.CreatedAt(),
		})
	}
	return results, nil
}

// Answer asks the language model the query over the images of the given
// chunks. chunkIDs come in relevance order; only the first maxImages are
// sent, and the image order on the wire matches the id order given here.
func (s *Search) Answer(ctx context.Context, query string, chunkIDs []int64) (string, error) {
	if len(chunkIDs) == 0 {
		return "", document.ErrNoChunks
	}
	if len(chunkIDs) > s.maxImages {
		chunkIDs = chunkIDs[:s.maxImages]
	}

	chunks, err := s.chunks.ByIDs(ctx, chunkIDs)
	if err != nil {
		return "", fmt.Errorf("load chunks: %w", err)
	}

	imageByID := make(map[int64][]byte, len(chunks))
	for _, chunk := range chunks {
		imageByID[chunk.ID()] = chunk.Image()
	}

	images := make([][]byte, 0, len(chunkIDs))
	for _, id := range chunkIDs {
		img, ok := imageByID[id]
		if !ok {
			s.logger.Warn("answer request references unknown chunk", "chunk_id", id)
			continue
		}
		images = append(images, img)
	}

	return s.answerer.Question(ctx, query, images)
}

// Interpret returns an annotated chunk image showing how the query relates
// to it.
func (s *Search) Interpret(ctx context.Context, chunkID int64, query string) ([]byte, error) {
	chunk, err := s.chunks.Get(ctx, chunkID)
	if err != nil {
		return nil, err
	}
	return s.indexer.Interpret(ctx, query, chunk.Image())
}
