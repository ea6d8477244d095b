// Package index defines the vector index ports.
package index

import (
	"context"
	"errors"

	"github.com/docsight/docsight/domain/document"
)

// ErrIndexingFailed indicates the vector backend did not accept an upsert
// after all retry attempts. The owning document must stay unindexed.
var ErrIndexingFailed = errors.New("vector indexing failed")

// Indexer is the vector index client. Chunk primary keys double as point
// ids inside the backend; the two must always agree.
type Indexer interface {
	// Index embeds and upserts all chunks of a document, in batches.
	// Blocks until every batch is durably applied or fails with
	// ErrIndexingFailed.
	Index(ctx context.Context, doc document.Document, chunks []document.Chunk) error

	// Query embeds the text and returns chunk ids in the backend's
	// relevance order. That order is the ranking and must be preserved
	// downstream.
	Query(ctx context.Context, query string) ([]int64, error)

	// Delete removes exactly the given points. A no-op on an empty list.
	Delete(ctx context.Context, chunkIDs []int64) error

	// Interpret returns an annotated image explaining how the query
	// relates to the chunk image. A pure passthrough.
	Interpret(ctx context.Context, query string, image []byte) ([]byte, error)
}

// Embedder produces multi-vector embeddings — one vector per image patch or
// query token rather than a single vector per input.
type Embedder interface {
	// EmbedImages returns one multi-vector embedding per image.
	EmbedImages(ctx context.Context, images [][]byte) ([][][]float32, error)

	// EmbedQueries returns one multi-vector embedding per text query.
	EmbedQueries(ctx context.Context, queries []string) ([][][]float32, error)

	// Interpret returns an annotated image for a (query, image) pair.
	Interpret(ctx context.Context, query string, image []byte) ([]byte, error)
}
