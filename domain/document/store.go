package document

import "context"

// SortOrder is the direction of a listing sort.
type SortOrder string

// Sort directions.
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ListFilter selects, orders, and pages a document listing.
type ListFilter struct {
	Limit  int
	Offset int
	SortBy string // document column: id, name, mime, created_at, indexed
	Order  SortOrder
	Search string // substring match on the document name
}

// Info is a listing row: document metadata annotated with child aggregates.
type Info struct {
	Document  Document
	NumPages  int64
	NumChunks int64
}

// ListResult is one page of a document listing plus the unfiltered total.
type ListResult struct {
	Items []Info
	Total int64
}

// ChunkRef resolves a chunk id to its owning document and page.
type ChunkRef struct {
	Document Document
	PageID   int64
}

// Store persists the document aggregate.
//
// Create and Delete are atomic over the whole aggregate: either every row
// is written (removed), or none are.
type Store interface {
	// Create persists a document together with its content, pages, and
	// chunks in one transaction. Chunks reference pages by page number;
	// the store wires the generated page ids. Returns the stored document.
	Create(ctx context.Context, doc Document, content Content, pages []Page, chunks []PageChunk) (Document, error)

	// Get returns a document by id, or ErrNotFound.
	Get(ctx context.Context, id int64) (Document, error)

	// Unindexed returns all documents with indexed = false.
	Unindexed(ctx context.Context) ([]Document, error)

	// MarkIndexed sets the indexed flag in a short standalone commit.
	MarkIndexed(ctx context.Context, id int64) error

	// Delete removes chunks, pages, content, and the document in one
	// transaction.
	Delete(ctx context.Context, id int64) error

	// List returns paginated, sorted, name-searchable document metadata
	// with page and chunk counts computed by outer aggregation.
	List(ctx context.Context, filter ListFilter) (ListResult, error)
}

// ContentStore reads original uploaded bytes.
type ContentStore interface {
	// ByDocument returns the content owned by a document, or ErrNotFound.
	ByDocument(ctx context.Context, docID int64) (Content, error)
}

// PageStore reads rasterized pages.
type PageStore interface {
	// Get returns a page by id, or ErrNotFound.
	Get(ctx context.Context, id int64) (Page, error)

	// IDsByDocument returns a document's page ids ordered by page number.
	IDsByDocument(ctx context.Context, docID int64) ([]int64, error)
}

// ChunkStore reads retrievable chunks.
type ChunkStore interface {
	// Get returns a chunk by id, or ErrNotFound.
	Get(ctx context.Context, id int64) (Chunk, error)

	// ByIDs returns the chunks whose ids are in ids, in one batch query.
	// Missing ids are simply absent from the result.
	ByIDs(ctx context.Context, ids []int64) ([]Chunk, error)

	// ByDocument returns all chunks owned by a document.
	ByDocument(ctx context.Context, docID int64) ([]Chunk, error)

	// IDsByDocument returns the ids of all chunks owned by a document.
	IDsByDocument(ctx context.Context, docID int64) ([]int64, error)

	// Resolve maps chunk ids to their owning document and page in one
	// batch lookup. Unknown ids are absent from the map.
	Resolve(ctx context.Context, ids []int64) (map[int64]ChunkRef, error)
}

// Processor turns an uploaded document into page images and cuts pages into
// retrievable chunks.
type Processor interface {
	// ExtractPages returns the ordered page images for a document.
	// Fails with ErrUnsupportedFormat for unknown MIME types.
	ExtractPages(ctx context.Context, doc Document, content Content) ([][]byte, error)

	// ChunkPages cuts pages into chunks. Callers must not assume the
	// chunk count equals the page count.
	ChunkPages(pages []Page) ([]PageChunk, error)
}
