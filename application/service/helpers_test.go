package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docsight/docsight/application/service"
	"github.com/docsight/docsight/domain/document"
	"github.com/docsight/docsight/infrastructure/persistence"
	"github.com/docsight/docsight/internal/database"
)

type fakeProcessor struct {
	pageCount  int
	extractErr error
}

func (f *fakeProcessor) ExtractPages(_ context.Context, _ document.Document, _ document.Content) ([][]byte, error) {
	if f.extractErr != nil {
		return nil, f.extractErr
	}
	pages := make([][]byte, f.pageCount)
	for i := range pages {
		pages[i] = fmt.Appendf(nil, "page-%d", i+1)
	}
	return pages, nil
}

func (f *fakeProcessor) ChunkPages(pages []document.Page) ([]document.PageChunk, error) {
	chunks := make([]document.PageChunk, len(pages))
	for i, page := range pages {
		chunks[i] = document.PageChunk{Page: page, Image: page.Image()}
	}
	return chunks, nil
}

type fakeIndexer struct {
	mu          sync.Mutex
	indexedDocs []int64
	indexErrs   map[int64]error
	queryIDs    []int64
	queryErr    error
	deleted     [][]int64
	deleteErr   error

	// When set, Index signals on started and blocks until proceed closes.
	started chan int64
	proceed chan struct{}
}

func (f *fakeIndexer) Index(_ context.Context, doc document.Document, _ []document.Chunk) error {
	if f.started != nil {
		f.started <- doc.ID()
		<-f.proceed
	}
	f.mu.Lock()
	f.indexedDocs = append(f.indexedDocs, doc.ID())
	f.mu.Unlock()
	return f.indexErrs[doc.ID()]
}

func (f *fakeIndexer) indexed() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.indexedDocs...)
}

func (f *fakeIndexer) Query(_ context.Context, _ string) ([]int64, error) {
	return f.queryIDs, f.queryErr
}

func (f *fakeIndexer) Delete(_ context.Context, chunkIDs []int64) error {
	f.mu.Lock()
	f.deleted = append(f.deleted, append([]int64(nil), chunkIDs...))
	f.mu.Unlock()
	return f.deleteErr
}

func (f *fakeIndexer) Interpret(_ context.Context, _ string, image []byte) ([]byte, error) {
	return append([]byte("interpreted:"), image...), nil
}

type fakeAnswerer struct {
	prompt string
	images [][]byte
	reply  string
	err    error
}

func (f *fakeAnswerer) Question(_ context.Context, prompt string, images [][]byte) (string, error) {
	f.prompt = prompt
	f.images = images
	return f.reply, f.err
}

type testEnv struct {
	docs     *service.Document
	indexing *service.Indexing
	search   *service.Search

	store      persistence.DocumentStore
	chunkStore persistence.ChunkStore
	pageStore  persistence.PageStore

	processor *fakeProcessor
	indexer   *fakeIndexer
	answerer  *fakeAnswerer
}

func newTestEnv(t *testing.T, pageCount int) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := database.NewDatabase(ctx, "sqlite://:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, persistence.Migrate(db))

	store := persistence.NewDocumentStore(db)
	contents := persistence.NewContentStore(db)
	pages := persistence.NewPageStore(db)
	chunks := persistence.NewChunkStore(db)

	processor := &fakeProcessor{pageCount: pageCount}
	indexer := &fakeIndexer{indexErrs: map[int64]error{}}
	answerer := &fakeAnswerer{reply: "ответ"}

	return &testEnv{
		docs:       service.NewDocument(store, contents, pages, chunks, processor, indexer, nil),
		indexing:   service.NewIndexing(store, chunks, indexer, nil),
		search:     service.NewSearch(chunks, indexer, answerer, 0, nil),
		store:      store,
		chunkStore: chunks,
		pageStore:  pages,
		processor:  processor,
		indexer:    indexer,
		answerer:   answerer,
	}
}

func (e *testEnv) createDocument(t *testing.T, name string) document.Document {
	t.Helper()
	doc, err := e.docs.Create(context.Background(), name, document.MimePDF, []byte("%PDF-1.4"))
	require.NoError(t, err)
	return doc
}
