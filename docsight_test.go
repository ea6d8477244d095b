package docsight_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsight/docsight"
	"github.com/docsight/docsight/domain/document"
)

type noopProcessor struct{}

func (noopProcessor) ExtractPages(_ context.Context, _ document.Document, _ document.Content) ([][]byte, error) {
	return [][]byte{[]byte("page-1")}, nil
}

func (noopProcessor) ChunkPages(pages []document.Page) ([]document.PageChunk, error) {
	chunks := make([]document.PageChunk, len(pages))
	for i, page := range pages {
		chunks[i] = document.PageChunk{Page: page, Image: page.Image()}
	}
	return chunks, nil
}

type noopIndexer struct{}

func (noopIndexer) Index(_ context.Context, _ document.Document, _ []document.Chunk) error {
	return nil
}
func (noopIndexer) Query(_ context.Context, _ string) ([]int64, error) { return nil, nil }
func (noopIndexer) Delete(_ context.Context, _ []int64) error          { return nil }
func (noopIndexer) Interpret(_ context.Context, _ string, image []byte) ([]byte, error) {
	return image, nil
}

type noopAnswerer struct{}

func (noopAnswerer) Question(_ context.Context, _ string, _ [][]byte) (string, error) {
	return "", nil
}

func newTestClient(t *testing.T) *docsight.Client {
	t.Helper()
	client, err := docsight.New(
		docsight.WithDatabaseURL("sqlite://:memory:"),
		docsight.WithProcessor(noopProcessor{}),
		docsight.WithIndexer(noopIndexer{}),
		docsight.WithAnswerer(noopAnswerer{}),
		docsight.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)
	return client
}

func TestNew_RequiresDatabase(t *testing.T) {
	_, err := docsight.New()
	require.ErrorIs(t, err, docsight.ErrNoDatabase)
}

func TestNew_RequiresIndexer(t *testing.T) {
	_, err := docsight.New(
		docsight.WithDatabaseURL("sqlite://:memory:"),
		docsight.WithProcessor(noopProcessor{}),
		docsight.WithAnswerer(noopAnswerer{}),
	)
	require.ErrorIs(t, err, docsight.ErrNoIndexer)
}

func TestClient_Lifecycle(t *testing.T) {
	client := newTestClient(t)

	ctx := context.Background()
	doc, err := client.Documents.Create(ctx, "a.pdf", document.MimePDF, []byte("x"))
	require.NoError(t, err)

	require.NoError(t, client.Indexing.IndexPending(ctx))

	got, err := client.Documents.Get(ctx, doc.ID())
	require.NoError(t, err)
	assert.True(t, got.Indexed())

	require.NoError(t, client.Close())
	// Close is idempotent.
	require.NoError(t, client.Close())
}
