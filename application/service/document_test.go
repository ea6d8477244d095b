package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsight/docsight/domain/document"
)

func TestDocument_Create(t *testing.T) {
	env := newTestEnv(t, 3)

	doc := env.createDocument(t, "report.pdf")
	assert.NotZero(t, doc.ID())
	assert.False(t, doc.Indexed())

	listed, err := env.docs.List(context.Background(), document.ListFilter{})
	require.NoError(t, err)
	require.Len(t, listed.Items, 1)
	assert.Equal(t, int64(3), listed.Items[0].NumPages)
	assert.Equal(t, int64(3), listed.Items[0].NumChunks)
}

func TestDocument_Create_UnsupportedMime(t *testing.T) {
	env := newTestEnv(t, 1)

	_, err := env.docs.Create(context.Background(), "notes.txt", document.MimeType("text/plain"), []byte("hi"))
	require.ErrorIs(t, err, document.ErrUnsupportedFormat)

	listed, err := env.docs.List(context.Background(), document.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, listed.Items)
}

func TestDocument_Create_ExtractionFailure(t *testing.T) {
	env := newTestEnv(t, 1)
	env.processor.extractErr = errors.New("corrupt file")

	_, err := env.docs.Create(context.Background(), "broken.pdf", document.MimePDF, []byte("xx"))
	require.Error(t, err)

	listed, err := env.docs.List(context.Background(), document.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, listed.Items)
}

func TestDocument_Delete(t *testing.T) {
	env := newTestEnv(t, 2)
	ctx := context.Background()

	doc := env.createDocument(t, "a.pdf")
	chunkIDs, err := env.chunkStore.IDsByDocument(ctx, doc.ID())
	require.NoError(t, err)
	require.Len(t, chunkIDs, 2)

	require.NoError(t, env.docs.Delete(ctx, doc.ID()))

	require.Len(t, env.indexer.deleted, 1)
	assert.Equal(t, chunkIDs, env.indexer.deleted[0])

	_, err = env.docs.Get(ctx, doc.ID())
	require.ErrorIs(t, err, document.ErrNotFound)
}

func TestDocument_Delete_VectorFailureLeavesRows(t *testing.T) {
	env := newTestEnv(t, 2)
	ctx := context.Background()

	doc := env.createDocument(t, "a.pdf")
	env.indexer.deleteErr = errors.New("qdrant unavailable")

	err := env.docs.Delete(ctx, doc.ID())
	require.Error(t, err)

	// Nothing was removed from the database.
	_, err = env.docs.Get(ctx, doc.ID())
	require.NoError(t, err)

	chunkIDs, err := env.chunkStore.IDsByDocument(ctx, doc.ID())
	require.NoError(t, err)
	assert.Len(t, chunkIDs, 2)
}

func TestDocument_Delete_NotFound(t *testing.T) {
	env := newTestEnv(t, 1)

	err := env.docs.Delete(context.Background(), 12345)
	require.ErrorIs(t, err, document.ErrNotFound)
	assert.Empty(t, env.indexer.deleted)
}

func TestDocument_Preview(t *testing.T) {
	env := newTestEnv(t, 3)
	ctx := context.Background()

	doc := env.createDocument(t, "slides.pdf")

	preview, err := env.docs.Preview(ctx, doc.ID())
	require.NoError(t, err)
	assert.Equal(t, doc.ID(), preview.ID)
	assert.Equal(t, "slides.pdf", preview.Name)
	require.Len(t, preview.PageIDs, 3)

	// Page ids come ordered by page number.
	expected, err := env.pageStore.IDsByDocument(ctx, doc.ID())
	require.NoError(t, err)
	assert.Equal(t, expected, preview.PageIDs)
}

func TestDocument_Download(t *testing.T) {
	env := newTestEnv(t, 1)

	doc := env.createDocument(t, "original.pdf")

	info, err := env.docs.Download(context.Background(), doc.ID())
	require.NoError(t, err)
	assert.Equal(t, "original.pdf", info.Name)
	assert.Equal(t, document.MimePDF, info.Mime)
	assert.Equal(t, []byte("%PDF-1.4"), info.Content)
}

func TestDocument_PageAndChunkImages(t *testing.T) {
	env := newTestEnv(t, 2)
	ctx := context.Background()

	doc := env.createDocument(t, "a.pdf")

	pageIDs, err := env.pageStore.IDsByDocument(ctx, doc.ID())
	require.NoError(t, err)
	img, err := env.docs.PageImage(ctx, pageIDs[0])
	require.NoError(t, err)
	assert.Equal(t, []byte("page-1"), img)

	chunkIDs, err := env.chunkStore.IDsByDocument(ctx, doc.ID())
	require.NoError(t, err)
	img, err = env.docs.ChunkImage(ctx, chunkIDs[1])
	require.NoError(t, err)
	assert.Equal(t, []byte("page-2"), img)

	_, err = env.docs.PageImage(ctx, 9999)
	require.ErrorIs(t, err, document.ErrNotFound)
}
