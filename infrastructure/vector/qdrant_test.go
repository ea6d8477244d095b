package vector

import (
	"context"
	"errors"
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsight/docsight/domain/document"
	"github.com/docsight/docsight/domain/index"
)

type fakeBackend struct {
	exists        bool
	existsErr     error
	created       []*qdrant.CreateCollection
	upserts       []*qdrant.UpsertPoints
	upsertResults []upsertResult
	queries       []*qdrant.QueryPoints
	queryPoints   []*qdrant.ScoredPoint
	deletes       []*qdrant.DeletePoints
}

type upsertResult struct {
	status qdrant.UpdateStatus
	err    error
}

func (f *fakeBackend) CollectionExists(_ context.Context, _ string) (bool, error) {
	return f.exists, f.existsErr
}

func (f *fakeBackend) CreateCollection(_ context.Context, req *qdrant.CreateCollection) error {
	f.created = append(f.created, req)
	f.exists = true
	return nil
}

func (f *fakeBackend) Upsert(_ context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error) {
	f.upserts = append(f.upserts, req)
	res := upsertResult{status: qdrant.UpdateStatus_Completed}
	if len(f.upsertResults) > 0 {
		res = f.upsertResults[0]
		f.upsertResults = f.upsertResults[1:]
	}
	if res.err != nil {
		return nil, res.err
	}
	return &qdrant.UpdateResult{Status: res.status}, nil
}

func (f *fakeBackend) Query(_ context.Context, req *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error) {
	f.queries = append(f.queries, req)
	return f.queryPoints, nil
}

func (f *fakeBackend) Delete(_ context.Context, req *qdrant.DeletePoints) (*qdrant.UpdateResult, error) {
	f.deletes = append(f.deletes, req)
	return &qdrant.UpdateResult{Status: qdrant.UpdateStatus_Completed}, nil
}

type fakeEmbedder struct {
	imageCalls [][][]byte
	vectorLen  int
}

func (f *fakeEmbedder) EmbedImages(_ context.Context, images [][]byte) ([][][]float32, error) {
	f.imageCalls = append(f.imageCalls, images)
	out := make([][][]float32, len(images))
	for i := range images {
		out[i] = [][]float32{make([]float32, f.vectorLen)}
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQueries(_ context.Context, queries []string) ([][][]float32, error) {
	out := make([][][]float32, len(queries))
	for i := range queries {
		out[i] = [][]float32{make([]float32, f.vectorLen)}
	}
	return out, nil
}

func (f *fakeEmbedder) Interpret(_ context.Context, _ string, image []byte) ([]byte, error) {
	return append([]byte("annotated:"), image...), nil
}

func testChunks(n int) []document.Chunk {
	chunks := make([]document.Chunk, n)
	for i := range chunks {
		chunks[i] = document.ReconstructChunk(int64(i+1), 1, int64(i+1), []byte{byte(i)})
	}
	return chunks
}

func TestQdrant_Index_BatchesAndPointIDs(t *testing.T) {
	backend := &fakeBackend{exists: true}
	embedder := &fakeEmbedder{vectorLen: 8}
	q := newWithBackend(backend, Config{BatchSize: 2}, embedder, nil)

	doc := document.ReconstructDocument(1, "a.pdf", document.MimePDF, 0, false)
	err := q.Index(context.Background(), doc, testChunks(5))
	require.NoError(t, err)

	// 5 chunks at batch size 2 means 3 upserts: 2+2+1.
	require.Len(t, backend.upserts, 3)
	assert.Len(t, backend.upserts[0].Points, 2)
	assert.Len(t, backend.upserts[2].Points, 1)

	first := backend.upserts[0].Points[0]
	assert.Equal(t, uint64(1), first.GetId().GetNum())
	require.NotNil(t, backend.upserts[0].Wait)
	assert.True(t, *backend.upserts[0].Wait)

	require.Len(t, embedder.imageCalls, 3)
	assert.Len(t, embedder.imageCalls[0], 2)
}

func TestQdrant_Index_RetriesThenSucceeds(t *testing.T) {
	backend := &fakeBackend{
		exists: true,
		upsertResults: []upsertResult{
			{err: errors.New("connection reset")},
			{status: qdrant.UpdateStatus_Acknowledged},
			{status: qdrant.UpdateStatus_Completed},
		},
	}
	q := newWithBackend(backend, Config{}, &fakeEmbedder{vectorLen: 4}, nil)

	doc := document.ReconstructDocument(1, "a.pdf", document.MimePDF, 0, false)
	err := q.Index(context.Background(), doc, testChunks(1))
	require.NoError(t, err)
	assert.Len(t, backend.upserts, 3)
}

func TestQdrant_Index_AllAttemptsFail(t *testing.T) {
	backend := &fakeBackend{
		exists: true,
		upsertResults: []upsertResult{
			{err: errors.New("down")},
			{err: errors.New("down")},
			{err: errors.New("down")},
		},
	}
	q := newWithBackend(backend, Config{}, &fakeEmbedder{vectorLen: 4}, nil)

	doc := document.ReconstructDocument(1, "a.pdf", document.MimePDF, 0, false)
	err := q.Index(context.Background(), doc, testChunks(1))
	require.ErrorIs(t, err, index.ErrIndexingFailed)
	assert.Len(t, backend.upserts, 3)
}

func TestQdrant_EnsureCollection_ProbesVectorSize(t *testing.T) {
	backend := &fakeBackend{}
	embedder := &fakeEmbedder{vectorLen: 128}
	q := newWithBackend(backend, Config{}, embedder, nil)

	doc := document.ReconstructDocument(1, "a.pdf", document.MimePDF, 0, false)
	require.NoError(t, q.Index(context.Background(), doc, testChunks(1)))

	require.Len(t, backend.created, 1)
	created := backend.created[0]
	assert.Equal(t, DefaultCollection, created.CollectionName)

	params := created.VectorsConfig.GetParams()
	require.NotNil(t, params)
	assert.Equal(t, uint64(128), params.Size)
	assert.Equal(t, qdrant.Distance_Cosine, params.Distance)
	require.NotNil(t, params.MultivectorConfig)
	assert.Equal(t, qdrant.MultiVectorComparator_MaxSim, params.MultivectorConfig.Comparator)

	// The probe plus the single chunk batch.
	require.Len(t, embedder.imageCalls, 2)

	// Second call reuses the collection.
	require.NoError(t, q.Index(context.Background(), doc, testChunks(1)))
	assert.Len(t, backend.created, 1)
}

func TestQdrant_EnsureCollection_StaticVectorSize(t *testing.T) {
	backend := &fakeBackend{}
	embedder := &fakeEmbedder{vectorLen: 128}
	q := newWithBackend(backend, Config{VectorSize: 96}, embedder, nil)

	doc := document.ReconstructDocument(1, "a.pdf", document.MimePDF, 0, false)
	require.NoError(t, q.Index(context.Background(), doc, testChunks(1)))

	require.Len(t, backend.created, 1)
	assert.Equal(t, uint64(96), backend.created[0].VectorsConfig.GetParams().Size)
	// No probe: only the chunk batch hits the embedder.
	assert.Len(t, embedder.imageCalls, 1)
}

func TestQdrant_Query_PreservesRelevanceOrder(t *testing.T) {
	backend := &fakeBackend{
		exists: true,
		queryPoints: []*qdrant.ScoredPoint{
			{Id: qdrant.NewIDNum(7), Score: 0.9},
			{Id: qdrant.NewIDNum(3), Score: 0.8},
			{Id: qdrant.NewIDNum(9), Score: 0.2},
		},
	}
	q := newWithBackend(backend, Config{}, &fakeEmbedder{vectorLen: 4}, nil)

	ids, err := q.Query(context.Background(), "what is in the chart")
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 3, 9}, ids)

	require.Len(t, backend.queries, 1)
	req := backend.queries[0]
	require.NotNil(t, req.Limit)
	assert.Equal(t, uint64(DefaultSearchLimit), *req.Limit)
	require.NotNil(t, req.Timeout)
	assert.Equal(t, uint64(60), *req.Timeout)
}

func TestQdrant_Delete(t *testing.T) {
	backend := &fakeBackend{exists: true}
	q := newWithBackend(backend, Config{}, &fakeEmbedder{vectorLen: 4}, nil)

	require.NoError(t, q.Delete(context.Background(), nil))
	assert.Empty(t, backend.deletes)

	require.NoError(t, q.Delete(context.Background(), []int64{4, 8}))
	require.Len(t, backend.deletes, 1)

	ids := backend.deletes[0].Points.GetPoints().GetIds()
	require.Len(t, ids, 2)
	assert.Equal(t, uint64(4), ids[0].GetNum())
	assert.Equal(t, uint64(8), ids[1].GetNum())
}

func TestQdrant_Interpret_Passthrough(t *testing.T) {
	q := newWithBackend(&fakeBackend{exists: true}, Config{}, &fakeEmbedder{vectorLen: 4}, nil)

	out, err := q.Interpret(context.Background(), "q", []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, []byte("annotated:img"), out)
}
