// Package vector implements the vector index on top of Qdrant. Chunks are
// stored as multi-vector points compared with MaxSim, the late-interaction
// scoring ColPali embeddings are built for.
package vector

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"sync"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"

	"github.com/docsight/docsight/domain/document"
	"github.com/docsight/docsight/domain/index"
	"github.com/docsight/docsight/internal/metrics"
)

const (
	// DefaultCollection is the Qdrant collection holding chunk points.
	DefaultCollection = "colpali"

	// DefaultBatchSize is how many chunks are embedded and upserted per
	// round trip.
	DefaultBatchSize = 4

	// DefaultSearchLimit caps the number of hits a query returns.
	DefaultSearchLimit = 10

	// DefaultSearchTimeout bounds one query on the Qdrant side.
	DefaultSearchTimeout = 60 * time.Second

	// upsertAttempts is how many times one batch upsert is tried before
	// the whole indexing run is declared failed.
	upsertAttempts = 3

	// indexingThreshold keeps the HNSW build lazy during bulk uploads.
	indexingThreshold = 100

	// maxRecvMsgSize lifts the gRPC response cap; multi-vector scroll
	// responses overflow the 4 MiB default.
	maxRecvMsgSize = 64 << 20

	probeImageSide = 64
)

// backend is the slice of the Qdrant client the indexer needs.
// *qdrant.Client satisfies it.
type backend interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	Delete(ctx context.Context, request *qdrant.DeletePoints) (*qdrant.UpdateResult, error)
}

// Config tunes the indexer. Zero values fall back to the defaults above;
// a zero VectorSize means the size is probed from the embedder at first use.
type Config struct {
	Collection    string
	BatchSize     int
	VectorSize    uint64
	SearchLimit   uint64
	SearchTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Collection == "" {
		c.Collection = DefaultCollection
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.SearchLimit == 0 {
		c.SearchLimit = DefaultSearchLimit
	}
	if c.SearchTimeout <= 0 {
		c.SearchTimeout = DefaultSearchTimeout
	}
	return c
}

// Qdrant implements index.Indexer. The collection is created lazily on the
// first call that needs it, so the service can start before Qdrant is up.
type Qdrant struct {
	backend  backend
	client   *qdrant.Client
	embedder index.Embedder
	cfg      Config
	logger   *slog.Logger

	mu    sync.Mutex
	ready bool
}

// NewQdrant connects to a Qdrant instance over gRPC.
func NewQdrant(host string, port int, useTLS bool, cfg Config, embedder index.Embedder, logger *slog.Logger) (*Qdrant, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		UseTLS: useTLS,
		GrpcOptions: []grpc.DialOption{
			grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(maxRecvMsgSize)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("connect to qdrant: %w", err)
	}

	q := newWithBackend(client, cfg, embedder, logger)
	q.client = client
	return q, nil
}

func newWithBackend(b backend, cfg Config, embedder index.Embedder, logger *slog.Logger) *Qdrant {
	if logger == nil {
		logger = slog.Default()
	}
	return &Qdrant{
		backend:  b,
		embedder: embedder,
		cfg:      cfg.withDefaults(),
		logger:   logger,
	}
}

// Close releases the underlying gRPC connection.
func (q *Qdrant) Close() error {
	if q.client == nil {
		return nil
	}
	return q.client.Close()
}

// Index embeds and upserts the document's chunks in batches. Each batch is
// retried up to upsertAttempts times; if a batch still does not land the
// whole run fails with index.ErrIndexingFailed and the document must stay
// unindexed.
func (q *Qdrant) Index(ctx context.Context, doc document.Document, chunks []document.Chunk) error {
	if err := q.ensureCollection(ctx); err != nil {
		return err
	}

	for start := 0; start < len(chunks); start += q.cfg.BatchSize {
		end := min(start+q.cfg.BatchSize, len(chunks))
		batch := chunks[start:end]

		images := make([][]byte, len(batch))
		for i, chunk := range batch {
			images[i] = chunk.Image()
		}

		embeddings, err := q.embedder.EmbedImages(ctx, images)
		if err != nil {
			return fmt.Errorf("%w: embed batch: %w", index.ErrIndexingFailed, err)
		}

		points := make([]*qdrant.PointStruct, len(batch))
		for i, multivector := range embeddings {
			points[i] = &qdrant.PointStruct{
				Id:      qdrant.NewIDNum(uint64(batch[i].ID())),
				Vectors: qdrant.NewVectorsMulti(multivector),
			}
		}

		if err := q.upsert(ctx, points); err != nil {
			return err
		}
		metrics.ChunksUpserted(len(batch))
	}

	q.logger.Info("indexed document", "document_id", doc.ID(), "chunks", len(chunks))
	return nil
}

// Query embeds the text and returns chunk ids in Qdrant's relevance order.
func (q *Qdrant) Query(ctx context.Context, query string) ([]int64, error) {
	if err := q.ensureCollection(ctx); err != nil {
		return nil, err
	}

	embeddings, err := q.embedder.EmbedQueries(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	start := time.Now()
	points, err := q.backend.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.cfg.Collection,
		Query:          qdrant.NewQueryMulti(embeddings[0]),
		Limit:          qdrant.PtrOf(q.cfg.SearchLimit),
		Timeout:        qdrant.PtrOf(uint64(q.cfg.SearchTimeout.Seconds())),
	})
	metrics.ObserveDependency("qdrant", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("query qdrant: %w", err)
	}

	ids := make([]int64, len(points))
	for i, point := range points {
		ids[i] = int64(point.GetId().GetNum())
	}
	return ids, nil
}

// Delete removes exactly the given points. A no-op on an empty list.
func (q *Qdrant) Delete(ctx context.Context, chunkIDs []int64) error {
	if len(chunkIDs) == 0 {
		return nil
	}
	if err := q.ensureCollection(ctx); err != nil {
		return err
	}

	ids := make([]*qdrant.PointId, len(chunkIDs))
	for i, id := range chunkIDs {
		ids[i] = qdrant.NewIDNum(uint64(id))
	}

	if _, err := q.backend.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.cfg.Collection,
		Points:         qdrant.NewPointsSelector(ids...),
	}); err != nil {
		return fmt.Errorf("delete points: %w", err)
	}
	return nil
}

// Interpret delegates to the embedder.
func (q *Qdrant) Interpret(ctx context.Context, query string, image []byte) ([]byte, error) {
	return q.embedder.Interpret(ctx, query, image)
}

func (q *Qdrant) ensureCollection(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.ready {
		return nil
	}

	exists, err := q.backend.CollectionExists(ctx, q.cfg.Collection)
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}
	if exists {
		q.logger.Info("found qdrant collection", "collection", q.cfg.Collection)
		q.ready = true
		return nil
	}

	size := q.cfg.VectorSize
	if size == 0 {
		size, err = q.probeVectorSize(ctx)
		if err != nil {
			return err
		}
	}

	q.logger.Info("creating qdrant collection", "collection", q.cfg.Collection, "vector_size", size)
	err = q.backend.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.cfg.Collection,
		OnDiskPayload:  qdrant.PtrOf(true),
		OptimizersConfig: &qdrant.OptimizersConfigDiff{
			IndexingThreshold: qdrant.PtrOf(uint64(indexingThreshold)),
		},
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     size,
			Distance: qdrant.Distance_Cosine,
			MultivectorConfig: &qdrant.MultiVectorConfig{
				Comparator: qdrant.MultiVectorComparator_MaxSim,
			},
			QuantizationConfig: qdrant.NewQuantizationScalar(&qdrant.ScalarQuantization{
				Type:      qdrant.QuantizationType_Int8,
				Quantile:  qdrant.PtrOf(float32(0.99)),
				AlwaysRam: qdrant.PtrOf(true),
			}),
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	q.ready = true
	return nil
}

// probeVectorSize embeds a blank image and reads the per-token vector width
// off the result. Spares operators from knowing the model's dimensionality.
func (q *Qdrant) probeVectorSize(ctx context.Context) (uint64, error) {
	var buf bytes.Buffer
	blank := image.NewRGBA(image.Rect(0, 0, probeImageSide, probeImageSide))
	if err := jpeg.Encode(&buf, blank, nil); err != nil {
		return 0, fmt.Errorf("encode probe image: %w", err)
	}

	embeddings, err := q.embedder.EmbedImages(ctx, [][]byte{buf.Bytes()})
	if err != nil {
		return 0, fmt.Errorf("probe vector size: %w", err)
	}
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return 0, fmt.Errorf("probe vector size: empty embedding")
	}
	return uint64(len(embeddings[0][0])), nil
}

func (q *Qdrant) upsert(ctx context.Context, points []*qdrant.PointStruct) error {
	var lastErr error
	for attempt := 1; attempt <= upsertAttempts; attempt++ {
		start := time.Now()
		result, err := q.backend.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: q.cfg.Collection,
			Points:         points,
			Wait:           qdrant.PtrOf(true),
		})
		metrics.ObserveDependency("qdrant", time.Since(start))
		if err == nil && result.GetStatus() != qdrant.UpdateStatus_Completed {
			err = fmt.Errorf("upsert finished with status %s", result.GetStatus())
		}
		if err == nil {
			return nil
		}
		lastErr = err
		q.logger.Warn("qdrant upsert attempt failed", "attempt", attempt, "error", err)
	}
	return fmt.Errorf("%w: %w", index.ErrIndexingFailed, lastErr)
}
