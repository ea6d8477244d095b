// Package docsight provides a library for visual document search and
// question answering.
//
// Docsight ingests office documents, PDFs, and images, rasterizes them into
// page images, embeds the pages with a ColPali-style multi-vector model, and
// serves similarity search plus RAG answering over the indexed pages.
//
// Basic usage:
//
//	client, err := docsight.New(
//	    docsight.WithSQLite(".docsight/data.db"),
//	    docsight.WithColpali("http://localhost:8000", 0),
//	    docsight.WithQdrant("localhost", 6334, false, vector.Config{}),
//	    docsight.WithOpenAI("", os.Getenv("OPENAI_API_KEY"), "gpt-4o", 0),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Ingest a document
//	doc, err := client.Documents.Create(ctx, "report.pdf", document.MimePDF, content)
//
//	// Index everything pending
//	err = client.Indexing.IndexPending(ctx)
//
//	// Search and answer
//	hits, err := client.Search.Find(ctx, "quarterly revenue chart")
//	answer, err := client.Search.Answer(ctx, "what was Q3 revenue?", chunkIDs)
package docsight

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/docsight/docsight/application/service"
	"github.com/docsight/docsight/infrastructure/answer"
	"github.com/docsight/docsight/infrastructure/convert"
	"github.com/docsight/docsight/infrastructure/embedder"
	"github.com/docsight/docsight/infrastructure/persistence"
	"github.com/docsight/docsight/infrastructure/processor"
	"github.com/docsight/docsight/infrastructure/raster"
	"github.com/docsight/docsight/infrastructure/vector"
	"github.com/docsight/docsight/internal/database"
)

// Construction errors.
var (
	ErrNoDatabase = errors.New("no database configured: use WithSQLite, WithPostgres, or WithDatabaseURL")
	ErrNoIndexer  = errors.New("no vector index configured: use WithColpali and WithQdrant, or WithIndexer")
	ErrNoAnswerer = errors.New("no answerer configured: use WithOpenAI or WithAnswerer")
)

// Client is the main entry point for the docsight library.
//
// Access resources via struct fields:
//
//	client.Documents.Create(ctx, name, mime, content)
//	client.Indexing.IndexPending(ctx)
//	client.Search.Find(ctx, "query")
type Client struct {
	// Public resource fields (direct service access)
	Documents *service.Document
	Indexing  *service.Indexing
	Search    *service.Search

	db      database.Database
	logger  *slog.Logger
	closers []io.Closer
	closed  atomic.Bool
}

// New creates a new Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.dbURL == "" {
		return nil, ErrNoDatabase
	}

	ctx := context.Background()
	db, err := database.NewDatabase(ctx, cfg.dbURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := persistence.Migrate(db); err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("migrate: %w", err), errClose)
	}

	client := &Client{db: db, logger: logger}

	docStore := persistence.NewDocumentStore(db)
	contentStore := persistence.NewContentStore(db)
	pageStore := persistence.NewPageStore(db)
	chunkStore := persistence.NewChunkStore(db)

	docProcessor := cfg.processor
	if docProcessor == nil {
		converter := convert.NewLibreOffice(cfg.convertBinary, cfg.convertTimeout, logger)

		rasterizer, err := raster.NewPdfium(cfg.rasterDPI, cfg.jpegQuality, logger)
		if err != nil {
			errClose := client.Close()
			return nil, errors.Join(fmt.Errorf("init rasterizer: %w", err), errClose)
		}
		client.closers = append(client.closers, rasterizer)

		docProcessor = processor.NewDefault(converter, rasterizer)
	}

	indexer := cfg.indexer
	if indexer == nil {
		if cfg.colpaliBaseURL == "" || cfg.qdrantHost == "" {
			errClose := client.Close()
			return nil, errors.Join(ErrNoIndexer, errClose)
		}

		emb := embedder.NewColpali(cfg.colpaliBaseURL, cfg.colpaliTimeout, logger)

		qdrantIndexer, err := vector.NewQdrant(cfg.qdrantHost, cfg.qdrantPort, cfg.qdrantTLS, cfg.qdrantConfig, emb, logger)
		if err != nil {
			errClose := client.Close()
			return nil, errors.Join(fmt.Errorf("init vector index: %w", err), errClose)
		}
		client.closers = append(client.closers, qdrantIndexer)
		indexer = qdrantIndexer
	}

	answerer := cfg.answerer
	if answerer == nil {
		if cfg.llmModel == "" {
			errClose := client.Close()
			return nil, errors.Join(ErrNoAnswerer, errClose)
		}
		answerer = answer.NewOpenAI(cfg.llmBaseURL, cfg.llmAPIKey, cfg.llmModel, cfg.llmTimeout, logger)
	}

	client.Documents = service.NewDocument(docStore, contentStore, pageStore, chunkStore, docProcessor, indexer, logger)
	client.Indexing = service.NewIndexing(docStore, chunkStore, indexer, logger)
	client.Search = service.NewSearch(chunkStore, indexer, answerer, cfg.maxAnswerImages, logger)

	return client, nil
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// Close releases the database and every infrastructure resource. Safe to
// call more than once.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	var errs []error
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.db.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
