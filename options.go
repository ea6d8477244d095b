package docsight

import (
	"log/slog"
	"time"

	"github.com/docsight/docsight/domain/answer"
	"github.com/docsight/docsight/domain/document"
	"github.com/docsight/docsight/domain/index"
	"github.com/docsight/docsight/infrastructure/vector"
)

// clientConfig holds configuration for Client construction.
type clientConfig struct {
	dbURL string

	colpaliBaseURL string
	colpaliTimeout time.Duration

	qdrantHost   string
	qdrantPort   int
	qdrantTLS    bool
	qdrantConfig vector.Config

	llmBaseURL string
	llmAPIKey  string
	llmModel   string
	llmTimeout time.Duration

	convertBinary  string
	convertTimeout time.Duration
	rasterDPI      int
	jpegQuality    int

	maxAnswerImages int

	processor document.Processor
	indexer   index.Indexer
	answerer  answer.Answerer
	logger    *slog.Logger
}

func newClientConfig() *clientConfig {
	return &clientConfig{}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithSQLite configures SQLite as the database.
func WithSQLite(path string) Option {
	return func(c *clientConfig) {
		c.dbURL = "sqlite://" + path
	}
}

// WithPostgres configures PostgreSQL as the database.
func WithPostgres(dsn string) Option {
	return func(c *clientConfig) {
		c.dbURL = dsn
	}
}

// WithDatabaseURL configures the database from a sqlite:// or postgres:// URL.
func WithDatabaseURL(url string) Option {
	return func(c *clientConfig) {
		c.dbURL = url
	}
}

// WithColpali configures the ColPali embedding server. A zero timeout uses
// the embedder default.
func WithColpali(baseURL string, timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.colpaliBaseURL = baseURL
		c.colpaliTimeout = timeout
	}
}

// WithQdrant configures the Qdrant vector backend.
func WithQdrant(host string, port int, useTLS bool, cfg vector.Config) Option {
	return func(c *clientConfig) {
		c.qdrantHost = host
		c.qdrantPort = port
		c.qdrantTLS = useTLS
		c.qdrantConfig = cfg
	}
}

// WithOpenAI configures the answering model against an OpenAI-compatible
// endpoint. baseURL may be empty for the public API.
func WithOpenAI(baseURL, apiKey, model string, timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.llmBaseURL = baseURL
		c.llmAPIKey = apiKey
		c.llmModel = model
		c.llmTimeout = timeout
	}
}

// WithLibreOffice sets the office-to-PDF converter binary and timeout.
// Zero values use the converter defaults.
func WithLibreOffice(binary string, timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.convertBinary = binary
		c.convertTimeout = timeout
	}
}

// WithRaster sets the rasterization DPI and JPEG quality. Zero values use
// the rasterizer defaults.
func WithRaster(dpi, jpegQuality int) Option {
	return func(c *clientConfig) {
		c.rasterDPI = dpi
		c.jpegQuality = jpegQuality
	}
}

// WithMaxAnswerImages caps how many chunk images one answer request sends
// to the model.
func WithMaxAnswerImages(n int) Option {
	return func(c *clientConfig) {
		c.maxAnswerImages = n
	}
}

// WithProcessor overrides the document processor. Useful for tests.
func WithProcessor(p document.Processor) Option {
	return func(c *clientConfig) {
		c.processor = p
	}
}

// WithIndexer overrides the vector indexer. Useful for tests.
func WithIndexer(i index.Indexer) Option {
	return func(c *clientConfig) {
		c.indexer = i
	}
}

// WithAnswerer overrides the answering backend. Useful for tests.
func WithAnswerer(a answer.Answerer) Option {
	return func(c *clientConfig) {
		c.answerer = a
	}
}

// WithLogger sets the logger for all components.
func WithLogger(logger *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}
