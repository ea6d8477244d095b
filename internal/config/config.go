package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Default configuration values.
const (
	DefaultHost          = "0.0.0.0"
	DefaultPort          = 8080
	DefaultLogLevel      = "INFO"
	DefaultSearchLimit   = 10
	DefaultSearchTimeout = 60 * time.Second
	DefaultRagMaxImages  = 2
	DefaultBatchSize     = 4
	DefaultConvertTimeout = 30 * time.Second
	DefaultRasterDPI     = 100
	DefaultJPEGQuality   = 80
	DefaultCollection    = "colpali"
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// AppConfig is the resolved application configuration.
type AppConfig struct {
	host      string
	port      int
	dataDir   string
	dbURL     string
	logLevel  string
	logFormat LogFormat

	colpaliBaseURL   string
	colpaliBatchSize int
	colpaliTimeout   time.Duration

	qdrantHost       string
	qdrantPort       int
	qdrantUseTLS     bool
	qdrantCollection string
	qdrantVectorSize int

	llmBaseURL string
	llmAPIKey  string
	llmModel   string
	llmTimeout time.Duration

	convertBinary  string
	convertTimeout time.Duration

	rasterDPI   int
	jpegQuality int

	searchLimit   int
	searchTimeout time.Duration
	ragMaxImages  int
}

// ToAppConfig resolves an EnvConfig into an AppConfig, filling defaults.
func (e EnvConfig) ToAppConfig() AppConfig {
	dataDir := e.DataDir
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dataDir = filepath.Join(home, ".docsight")
	}

	dbURL := e.DBURL
	if dbURL == "" {
		dbURL = "sqlite://" + filepath.Join(dataDir, "docsight.db")
	}

	logFormat := LogFormatPretty
	if LogFormat(e.LogFormat) == LogFormatJSON {
		logFormat = LogFormatJSON
	}

	return AppConfig{
		host:      e.Host,
		port:      e.Port,
		dataDir:   dataDir,
		dbURL:     dbURL,
		logLevel:  e.LogLevel,
		logFormat: logFormat,

		colpaliBaseURL:   e.Colpali.BaseURL,
		colpaliBatchSize: e.Colpali.BatchSize,
		colpaliTimeout:   secondsToDuration(e.Colpali.Timeout),

		qdrantHost:       e.Qdrant.Host,
		qdrantPort:       e.Qdrant.Port,
		qdrantUseTLS:     e.Qdrant.UseTLS,
		qdrantCollection: e.Qdrant.Collection,
		qdrantVectorSize: e.Qdrant.VectorSize,

		llmBaseURL: e.LLM.BaseURL,
		llmAPIKey:  e.LLM.APIKey,
		llmModel:   e.LLM.Model,
		llmTimeout: secondsToDuration(e.LLM.Timeout),

		convertBinary:  e.Convert.Binary,
		convertTimeout: secondsToDuration(e.Convert.Timeout),

		rasterDPI:   e.Raster.DPI,
		jpegQuality: e.Raster.JPEGQuality,

		searchLimit:   e.SearchLimit,
		searchTimeout: secondsToDuration(e.SearchTimeout),
		ragMaxImages:  e.RagMaxImages,
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Host returns the server host.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port.
func (c AppConfig) Port() int { return c.port }

// Addr returns the host:port address to listen on.
func (c AppConfig) Addr() string { return fmt.Sprintf("%s:%d", c.host, c.port) }

// DataDir returns the data directory path.
func (c AppConfig) DataDir() string { return c.dataDir }

// DBURL returns the database connection URL.
func (c AppConfig) DBURL() string { return c.dbURL }

// LogLevel returns the log verbosity level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log output format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// ColpaliBaseURL returns the embedding service base URL.
func (c AppConfig) ColpaliBaseURL() string { return c.colpaliBaseURL }

// ColpaliBatchSize returns the embedding batch size.
func (c AppConfig) ColpaliBatchSize() int { return c.colpaliBatchSize }

// ColpaliTimeout returns the embedding request timeout.
func (c AppConfig) ColpaliTimeout() time.Duration { return c.colpaliTimeout }

// QdrantHost returns the qdrant host.
func (c AppConfig) QdrantHost() string { return c.qdrantHost }

// QdrantPort returns the qdrant gRPC port.
func (c AppConfig) QdrantPort() int { return c.qdrantPort }

// QdrantUseTLS reports whether the qdrant connection uses TLS.
func (c AppConfig) QdrantUseTLS() bool { return c.qdrantUseTLS }

// QdrantCollection returns the collection name.
func (c AppConfig) QdrantCollection() string { return c.qdrantCollection }

// QdrantVectorSize returns the pinned vector size, or 0 to probe.
func (c AppConfig) QdrantVectorSize() int { return c.qdrantVectorSize }

// LLMBaseURL returns the chat completion base URL.
func (c AppConfig) LLMBaseURL() string { return c.llmBaseURL }

// LLMAPIKey returns the chat completion API key.
func (c AppConfig) LLMAPIKey() string { return c.llmAPIKey }

// LLMModel returns the chat completion model.
func (c AppConfig) LLMModel() string { return c.llmModel }

// LLMTimeout returns the chat completion request timeout.
func (c AppConfig) LLMTimeout() time.Duration { return c.llmTimeout }

// ConvertBinary returns the LibreOffice executable.
func (c AppConfig) ConvertBinary() string { return c.convertBinary }

// ConvertTimeout returns the conversion subprocess timeout.
func (c AppConfig) ConvertTimeout() time.Duration { return c.convertTimeout }

// RasterDPI returns the rasterization resolution.
func (c AppConfig) RasterDPI() int { return c.rasterDPI }

// JPEGQuality returns the page image encoding quality.
func (c AppConfig) JPEGQuality() int { return c.jpegQuality }

// SearchLimit returns the similarity search result cap.
func (c AppConfig) SearchLimit() int { return c.searchLimit }

// SearchTimeout returns the similarity search timeout.
func (c AppConfig) SearchTimeout() time.Duration { return c.searchTimeout }

// RagMaxImages returns the RAG image cap.
func (c AppConfig) RagMaxImages() int { return c.ragMaxImages }

// WithAddr returns a copy with the given host and port, keeping existing
// values where the arguments are zero.
func (c AppConfig) WithAddr(host string, port int) AppConfig {
	if host != "" {
		c.host = host
	}
	if port != 0 {
		c.port = port
	}
	return c
}

// EnsureDataDir creates the data directory if it does not exist.
func (c AppConfig) EnsureDataDir() error {
	return os.MkdirAll(c.dataDir, 0o755)
}
