// Package config provides application configuration.
package config

import (
	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
// Nested structs use underscore delimiter (e.g., COLPALI_BASE_URL).
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the server port to listen on.
	// Env: PORT (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// DataDir is the data directory path.
	// Env: DATA_DIR
	// Default: ~/.docsight
	DataDir string `envconfig:"DATA_DIR"`

	// DBURL is the database connection URL.
	// Env: DB_URL
	// Default: sqlite:///{data_dir}/docsight.db
	DBURL string `envconfig:"DB_URL"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// Colpali configures the multimodal embedding service.
	Colpali ColpaliEnv `envconfig:"COLPALI"`

	// Qdrant configures the vector search backend.
	Qdrant QdrantEnv `envconfig:"QDRANT"`

	// LLM configures the chat completion service.
	LLM LLMEnv `envconfig:"LLM"`

	// Convert configures the office-to-PDF converter.
	Convert ConvertEnv `envconfig:"CONVERT"`

	// Raster configures PDF page rasterization.
	Raster RasterEnv `envconfig:"RASTER"`

	// SearchLimit is the maximum number of similarity search hits.
	// Env: SEARCH_LIMIT (default: 10)
	SearchLimit int `envconfig:"SEARCH_LIMIT" default:"10"`

	// SearchTimeout is the server-side similarity search timeout in seconds.
	// Env: SEARCH_TIMEOUT (default: 60)
	SearchTimeout float64 `envconfig:"SEARCH_TIMEOUT" default:"60"`

	// RagMaxImages caps the number of chunk images forwarded to the LLM.
	// Env: RAG_MAX_IMAGES (default: 2)
	RagMaxImages int `envconfig:"RAG_MAX_IMAGES" default:"2"`
}

// ColpaliEnv holds environment configuration for the embedding service.
type ColpaliEnv struct {
	// BaseURL is the base URL of the ColPali HTTP service.
	// Env: COLPALI_BASE_URL
	BaseURL string `envconfig:"BASE_URL"`

	// BatchSize is the number of chunk images per embedding request.
	// Env: COLPALI_BATCH_SIZE (default: 4)
	BatchSize int `envconfig:"BATCH_SIZE" default:"4"`

	// Timeout is the request timeout in seconds.
	// Env: COLPALI_TIMEOUT (default: 300)
	Timeout float64 `envconfig:"TIMEOUT" default:"300"`
}

// QdrantEnv holds environment configuration for the vector backend.
type QdrantEnv struct {
	// Host is the qdrant host.
	// Env: QDRANT_HOST (default: localhost)
	Host string `envconfig:"HOST" default:"localhost"`

	// Port is the qdrant gRPC port.
	// Env: QDRANT_PORT (default: 6334)
	Port int `envconfig:"PORT" default:"6334"`

	// UseTLS enables TLS on the qdrant connection.
	// Env: QDRANT_USE_TLS (default: false)
	UseTLS bool `envconfig:"USE_TLS" default:"false"`

	// Collection is the collection name for chunk embeddings.
	// Env: QDRANT_COLLECTION (default: colpali)
	Collection string `envconfig:"COLLECTION" default:"colpali"`

	// VectorSize pins the embedding dimensionality. When zero, the
	// dimensionality is probed from the embedding service the first time
	// the collection is created.
	// Env: QDRANT_VECTOR_SIZE (default: 0)
	VectorSize int `envconfig:"VECTOR_SIZE" default:"0"`
}

// LLMEnv holds environment configuration for the chat completion service.
type LLMEnv struct {
	// BaseURL is an OpenAI-compatible base URL.
	// Env: LLM_BASE_URL
	BaseURL string `envconfig:"BASE_URL"`

	// APIKey is the API key for authentication.
	// Env: LLM_API_KEY
	APIKey string `envconfig:"API_KEY"`

	// Model is the chat completion model identifier.
	// Env: LLM_MODEL
	Model string `envconfig:"MODEL"`

	// Timeout is the request timeout in seconds.
	// Env: LLM_TIMEOUT (default: 120)
	Timeout float64 `envconfig:"TIMEOUT" default:"120"`
}

// ConvertEnv holds environment configuration for document conversion.
type ConvertEnv struct {
	// Binary is the LibreOffice executable name or path.
	// Env: CONVERT_BINARY (default: libreoffice)
	Binary string `envconfig:"BINARY" default:"libreoffice"`

	// Timeout is the conversion subprocess timeout in seconds.
	// Env: CONVERT_TIMEOUT (default: 30)
	Timeout float64 `envconfig:"TIMEOUT" default:"30"`
}

// RasterEnv holds environment configuration for rasterization.
type RasterEnv struct {
	// DPI is the rendering resolution in dots per inch.
	// Env: RASTER_DPI (default: 100)
	DPI int `envconfig:"DPI" default:"100"`

	// JPEGQuality is the re-encoding quality (1-100).
	// Env: RASTER_JPEG_QUALITY (default: 80)
	JPEGQuality int `envconfig:"JPEG_QUALITY" default:"80"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}
