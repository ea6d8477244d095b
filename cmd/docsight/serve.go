package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/docsight/docsight"
	"github.com/docsight/docsight/infrastructure/api"
	"github.com/docsight/docsight/infrastructure/vector"
	"github.com/docsight/docsight/internal/log"
)

const shutdownTimeout = 15 * time.Second

func serveCmd() *cobra.Command {
	var (
		envFile string
		host    string
		port    int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  HOST                     Server host to bind to (default: 0.0.0.0)
  PORT                     Server port to listen on (default: 8080)
  DATA_DIR                 Data directory (default: ~/.docsight)
  DB_URL                   Database URL (default: sqlite://{data_dir}/docsight.db)
  LOG_LEVEL                Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT               Log format: pretty, json (default: pretty)

  COLPALI_BASE_URL         ColPali embedding server URL (required)
  COLPALI_BATCH_SIZE       Chunks embedded per request (default: 4)
  COLPALI_TIMEOUT          Embedding request timeout in seconds (default: 300)

  QDRANT_HOST              Qdrant host (default: localhost)
  QDRANT_PORT              Qdrant gRPC port (default: 6334)
  QDRANT_USE_TLS           Connect with TLS (default: false)
  QDRANT_COLLECTION        Collection name (default: colpali)
  QDRANT_VECTOR_SIZE       Vector size; 0 probes the embedder (default: 0)

  LLM_BASE_URL             OpenAI-compatible endpoint (empty: public API)
  LLM_API_KEY              API key for the answering model
  LLM_MODEL                Vision chat model (required)
  LLM_TIMEOUT              Completion timeout in seconds (default: 120)

  CONVERT_BINARY           Office converter binary (default: libreoffice)
  CONVERT_TIMEOUT          Conversion timeout in seconds (default: 30)
  RASTER_DPI               Page render DPI (default: 100)
  RASTER_JPEG_QUALITY      Page JPEG quality (default: 80)

  SEARCH_LIMIT             Hits per search (default: 10)
  SEARCH_TIMEOUT           Vector query timeout in seconds (default: 60)
  RAG_MAX_IMAGES           Chunk images per answer request (default: 2)`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe(envFile, host, port)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8080)")

	return cmd
}

func runServe(envFile, host string, port int) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}
	if host != "" || port != 0 {
		h, p := cfg.Host(), cfg.Port()
		if host != "" {
			h = host
		}
		if port != 0 {
			p = port
		}
		cfg = cfg.WithAddr(h, p)
	}

	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	logger := log.New(cfg)

	client, err := docsight.New(
		docsight.WithDatabaseURL(cfg.DBURL()),
		docsight.WithColpali(cfg.ColpaliBaseURL(), cfg.ColpaliTimeout()),
		docsight.WithQdrant(cfg.QdrantHost(), cfg.QdrantPort(), cfg.QdrantUseTLS(), vector.Config{
			Collection:    cfg.QdrantCollection(),
			BatchSize:     cfg.ColpaliBatchSize(),
			VectorSize:    uint64(cfg.QdrantVectorSize()),
			SearchLimit:   uint64(cfg.SearchLimit()),
			SearchTimeout: cfg.SearchTimeout(),
		}),
		docsight.WithOpenAI(cfg.LLMBaseURL(), cfg.LLMAPIKey(), cfg.LLMModel(), cfg.LLMTimeout()),
		docsight.WithLibreOffice(cfg.ConvertBinary(), cfg.ConvertTimeout()),
		docsight.WithRaster(cfg.RasterDPI(), cfg.JPEGQuality()),
		docsight.WithMaxAnswerImages(cfg.RagMaxImages()),
		docsight.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("close client", "error", err)
		}
	}()

	server := api.NewAPIServer(client, cfg.Addr())

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("received signal, shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
