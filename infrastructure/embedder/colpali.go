// Package embedder provides the HTTP client for the ColPali multimodal
// embedding service.
package embedder

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/docsight/docsight/internal/metrics"
)

// DefaultTimeout bounds one embedding request. Embedding a batch of page
// images can take a while on CPU-only deployments.
const DefaultTimeout = 5 * time.Minute

// Colpali is a client for the ColPali embedding server. It implements
// index.Embedder.
type Colpali struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewColpali creates a client. Zero timeout falls back to DefaultTimeout.
func NewColpali(baseURL string, timeout time.Duration, logger *slog.Logger) Colpali {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return Colpali{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type imagesRequest struct {
	Images []string `json:"images"`
}

type queriesRequest struct {
	Queries []string `json:"queries"`
}

type embeddingsResponse struct {
	Embeddings [][][]float32 `json:"embeddings"`
}

type interpretRequest struct {
	Query string `json:"query"`
	Image string `json:"image"`
}

type interpretResponse struct {
	Image string `json:"image"`
}

// EmbedImages returns one multi-vector embedding per image.
func (c Colpali) EmbedImages(ctx context.Context, images [][]byte) ([][][]float32, error) {
	encoded := make([]string, len(images))
	for i, img := range images {
		encoded[i] = base64.StdEncoding.EncodeToString(img)
	}

	var resp embeddingsResponse
	if err := c.post(ctx, "/process_images", imagesRequest{Images: encoded}, &resp); err != nil {
		return nil, fmt.Errorf("embed images: %w", err)
	}
	if len(resp.Embeddings) != len(images) {
		return nil, fmt.Errorf("embed images: got %d embeddings for %d images", len(resp.Embeddings), len(images))
	}
	return resp.Embeddings, nil
}

// EmbedQueries returns one multi-vector embedding per text query.
func (c Colpali) EmbedQueries(ctx context.Context, queries []string) ([][][]float32, error) {
	var resp embeddingsResponse
	if err := c.post(ctx, "/process_queries", queriesRequest{Queries: queries}, &resp); err != nil {
		return nil, fmt.Errorf("embed queries: %w", err)
	}
	if len(resp.Embeddings) != len(queries) {
		return nil, fmt.Errorf("embed queries: got %d embeddings for %d queries", len(resp.Embeddings), len(queries))
	}
	return resp.Embeddings, nil
}

// Interpret returns an annotated image showing how the query relates to
// the given image.
func (c Colpali) Interpret(ctx context.Context, query string, image []byte) ([]byte, error) {
	req := interpretRequest{
		Query: query,
		Image: base64.StdEncoding.EncodeToString(image),
	}

	var resp interpretResponse
	if err := c.post(ctx, "/interpret", req, &resp); err != nil {
		return nil, fmt.Errorf("interpret: %w", err)
	}

	annotated, err := base64.StdEncoding.DecodeString(resp.Image)
	if err != nil {
		return nil, fmt.Errorf("interpret: decode image: %w", err)
	}
	return annotated, nil
}

func (c Colpali) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	metrics.ObserveDependency("colpali", time.Since(start))
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
