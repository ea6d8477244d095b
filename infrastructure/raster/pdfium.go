// Package raster renders PDF bytes into ordered page images.
package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"sync"
	"time"

	"github.com/docsight/docsight/domain/document"
	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/klippa-app/go-pdfium/webassembly"
)

// Rendering defaults. A fixed DPI keeps page images deterministic and
// reproducible; fixed JPEG quality keeps storage size stable.
const (
	DefaultDPI         = 100
	DefaultJPEGQuality = 80
)

// Pdfium rasterizes PDFs with an embedded pdfium (WebAssembly) runtime.
// The underlying instance is single-threaded; a mutex serializes renders.
type Pdfium struct {
	pool     pdfium.Pool
	instance pdfium.Pdfium
	dpi      int
	quality  int
	logger   *slog.Logger
	mu       sync.Mutex
}

// NewPdfium initializes the pdfium runtime. Zero dpi or quality fall back
// to the defaults.
func NewPdfium(dpi, quality int, logger *slog.Logger) (*Pdfium, error) {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	if quality <= 0 {
		quality = DefaultJPEGQuality
	}
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  1,
		MaxTotal: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("init pdfium runtime: %w", err)
	}

	instance, err := pool.GetInstance(30 * time.Second)
	if err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("acquire pdfium instance: %w", err)
	}

	return &Pdfium{
		pool:     pool,
		instance: instance,
		dpi:      dpi,
		quality:  quality,
		logger:   logger,
	}, nil
}

// Pages renders every page of the PDF at the configured DPI and re-encodes
// each as JPEG, in page order.
func (r *Pdfium) Pages(ctx context.Context, pdf []byte) ([][]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.instance.OpenDocument(&requests.OpenDocument{File: &pdf})
	if err != nil {
		return nil, fmt.Errorf("%w: open document: %v", document.ErrRasterizationFailed, err)
	}
	defer func() {
		_, _ = r.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{Document: doc.Document})
	}()

	countResp, err := r.instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{Document: doc.Document})
	if err != nil {
		return nil, fmt.Errorf("%w: page count: %v", document.ErrRasterizationFailed, err)
	}

	start := time.Now()
	pages := make([][]byte, 0, countResp.PageCount)
	for i := 0; i < countResp.PageCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rendered, err := r.instance.RenderPageInDPI(&requests.RenderPageInDPI{
			DPI: r.dpi,
			Page: requests.Page{
				ByIndex: &requests.PageByIndex{
					Document: doc.Document,
					Index:    i,
				},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("%w: render page %d: %v", document.ErrRasterizationFailed, i+1, err)
		}

		encoded, err := encodeJPEG(rendered.Result.Image, r.quality)
		rendered.Cleanup()
		if err != nil {
			return nil, fmt.Errorf("%w: encode page %d: %v", document.ErrRasterizationFailed, i+1, err)
		}
		pages = append(pages, encoded)
	}

	r.logger.Debug("rasterized pdf",
		"pages", len(pages),
		"dpi", r.dpi,
		"duration", time.Since(start),
	)
	return pages, nil
}

// Close releases the pdfium instance and runtime.
func (r *Pdfium) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.instance.Close(); err != nil {
		return err
	}
	return r.pool.Close()
}

// encodeJPEG re-encodes a rendered page with fixed quality.
func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
