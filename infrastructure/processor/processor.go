// Package processor turns uploaded documents into page images and chunks.
package processor

import (
	"context"
	"fmt"

	"github.com/docsight/docsight/domain/document"
)

// PDFConverter converts office formats to PDF bytes.
type PDFConverter interface {
	ToPDF(ctx context.Context, source []byte, format string) ([]byte, error)
}

// Rasterizer renders PDF bytes into ordered page images.
type Rasterizer interface {
	Pages(ctx context.Context, pdf []byte) ([][]byte, error)
}

// Default implements document.Processor: PDFs are rasterized directly,
// office formats are converted to PDF first, and raster images become a
// single page holding the original bytes unchanged.
type Default struct {
	converter  PDFConverter
	rasterizer Rasterizer
}

// NewDefault creates the default processor.
func NewDefault(converter PDFConverter, rasterizer Rasterizer) Default {
	return Default{converter: converter, rasterizer: rasterizer}
}

// ExtractPages returns the ordered page images for a document.
func (p Default) ExtractPages(ctx context.Context, doc document.Document, content document.Content) ([][]byte, error) {
	mime := doc.Mime()

	switch {
	case mime == document.MimePDF:
		return p.rasterizer.Pages(ctx, content.Data())

	case mime.IsImage():
		return [][]byte{content.Data()}, nil

	default:
		format, ok := mime.ConvertFormat()
		if !ok {
			return nil, fmt.Errorf("%w: %s", document.ErrUnsupportedFormat, mime)
		}
		pdf, err := p.converter.ToPDF(ctx, content.Data(), format)
		if err != nil {
			return nil, fmt.Errorf("convert %s to pdf: %w", format, err)
		}
		return p.rasterizer.Pages(ctx, pdf)
	}
}

// ChunkPages cuts pages into chunks. The current chunker is identity — one
// chunk per page, image equal to the page image — but callers must not
// rely on that.
func (p Default) ChunkPages(pages []document.Page) ([]document.PageChunk, error) {
	chunks := make([]document.PageChunk, 0, len(pages))
	for _, page := range pages {
		chunks = append(chunks, document.PageChunk{Page: page, Image: page.Image()})
	}
	return chunks, nil
}
