package persistence

import (
	"github.com/docsight/docsight/domain/document"
)

// DocumentMapper converts between document.Document and DocumentModel.
type DocumentMapper struct{}

// ToDomain converts a model to a domain document.
func (DocumentMapper) ToDomain(m DocumentModel) document.Document {
	return document.ReconstructDocument(m.ID, m.Name, document.MimeType(m.Mime), m.CreatedAt, m.Indexed)
}

// ToModel converts a domain document to a model.
func (DocumentMapper) ToModel(d document.Document) DocumentModel {
	return DocumentModel{
		ID:        d.ID(),
		Name:      d.Name(),
		Mime:      string(d.Mime()),
		CreatedAt: d.CreatedAt(),
		Indexed:   d.Indexed(),
	}
}

// ContentMapper converts between document.Content and ContentModel.
type ContentMapper struct{}

// ToDomain converts a model to domain content.
func (ContentMapper) ToDomain(m ContentModel) document.Content {
	return document.ReconstructContent(m.ID, m.DocID, m.Content)
}

// PageMapper converts between document.Page and PageModel.
type PageMapper struct{}

// ToDomain converts a model to a domain page.
func (PageMapper) ToDomain(m PageModel) document.Page {
	return document.ReconstructPage(m.ID, m.DocID, m.Number, m.Image)
}

// ChunkMapper converts between document.Chunk and ChunkModel.
type ChunkMapper struct{}

// ToDomain converts a model to a domain chunk.
func (ChunkMapper) ToDomain(m ChunkModel) document.Chunk {
	return document.ReconstructChunk(m.ID, m.DocID, m.PageID, m.Image)
}
