// Package document provides the document aggregate: an uploaded file, its
// original content, its rasterized pages, and the retrievable chunks cut
// from those pages.
package document

import "time"

// Document is the aggregate root for one uploaded file.
//
// A document is created unindexed; the indexing sweep flips the flag only
// after every chunk has been written to the vector backend.
type Document struct {
	id        int64
	name      string
	mime      MimeType
	createdAt int64
	indexed   bool
}

// NewDocument creates an unindexed Document stamped with the current time
// in epoch milliseconds.
func NewDocument(name string, mime MimeType) Document {
	return Document{
		name:      name,
		mime:      mime,
		createdAt: time.Now().UnixMilli(),
	}
}

// ReconstructDocument rebuilds a Document from persistence.
func ReconstructDocument(id int64, name string, mime MimeType, createdAt int64, indexed bool) Document {
	return Document{
		id:        id,
		name:      name,
		mime:      mime,
		createdAt: createdAt,
		indexed:   indexed,
	}
}

// ID returns the document id.
func (d Document) ID() int64 { return d.id }

// Name returns the display name.
func (d Document) Name() string { return d.name }

// Mime returns the declared MIME type.
func (d Document) Mime() MimeType { return d.mime }

// CreatedAt returns the creation timestamp in epoch milliseconds.
func (d Document) CreatedAt() int64 { return d.createdAt }

// Indexed reports whether all chunks reached the vector backend.
func (d Document) Indexed() bool { return d.indexed }

// MarkIndexed returns a copy with the indexed flag set.
func (d Document) MarkIndexed() Document {
	d.indexed = true
	return d
}

// Content is the original uploaded bytes, owned 1:1 by a Document.
type Content struct {
	id    int64
	docID int64
	data  []byte
}

// NewContent creates Content for a document being assembled.
func NewContent(data []byte) Content {
	return Content{data: data}
}

// ReconstructContent rebuilds Content from persistence.
func ReconstructContent(id, docID int64, data []byte) Content {
	return Content{id: id, docID: docID, data: data}
}

// ID returns the content row id.
func (c Content) ID() int64 { return c.id }

// DocumentID returns the owning document id.
func (c Content) DocumentID() int64 { return c.docID }

// Data returns the original uploaded bytes.
func (c Content) Data() []byte { return c.data }

// Page is one rasterized page image. Number is 1-based and unique within a
// document; ordering by it is the canonical page order.
type Page struct {
	id     int64
	docID  int64
	number int
	image  []byte
}

// NewPage creates a Page for a document being assembled.
func NewPage(number int, image []byte) Page {
	return Page{number: number, image: image}
}

// ReconstructPage rebuilds a Page from persistence.
func ReconstructPage(id, docID int64, number int, image []byte) Page {
	return Page{id: id, docID: docID, number: number, image: image}
}

// ID returns the page id.
func (p Page) ID() int64 { return p.id }

// DocumentID returns the owning document id.
func (p Page) DocumentID() int64 { return p.docID }

// Number returns the 1-based page number.
func (p Page) Number() int { return p.number }

// Image returns the page image bytes.
func (p Page) Image() []byte { return p.image }

// Chunk is the smallest retrievable unit. Its primary key doubles as the
// point id inside the vector index; the two must always agree.
type Chunk struct {
	id     int64
	docID  int64
	pageID int64
	image  []byte
}

// ReconstructChunk rebuilds a Chunk from persistence.
func ReconstructChunk(id, docID, pageID int64, image []byte) Chunk {
	return Chunk{id: id, docID: docID, pageID: pageID, image: image}
}

// ID returns the chunk id.
func (c Chunk) ID() int64 { return c.id }

// DocumentID returns the owning document id.
func (c Chunk) DocumentID() int64 { return c.docID }

// PageID returns the owning page id.
func (c Chunk) PageID() int64 { return c.pageID }

// Image returns the chunk image bytes.
func (c Chunk) Image() []byte { return c.image }

// PageChunk pairs a chunk image with the page it was cut from. Chunkers may
// emit zero, one, or many chunks per page; each stays traceable to its page.
type PageChunk struct {
	Page  Page
	Image []byte
}
