// Package dto defines the JSON request and response bodies of the v1 API.
package dto

// Document is one row of a document listing.
type Document struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Mime      string `json:"mime"`
	CreatedAt int64  `json:"createdAt"`
	Indexed   bool   `json:"indexed"`
	NumPages  int64  `json:"numPages"`
	NumChunks int64  `json:"numChunks"`
}

// DocumentPreview is a document with its page ids in page order.
type DocumentPreview struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Pages []int64 `json:"pages"`
}

// UploadResponse acknowledges an accepted upload.
type UploadResponse struct {
	ID int64 `json:"id"`
}
