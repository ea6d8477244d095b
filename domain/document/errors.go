package document

import "errors"

// ErrUnsupportedFormat indicates a MIME type outside the supported
// enumeration; rejected before any processing starts.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// ErrRasterizationFailed indicates the PDF-to-image step failed.
var ErrRasterizationFailed = errors.New("page rasterization failed")

// ErrNotFound indicates a requested document, page, or chunk does not exist.
var ErrNotFound = errors.New("entity not found")

// ErrNoChunks indicates a RAG request with zero chunk ids.
var ErrNoChunks = errors.New("no chunks provided")
