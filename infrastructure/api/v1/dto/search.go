package dto

// SearchRequest asks for chunks matching a text query.
type SearchRequest struct {
	Query string `json:"query"`
}

// SearchDocument is one search hit in relevance order.
type SearchDocument struct {
	DocID     int64  `json:"docId"`
	Name      string `json:"name"`
	Mime      string `json:"mime"`
	CreatedAt int64  `json:"createdAt"`
	ChunkID   int64  `json:"chunkId"`
	PageID    int64  `json:"pageId"`
}

// SearchResponse holds the hits of one search.
type SearchResponse struct {
	Documents []SearchDocument `json:"documents"`
}

// RagRequest asks the model a question over the given chunks. Chunk ids
// come in relevance order.
type RagRequest struct {
	RequestID int64   `json:"requestId"`
	Query     string  `json:"query"`
	Chunks    []int64 `json:"chunks"`
}

// RagResponse carries the model's answer back with the request id.
type RagResponse struct {
	RequestID int64  `json:"requestId"`
	Answer    string `json:"answer"`
}
