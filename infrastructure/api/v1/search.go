package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/docsight/docsight"
	"github.com/docsight/docsight/infrastructure/api/middleware"
	"github.com/docsight/docsight/infrastructure/api/v1/dto"
)

// SearchRouter handles search and RAG endpoints.
type SearchRouter struct {
	client *docsight.Client
	logger *slog.Logger
}

// NewSearchRouter creates a new SearchRouter.
func NewSearchRouter(client *docsight.Client) *SearchRouter {
	return &SearchRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for search endpoints.
func (r *SearchRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/search", r.Search)
	router.Post("/rag", r.Rag)

	return router
}

// Search handles POST /api/v1/documents/search. Hits come back in the
// index's relevance order.
func (r *SearchRouter) Search(w http.ResponseWriter, req *http.Request) {
	var body dto.SearchRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, middleware.BadRequest("decode body: %v", err), r.logger)
		return
	}
	if body.Query == "" {
		middleware.WriteError(w, req, middleware.BadRequest("query required"), r.logger)
		return
	}

	results, err := r.client.Search.Find(req.Context(), body.Query)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	docs := make([]dto.SearchDocument, len(results))
	for i, res := range results {
		docs[i] = dto.SearchDocument{
			DocID:     res.DocID,
			Name:      res.Name,
			Mime:      string(res.Mime),
			CreatedAt: res.CreatedAt,
			ChunkID:   res.ChunkID,
			PageID:    res.PageID,
		}
	}

	middleware.WriteJSON(w, http.StatusOK, dto.SearchResponse{Documents: docs})
}

// Rag handles POST /api/v1/documents/rag.
func (r *SearchRouter) Rag(w http.ResponseWriter, req *http.Request) {
	var body dto.RagRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, middleware.BadRequest("decode body: %v", err), r.logger)
		return
	}

	answer, err := r.client.Search.Answer(req.Context(), body.Query, body.Chunks)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.RagResponse{
		RequestID: body.RequestID,
		Answer:    answer,
	})
}
