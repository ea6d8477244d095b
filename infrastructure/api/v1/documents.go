// Package v1 implements the v1 REST endpoints.
package v1

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/docsight/docsight"
	"github.com/docsight/docsight/domain/document"
	"github.com/docsight/docsight/infrastructure/api/middleware"
	"github.com/docsight/docsight/infrastructure/api/v1/dto"
)

// maxUploadMemory bounds how much of a multipart upload stays in memory.
const maxUploadMemory = 32 << 20

// DocumentsRouter handles document API endpoints.
type DocumentsRouter struct {
	client *docsight.Client
	logger *slog.Logger
}

// NewDocumentsRouter creates a new DocumentsRouter.
func NewDocumentsRouter(client *docsight.Client) *DocumentsRouter {
	return &DocumentsRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for document endpoints.
func (r *DocumentsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.List)
	router.Post("/upload", r.Upload)
	router.Get("/page/{id}/image", r.PageImage)
	router.Get("/chunk/{id}/image", r.ChunkImage)
	router.Get("/chunk/{id}/interpret", r.ChunkInterpret)
	router.Delete("/{id}", r.Delete)
	router.Get("/{id}/preview", r.Preview)
	router.Get("/{id}/download", r.Download)

	return router
}

// Upload handles POST /api/v1/documents/upload. The document is persisted
// synchronously; indexing runs in a detached background sweep so the
// response does not wait on the embedding service.
func (r *DocumentsRouter) Upload(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	if err := req.ParseMultipartForm(maxUploadMemory); err != nil {
		middleware.WriteError(w, req, middleware.BadRequest("parse multipart form: %v", err), r.logger)
		return
	}

	file, header, err := req.FormFile("file")
	if err != nil {
		middleware.WriteError(w, req, middleware.BadRequest("file not provided"), r.logger)
		return
	}
	defer func() { _ = file.Close() }()

	if header.Filename == "" {
		middleware.WriteError(w, req, middleware.BadRequest("name not provided"), r.logger)
		return
	}
	mime := header.Header.Get("Content-Type")
	if mime == "" {
		middleware.WriteError(w, req, middleware.BadRequest("unknown content type"), r.logger)
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	doc, err := r.client.Documents.Create(ctx, header.Filename, document.MimeType(mime), content)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	// The sweep outlives the request on purpose.
	go func() {
		if err := r.client.Indexing.IndexPending(context.Background()); err != nil {
			r.logger.Error("background indexing sweep failed", "error", err)
		}
	}()

	middleware.WriteJSON(w, http.StatusOK, dto.UploadResponse{ID: doc.ID()})
}

// List handles GET /api/v1/documents. The unfiltered total comes back in
// the X-Total header.
func (r *DocumentsRouter) List(w http.ResponseWriter, req *http.Request) {
	filter, err := parseListFilter(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	result, err := r.client.Documents.List(req.Context(), filter)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	docs := make([]dto.Document, len(result.Items))
	for i, info := range result.Items {
		docs[i] = dto.Document{
			ID:        info.Document.ID(),
			Name:      info.Document.Name(),
			Mime:      string(info.Document.Mime()),
			CreatedAt: info.Document.CreatedAt(),
			Indexed:   info.Document.Indexed(),
			NumPages:  info.NumPages,
			NumChunks: info.NumChunks,
		}
	}

	w.Header().Set("X-Total", strconv.FormatInt(result.Total, 10))
	middleware.WriteJSON(w, http.StatusOK, docs)
}

// Delete handles DELETE /api/v1/documents/{id}.
func (r *DocumentsRouter) Delete(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	if err := r.client.Documents.Delete(req.Context(), id); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Preview handles GET /api/v1/documents/{id}/preview.
func (r *DocumentsRouter) Preview(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	preview, err := r.client.Documents.Preview(req.Context(), id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.DocumentPreview{
		ID:    preview.ID,
		Name:  preview.Name,
		Pages: preview.PageIDs,
	})
}

// Download handles GET /api/v1/documents/{id}/download. Serves the original
// upload as an attachment with an RFC 5987 encoded filename.
func (r *DocumentsRouter) Download(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	info, err := r.client.Documents.Download(req.Context(), id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	w.Header().Set("Content-Type", string(info.Mime))
	w.Header().Set("Content-Disposition", `attachment; filename*=UTF-8''`+url.PathEscape(info.Name))
	_, _ = w.Write(info.Content)
}

// PageImage handles GET /api/v1/documents/page/{id}/image.
func (r *DocumentsRouter) PageImage(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	image, err := r.client.Documents.PageImage(req.Context(), id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	writeJPEG(w, image)
}

// ChunkImage handles GET /api/v1/documents/chunk/{id}/image.
func (r *DocumentsRouter) ChunkImage(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	image, err := r.client.Documents.ChunkImage(req.Context(), id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	writeJPEG(w, image)
}

// ChunkInterpret handles GET /api/v1/documents/chunk/{id}/interpret?q=.
// Returns the chunk image annotated with the query's attention.
func (r *DocumentsRouter) ChunkInterpret(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	query := req.URL.Query().Get("q")
	if query == "" {
		middleware.WriteError(w, req, middleware.BadRequest("query parameter q required"), r.logger)
		return
	}

	image, err := r.client.Search.Interpret(req.Context(), id, query)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	writeJPEG(w, image)
}

func writeJPEG(w http.ResponseWriter, image []byte) {
	w.Header().Set("Content-Type", "image/jpeg")
	_, _ = w.Write(image)
}

func pathID(req *http.Request) (int64, error) {
	raw := chi.URLParam(req, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, middleware.BadRequest("invalid id %q", raw)
	}
	return id, nil
}

// parseListFilter reads pagination, sorting, and search parameters:
// page/perPage (1-based), sortBy as "column,asc|desc", search.
func parseListFilter(req *http.Request) (document.ListFilter, error) {
	params := req.URL.Query()
	var filter document.ListFilter

	if search := params.Get("search"); search != "" {
		if len(search) > 255 {
			search = search[:255]
		}
		filter.Search = search
	}

	if raw := params.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return filter, middleware.BadRequest("invalid page %q", raw)
		}
		perPage, err := strconv.Atoi(params.Get("perPage"))
		if err != nil || perPage < 1 {
			return filter, middleware.BadRequest("invalid perPage %q", params.Get("perPage"))
		}
		filter.Limit = perPage
		filter.Offset = (page - 1) * perPage
	}

	if raw := params.Get("sortBy"); raw != "" {
		key, order, found := strings.Cut(raw, ",")
		if !found || (order != string(document.SortAsc) && order != string(document.SortDesc)) {
			return filter, middleware.BadRequest("invalid sortBy %q", raw)
		}
		filter.SortBy = camelToSnake(key)
		filter.Order = document.SortOrder(order)
	}

	return filter, nil
}

func camelToSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
