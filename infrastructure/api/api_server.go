package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/docsight/docsight"
	v1 "github.com/docsight/docsight/infrastructure/api/v1"
	"github.com/docsight/docsight/internal/metrics"
)

// apiVersion is reported by the /version endpoint.
const apiVersion = "1.0.0"

// APIServer provides the HTTP API backed by a docsight Client.
type APIServer struct {
	client *docsight.Client
	server Server
	logger *slog.Logger
}

// NewAPIServer creates an APIServer wired to the given docsight Client.
func NewAPIServer(client *docsight.Client, addr string) *APIServer {
	a := &APIServer{
		client: client,
		server: NewServer(addr, client.Logger()),
		logger: client.Logger(),
	}
	a.mountRoutes()
	return a
}

func (a *APIServer) mountRoutes() {
	router := a.server.Router()

	documents := v1.NewDocumentsRouter(a.client)
	search := v1.NewSearchRouter(a.client)

	router.Route("/api/v1/documents", func(r chi.Router) {
		r.Post("/search", search.Search)
		r.Post("/rag", search.Rag)
		r.Mount("/", documents.Routes())
	})

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/version", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"version":"` + apiVersion + `"}`))
	})
	router.Handle("/metrics", metrics.Handler())
}

// Router returns the underlying chi router, for tests.
func (a *APIServer) Router() http.Handler {
	return a.server.Router()
}

// Start starts the HTTP server and blocks until it stops.
func (a *APIServer) Start() error {
	return a.server.Start()
}

// Shutdown gracefully shuts down the server.
func (a *APIServer) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}
