package middleware

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/docsight/docsight/internal/metrics"
)

// Metrics returns a middleware that counts requests by route and status.
// The route pattern is used instead of the raw path to keep the label
// cardinality bounded.
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				path := r.URL.Path
				if rctx := chi.RouteContext(r.Context()); rctx != nil {
					if pattern := rctx.RoutePattern(); pattern != "" {
						path = pattern
					}
				}
				metrics.ObserveHTTPRequest(path, strconv.Itoa(ww.Status()))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
