// Package metrics exposes Prometheus instrumentation for the pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "docsight_http_requests_total",
	Help: "Total number of HTTP requests labelled by path and status",
}, []string{"path", "status"})

var documentsCreated = promauto.NewCounter(prometheus.CounterOpts{
	Name: "docsight_documents_created_total",
	Help: "Number of documents ingested",
})

var documentsIndexed = promauto.NewCounter(prometheus.CounterOpts{
	Name: "docsight_documents_indexed_total",
	Help: "Number of documents successfully indexed",
})

var indexFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "docsight_index_failures_total",
	Help: "Number of per-document indexing failures",
})

var chunksUpserted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "docsight_chunks_upserted_total",
	Help: "Number of chunk vectors upserted into the vector backend",
})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "docsight_dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10, 30, 60},
}, []string{"service"})

// ObserveHTTPRequest records one handled HTTP request.
func ObserveHTTPRequest(path string, status string) {
	httpRequestsTotal.WithLabelValues(path, status).Inc()
}

// DocumentCreated records one ingested document.
func DocumentCreated() { documentsCreated.Inc() }

// DocumentIndexed records one successfully indexed document.
func DocumentIndexed() { documentsIndexed.Inc() }

// IndexFailed records one failed per-document indexing attempt.
func IndexFailed() { indexFailures.Inc() }

// ChunksUpserted records n chunk vectors written to the vector backend.
func ChunksUpserted(n int) { chunksUpserted.Add(float64(n)) }

// ObserveDependency records one external service call.
func ObserveDependency(service string, elapsed time.Duration) {
	dependencyLatency.WithLabelValues(service).Observe(elapsed.Seconds())
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
