// Package server provides the HTTP API with upload, product, webhook
// and progress-stream endpoints.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/mfaulhaber/catalogd/internal/ingest"
	"github.com/mfaulhaber/catalogd/internal/metrics"
	"github.com/mfaulhaber/catalogd/internal/progress"
	"github.com/mfaulhaber/catalogd/internal/store"
	"github.com/mfaulhaber/catalogd/internal/task"
	"github.com/mfaulhaber/catalogd/internal/webhook"
)

// Deps carries everything the server needs wired in.
type Deps struct {
	Products    *store.ProductStore
	Webhooks    *store.WebhookStore
	Broadcaster *progress.Broadcaster
	Dispatcher  *webhook.Dispatcher
	Pipeline    *ingest.Pipeline
	Jobs        *task.Runner
	Metrics     *metrics.Collector
	UploadDir   string
	Logger      *slog.Logger
}

// Server dispatches API requests to the stores, the ingestion pipeline
// and the webhook dispatcher.
type Server struct {
	products    *store.ProductStore
	webhooks    *store.WebhookStore
	broadcaster *progress.Broadcaster
	dispatcher  *webhook.Dispatcher
	pipeline    *ingest.Pipeline
	jobs        *task.Runner
	stats       *metrics.Collector
	uploadDir   string
	logger      *slog.Logger
	upgrader    websocket.Upgrader
}

// New creates a server from its dependencies.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	stats := deps.Metrics
	if stats == nil {
		stats = metrics.NewCollector()
	}
	return &Server{
		products:    deps.Products,
		webhooks:    deps.Webhooks,
		broadcaster: deps.Broadcaster,
		dispatcher:  deps.Dispatcher,
		pipeline:    deps.Pipeline,
		jobs:        deps.Jobs,
		stats:       stats,
		uploadDir:   deps.UploadDir,
		logger:      logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for local dev
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Routes builds the route table and wraps it with request logging.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("POST /api/upload", s.handleUpload)

	mux.HandleFunc("GET /api/products", s.handleListProducts)
	mux.HandleFunc("POST /api/products", s.handleCreateProduct)
	mux.HandleFunc("DELETE /api/products/all", s.handleDeleteAllProducts)

	mux.HandleFunc("GET /api/webhooks/events", s.handleListEvents)
	mux.HandleFunc("POST /api/webhooks", s.handleCreateWebhook)
	mux.HandleFunc("GET /api/webhooks", s.handleListWebhooks)
	mux.HandleFunc("GET /api/webhooks/{id}", s.handleGetWebhook)
	mux.HandleFunc("PUT /api/webhooks/{id}", s.handleUpdateWebhook)
	mux.HandleFunc("DELETE /api/webhooks/{id}", s.handleDeleteWebhook)
	mux.HandleFunc("POST /api/webhooks/{id}/test", s.handleTestWebhook)

	mux.HandleFunc("POST /api/simulate/{event}", s.handleSimulateEvent)

	mux.HandleFunc("GET /ws/progress/{job_id}", s.handleProgressSocket)

	return LoggingMiddleware(s.logger)(mux)
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

// writeError writes a JSON error body of the form {"detail": "..."}.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
