package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mfaulhaber/catalogd/internal/metrics"
	"github.com/mfaulhaber/catalogd/internal/models"
)

// allowedContentTypes are the accepted upload part content types.
// application/octet-stream is included because browsers commonly send
// it for .gz files.
var allowedContentTypes = map[string]struct{}{
	"application/gzip":         {},
	"application/x-gzip":       {},
	"application/octet-stream": {},
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stats.Snapshot())
}

// handleUpload accepts a gzip-compressed CSV, stages it to a temp file
// and schedules background processing. It responds 202 with the job id
// before any row is read.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "A file upload is required in the 'file' field")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if _, ok := allowedContentTypes[contentType]; !ok {
		s.logger.Warn("upload rejected: invalid content type", "content_type", contentType, "filename", header.Filename)
		writeError(w, http.StatusBadRequest, "Upload must be gzip-compressed CSV. Supported content types: application/gzip, application/x-gzip, application/octet-stream")
		return
	}

	if header.Filename == "" {
		s.logger.Warn("upload rejected: missing filename")
		writeError(w, http.StatusBadRequest, "Filename is required")
		return
	}

	jobID := strings.ReplaceAll(uuid.NewString(), "-", "")
	s.logger.Info("starting upload job", "job_id", jobID, "filename", header.Filename)

	path, err := s.stageUpload(file)
	if err != nil {
		s.logger.Error("failed to save uploaded file", "job_id", jobID, "filename", header.Filename, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save uploaded file")
		return
	}
	s.logger.Info("file saved to temporary location", "job_id", jobID, "path", path)

	s.jobs.Go("ingest-"+jobID, func(ctx context.Context) {
		start := time.Now()
		s.pipeline.Run(ctx, jobID, path)
		s.stats.RecordTiming(metrics.OpIngestJob, time.Since(start))
	})

	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID})
}

// stageUpload copies the request body part to a temp file in the
// configured upload directory.
func (s *Server) stageUpload(src io.Reader) (string, error) {
	tmp, err := os.CreateTemp(s.uploadDir, "upload-*.csv.gz")
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 50)
	search := r.URL.Query().Get("search")

	start := time.Now()
	products, err := s.products.List(r.Context(), offset, limit, search)
	s.stats.RecordTiming(metrics.OpProductQuery, time.Since(start))
	if err != nil {
		s.logger.Error("failed to list products", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve products")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// handleCreateProduct upserts a single product with the same
// normalization the bulk pipeline applies.
func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SKU         string  `json:"sku"`
		Name        string  `json:"name"`
		Description *string `json:"description"`
		IsActive    *bool   `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sku := strings.ToLower(strings.TrimSpace(req.SKU))
	if sku == "" {
		writeError(w, http.StatusBadRequest, "SKU cannot be empty")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "Product name cannot be empty")
		return
	}

	product := models.Product{
		SKU:      sku,
		Name:     name,
		IsActive: true,
	}
	if req.Description != nil {
		if desc := strings.TrimSpace(*req.Description); desc != "" {
			product.Description = &desc
		}
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := s.products.Upsert(r.Context(), product); err != nil {
		s.logger.Error("failed to create product", "sku", sku, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create product")
		return
	}

	s.logger.Info("created product", "sku", sku)
	writeJSON(w, http.StatusCreated, product)
}

func (s *Server) handleDeleteAllProducts(w http.ResponseWriter, r *http.Request) {
	if err := s.products.DeleteAll(r.Context()); err != nil {
		s.logger.Error("failed to delete products", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete products")
		return
	}
	s.logger.Info("deleted all products")
	w.WriteHeader(http.StatusNoContent)
}

// queryInt parses an integer query parameter, falling back to def on
// absence or garbage.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}
