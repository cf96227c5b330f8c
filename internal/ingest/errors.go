// Package ingest implements the streaming gzip/CSV decode, row
// normalization, and batched upsert pipeline for catalog uploads.
package ingest

import (
	"errors"
)

// Sentinel errors for the ingestion pipeline. Use errors.Is() to check
// for these in calling code. Each one is job-fatal: the pipeline stops
// and emits exactly one error progress message.
var (
	// ErrInputFormat indicates the upload is not a valid gzip stream or
	// is otherwise undecodable.
	ErrInputFormat = errors.New("invalid input format")

	// ErrSchema indicates the CSV header is missing required columns.
	ErrSchema = errors.New("missing required columns")

	// ErrParse indicates a structurally malformed CSV row (wrong field
	// count, unterminated quoting). Rows yielded before it remain valid.
	ErrParse = errors.New("malformed row")

	// ErrPersistence indicates a batch write failure. Batches committed
	// before it stay persisted; there is no job-level rollback.
	ErrPersistence = errors.New("persistence failure")

	// ErrNotFound indicates the uploaded artifact is gone.
	ErrNotFound = errors.New("artifact not found")
)

// UserMessage maps a pipeline error to the sanitized text pushed to
// observers. Internal diagnostic detail stays in the operational log.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrSchema):
		return "CSV file is missing required columns. Required: 'sku' and 'name'."
	case errors.Is(err, ErrParse):
		return "CSV file format is invalid or cannot be parsed."
	case errors.Is(err, ErrInputFormat):
		return "Invalid file format. The file must be a valid gzip-compressed CSV."
	case errors.Is(err, ErrPersistence):
		return "Database error occurred during processing."
	case errors.Is(err, ErrNotFound):
		return "Uploaded file could not be found."
	default:
		return "An unexpected error occurred during processing."
	}
}
