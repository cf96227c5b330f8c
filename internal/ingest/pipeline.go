package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mfaulhaber/catalogd/internal/models"
	"github.com/mfaulhaber/catalogd/internal/progress"
)

// DefaultBatchSize bounds the working set submitted per upsert call.
const DefaultBatchSize = 1000

// BatchStore commits one batch of normalized products atomically.
type BatchStore interface {
	UpsertBatch(ctx context.Context, products []models.Product) error
}

// Publisher pushes progress messages to a job's observers.
type Publisher interface {
	Publish(jobID string, msg progress.Message)
}

// Pipeline orchestrates one ingestion job end to end: decode the gzip
// CSV stream, normalize rows, submit size-bounded batches, and report
// progress after each committed batch.
type Pipeline struct {
	store     BatchStore
	publisher Publisher
	logger    *slog.Logger
	batchSize int
}

// NewPipeline wires a pipeline. batchSize <= 0 falls back to
// DefaultBatchSize.
func NewPipeline(store BatchStore, publisher Publisher, logger *slog.Logger, batchSize int) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Pipeline{
		store:     store,
		publisher: publisher,
		logger:    logger,
		batchSize: batchSize,
	}
}

// Run processes one uploaded artifact. The temp file is removed on
// every exit path. Outcome is observable only through the publisher:
// exactly one complete or error message terminates the job's stream.
func (p *Pipeline) Run(ctx context.Context, jobID, filePath string) {
	defer func() {
		if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
			p.logger.Warn("failed to clean up temp file", "job_id", jobID, "path", filePath, "error", err)
		}
	}()

	p.logger.Info("starting upload job", "job_id", jobID, "path", filePath)
	p.publisher.Publish(jobID, progress.Log("Job started"))

	if err := p.run(ctx, jobID, filePath); err != nil {
		p.logger.Error("upload job failed", "job_id", jobID, "error", err)
		p.publisher.Publish(jobID, progress.Errorf(UserMessage(err)))
		return
	}
}

func (p *Pipeline) run(ctx context.Context, jobID, filePath string) error {
	if _, err := os.Stat(filePath); err != nil {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	// Counting pass: decode once and count rows that survive
	// normalization. This fixes the total for percentage reporting.
	// Decode is O(n) single-pass and bounded by file size, not memory,
	// so reading the stream twice is acceptable.
	total, err := p.countValidRows(filePath)
	if err != nil {
		return err
	}
	p.logger.Info("counted valid rows", "job_id", jobID, "total", total)
	p.publisher.Publish(jobID, progress.Log(fmt.Sprintf("Found %d rows to process", total)))

	processed, err := p.processRows(ctx, jobID, filePath, total)
	if err != nil {
		return err
	}

	p.logger.Info("upload job completed", "job_id", jobID, "processed", processed, "total", total)
	p.publisher.Publish(jobID, progress.Complete(processed, total))
	return nil
}

func (p *Pipeline) countValidRows(filePath string) (int, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	defer f.Close()

	dec, err := NewDecoder(f)
	if err != nil {
		return 0, err
	}
	defer dec.Close()

	total := 0
	for {
		row, err := dec.Next()
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return 0, err
		}
		if _, ok := Normalize(row); ok {
			total++
		}
	}
}

func (p *Pipeline) processRows(ctx context.Context, jobID, filePath string, total int) (int, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	defer f.Close()

	dec, err := NewDecoder(f)
	if err != nil {
		return 0, err
	}
	defer dec.Close()

	var (
		batch     = make([]models.Product, 0, p.batchSize)
		processed int
		skipped   int
	)

	submit := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := p.store.UpsertBatch(ctx, batch); err != nil {
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		processed += len(batch)
		p.logger.Info("committed batch", "job_id", jobID, "batch", len(batch), "processed", processed, "total", total)
		batch = batch[:0]
		p.publisher.Publish(jobID, progress.Progressf(processed, total))
		return nil
	}

	for {
		row, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return processed, err
		}

		product, ok := Normalize(row)
		if !ok {
			skipped++
			continue
		}
		batch = append(batch, product)

		if len(batch) >= p.batchSize {
			if err := submit(); err != nil {
				return processed, err
			}
		}
	}

	if err := submit(); err != nil {
		return processed, err
	}

	if skipped > 0 {
		p.logger.Info("skipped invalid rows", "job_id", jobID, "skipped", skipped)
	}
	return processed, nil
}

// JobFatal reports whether err belongs to the modeled error taxonomy.
// Anything outside it is still job-fatal; the distinction only matters
// for logging.
func JobFatal(err error) bool {
	for _, sentinel := range []error{ErrInputFormat, ErrSchema, ErrParse, ErrPersistence, ErrNotFound} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
