package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mfaulhaber/catalogd/internal/metrics"
	"github.com/mfaulhaber/catalogd/internal/models"
)

// DefaultTimeout bounds a single outbound delivery attempt.
const DefaultTimeout = 10 * time.Second

// Source lists the enabled webhooks the dispatcher filters per trigger.
type Source interface {
	ListEnabled(ctx context.Context) ([]models.Webhook, error)
}

// Spawner runs one detached delivery unit.
type Spawner interface {
	Go(name string, fn func(ctx context.Context))
}

// Dispatcher fans event notifications out to subscribed endpoints.
// Deliveries are at-most-one-attempt, best-effort: one POST per matched
// webhook, no retries, and one delivery's failure never affects its
// siblings or the triggering request.
type Dispatcher struct {
	source  Source
	spawner Spawner
	client  *http.Client
	logger  *slog.Logger
	stats   *metrics.Collector
	now     func() time.Time
}

// Instrument attaches a runtime stats collector. A nil collector
// disables recording.
func (d *Dispatcher) Instrument(c *metrics.Collector) {
	d.stats = c
}

func (d *Dispatcher) record(op string, start time.Time) {
	if d.stats != nil {
		d.stats.RecordTiming(op, time.Since(start))
	}
}

// NewDispatcher wires a dispatcher. timeout <= 0 falls back to
// DefaultTimeout.
func NewDispatcher(source Source, spawner Spawner, logger *slog.Logger, timeout time.Duration) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{
		source:  source,
		spawner: spawner,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Trigger resolves the enabled webhooks subscribed to eventType and
// spawns one independent delivery unit per match. It returns the number
// of deliveries scheduled; scheduling failures are the only error.
func (d *Dispatcher) Trigger(ctx context.Context, eventType string, payload map[string]any) (int, error) {
	webhooks, err := d.source.ListEnabled(ctx)
	if err != nil {
		return 0, fmt.Errorf("load webhooks: %w", err)
	}

	matched := 0
	for _, wh := range webhooks {
		if !wh.SubscribedTo(eventType) {
			continue
		}
		matched++

		url := wh.URL
		d.spawner.Go("webhook-delivery", func(ctx context.Context) {
			d.deliver(ctx, url, eventType, payload)
		})
	}

	d.logger.Info("triggered event", "event", eventType, "deliveries", matched)
	return matched, nil
}

// deliver performs one outbound POST. It logs the outcome and never
// raises outward.
func (d *Dispatcher) deliver(ctx context.Context, url, eventType string, payload map[string]any) {
	envelope := d.envelope(eventType, payload)

	defer d.record(metrics.OpWebhookDelivery, time.Now())
	status, err := d.post(ctx, url, envelope)
	switch {
	case err != nil:
		d.logger.Error("webhook delivery failed", "url", url, "event", eventType, "error", err)
	case status >= 200 && status < 300:
		d.logger.Info("webhook delivered", "url", url, "event", eventType, "status", status)
	default:
		d.logger.Warn("webhook delivery rejected", "url", url, "event", eventType, "status", status)
	}
}

// TestResult is the structured outcome of a synchronous test delivery.
type TestResult struct {
	Success        bool    `json:"success"`
	StatusCode     *int    `json:"status_code"`
	ResponseTimeMS float64 `json:"response_time_ms"`
	Error          string  `json:"error_message,omitempty"`
}

// TestDelivery performs one synchronous POST with a fixed diagnostic
// payload and blocks for the result. Timeout, network error, and
// non-2xx are all reported, distinctly, as not-success.
func (d *Dispatcher) TestDelivery(ctx context.Context, url string) TestResult {
	payload := map[string]any{
		"event":     "test",
		"message":   "Webhook test trigger",
		"timestamp": d.now().Format(time.RFC3339),
	}

	start := time.Now()
	status, err := d.post(ctx, url, payload)
	elapsed := float64(time.Since(start).Microseconds()) / 1000
	d.record(metrics.OpWebhookTest, start)

	result := TestResult{ResponseTimeMS: elapsed}
	switch {
	case err != nil:
		if isTimeout(err) {
			result.Error = fmt.Sprintf("Request timeout after %s", d.client.Timeout)
		} else {
			result.Error = fmt.Sprintf("Request error: %v", err)
		}
	case status >= 200 && status < 300:
		result.Success = true
		result.StatusCode = &status
	default:
		result.StatusCode = &status
		result.Error = fmt.Sprintf("HTTP %d", status)
	}

	if result.Success {
		d.logger.Info("webhook test succeeded", "url", url, "status", status, "elapsed_ms", elapsed)
	} else {
		d.logger.Warn("webhook test failed", "url", url, "error", result.Error)
	}
	return result
}

func (d *Dispatcher) envelope(eventType string, payload map[string]any) map[string]any {
	envelope := map[string]any{
		"event":     eventType,
		"timestamp": d.now().Format(time.RFC3339),
	}
	for k, v := range payload {
		envelope[k] = v
	}
	return envelope
}

func (d *Dispatcher) post(ctx context.Context, url string, payload map[string]any) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}

func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
