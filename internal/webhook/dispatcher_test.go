package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfaulhaber/catalogd/internal/models"
)

// staticSource serves a fixed webhook list.
type staticSource struct {
	webhooks []models.Webhook
}

func (s *staticSource) ListEnabled(context.Context) ([]models.Webhook, error) {
	var enabled []models.Webhook
	for _, wh := range s.webhooks {
		if wh.IsEnabled {
			enabled = append(enabled, wh)
		}
	}
	return enabled, nil
}

// syncSpawner runs deliveries inline so tests can assert without races.
type syncSpawner struct {
	spawned int
}

func (s *syncSpawner) Go(_ string, fn func(ctx context.Context)) {
	s.spawned++
	fn(context.Background())
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestTriggerFiltersByEventTypeAndEnabledFlag(t *testing.T) {
	var (
		mu   sync.Mutex
		hits []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		hits = append(hits, r.URL.Path+"|"+string(body))
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	source := &staticSource{webhooks: []models.Webhook{
		{ID: "1", URL: srv.URL + "/payments", EventTypes: []string{"payment.completed"}, IsEnabled: true},
		{ID: "2", URL: srv.URL + "/users", EventTypes: []string{"user.created"}, IsEnabled: true},
		{ID: "3", URL: srv.URL + "/disabled", EventTypes: []string{"payment.completed"}, IsEnabled: false},
		{ID: "4", URL: srv.URL + "/multi", EventTypes: []string{"user.created", "payment.completed"}, IsEnabled: true},
	}}
	spawner := &syncSpawner{}
	d := NewDispatcher(source, spawner, discardLogger(), time.Second)

	n, err := d.Trigger(context.Background(), "payment.completed", map[string]any{"data": map[string]any{"payment_id": "pay_1"}})
	require.NoError(t, err)

	assert.Equal(t, 2, n, "one delivery per enabled subscribed webhook")
	assert.Equal(t, 2, spawner.spawned)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, hits, 2)
	for _, hit := range hits {
		assert.NotContains(t, hit, "/disabled")
		assert.NotContains(t, hit, "/users")
		assert.Contains(t, hit, `"event":"payment.completed"`)
		assert.Contains(t, hit, `"timestamp"`)
		assert.Contains(t, hit, `"payment_id":"pay_1"`)
	}
}

func TestDeliveryFailureDoesNotAffectSiblings(t *testing.T) {
	var okHits, badHits int
	var mu sync.Mutex
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		okHits++
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ok.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		badHits++
		mu.Unlock()
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	source := &staticSource{webhooks: []models.Webhook{
		{ID: "1", URL: bad.URL, EventTypes: []string{"user.created"}, IsEnabled: true},
		{ID: "2", URL: "http://127.0.0.1:1/unreachable", EventTypes: []string{"user.created"}, IsEnabled: true},
		{ID: "3", URL: ok.URL, EventTypes: []string{"user.created"}, IsEnabled: true},
	}}
	d := NewDispatcher(source, &syncSpawner{}, discardLogger(), time.Second)

	n, err := d.Trigger(context.Background(), "user.created", map[string]any{})
	require.NoError(t, err, "trigger never surfaces delivery failures")
	assert.Equal(t, 3, n)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, okHits, "healthy endpoint still delivered")
	assert.Equal(t, 1, badHits, "failing endpoint attempted exactly once, no retry")
}

func TestTestDeliverySuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "test", payload["event"])
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewDispatcher(&staticSource{}, &syncSpawner{}, discardLogger(), time.Second)
	result := d.TestDelivery(context.Background(), srv.URL)

	assert.True(t, result.Success)
	require.NotNil(t, result.StatusCode)
	assert.Equal(t, http.StatusOK, *result.StatusCode)
	assert.Empty(t, result.Error)
}

func TestTestDeliveryNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	d := NewDispatcher(&staticSource{}, &syncSpawner{}, discardLogger(), time.Second)
	result := d.TestDelivery(context.Background(), srv.URL)

	assert.False(t, result.Success)
	require.NotNil(t, result.StatusCode)
	assert.Equal(t, http.StatusBadGateway, *result.StatusCode)
	assert.Equal(t, "HTTP 502", result.Error)
}

func TestTestDeliveryTimeout(t *testing.T) {
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-done // never respond within the client timeout
	}))
	defer srv.Close()
	defer close(done)

	d := NewDispatcher(&staticSource{}, &syncSpawner{}, discardLogger(), 100*time.Millisecond)
	result := d.TestDelivery(context.Background(), srv.URL)

	assert.False(t, result.Success)
	assert.Nil(t, result.StatusCode, "no status obtained on timeout")
	assert.Contains(t, result.Error, "timeout")
}

func TestTestDeliveryNetworkError(t *testing.T) {
	d := NewDispatcher(&staticSource{}, &syncSpawner{}, discardLogger(), time.Second)
	result := d.TestDelivery(context.Background(), "http://127.0.0.1:1/nope")

	assert.False(t, result.Success)
	assert.Nil(t, result.StatusCode)
	assert.Contains(t, result.Error, "Request error")
}

func TestEventCatalog(t *testing.T) {
	assert.Equal(t, []string{"payment.completed", "user.created", "user.modified"}, AvailableEvents())
	assert.True(t, KnownEvent(EventUserCreated))
	assert.False(t, KnownEvent("order.shipped"))

	payload, err := SamplePayload(EventPaymentCompleted)
	require.NoError(t, err)
	assert.Contains(t, payload, "data")

	_, err = SamplePayload("order.shipped")
	assert.Error(t, err)
}
