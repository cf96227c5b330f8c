package client

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfaulhaber/catalogd/internal/progress"
)

func TestUploadSendsMultipartAndReturnsJobID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/upload", r.URL.Path)

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "products.csv.gz", header.Filename)
		assert.Equal(t, "application/gzip", header.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{"job_id": "abc123"})
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "products.csv.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte("sku,name\na,b\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	jobID, err := New(srv.URL).Upload(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "abc123", jobID)
}

func TestErrorResponsesCarryDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Webhook with ID 'x' not found"})
	}))
	defer srv.Close()

	_, err := New(srv.URL).GetWebhook(context.Background(), "x")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Contains(t, apiErr.Detail, "not found")
}

func TestWatchProgressStopsAtTerminalMessage(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ws/progress/job-1", r.URL.Path)

		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		require.NoError(t, conn.WriteJSON(progress.Log("Job started")))
		require.NoError(t, conn.WriteJSON(progress.Progressf(2, 4)))
		require.NoError(t, conn.WriteJSON(progress.Complete(4, 4)))

		// Keep the connection open; the client should stop on its own.
		conn.ReadMessage()
	}))
	defer srv.Close()

	var got []progress.Message
	err := New(srv.URL).WatchProgress(context.Background(), "job-1", func(msg progress.Message) error {
		got = append(got, msg)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, progress.TypeLog, got[0].Type)
	assert.Equal(t, progress.TypeProgress, got[1].Type)
	assert.Equal(t, progress.TypeComplete, got[2].Type)
	assert.True(t, got[2].Terminal())
}

func TestWatchProgressHonorsCancellation(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		conn.ReadMessage()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		errCh <- New(srv.URL).WatchProgress(ctx, "job-1", func(progress.Message) error {
			return nil
		})
	}()

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)
}
