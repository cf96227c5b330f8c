//go:build integration

// Postgres-backed integration tests. Run with -tags integration; they
// start a disposable Postgres container.
package store

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"

	"github.com/mfaulhaber/catalogd/internal/models"
)

var (
	pgDB        *bun.DB
	pgContainer testcontainers.Container
)

// TestMain sets up and tears down the Postgres container for all tests.
func TestMain(m *testing.M) {
	// Disable ryuk (cleanup container) as it can cause issues in some environments
	os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")

	ctx := context.Background()

	var err error
	pgContainer, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "catalog",
				"POSTGRES_PASSWORD": "catalog",
				"POSTGRES_DB":       "catalog_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("Failed to start Postgres container: %v", err)
	}

	host, err := pgContainer.Host(ctx)
	if err != nil {
		log.Fatalf("Failed to get container host: %v", err)
	}
	if host == "" || host == "null" {
		host = "localhost"
	}
	mappedPort, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		log.Fatalf("Failed to get mapped port: %v", err)
	}

	dsn := fmt.Sprintf("postgres://catalog:catalog@%s:%s/catalog_test?sslmode=disable", host, mappedPort.Port())
	pgDB, err = Open(ctx, dsn, slog.New(slog.DiscardHandler))
	if err != nil {
		log.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := InitSchema(ctx, pgDB); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	code := m.Run()

	_ = pgDB.Close()
	_ = pgContainer.Terminate(ctx)

	os.Exit(code)
}

func TestPostgresUpsertBatchConflictResolution(t *testing.T) {
	ctx := context.Background()
	s := NewProductStore(pgDB)
	require.NoError(t, s.DeleteAll(ctx))

	require.NoError(t, s.UpsertBatch(ctx, []models.Product{
		{SKU: "pg-1", Name: "First", IsActive: true},
		{SKU: "pg-2", Name: "Second", IsActive: true},
	}))
	require.NoError(t, s.UpsertBatch(ctx, []models.Product{
		{SKU: "pg-1", Name: "First v2", Description: strptr("updated"), IsActive: false},
	}))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := s.Get(ctx, "pg-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "First v2", got.Name)
	assert.False(t, got.IsActive)
}

func TestPostgresWebhookEventTypesRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewWebhookStore(pgDB)

	created, err := s.Create(ctx, "https://example.com/pg", []string{"user.created", "payment.completed"}, true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Delete(ctx, created.ID) })

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"user.created", "payment.completed"}, got.EventTypes)
	assert.True(t, got.SubscribedTo("payment.completed"))
	assert.False(t, got.SubscribedTo("user.modified"))
}
