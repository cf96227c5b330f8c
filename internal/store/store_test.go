package store

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/mfaulhaber/catalogd/internal/models"
)

// testDB opens an isolated in-memory SQLite database with the schema
// applied. Postgres-backed coverage lives in postgres_test.go.
func testDB(t *testing.T) *bun.DB {
	t.Helper()

	ctx := context.Background()
	db, err := Open(ctx, "file::memory:?cache=shared&_fk=1", slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, InitSchema(ctx, db))

	// Schema may be shared across tests in the same process; start clean.
	_, err = db.NewDelete().Model((*models.Product)(nil)).Where("1 = 1").Exec(ctx)
	require.NoError(t, err)
	_, err = db.NewDelete().Model((*models.Webhook)(nil)).Where("1 = 1").Exec(ctx)
	require.NoError(t, err)

	return db
}

func strptr(s string) *string { return &s }

func TestUpsertBatchInsertsAndOverwrites(t *testing.T) {
	ctx := context.Background()
	s := NewProductStore(testDB(t))

	require.NoError(t, s.UpsertBatch(ctx, []models.Product{
		{SKU: "abc-1", Name: "Widget", IsActive: true},
		{SKU: "abc-2", Name: "Gadget", Description: strptr("shiny"), IsActive: true},
	}))

	// Re-ingesting an existing sku overwrites the display fields only.
	require.NoError(t, s.UpsertBatch(ctx, []models.Product{
		{SKU: "abc-1", Name: "Widget v2", Description: strptr("updated"), IsActive: false},
	}))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "upsert must not create a second row per sku")

	got, err := s.Get(ctx, "abc-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Widget v2", got.Name)
	require.NotNil(t, got.Description)
	assert.Equal(t, "updated", *got.Description)
	assert.False(t, got.IsActive)
}

func TestUpsertBatchDeduplicatesWithinBatch(t *testing.T) {
	ctx := context.Background()
	s := NewProductStore(testDB(t))

	// Same sku twice in one batch: the later entry wins.
	require.NoError(t, s.UpsertBatch(ctx, []models.Product{
		{SKU: "abc-1", Name: "Widget", IsActive: true},
		{SKU: "xyz-9", Name: "Other", IsActive: true},
		{SKU: "abc-1", Name: "Widget v2", Description: strptr("updated"), IsActive: false},
	}))

	got, err := s.Get(ctx, "abc-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Widget v2", got.Name)
	require.NotNil(t, got.Description)
	assert.Equal(t, "updated", *got.Description)
	assert.False(t, got.IsActive)
}

func TestUpsertBatchEmptyIsNoOp(t *testing.T) {
	ctx := context.Background()
	s := NewProductStore(testDB(t))

	require.NoError(t, s.UpsertBatch(ctx, nil))
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListProductsSearchAndPagination(t *testing.T) {
	ctx := context.Background()
	s := NewProductStore(testDB(t))

	require.NoError(t, s.UpsertBatch(ctx, []models.Product{
		{SKU: "apple-1", Name: "Apple", IsActive: true},
		{SKU: "banana-1", Name: "Banana", IsActive: true},
		{SKU: "cherry-1", Name: "Sour Cherry", IsActive: true},
	}))

	all, err := s.List(ctx, 0, 50, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "apple-1", all[0].SKU, "ordered by sku")

	page, err := s.List(ctx, 1, 1, "")
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "banana-1", page[0].SKU)

	found, err := s.List(ctx, 0, 50, "CHERRY")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "cherry-1", found[0].SKU)
}

func TestDeleteAllProducts(t *testing.T) {
	ctx := context.Background()
	s := NewProductStore(testDB(t))

	require.NoError(t, s.Upsert(ctx, models.Product{SKU: "a-1", Name: "A", IsActive: true}))
	require.NoError(t, s.DeleteAll(ctx))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestWebhookCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewWebhookStore(testDB(t))

	created, err := s.Create(ctx, "https://example.com/hook", []string{"user.created"}, true)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/hook", got.URL)
	assert.Equal(t, []string{"user.created"}, got.EventTypes)
	assert.True(t, got.IsEnabled)

	disabled := false
	updated, err := s.Update(ctx, created.ID, WebhookUpdate{
		EventTypes: []string{"user.created", "payment.completed"},
		IsEnabled:  &disabled,
	})
	require.NoError(t, err)
	assert.False(t, updated.IsEnabled)
	assert.Len(t, updated.EventTypes, 2)

	enabled, err := s.ListEnabled(ctx)
	require.NoError(t, err)
	assert.Empty(t, enabled, "disabled webhook must not be listed as enabled")

	require.NoError(t, s.Delete(ctx, created.ID))
	_, err = s.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrWebhookNotFound)
	assert.ErrorIs(t, s.Delete(ctx, created.ID), ErrWebhookNotFound)
}

func TestListWebhooksNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewWebhookStore(testDB(t))

	_, err := s.Create(ctx, "https://example.com/a", []string{"user.created"}, true)
	require.NoError(t, err)
	_, err = s.Create(ctx, "https://example.com/b", []string{"user.modified"}, false)
	require.NoError(t, err)

	list, err := s.List(ctx, 0, 50)
	require.NoError(t, err)
	require.Len(t, list, 2)
}
