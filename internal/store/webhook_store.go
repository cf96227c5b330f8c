package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/mfaulhaber/catalogd/internal/models"
)

// WebhookStore persists registered webhook endpoints.
type WebhookStore struct {
	db *bun.DB
}

// NewWebhookStore creates a webhook store over db.
func NewWebhookStore(db *bun.DB) *WebhookStore {
	return &WebhookStore{db: db}
}

// WebhookUpdate carries the mutable webhook fields; nil means unchanged.
type WebhookUpdate struct {
	URL        *string
	EventTypes []string
	IsEnabled  *bool
}

// Create stores a new webhook and returns it with id and timestamps set.
func (s *WebhookStore) Create(ctx context.Context, url string, eventTypes []string, enabled bool) (*models.Webhook, error) {
	now := time.Now().UTC()
	webhook := &models.Webhook{
		ID:         uuid.NewString(),
		URL:        url,
		EventTypes: eventTypes,
		IsEnabled:  enabled,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := s.db.NewInsert().Model(webhook).Exec(ctx); err != nil {
		return nil, fmt.Errorf("create webhook: %w", err)
	}
	return webhook, nil
}

// Get returns a webhook by id, ErrWebhookNotFound when absent.
func (s *WebhookStore) Get(ctx context.Context, id string) (*models.Webhook, error) {
	webhook := new(models.Webhook)
	err := s.db.NewSelect().
		Model(webhook).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrWebhookNotFound, id)
		}
		return nil, fmt.Errorf("get webhook %s: %w", id, err)
	}
	return webhook, nil
}

// List returns webhooks, most recently created first.
func (s *WebhookStore) List(ctx context.Context, offset, limit int) ([]models.Webhook, error) {
	if limit <= 0 {
		limit = 50
	}

	var webhooks []models.Webhook
	err := s.db.NewSelect().
		Model(&webhooks).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list webhooks: %w", err)
	}
	if webhooks == nil {
		webhooks = []models.Webhook{}
	}
	return webhooks, nil
}

// ListEnabled returns all enabled webhooks; the dispatcher filters them
// by event type.
func (s *WebhookStore) ListEnabled(ctx context.Context) ([]models.Webhook, error) {
	var webhooks []models.Webhook
	err := s.db.NewSelect().
		Model(&webhooks).
		Where("is_enabled = ?", true).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list enabled webhooks: %w", err)
	}
	return webhooks, nil
}

// Update applies the non-nil fields of upd and bumps updated_at.
func (s *WebhookStore) Update(ctx context.Context, id string, upd WebhookUpdate) (*models.Webhook, error) {
	webhook, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.URL != nil {
		webhook.URL = *upd.URL
	}
	if upd.EventTypes != nil {
		webhook.EventTypes = upd.EventTypes
	}
	if upd.IsEnabled != nil {
		webhook.IsEnabled = *upd.IsEnabled
	}
	webhook.UpdatedAt = time.Now().UTC()

	_, err = s.db.NewUpdate().
		Model(webhook).
		Column("url", "event_types", "is_enabled", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("update webhook %s: %w", id, err)
	}
	return webhook, nil
}

// Delete removes a webhook, ErrWebhookNotFound when absent.
func (s *WebhookStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().
		Model((*models.Webhook)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete webhook %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("%w: %s", ErrWebhookNotFound, id)
	}
	return nil
}
