package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mfaulhaber/catalogd/internal/models"
	"github.com/mfaulhaber/catalogd/internal/webhook"
)

// CreateWebhookInput is the payload for registering a webhook.
type CreateWebhookInput struct {
	URL        string   `json:"url"`
	EventTypes []string `json:"event_types"`
	IsEnabled  *bool    `json:"is_enabled,omitempty"`
}

// UpdateWebhookInput carries the fields to change; nil fields are left
// untouched.
type UpdateWebhookInput struct {
	URL        *string  `json:"url,omitempty"`
	EventTypes []string `json:"event_types,omitempty"`
	IsEnabled  *bool    `json:"is_enabled,omitempty"`
}

// CreateWebhook registers a new webhook subscription.
func (c *Client) CreateWebhook(ctx context.Context, input CreateWebhookInput) (*models.Webhook, error) {
	var wh models.Webhook
	if err := c.do(ctx, http.MethodPost, "/api/webhooks", input, &wh); err != nil {
		return nil, fmt.Errorf("create webhook: %w", err)
	}
	return &wh, nil
}

// ListWebhooks returns registered webhooks, newest first.
func (c *Client) ListWebhooks(ctx context.Context) ([]models.Webhook, error) {
	var webhooks []models.Webhook
	if err := c.do(ctx, http.MethodGet, "/api/webhooks", nil, &webhooks); err != nil {
		return nil, fmt.Errorf("list webhooks: %w", err)
	}
	return webhooks, nil
}

// GetWebhook returns a single webhook by id.
func (c *Client) GetWebhook(ctx context.Context, id string) (*models.Webhook, error) {
	var wh models.Webhook
	if err := c.do(ctx, http.MethodGet, "/api/webhooks/"+id, nil, &wh); err != nil {
		return nil, fmt.Errorf("get webhook: %w", err)
	}
	return &wh, nil
}

// UpdateWebhook changes a webhook's url, subscriptions or enabled flag.
func (c *Client) UpdateWebhook(ctx context.Context, id string, input UpdateWebhookInput) (*models.Webhook, error) {
	var wh models.Webhook
	if err := c.do(ctx, http.MethodPut, "/api/webhooks/"+id, input, &wh); err != nil {
		return nil, fmt.Errorf("update webhook: %w", err)
	}
	return &wh, nil
}

// DeleteWebhook removes a webhook by id.
func (c *Client) DeleteWebhook(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/webhooks/"+id, nil, nil); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	return nil
}

// TestWebhook performs a synchronous test delivery and returns the
// structured result.
func (c *Client) TestWebhook(ctx context.Context, id string) (*webhook.TestResult, error) {
	var result webhook.TestResult
	if err := c.do(ctx, http.MethodPost, "/api/webhooks/"+id+"/test", nil, &result); err != nil {
		return nil, fmt.Errorf("test webhook: %w", err)
	}
	return &result, nil
}

// ListEvents returns the available event type catalog.
func (c *Client) ListEvents(ctx context.Context) ([]string, error) {
	var events []string
	if err := c.do(ctx, http.MethodGet, "/api/webhooks/events", nil, &events); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// SimulateEvent triggers an event with its canned payload. The event
// name uses dashes, e.g. "user-created".
func (c *Client) SimulateEvent(ctx context.Context, event string) error {
	if err := c.do(ctx, http.MethodPost, "/api/simulate/"+event, nil, nil); err != nil {
		return fmt.Errorf("simulate event: %w", err)
	}
	return nil
}
