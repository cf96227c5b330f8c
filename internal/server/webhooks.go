package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mfaulhaber/catalogd/internal/store"
	"github.com/mfaulhaber/catalogd/internal/webhook"
)

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, webhook.AvailableEvents())
}

func (s *Server) handleCreateWebhook(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL        string   `json:"url"`
		EventTypes []string `json:"event_types"`
		IsEnabled  *bool    `json:"is_enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	url := strings.TrimSpace(req.URL)
	if err := validateWebhookURL(url); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := validateEventTypes(req.EventTypes); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	enabled := true
	if req.IsEnabled != nil {
		enabled = *req.IsEnabled
	}

	wh, err := s.webhooks.Create(r.Context(), url, req.EventTypes, enabled)
	if err != nil {
		s.logger.Error("failed to create webhook", "url", url, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create webhook")
		return
	}

	s.logger.Info("created webhook", "webhook_id", wh.ID, "url", wh.URL)
	writeJSON(w, http.StatusCreated, wh)
}

func (s *Server) handleListWebhooks(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 50)

	webhooks, err := s.webhooks.List(r.Context(), offset, limit)
	if err != nil {
		s.logger.Error("failed to list webhooks", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve webhooks")
		return
	}
	writeJSON(w, http.StatusOK, webhooks)
}

func (s *Server) handleGetWebhook(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	wh, err := s.webhooks.Get(r.Context(), id)
	if err != nil {
		s.webhookError(w, id, err, "Failed to retrieve webhook")
		return
	}
	writeJSON(w, http.StatusOK, wh)
}

func (s *Server) handleUpdateWebhook(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req struct {
		URL        *string  `json:"url"`
		EventTypes []string `json:"event_types"`
		IsEnabled  *bool    `json:"is_enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.URL != nil {
		trimmed := strings.TrimSpace(*req.URL)
		if err := validateWebhookURL(trimmed); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		req.URL = &trimmed
	}
	if req.EventTypes != nil {
		if err := validateEventTypes(req.EventTypes); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}

	wh, err := s.webhooks.Update(r.Context(), id, store.WebhookUpdate{
		URL:        req.URL,
		EventTypes: req.EventTypes,
		IsEnabled:  req.IsEnabled,
	})
	if err != nil {
		s.webhookError(w, id, err, "Failed to update webhook")
		return
	}

	s.logger.Info("updated webhook", "webhook_id", id)
	writeJSON(w, http.StatusOK, wh)
}

func (s *Server) handleDeleteWebhook(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.webhooks.Delete(r.Context(), id); err != nil {
		s.webhookError(w, id, err, "Failed to delete webhook")
		return
	}

	s.logger.Info("deleted webhook", "webhook_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// handleTestWebhook performs a synchronous test delivery and reports
// the structured result. Delivery failure is a 200 with success=false,
// not an HTTP error.
func (s *Server) handleTestWebhook(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	wh, err := s.webhooks.Get(r.Context(), id)
	if err != nil {
		s.webhookError(w, id, err, "Failed to test webhook")
		return
	}

	s.logger.Info("testing webhook", "webhook_id", id, "url", wh.URL)
	result := s.dispatcher.TestDelivery(r.Context(), wh.URL)
	writeJSON(w, http.StatusOK, result)
}

// handleSimulateEvent triggers an event with a canned payload. The
// path segment uses dashes, e.g. /api/simulate/user-created.
func (s *Server) handleSimulateEvent(w http.ResponseWriter, r *http.Request) {
	eventType := strings.ReplaceAll(r.PathValue("event"), "-", ".")
	if !webhook.KnownEvent(eventType) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Unknown event type '%s'", eventType))
		return
	}

	payload, err := webhook.SamplePayload(eventType)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build event payload")
		return
	}

	if _, err := s.dispatcher.Trigger(r.Context(), eventType, payload); err != nil {
		s.logger.Error("failed to trigger event", "event", eventType, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to trigger event")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Event triggered"})
}

// webhookError maps store errors to HTTP responses, translating
// not-found into a 404.
func (s *Server) webhookError(w http.ResponseWriter, id string, err error, fallback string) {
	if errors.Is(err, store.ErrWebhookNotFound) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Webhook with ID '%s' not found", id))
		return
	}
	s.logger.Error("webhook operation failed", "webhook_id", id, "error", err)
	writeError(w, http.StatusInternalServerError, fallback)
}

func validateWebhookURL(url string) error {
	if url == "" {
		return errors.New("URL is required")
	}
	if len(url) > 2048 {
		return errors.New("URL must be at most 2048 characters")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return errors.New("URL must start with http:// or https://")
	}
	return nil
}

func validateEventTypes(eventTypes []string) error {
	if len(eventTypes) == 0 {
		return errors.New("At least one event type is required")
	}
	var invalid []string
	for _, e := range eventTypes {
		if !webhook.KnownEvent(e) {
			invalid = append(invalid, e)
		}
	}
	if len(invalid) > 0 {
		return fmt.Errorf("Invalid event types: %s", strings.Join(invalid, ", "))
	}
	return nil
}
