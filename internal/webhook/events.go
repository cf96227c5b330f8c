// Package webhook resolves which registered endpoints are subscribed to
// a triggered event type and performs independent, isolated delivery
// attempts to each.
package webhook

import (
	"fmt"
	"sort"
)

// Event type identifiers endpoints can subscribe to.
const (
	EventUserCreated      = "user.created"
	EventUserModified     = "user.modified"
	EventPaymentCompleted = "payment.completed"
)

var availableEvents = map[string]struct{}{
	EventUserCreated:      {},
	EventUserModified:     {},
	EventPaymentCompleted: {},
}

// AvailableEvents returns the sorted event type catalog.
func AvailableEvents() []string {
	events := make([]string, 0, len(availableEvents))
	for e := range availableEvents {
		events = append(events, e)
	}
	sort.Strings(events)
	return events
}

// KnownEvent reports whether eventType is in the catalog.
func KnownEvent(eventType string) bool {
	_, ok := availableEvents[eventType]
	return ok
}

// SamplePayload returns the canned payload used by the event simulation
// endpoints.
func SamplePayload(eventType string) (map[string]any, error) {
	switch eventType {
	case EventUserCreated:
		return map[string]any{
			"data": map[string]any{
				"user_id":    "user_123",
				"email":      "newuser@example.com",
				"name":       "John Doe",
				"created_at": "2024-01-15T10:30:00Z",
			},
		}, nil
	case EventUserModified:
		return map[string]any{
			"data": map[string]any{
				"user_id":    "user_123",
				"email":      "updateduser@example.com",
				"name":       "John Doe Updated",
				"updated_at": "2024-01-15T11:45:00Z",
				"changes":    []string{"email", "name"},
			},
		}, nil
	case EventPaymentCompleted:
		return map[string]any{
			"data": map[string]any{
				"payment_id":   "pay_456",
				"user_id":      "user_123",
				"amount":       99.99,
				"currency":     "USD",
				"status":       "completed",
				"completed_at": "2024-01-15T12:00:00Z",
			},
		}, nil
	default:
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}
}
