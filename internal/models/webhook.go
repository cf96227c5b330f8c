package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Webhook is an externally registered HTTP endpoint subscribed to a set
// of event types. The dispatcher only reads it; mutation happens through
// the webhook CRUD surface.
type Webhook struct {
	bun.BaseModel `bun:"table:webhooks,alias:w" json:"-"`

	ID         string    `bun:"id,pk" json:"id"`
	URL        string    `bun:"url,notnull" json:"url"`
	EventTypes []string  `bun:"event_types,type:jsonb,notnull" json:"event_types"`
	IsEnabled  bool      `bun:"is_enabled,notnull" json:"is_enabled"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// SubscribedTo reports whether the webhook's subscription set contains
// the given event type.
func (w *Webhook) SubscribedTo(eventType string) bool {
	for _, et := range w.EventTypes {
		if et == eventType {
			return true
		}
	}
	return false
}
