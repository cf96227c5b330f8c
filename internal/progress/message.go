// Package progress implements the per-job status message type and the
// publish/subscribe broadcaster that fans messages out to live observers.
package progress

import (
	"encoding/json"
	"fmt"
)

// Type discriminates progress message variants on the wire.
type Type string

const (
	TypeLog      Type = "log"
	TypeProgress Type = "progress"
	TypeError    Type = "error"
	TypeComplete Type = "complete"
)

// Message is a closed tagged union pushed to observers of a job. Exactly
// one complete or error message terminates a job's stream; any number of
// log/progress messages precede it. Counter fields are only meaningful
// for the progress and complete variants.
type Message struct {
	Type       Type
	Message    string
	Processed  int
	Total      int
	Percentage int
}

// Log builds a log variant.
func Log(text string) Message {
	return Message{Type: TypeLog, Message: text}
}

// Progressf builds a progress variant from the running counters.
func Progressf(processed, total int) Message {
	pct := 0
	if total > 0 {
		pct = processed * 100 / total
	}
	return Message{
		Type:       TypeProgress,
		Message:    fmt.Sprintf("Processed %d of %d rows", processed, total),
		Processed:  processed,
		Total:      total,
		Percentage: pct,
	}
}

// Errorf builds the terminal error variant. The text must already be
// user-safe; raw internal errors belong in the operational log only.
func Errorf(text string) Message {
	return Message{Type: TypeError, Message: text}
}

// Complete builds the terminal success variant.
func Complete(processed, total int) Message {
	return Message{
		Type:      TypeComplete,
		Message:   "Processing complete",
		Processed: processed,
		Total:     total,
	}
}

// Terminal reports whether the message ends a job's stream.
func (m Message) Terminal() bool {
	return m.Type == TypeError || m.Type == TypeComplete
}

// wire shapes, one fixed field set per variant.
type logWire struct {
	Type    Type   `json:"type"`
	Message string `json:"message"`
}

type progressWire struct {
	Type       Type   `json:"type"`
	Message    string `json:"message"`
	Processed  int    `json:"processed"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
}

type completeWire struct {
	Type      Type   `json:"type"`
	Message   string `json:"message"`
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
}

// MarshalJSON encodes exactly the fields of the message's variant.
func (m Message) MarshalJSON() ([]byte, error) {
	switch m.Type {
	case TypeLog, TypeError:
		return json.Marshal(logWire{Type: m.Type, Message: m.Message})
	case TypeProgress:
		return json.Marshal(progressWire{
			Type:       m.Type,
			Message:    m.Message,
			Processed:  m.Processed,
			Total:      m.Total,
			Percentage: m.Percentage,
		})
	case TypeComplete:
		return json.Marshal(completeWire{
			Type:      m.Type,
			Message:   m.Message,
			Processed: m.Processed,
			Total:     m.Total,
		})
	default:
		return nil, fmt.Errorf("progress: unknown message type %q", m.Type)
	}
}

// UnmarshalJSON decodes a wire message, rejecting unknown discriminators
// so malformed messages never silently pass through the channel boundary.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw progressWire
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Type {
	case TypeLog, TypeProgress, TypeError, TypeComplete:
	default:
		return fmt.Errorf("progress: unknown message type %q", raw.Type)
	}
	*m = Message{
		Type:       raw.Type,
		Message:    raw.Message,
		Processed:  raw.Processed,
		Total:      raw.Total,
		Percentage: raw.Percentage,
	}
	return nil
}
