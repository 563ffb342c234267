package audit

import (
	"time"

	id "termcolor/pkg/domain"
)

// Action names what happened to a term's color.
type Action string

const (
	ActionColorUpdated  Action = "term_color_updated"
	ActionColorDeleted  Action = "term_color_deleted"
	ActionColorRejected Action = "term_color_rejected"
)

// Event is emitted after a save is decided. Keep it transport-agnostic so
// sinks can fan out.
type Event struct {
	Action    Action    `json:"action"`
	TermID    id.TermID `json:"term_id"`
	OldColor  string    `json:"old_color,omitempty"`
	NewColor  string    `json:"new_color,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
