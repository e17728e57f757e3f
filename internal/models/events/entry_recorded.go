package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryRecorded is published after a statement entry has been durably
// committed. A transfer publishes a single event, carrying the sender's leg.
type EntryRecorded struct {
	EntryID     string          `json:"entry_id"`
	UserID      string          `json:"user_id"`
	SenderID    *string         `json:"sender_id,omitempty"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	OccurredAt  time.Time       `json:"occurred_at"`
}
