package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OperationType tags a statement entry. The set is closed; anything else is
// rejected by the engine before the store is touched.
type OperationType string

const (
	OperationDeposit  OperationType = "deposit"
	OperationWithdraw OperationType = "withdraw"
	OperationTransfer OperationType = "transfer"
)

// Valid reports whether t is one of the three known operation types.
func (t OperationType) Valid() bool {
	switch t {
	case OperationDeposit, OperationWithdraw, OperationTransfer:
		return true
	}
	return false
}

// StatementEntry is one recorded money movement on a user's statement.
// Entries are immutable once committed; UpdatedAt is set at creation and
// never changes afterwards.
//
// SenderID is non-nil iff Type is transfer. A transfer produces two entries,
// one per statement, and SenderID names the sender on both of them: the leg
// whose UserID equals *SenderID is the outgoing one.
type StatementEntry struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	SenderID    *string         `json:"sender_id,omitempty"`
	Type        OperationType   `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// SignedAmount is the entry's contribution to its owner's balance: deposits
// and incoming transfers count positive, withdrawals and outgoing transfers
// negative.
func (e StatementEntry) SignedAmount() decimal.Decimal {
	switch e.Type {
	case OperationWithdraw:
		return e.Amount.Neg()
	case OperationTransfer:
		if e.SenderID != nil && *e.SenderID == e.UserID {
			return e.Amount.Neg()
		}
	}
	return e.Amount
}

// EntryDraft is a statement entry before the store assigns its identity and
// timestamps.
type EntryDraft struct {
	UserID      string
	SenderID    *string
	Type        OperationType
	Amount      decimal.Decimal
	Description string
}
