package interfaces

import (
	"context"

	"github.com/CaioWF/ignite-finapi/internal/models"
	"github.com/shopspring/decimal"
)

// StatementStore is the durable, append-only collection of statement entries.
// Implementations assign ids and timestamps; business validation is the
// engine's job, not the store's.
type StatementStore interface {
	// Create appends a single entry and returns it as stored.
	Create(ctx context.Context, draft models.EntryDraft) (models.StatementEntry, error)

	// CreatePair appends both legs of a transfer as one atomic unit: either
	// both entries are retained or neither is.
	CreatePair(ctx context.Context, outgoing, incoming models.EntryDraft) (models.StatementEntry, models.StatementEntry, error)

	// FindByUser returns all of a user's entries in creation order. A user
	// with no entries yields an empty slice, not an error.
	FindByUser(ctx context.Context, userID string) ([]models.StatementEntry, error)

	// FindByID is a point lookup; absence is models.ErrStatementNotFound.
	FindByID(ctx context.Context, id string) (models.StatementEntry, error)

	// SumByUser returns the signed sum of a user's entries, reflecting only
	// committed state.
	SumByUser(ctx context.Context, userID string) (decimal.Decimal, error)
}
