// Package memory provides in-memory implementations of the store interfaces,
// used by tests and by the server when no database is configured.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/CaioWF/ignite-finapi/internal/interfaces"
	"github.com/CaioWF/ignite-finapi/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StatementStore keeps all entries in an append-only slice, preserving
// creation order. Safe for concurrent use.
type StatementStore struct {
	mu      sync.Mutex
	entries []models.StatementEntry
}

func NewStatementStore() *StatementStore {
	return &StatementStore{entries: make([]models.StatementEntry, 0)}
}

func stamp(draft models.EntryDraft) models.StatementEntry {
	now := time.Now().UTC()
	return models.StatementEntry{
		ID:          uuid.NewString(),
		UserID:      draft.UserID,
		SenderID:    draft.SenderID,
		Type:        draft.Type,
		Amount:      draft.Amount,
		Description: draft.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (s *StatementStore) Create(ctx context.Context, draft models.EntryDraft) (models.StatementEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := stamp(draft)
	s.entries = append(s.entries, entry)
	return entry, nil
}

// CreatePair appends both transfer legs under one lock acquisition, so no
// reader can observe one leg without the other.
func (s *StatementStore) CreatePair(ctx context.Context, outgoing, incoming models.EntryDraft) (models.StatementEntry, models.StatementEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := stamp(outgoing)
	in := stamp(incoming)
	s.entries = append(s.entries, out, in)
	return out, in, nil
}

func (s *StatementStore) FindByUser(ctx context.Context, userID string) ([]models.StatementEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]models.StatementEntry, 0)
	for _, e := range s.entries {
		if e.UserID == userID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (s *StatementStore) FindByID(ctx context.Context, id string) (models.StatementEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return models.StatementEntry{}, models.ErrStatementNotFound
}

func (s *StatementStore) SumByUser(ctx context.Context, userID string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := decimal.Zero
	for _, e := range s.entries {
		if e.UserID == userID {
			sum = sum.Add(e.SignedAmount())
		}
	}
	return sum, nil
}

var _ interfaces.StatementStore = (*StatementStore)(nil)
