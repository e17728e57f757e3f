// Package postgres implements the store interfaces on database/sql with the
// lib/pq driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/CaioWF/ignite-finapi/internal/interfaces"
	"github.com/CaioWF/ignite-finapi/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type StatementStore struct {
	db *sql.DB
}

func NewStatementStore(db *sql.DB) *StatementStore {
	return &StatementStore{db: db}
}

const insertEntry = `INSERT INTO statements (id, user_id, sender_id, type, amount, description, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insert(ctx context.Context, ex execer, draft models.EntryDraft) (models.StatementEntry, error) {
	now := time.Now().UTC()
	entry := models.StatementEntry{
		ID:          uuid.NewString(),
		UserID:      draft.UserID,
		SenderID:    draft.SenderID,
		Type:        draft.Type,
		Amount:      draft.Amount,
		Description: draft.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := ex.ExecContext(ctx, insertEntry,
		entry.ID, entry.UserID, entry.SenderID, entry.Type, entry.Amount, entry.Description, entry.CreatedAt, entry.UpdatedAt)
	if err != nil {
		return models.StatementEntry{}, fmt.Errorf("inserting statement entry: %w", err)
	}
	return entry, nil
}

func (s *StatementStore) Create(ctx context.Context, draft models.EntryDraft) (models.StatementEntry, error) {
	return insert(ctx, s.db, draft)
}

// CreatePair writes both transfer legs inside a single transaction: if either
// insert fails, the whole transfer is rolled back.
func (s *StatementStore) CreatePair(ctx context.Context, outgoing, incoming models.EntryDraft) (models.StatementEntry, models.StatementEntry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.StatementEntry{}, models.StatementEntry{}, fmt.Errorf("beginning transfer transaction: %w", err)
	}
	defer tx.Rollback()

	out, err := insert(ctx, tx, outgoing)
	if err != nil {
		return models.StatementEntry{}, models.StatementEntry{}, err
	}
	in, err := insert(ctx, tx, incoming)
	if err != nil {
		return models.StatementEntry{}, models.StatementEntry{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.StatementEntry{}, models.StatementEntry{}, fmt.Errorf("committing transfer transaction: %w", err)
	}
	return out, in, nil
}

const selectEntry = `SELECT id, user_id, sender_id, type, amount, description, created_at, updated_at FROM statements`

func scanEntry(row interface{ Scan(...any) error }) (models.StatementEntry, error) {
	var entry models.StatementEntry
	var sender sql.NullString
	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&sender,
		&entry.Type,
		&entry.Amount,
		&entry.Description,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return models.StatementEntry{}, err
	}
	if sender.Valid {
		entry.SenderID = &sender.String
	}
	return entry, nil
}

func (s *StatementStore) FindByUser(ctx context.Context, userID string) ([]models.StatementEntry, error) {
	rows, err := s.db.QueryContext(ctx, selectEntry+` WHERE user_id = $1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying statements for user %s: %w", userID, err)
	}
	defer rows.Close()

	entries := make([]models.StatementEntry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning statement entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *StatementStore) FindByID(ctx context.Context, id string) (models.StatementEntry, error) {
	entry, err := scanEntry(s.db.QueryRowContext(ctx, selectEntry+` WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return models.StatementEntry{}, models.ErrStatementNotFound
	}
	if err != nil {
		return models.StatementEntry{}, fmt.Errorf("querying statement entry %s: %w", id, err)
	}
	return entry, nil
}

// SumByUser computes the signed sum in SQL: deposits and incoming transfers
// count positive, withdrawals and outgoing transfers negative.
func (s *StatementStore) SumByUser(ctx context.Context, userID string) (decimal.Decimal, error) {
	const query = `SELECT COALESCE(SUM(CASE
		WHEN type = 'withdraw' THEN -amount
		WHEN type = 'transfer' AND sender_id = user_id THEN -amount
		ELSE amount
	END), 0) FROM statements WHERE user_id = $1`

	var sum decimal.Decimal
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("summing statements for user %s: %w", userID, err)
	}
	return sum, nil
}

var _ interfaces.StatementStore = (*StatementStore)(nil)
