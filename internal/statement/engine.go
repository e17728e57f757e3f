// Package statement holds the core of the ledger: entry creation rules, the
// sufficient-funds invariant and the balance/history queries derived from the
// entry store.
package statement

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/CaioWF/ignite-finapi/internal/interfaces"
	"github.com/CaioWF/ignite-finapi/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Engine is the sole entry point for creating and reading statement activity.
// It validates every request against the user directory, enforces that no
// debit drives a balance negative, and serializes the funds check with the
// subsequent write through a per-user lock map.
type Engine struct {
	users interfaces.UserDirectory
	store interfaces.StatementStore

	muMap map[string]*sync.Mutex // one lock per user id
	mapMu sync.Mutex             // protects muMap itself

	logger *zap.Logger
}

// NewEngine wires the engine to its collaborators. The logger may be nil.
func NewEngine(users interfaces.UserDirectory, store interfaces.StatementStore, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		users:  users,
		store:  store,
		muMap:  make(map[string]*sync.Mutex),
		logger: logger,
	}
}

// CreateEntryRequest describes one requested money movement. ReceiverID is
// set only for transfers and names the user receiving the funds.
type CreateEntryRequest struct {
	UserID      string
	Type        models.OperationType
	Amount      decimal.Decimal
	Description string
	ReceiverID  string
}

// Balance is the result of a statement read: the signed sum plus the full
// ordered entry sequence it was derived from.
type Balance struct {
	Balance   decimal.Decimal         `json:"balance"`
	Statement []models.StatementEntry `json:"statement"`
}

func (e *Engine) userLock(userID string) *sync.Mutex {
	e.mapMu.Lock()
	defer e.mapMu.Unlock()

	if _, exists := e.muMap[userID]; !exists {
		e.muMap[userID] = &sync.Mutex{}
	}
	return e.muMap[userID]
}

// lockUsers acquires the locks for the given user ids in sorted order so that
// concurrent transfers between the same pair cannot deadlock. Duplicate ids
// are locked once.
func (e *Engine) lockUsers(ids ...string) func() {
	locks := make([]*sync.Mutex, 0, len(ids))
	seen := make(map[string]bool, len(ids))

	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	for _, id := range sorted {
		if seen[id] {
			continue
		}
		seen[id] = true
		locks = append(locks, e.userLock(id))
	}

	for _, mu := range locks {
		mu.Lock()
	}
	return func() {
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].Unlock()
		}
	}
}

func validate(req CreateEntryRequest) error {
	if !req.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", models.ErrInvalidOperation, req.Type)
	}
	if !req.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", models.ErrInvalidOperation)
	}
	if req.Description == "" {
		return fmt.Errorf("%w: description is required", models.ErrInvalidOperation)
	}
	if req.Type == models.OperationTransfer && req.ReceiverID == "" {
		return fmt.Errorf("%w: transfer requires a receiver", models.ErrInvalidOperation)
	}
	// Both legs of a self-transfer would read as outgoing (UserID equals the
	// sender on each), debiting twice what the funds check allowed.
	if req.Type == models.OperationTransfer && req.ReceiverID == req.UserID {
		return fmt.Errorf("%w: cannot transfer to yourself", models.ErrInvalidOperation)
	}
	if req.Type != models.OperationTransfer && req.ReceiverID != "" {
		return fmt.Errorf("%w: receiver is only valid for transfers", models.ErrInvalidOperation)
	}
	return nil
}

// CreateEntry validates and records one money movement. For transfers it
// records both legs as a single atomic unit and returns the sender's entry.
// Validation order: request shape, owner existence, receiver existence,
// funds. Any failure leaves the store untouched.
func (e *Engine) CreateEntry(ctx context.Context, req CreateEntryRequest) (models.StatementEntry, error) {
	if err := validate(req); err != nil {
		return models.StatementEntry{}, err
	}

	if _, err := e.users.FindByID(ctx, req.UserID); err != nil {
		return models.StatementEntry{}, err
	}
	if req.Type == models.OperationTransfer {
		if _, err := e.users.FindByID(ctx, req.ReceiverID); err != nil {
			return models.StatementEntry{}, err
		}
	}

	// Hold the involved users' locks across the funds check and the write so
	// two concurrent debits cannot both observe a sufficient balance.
	var unlock func()
	if req.Type == models.OperationTransfer {
		unlock = e.lockUsers(req.UserID, req.ReceiverID)
	} else {
		unlock = e.lockUsers(req.UserID)
	}
	defer unlock()

	if req.Type == models.OperationWithdraw || req.Type == models.OperationTransfer {
		balance, err := e.store.SumByUser(ctx, req.UserID)
		if err != nil {
			return models.StatementEntry{}, fmt.Errorf("computing balance for user %s: %w", req.UserID, err)
		}
		if req.Amount.GreaterThan(balance) {
			return models.StatementEntry{}, models.ErrInsufficientFunds
		}
	}

	if req.Type != models.OperationTransfer {
		entry, err := e.store.Create(ctx, models.EntryDraft{
			UserID:      req.UserID,
			Type:        req.Type,
			Amount:      req.Amount,
			Description: req.Description,
		})
		if err != nil {
			return models.StatementEntry{}, fmt.Errorf("recording %s for user %s: %w", req.Type, req.UserID, err)
		}
		e.logger.Info("entry recorded",
			zap.String("entry_id", entry.ID),
			zap.String("user_id", entry.UserID),
			zap.String("type", string(entry.Type)))
		return entry, nil
	}

	sender := req.UserID
	outgoing := models.EntryDraft{
		UserID:      sender,
		SenderID:    &sender,
		Type:        models.OperationTransfer,
		Amount:      req.Amount,
		Description: req.Description,
	}
	incoming := models.EntryDraft{
		UserID:      req.ReceiverID,
		SenderID:    &sender,
		Type:        models.OperationTransfer,
		Amount:      req.Amount,
		Description: req.Description,
	}

	out, _, err := e.store.CreatePair(ctx, outgoing, incoming)
	if err != nil {
		return models.StatementEntry{}, fmt.Errorf("recording transfer from %s to %s: %w", sender, req.ReceiverID, err)
	}
	e.logger.Info("transfer recorded",
		zap.String("entry_id", out.ID),
		zap.String("sender_id", sender),
		zap.String("receiver_id", req.ReceiverID))
	return out, nil
}

// GetBalance returns the current signed sum and the full ordered statement of
// a user. Read-only.
func (e *Engine) GetBalance(ctx context.Context, userID string) (Balance, error) {
	if _, err := e.users.FindByID(ctx, userID); err != nil {
		return Balance{}, err
	}

	entries, err := e.store.FindByUser(ctx, userID)
	if err != nil {
		return Balance{}, fmt.Errorf("loading statement for user %s: %w", userID, err)
	}

	balance := decimal.Zero
	for _, entry := range entries {
		balance = balance.Add(entry.SignedAmount())
	}
	return Balance{Balance: balance, Statement: entries}, nil
}

// GetEntry returns one entry from the user's statement. An entry that exists
// but belongs to someone else is reported as not found, same as a missing
// one.
func (e *Engine) GetEntry(ctx context.Context, userID, entryID string) (models.StatementEntry, error) {
	if _, err := e.users.FindByID(ctx, userID); err != nil {
		return models.StatementEntry{}, err
	}

	entry, err := e.store.FindByID(ctx, entryID)
	if err != nil {
		return models.StatementEntry{}, err
	}
	if entry.UserID != userID {
		return models.StatementEntry{}, models.ErrStatementNotFound
	}
	return entry, nil
}
