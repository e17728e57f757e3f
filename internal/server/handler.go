// Package server is the HTTP layer: it decodes requests, hands them to the
// users service and the statement engine, and maps domain errors to status
// codes. No business rules live here.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/CaioWF/ignite-finapi/internal/auth"
	"github.com/CaioWF/ignite-finapi/internal/interfaces"
	"github.com/CaioWF/ignite-finapi/internal/models"
	"github.com/CaioWF/ignite-finapi/internal/models/events"
	"github.com/CaioWF/ignite-finapi/internal/statement"
	"github.com/CaioWF/ignite-finapi/internal/users"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Server struct {
	users     *users.Service
	engine    *statement.Engine
	tokens    *auth.TokenManager
	publisher interfaces.EventPublisher // optional, may be nil
	logger    *zap.Logger
}

func New(us *users.Service, engine *statement.Engine, tokens *auth.TokenManager, publisher interfaces.EventPublisher, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		users:     us,
		engine:    engine,
		tokens:    tokens,
		publisher: publisher,
		logger:    logger,
	}
}

type signUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := s.users.SignUp(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

type sessionRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := s.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.Profile(r.Context(), callerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type entryRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

func (s *Server) createEntry(opType models.OperationType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req entryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		entry, err := s.engine.CreateEntry(r.Context(), statement.CreateEntryRequest{
			UserID:      callerID(r),
			Type:        opType,
			Amount:      req.Amount,
			Description: req.Description,
			ReceiverID:  chi.URLParam(r, "user_id"),
		})
		if err != nil {
			writeError(w, err)
			return
		}

		s.publishEntry(entry)
		writeJSON(w, http.StatusCreated, entry)
	}
}

// publishEntry emits a best-effort notification after the entry has been
// committed. Failures are logged and never affect the response.
func (s *Server) publishEntry(entry models.StatementEntry) {
	if s.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	event := events.EntryRecorded{
		EntryID:     entry.ID,
		UserID:      entry.UserID,
		SenderID:    entry.SenderID,
		Type:        string(entry.Type),
		Amount:      entry.Amount,
		Description: entry.Description,
		OccurredAt:  entry.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish entry event",
			zap.String("entry_id", entry.ID), zap.Error(err))
	}
}

func (s *Server) balance(w http.ResponseWriter, r *http.Request) {
	result, err := s.engine.GetBalance(r.Context(), callerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) entry(w http.ResponseWriter, r *http.Request) {
	result, err := s.engine.GetEntry(r.Context(), callerID(r), chi.URLParam(r, "statement_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
