package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/CaioWF/ignite-finapi/internal/auth"
	"github.com/CaioWF/ignite-finapi/internal/models"
	"github.com/shopspring/decimal"
)

// Amounts and balances go over the wire as JSON numbers, not decimal's
// default quoted strings.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type errorBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Message: message})
}

// writeError maps domain errors onto HTTP statuses. Anything unrecognized is
// an internal error; the underlying cause is logged, never echoed.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrUserNotFound):
		writeMessage(w, http.StatusNotFound, "User not found")
	case errors.Is(err, models.ErrStatementNotFound):
		writeMessage(w, http.StatusNotFound, "Statement not found")
	case errors.Is(err, models.ErrInsufficientFunds):
		writeMessage(w, http.StatusBadRequest, "Insufficient funds")
	case errors.Is(err, models.ErrEmailTaken):
		writeMessage(w, http.StatusBadRequest, "User already exists")
	case errors.Is(err, models.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, "Incorrect email or password")
	case errors.Is(err, models.ErrInvalidOperation):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		writeMessage(w, http.StatusUnauthorized, "JWT invalid token!")
	default:
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}
