package models

import "errors"

// Domain errors. The HTTP layer maps these to status codes with errors.Is;
// everything else surfaces as an internal error.
var (
	// ErrUserNotFound covers both a missing statement owner and a missing
	// transfer counterparty.
	ErrUserNotFound = errors.New("user not found")

	// ErrInsufficientFunds rejects a withdrawal or outgoing transfer whose
	// amount exceeds the current balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrStatementNotFound is returned when an entry does not exist or does
	// not belong to the requesting user. The two cases are indistinguishable
	// on purpose.
	ErrStatementNotFound = errors.New("statement not found")

	// ErrInvalidOperation rejects malformed requests before any store access:
	// unknown type, non-positive amount, empty description, or a counterparty
	// that is present/absent for the wrong operation type.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrEmailTaken is returned on signup with an already registered email.
	ErrEmailTaken = errors.New("user already exists")

	// ErrInvalidCredentials is returned on authentication failure. Wrong
	// email and wrong password are not distinguished.
	ErrInvalidCredentials = errors.New("incorrect email or password")
)
