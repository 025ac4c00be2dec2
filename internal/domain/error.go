package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid execution context for query")
	ErrReadDatabaseRow    = errors.New("failed to read database row")

	// Redemption errors
	ErrCodeNotFound    = errors.New("invitation code not found")
	ErrCodeExpired     = errors.New("invitation code has expired")
	ErrCodeExhausted   = errors.New("invitation code has no uses left")
	ErrCodeAlreadyUsed = errors.New("invitation code already used by this user")

	// Order lifecycle errors
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidOrderState = errors.New("order state does not permit this transition")
)
