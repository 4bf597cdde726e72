// internal/core/domain/errors.go
package domain

import "errors"

// Sentinel errors surfaced across service boundaries. Handlers map these to
// HTTP status codes with errors.Is.
var (
	ErrDuplicateSKU        = errors.New("sku already exists")
	ErrUnknownProduct      = errors.New("product not found")
	ErrInvalidMovementType = errors.New("invalid movement type")
	ErrConcurrentUpdate    = errors.New("stock row contended, retries exhausted")
	ErrInsufficientHistory = errors.New("insufficient sales history")
	ErrNumericFit          = errors.New("regression produced a non-finite result")
	ErrUserExists          = errors.New("username already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
)
