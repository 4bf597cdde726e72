// internal/core/domain/movement.go
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MovementType classifies a ledger entry
type MovementType string

// Movement type constants
const (
	MovementInbound    MovementType = "inbound"
	MovementOutbound   MovementType = "outbound"
	MovementAdjustment MovementType = "adjustment"
)

// IsValid reports whether t is one of the known movement types.
func (t MovementType) IsValid() bool {
	switch t {
	case MovementInbound, MovementOutbound, MovementAdjustment:
		return true
	}
	return false
}

// Movement is one append-only ledger entry. Movements are never updated or
// deleted; corrections are recorded as adjustments.
type Movement struct {
	MovementID   uuid.UUID    `json:"movement_id"`
	OccurredAt   time.Time    `json:"occurred_at"`
	ProductID    uuid.UUID    `json:"product_id"`
	MovementType MovementType `json:"movement_type"`
	Quantity     int          `json:"quantity"`
	OrderRef     string       `json:"order_ref,omitempty"`
	Note         string       `json:"note,omitempty"`
}

// MovementWithProduct is a ledger row joined with its product name for
// history listings.
type MovementWithProduct struct {
	Movement
	ProductName string `json:"product_name"`
}

// Validate performs domain validation on the movement
func (m *Movement) Validate() error {
	if m.ProductID == uuid.Nil {
		return fmt.Errorf("product_id is required")
	}
	if !m.MovementType.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidMovementType, m.MovementType)
	}
	if m.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	return nil
}

// PrepareForStorage assigns the server-side identity and timestamp when the
// caller did not supply them.
func (m *Movement) PrepareForStorage() {
	if m.MovementID == uuid.Nil {
		m.MovementID = uuid.New()
	}
	if m.OccurredAt.IsZero() {
		m.OccurredAt = time.Now()
	}
}
