package ledger

import (
	"errors"
	"time"
)

// Kind says which way a movement changed stock.
type Kind string

const (
	// KindEntry is stock coming in.
	KindEntry Kind = "ENTRY"
	// KindExit is stock going out.
	KindExit Kind = "EXIT"
)

// Reason names the business event behind a movement.
type Reason string

const (
	// ReasonSale marks movements produced by committed sales.
	ReasonSale Reason = "SALE"
	// ReasonPurchase marks movements produced by committed purchases.
	ReasonPurchase Reason = "PURCHASE"
)

// Movement is one append-only audit-trail row. Exactly one movement is
// recorded per committed sale or purchase line; movements are never
// updated or deleted. RecordedBy is the username of the logged-in
// operator, empty for anonymous commits.
type Movement struct {
	ID          int64     `json:"id"`
	ProductCode string    `json:"product_code"`
	ProductName string    `json:"product_name"`
	BranchCode  string    `json:"branch_code"`
	Kind        Kind      `json:"kind"`
	Reason      Reason    `json:"reason"`
	Quantity    int64     `json:"quantity"`
	ReferenceID string    `json:"reference_id"`
	RecordedBy  string    `json:"recorded_by"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// MovementFilter bounds movement queries.
type MovementFilter struct {
	BranchCode string
	Kind       Kind
	Limit      int
}

// ErrInsufficientStock is returned when an adjustment would push the
// on-hand quantity below zero.
var ErrInsufficientStock = errors.New("ledger: insufficient stock")

// ErrInvalidQuantity indicates a non-positive movement quantity.
var ErrInvalidQuantity = errors.New("ledger: quantity must be positive")
