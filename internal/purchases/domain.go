package purchases

import (
	"errors"
	"time"

	"github.com/tiendapos/tiendapos/internal/money"
)

// Purchase is one committed goods receipt. SupplierName is a snapshot
// taken at commit time so supplier edits do not rewrite history.
type Purchase struct {
	ID           string         `json:"id"`
	SupplierCode string         `json:"supplier_code"`
	SupplierName string         `json:"supplier_name"`
	BranchCode   string         `json:"branch_code"`
	Total        money.Cents    `json:"total"`
	CreatedAt    time.Time      `json:"created_at"`
	Lines        []PurchaseLine `json:"lines"`
}

// PurchaseLine is one received product position. UnitCost is entered
// by the operator per receipt; it may differ from the catalog's
// purchase price.
type PurchaseLine struct {
	ProductCode string      `json:"product_code"`
	ProductName string      `json:"product_name"`
	Quantity    int64       `json:"quantity"`
	UnitCost    money.Cents `json:"unit_cost"`
	LineTotal   money.Cents `json:"line_total"`
}

var (
	// ErrEmptyPurchase indicates a commit attempt with no lines.
	ErrEmptyPurchase = errors.New("purchases: purchase has no lines")
	// ErrMissingSupplier indicates a commit without a supplier.
	ErrMissingSupplier = errors.New("purchases: supplier is required")
	// ErrInvalidQuantity indicates a non-positive line quantity.
	ErrInvalidQuantity = errors.New("purchases: quantity must be positive")
	// ErrInvalidPrice indicates a negative unit cost.
	ErrInvalidPrice = errors.New("purchases: unit cost must not be negative")
	// ErrPurchaseNotFound indicates an unknown purchase id.
	ErrPurchaseNotFound = errors.New("purchases: purchase not found")
)
