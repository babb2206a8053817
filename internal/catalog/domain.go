package catalog

import (
	"errors"
	"time"

	"github.com/tiendapos/tiendapos/internal/money"
)

// Branch is a physical store location. Stock is tracked per branch.
type Branch struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Active  bool   `json:"active"`
}

// Category is static reference data for grouping products.
type Category struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Product is a catalog item. Quantities live in the stock ledger, not
// on the product row; StockByBranch is filled in on reads.
type Product struct {
	Code          string           `json:"code"`
	Name          string           `json:"name"`
	CategoryCode  string           `json:"category_code"`
	PurchasePrice money.Cents      `json:"purchase_price"`
	SalePrice     money.Cents      `json:"sale_price"`
	Unit          string           `json:"unit"`
	MinimumStock  int64            `json:"minimum_stock"`
	Active        bool             `json:"active"`
	RegisteredAt  time.Time        `json:"registered_at"`
	StockByBranch map[string]int64 `json:"stock_by_branch,omitempty"`
}

// Employee works at one branch.
type Employee struct {
	Code       string      `json:"code"`
	Name       string      `json:"name"`
	Role       string      `json:"role"`
	BranchCode string      `json:"branch_code"`
	Phone      string      `json:"phone"`
	Email      string      `json:"email"`
	Salary     money.Cents `json:"salary"`
	HiredAt    time.Time   `json:"hired_at"`
	Active     bool        `json:"active"`
}

// Supplier provides purchased goods.
type Supplier struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Active  bool   `json:"active"`
}

var (
	// ErrProductNotFound indicates an absent or inactive product code.
	ErrProductNotFound = errors.New("catalog: product not found")
	// ErrBranchNotFound indicates an unknown branch code.
	ErrBranchNotFound = errors.New("catalog: branch not found")
	// ErrSupplierNotFound indicates an unknown or inactive supplier code.
	ErrSupplierNotFound = errors.New("catalog: supplier not found")
	// ErrEmployeeNotFound indicates an unknown employee code.
	ErrEmployeeNotFound = errors.New("catalog: employee not found")
	// ErrCodeTaken indicates a duplicate entity code. Codes are unique
	// and immutable within a tenant.
	ErrCodeTaken = errors.New("catalog: code already in use")
	// ErrNegativePrice indicates a price below zero.
	ErrNegativePrice = errors.New("catalog: price must not be negative")
)
