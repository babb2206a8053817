package sales

import (
	"errors"
	"time"

	"github.com/tiendapos/tiendapos/internal/money"
)

// Sale is one committed checkout. Once written it is immutable; there
// are no refunds or edits, only the audit trail in the movement log.
type Sale struct {
	ID           string      `json:"id"`
	BranchCode   string      `json:"branch_code"`
	EmployeeCode string      `json:"employee_code"`
	Total        money.Cents `json:"total"`
	CreatedAt    time.Time   `json:"created_at"`
	Lines        []SaleLine  `json:"lines"`
}

// SaleLine is one product position on a sale. UnitPrice is the sale
// price snapshot taken when the line was added, so later catalog edits
// do not rewrite history.
type SaleLine struct {
	ProductCode string      `json:"product_code"`
	ProductName string      `json:"product_name"`
	Quantity    int64       `json:"quantity"`
	UnitPrice   money.Cents `json:"unit_price"`
	LineTotal   money.Cents `json:"line_total"`
}

var (
	// ErrEmptyDraft indicates a commit attempt with no lines.
	ErrEmptyDraft = errors.New("sales: draft has no lines")
	// ErrInvalidQuantity indicates a non-positive line quantity.
	ErrInvalidQuantity = errors.New("sales: quantity must be positive")
	// ErrLineNotFound indicates a line removal for an absent product.
	ErrLineNotFound = errors.New("sales: line not found")
	// ErrSaleNotFound indicates an unknown sale id.
	ErrSaleNotFound = errors.New("sales: sale not found")
)

// Draft accumulates lines before a commit. Lines keep insertion order;
// adding a product that is already on the draft merges into the
// existing line instead of appending a duplicate.
type Draft struct {
	BranchCode   string
	EmployeeCode string
	lines        []SaleLine
}

// NewDraft opens an empty draft for one branch.
func NewDraft(branchCode, employeeCode string) *Draft {
	return &Draft{BranchCode: branchCode, EmployeeCode: employeeCode}
}

// AddLine puts qty units of a product on the draft at the given unit
// price. Repeated adds of the same product accumulate quantity; the
// unit price of the first add wins.
func (d *Draft) AddLine(productCode, productName string, unitPrice money.Cents, qty int64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	for i := range d.lines {
		if d.lines[i].ProductCode == productCode {
			d.lines[i].Quantity += qty
			d.lines[i].LineTotal = d.lines[i].UnitPrice.Mul(d.lines[i].Quantity)
			return nil
		}
	}
	d.lines = append(d.lines, SaleLine{
		ProductCode: productCode,
		ProductName: productName,
		Quantity:    qty,
		UnitPrice:   unitPrice,
		LineTotal:   unitPrice.Mul(qty),
	})
	return nil
}

// RemoveLine drops the product's line entirely.
func (d *Draft) RemoveLine(productCode string) error {
	for i := range d.lines {
		if d.lines[i].ProductCode == productCode {
			d.lines = append(d.lines[:i], d.lines[i+1:]...)
			return nil
		}
	}
	return ErrLineNotFound
}

// Lines returns the draft lines in insertion order.
func (d *Draft) Lines() []SaleLine {
	out := make([]SaleLine, len(d.lines))
	copy(out, d.lines)
	return out
}

// Quantity reports how many units of a product the draft holds.
func (d *Draft) Quantity(productCode string) int64 {
	for i := range d.lines {
		if d.lines[i].ProductCode == productCode {
			return d.lines[i].Quantity
		}
	}
	return 0
}

// Total sums the line totals.
func (d *Draft) Total() money.Cents {
	var total money.Cents
	for i := range d.lines {
		total += d.lines[i].LineTotal
	}
	return total
}
