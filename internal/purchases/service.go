package purchases

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tiendapos/tiendapos/internal/catalog"
	"github.com/tiendapos/tiendapos/internal/ledger"
	"github.com/tiendapos/tiendapos/internal/money"
)

const defaultListLimit = 100

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListPurchases(ctx context.Context, limit int) ([]Purchase, error)
	FindPurchase(ctx context.Context, id string) (Purchase, error)
}

// CatalogPort resolves products, branches and suppliers.
type CatalogPort interface {
	FindProduct(ctx context.Context, code string) (catalog.Product, error)
	FindBranch(ctx context.Context, code string) (catalog.Branch, error)
	FindSupplier(ctx context.Context, code string) (catalog.Supplier, error)
}

// Service coordinates goods receipts for one tenant.
type Service struct {
	repo    RepositoryPort
	catalog CatalogPort
	now     func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort, cat CatalogPort) *Service {
	return &Service{repo: repo, catalog: cat, now: func() time.Time { return time.Now().UTC() }}
}

// LineInput is one requested receipt position. UnitCost is what the
// operator actually paid, per line.
type LineInput struct {
	ProductCode string
	Quantity    int64
	UnitCost    money.Cents
}

// CommitInput is a full receipt request. RecordedBy is the logged-in
// operator stamped on the audit trail.
type CommitInput struct {
	SupplierCode string
	BranchCode   string
	RecordedBy   string
	Lines        []LineInput
}

// Commit validates the receipt against the catalog, snapshots the
// supplier name, and writes the purchase header, lines, stock
// increments and ENTRY movements in one transaction.
func (s *Service) Commit(ctx context.Context, input CommitInput) (Purchase, error) {
	if input.SupplierCode == "" {
		return Purchase{}, ErrMissingSupplier
	}
	if len(input.Lines) == 0 {
		return Purchase{}, ErrEmptyPurchase
	}
	supplier, err := s.catalog.FindSupplier(ctx, input.SupplierCode)
	if err != nil {
		return Purchase{}, err
	}
	if _, err := s.catalog.FindBranch(ctx, input.BranchCode); err != nil {
		return Purchase{}, err
	}

	var lines []PurchaseLine
	var total money.Cents
	for _, in := range input.Lines {
		if in.Quantity <= 0 {
			return Purchase{}, ErrInvalidQuantity
		}
		if in.UnitCost < 0 {
			return Purchase{}, ErrInvalidPrice
		}
		product, err := s.catalog.FindProduct(ctx, in.ProductCode)
		if err != nil {
			return Purchase{}, err
		}
		line := PurchaseLine{
			ProductCode: product.Code,
			ProductName: product.Name,
			Quantity:    in.Quantity,
			UnitCost:    in.UnitCost,
			LineTotal:   in.UnitCost.Mul(in.Quantity),
		}
		lines = append(lines, line)
		total += line.LineTotal
	}

	purchase := Purchase{
		ID:           uuid.NewString(),
		SupplierCode: supplier.Code,
		SupplierName: supplier.Name,
		BranchCode:   input.BranchCode,
		Total:        total,
		CreatedAt:    s.now(),
		Lines:        lines,
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.InsertPurchase(ctx, purchase); err != nil {
			return err
		}
		if err := tx.InsertPurchaseLines(ctx, purchase.ID, lines); err != nil {
			return err
		}
		for _, line := range lines {
			if _, err := tx.AdjustStock(ctx, line.ProductCode, purchase.BranchCode, line.Quantity); err != nil {
				return err
			}
			movement := ledger.Movement{
				ProductCode: line.ProductCode,
				ProductName: line.ProductName,
				BranchCode:  purchase.BranchCode,
				Kind:        ledger.KindEntry,
				Reason:      ledger.ReasonPurchase,
				Quantity:    line.Quantity,
				ReferenceID: purchase.ID,
				RecordedBy:  input.RecordedBy,
				OccurredAt:  purchase.CreatedAt,
			}
			if err := tx.RecordMovement(ctx, movement); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Purchase{}, err
	}
	return purchase, nil
}

// ListPurchases returns recent purchases, newest first.
func (s *Service) ListPurchases(ctx context.Context, limit int) ([]Purchase, error) {
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	return s.repo.ListPurchases(ctx, limit)
}

// FindPurchase resolves one purchase by id.
func (s *Service) FindPurchase(ctx context.Context, id string) (Purchase, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Purchase{}, ErrPurchaseNotFound
	}
	return s.repo.FindPurchase(ctx, id)
}
