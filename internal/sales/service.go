package sales

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tiendapos/tiendapos/internal/catalog"
	"github.com/tiendapos/tiendapos/internal/ledger"
)

const defaultListLimit = 100

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListSales(ctx context.Context, limit int) ([]Sale, error)
	FindSale(ctx context.Context, id string) (Sale, error)
}

// CatalogPort resolves products and branches for draft validation.
type CatalogPort interface {
	FindProduct(ctx context.Context, code string) (catalog.Product, error)
	FindBranch(ctx context.Context, code string) (catalog.Branch, error)
}

// Service coordinates checkout for one tenant.
type Service struct {
	repo    RepositoryPort
	catalog CatalogPort
	now     func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort, cat CatalogPort) *Service {
	return &Service{repo: repo, catalog: cat, now: func() time.Time { return time.Now().UTC() }}
}

// LineInput is one requested sale position.
type LineInput struct {
	ProductCode string
	Quantity    int64
}

// CommitInput is a full checkout request. RecordedBy is the logged-in
// operator stamped on the audit trail, not the employee on the ticket.
type CommitInput struct {
	BranchCode   string
	EmployeeCode string
	RecordedBy   string
	Lines        []LineInput
}

// Commit validates the requested lines against the catalog, prices
// them at the current sale price, and writes the sale header, lines,
// stock decrements and EXIT movements in one transaction. Stock is
// checked again under a row lock inside the transaction, so two
// concurrent checkouts can never oversell a (product, branch) pair.
func (s *Service) Commit(ctx context.Context, input CommitInput) (Sale, error) {
	if len(input.Lines) == 0 {
		return Sale{}, ErrEmptyDraft
	}
	if _, err := s.catalog.FindBranch(ctx, input.BranchCode); err != nil {
		return Sale{}, err
	}

	draft := NewDraft(input.BranchCode, input.EmployeeCode)
	for _, in := range input.Lines {
		if in.Quantity <= 0 {
			return Sale{}, ErrInvalidQuantity
		}
		product, err := s.catalog.FindProduct(ctx, in.ProductCode)
		if err != nil {
			return Sale{}, err
		}
		if err := draft.AddLine(product.Code, product.Name, product.SalePrice, in.Quantity); err != nil {
			return Sale{}, err
		}
	}
	return s.commitDraft(ctx, draft, input.RecordedBy)
}

func (s *Service) commitDraft(ctx context.Context, draft *Draft, recordedBy string) (Sale, error) {
	lines := draft.Lines()
	if len(lines) == 0 {
		return Sale{}, ErrEmptyDraft
	}
	sale := Sale{
		ID:           uuid.NewString(),
		BranchCode:   draft.BranchCode,
		EmployeeCode: draft.EmployeeCode,
		Total:        draft.Total(),
		CreatedAt:    s.now(),
		Lines:        lines,
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.InsertSale(ctx, sale); err != nil {
			return err
		}
		if err := tx.InsertSaleLines(ctx, sale.ID, lines); err != nil {
			return err
		}
		for _, line := range lines {
			if _, err := tx.AdjustStock(ctx, line.ProductCode, sale.BranchCode, -line.Quantity); err != nil {
				return err
			}
			movement := ledger.Movement{
				ProductCode: line.ProductCode,
				ProductName: line.ProductName,
				BranchCode:  sale.BranchCode,
				Kind:        ledger.KindExit,
				Reason:      ledger.ReasonSale,
				Quantity:    line.Quantity,
				ReferenceID: sale.ID,
				RecordedBy:  recordedBy,
				OccurredAt:  sale.CreatedAt,
			}
			if err := tx.RecordMovement(ctx, movement); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Sale{}, err
	}
	return sale, nil
}

// ListSales returns recent sales, newest first.
func (s *Service) ListSales(ctx context.Context, limit int) ([]Sale, error) {
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	return s.repo.ListSales(ctx, limit)
}

// FindSale resolves one sale by id.
func (s *Service) FindSale(ctx context.Context, id string) (Sale, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Sale{}, ErrSaleNotFound
	}
	return s.repo.FindSale(ctx, id)
}
