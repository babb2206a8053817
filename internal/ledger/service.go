package ledger

import (
	"context"
	"strings"
)

const defaultMovementLimit = 100

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	QuantityOnHand(ctx context.Context, productCode, branchCode string) (int64, error)
	ListMovements(ctx context.Context, filter MovementFilter) ([]Movement, error)
}

// Service exposes read access to the stock ledger and movement log.
// Writes happen only inside sale and purchase commits, through TxLedger.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// QuantityOnHand reports current stock for a (product, branch) pair.
func (s *Service) QuantityOnHand(ctx context.Context, productCode, branchCode string) (int64, error) {
	return s.repo.QuantityOnHand(ctx, strings.TrimSpace(productCode), strings.TrimSpace(branchCode))
}

// ListMovements returns the audit trail newest first, capped at the
// default limit when the caller does not set one.
func (s *Service) ListMovements(ctx context.Context, filter MovementFilter) ([]Movement, error) {
	if filter.Limit <= 0 || filter.Limit > defaultMovementLimit {
		filter.Limit = defaultMovementLimit
	}
	return s.repo.ListMovements(ctx, filter)
}
