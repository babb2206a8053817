package sales

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tiendapos/tiendapos/internal/catalog"
	"github.com/tiendapos/tiendapos/internal/ledger"
	"github.com/tiendapos/tiendapos/internal/money"
)

type fakeCatalog struct {
	products map[string]catalog.Product
	branches map[string]catalog.Branch
}

func (f *fakeCatalog) FindProduct(_ context.Context, code string) (catalog.Product, error) {
	p, ok := f.products[code]
	if !ok || !p.Active {
		return catalog.Product{}, catalog.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeCatalog) FindBranch(_ context.Context, code string) (catalog.Branch, error) {
	b, ok := f.branches[code]
	if !ok {
		return catalog.Branch{}, catalog.ErrBranchNotFound
	}
	return b, nil
}

type fakeRepo struct {
	sales     map[string]Sale
	stock     map[string]int64
	movements []ledger.Movement
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{sales: map[string]Sale{}, stock: map[string]int64{}}
}

func stockKey(product, branch string) string { return product + "|" + branch }

type fakeTx struct {
	repo      *fakeRepo
	sales     map[string]Sale
	stock     map[string]int64
	movements []ledger.Movement
}

// WithTx hands the callback a staged copy and applies it only on
// success, mirroring transaction rollback.
func (f *fakeRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx := &fakeTx{repo: f, sales: map[string]Sale{}, stock: map[string]int64{}}
	for k, v := range f.stock {
		tx.stock[k] = v
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for id, s := range tx.sales {
		f.sales[id] = s
	}
	f.stock = tx.stock
	f.movements = append(f.movements, tx.movements...)
	return nil
}

func (f *fakeRepo) ListSales(_ context.Context, limit int) ([]Sale, error) {
	var out []Sale
	for _, s := range f.sales {
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeRepo) FindSale(_ context.Context, id string) (Sale, error) {
	s, ok := f.sales[id]
	if !ok {
		return Sale{}, ErrSaleNotFound
	}
	return s, nil
}

func (t *fakeTx) InsertSale(_ context.Context, sale Sale) error {
	t.sales[sale.ID] = sale
	return nil
}

func (t *fakeTx) InsertSaleLines(_ context.Context, saleID string, lines []SaleLine) error {
	s := t.sales[saleID]
	s.Lines = lines
	t.sales[saleID] = s
	return nil
}

func (t *fakeTx) AdjustStock(_ context.Context, product, branch string, delta int64) (int64, error) {
	next := t.stock[stockKey(product, branch)] + delta
	if next < 0 {
		return 0, ledger.ErrInsufficientStock
	}
	t.stock[stockKey(product, branch)] = next
	return next, nil
}

func (t *fakeTx) RecordMovement(_ context.Context, m ledger.Movement) error {
	if m.Quantity <= 0 {
		return ledger.ErrInvalidQuantity
	}
	t.movements = append(t.movements, m)
	return nil
}

func cents(s string) money.Cents {
	c, err := money.Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

func testService(repo *fakeRepo) (*Service, *fakeCatalog) {
	cat := &fakeCatalog{
		products: map[string]catalog.Product{
			"PROD001": {Code: "PROD001", Name: "Arroz 1kg", SalePrice: cents("45.50"), Active: true},
			"PROD002": {Code: "PROD002", Name: "Frijol 1kg", SalePrice: cents("78.00"), Active: true},
			"PROD009": {Code: "PROD009", Name: "Descontinuado", SalePrice: cents("10.00"), Active: false},
		},
		branches: map[string]catalog.Branch{
			"SUC001": {Code: "SUC001", Name: "Centro", Active: true},
		},
	}
	return NewService(repo, cat), cat
}

func TestCommitComputesTotalFromSnapshotPrices(t *testing.T) {
	repo := newFakeRepo()
	repo.stock[stockKey("PROD001", "SUC001")] = 10
	repo.stock[stockKey("PROD002", "SUC001")] = 10
	svc, _ := testService(repo)

	sale, err := svc.Commit(context.Background(), CommitInput{
		BranchCode:   "SUC001",
		EmployeeCode: "EMP001",
		Lines: []LineInput{
			{ProductCode: "PROD001", Quantity: 2},
			{ProductCode: "PROD002", Quantity: 1},
		},
	})
	require.NoError(t, err)
	require.Equal(t, cents("169.00"), sale.Total)
	require.Len(t, sale.Lines, 2)
	require.Equal(t, cents("91.00"), sale.Lines[0].LineTotal)
	require.Equal(t, int64(8), repo.stock[stockKey("PROD001", "SUC001")])
	require.Equal(t, int64(9), repo.stock[stockKey("PROD002", "SUC001")])
}

func TestCommitRecordsExitMovementPerLine(t *testing.T) {
	repo := newFakeRepo()
	repo.stock[stockKey("PROD001", "SUC001")] = 5
	svc, _ := testService(repo)

	sale, err := svc.Commit(context.Background(), CommitInput{
		BranchCode: "SUC001",
		RecordedBy: "maria",
		Lines:      []LineInput{{ProductCode: "PROD001", Quantity: 3}},
	})
	require.NoError(t, err)
	require.Len(t, repo.movements, 1)
	m := repo.movements[0]
	require.Equal(t, ledger.KindExit, m.Kind)
	require.Equal(t, ledger.ReasonSale, m.Reason)
	require.Equal(t, int64(3), m.Quantity)
	require.Equal(t, sale.ID, m.ReferenceID)
	require.Equal(t, "maria", m.RecordedBy)
	require.Equal(t, sale.CreatedAt, m.OccurredAt)
}

func TestCommitSellsDownToExactlyZero(t *testing.T) {
	repo := newFakeRepo()
	repo.stock[stockKey("PROD001", "SUC001")] = 4
	svc, _ := testService(repo)

	_, err := svc.Commit(context.Background(), CommitInput{
		BranchCode: "SUC001",
		Lines:      []LineInput{{ProductCode: "PROD001", Quantity: 4}},
	})
	require.NoError(t, err)
	require.Equal(t, int64(0), repo.stock[stockKey("PROD001", "SUC001")])
}

func TestCommitRejectsOversellAndRollsBack(t *testing.T) {
	repo := newFakeRepo()
	repo.stock[stockKey("PROD001", "SUC001")] = 10
	repo.stock[stockKey("PROD002", "SUC001")] = 1
	svc, _ := testService(repo)

	_, err := svc.Commit(context.Background(), CommitInput{
		BranchCode: "SUC001",
		Lines: []LineInput{
			{ProductCode: "PROD001", Quantity: 2},
			{ProductCode: "PROD002", Quantity: 5},
		},
	})
	require.ErrorIs(t, err, ledger.ErrInsufficientStock)

	// Nothing from the failed commit sticks, including the first line.
	require.Empty(t, repo.sales)
	require.Empty(t, repo.movements)
	require.Equal(t, int64(10), repo.stock[stockKey("PROD001", "SUC001")])
	require.Equal(t, int64(1), repo.stock[stockKey("PROD002", "SUC001")])
}

func TestCommitRejectsEmptyDraft(t *testing.T) {
	svc, _ := testService(newFakeRepo())
	_, err := svc.Commit(context.Background(), CommitInput{BranchCode: "SUC001"})
	require.ErrorIs(t, err, ErrEmptyDraft)
}

func TestCommitRejectsInactiveProduct(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := testService(repo)
	_, err := svc.Commit(context.Background(), CommitInput{
		BranchCode: "SUC001",
		Lines:      []LineInput{{ProductCode: "PROD009", Quantity: 1}},
	})
	require.ErrorIs(t, err, catalog.ErrProductNotFound)
	require.Empty(t, repo.sales)
}

func TestCommitRejectsUnknownBranch(t *testing.T) {
	svc, _ := testService(newFakeRepo())
	_, err := svc.Commit(context.Background(), CommitInput{
		BranchCode: "SUC999",
		Lines:      []LineInput{{ProductCode: "PROD001", Quantity: 1}},
	})
	require.ErrorIs(t, err, catalog.ErrBranchNotFound)
}

func TestDraftMergesRepeatedProduct(t *testing.T) {
	d := NewDraft("SUC001", "")
	require.NoError(t, d.AddLine("PROD001", "Arroz 1kg", cents("45.50"), 1))
	require.NoError(t, d.AddLine("PROD001", "Arroz 1kg", cents("45.50"), 2))
	require.Len(t, d.Lines(), 1)
	require.Equal(t, int64(3), d.Quantity("PROD001"))
	require.Equal(t, cents("136.50"), d.Total())
}

func TestDraftRemoveLine(t *testing.T) {
	d := NewDraft("SUC001", "")
	require.NoError(t, d.AddLine("PROD001", "Arroz 1kg", cents("45.50"), 1))
	require.NoError(t, d.RemoveLine("PROD001"))
	require.Empty(t, d.Lines())
	require.ErrorIs(t, d.RemoveLine("PROD001"), ErrLineNotFound)
}

func TestFindSaleRejectsMalformedID(t *testing.T) {
	svc, _ := testService(newFakeRepo())
	_, err := svc.FindSale(context.Background(), "not-a-uuid")
	require.ErrorIs(t, err, ErrSaleNotFound)
}
