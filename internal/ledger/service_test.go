package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	quantities map[string]int64
	lastFilter MovementFilter
	movements  []Movement
}

func (f *fakeRepo) QuantityOnHand(_ context.Context, product, branch string) (int64, error) {
	return f.quantities[product+"|"+branch], nil
}

func (f *fakeRepo) ListMovements(_ context.Context, filter MovementFilter) ([]Movement, error) {
	f.lastFilter = filter
	if filter.Limit < len(f.movements) {
		return f.movements[:filter.Limit], nil
	}
	return f.movements, nil
}

func TestQuantityOnHandTrimsCodes(t *testing.T) {
	repo := &fakeRepo{quantities: map[string]int64{"PROD001|SUC001": 42}}
	svc := NewService(repo)

	qty, err := svc.QuantityOnHand(context.Background(), " PROD001 ", " SUC001 ")
	require.NoError(t, err)
	require.Equal(t, int64(42), qty)
}

func TestQuantityOnHandMissingPairIsZero(t *testing.T) {
	svc := NewService(&fakeRepo{quantities: map[string]int64{}})
	qty, err := svc.QuantityOnHand(context.Background(), "PROD999", "SUC001")
	require.NoError(t, err)
	require.Zero(t, qty)
}

func TestListMovementsAppliesDefaultLimit(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	_, err := svc.ListMovements(context.Background(), MovementFilter{})
	require.NoError(t, err)
	require.Equal(t, 100, repo.lastFilter.Limit)
}

func TestListMovementsCapsRequestedLimit(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	_, err := svc.ListMovements(context.Background(), MovementFilter{Limit: 5000})
	require.NoError(t, err)
	require.Equal(t, 100, repo.lastFilter.Limit)

	_, err = svc.ListMovements(context.Background(), MovementFilter{Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 10, repo.lastFilter.Limit)
}

func TestListMovementsKeepsFilter(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	_, err := svc.ListMovements(context.Background(), MovementFilter{BranchCode: "SUC002", Kind: KindExit})
	require.NoError(t, err)
	require.Equal(t, "SUC002", repo.lastFilter.BranchCode)
	require.Equal(t, KindExit, repo.lastFilter.Kind)
}
