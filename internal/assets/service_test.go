package assets

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerd/ledgerd/internal/ledger"
	"github.com/ledgerd/ledgerd/internal/shared"
)

type fakeRepo struct {
	assets  map[int64]*FixedAsset
	runs    map[string]bool
	batches []DepreciationBatch
	nextID  int64

	// postingErr makes InsertPostingBatch fail, simulating a mid-run
	// database error.
	postingErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{assets: map[int64]*FixedAsset{}, runs: map[string]bool{}, nextID: 1}
}

func (f *fakeRepo) Create(_ context.Context, asset FixedAsset) (FixedAsset, error) {
	asset.ID = f.nextID
	f.nextID++
	asset.CreatedAt = time.Now()
	asset.UpdatedAt = asset.CreatedAt
	stored := asset
	f.assets[asset.ID] = &stored
	return asset, nil
}

func (f *fakeRepo) Get(_ context.Context, clientID, id int64) (FixedAsset, error) {
	asset, ok := f.assets[id]
	if !ok || asset.ClientID != clientID {
		return FixedAsset{}, shared.ErrNotFound
	}
	return *asset, nil
}

func (f *fakeRepo) ListByClient(_ context.Context, clientID int64) ([]FixedAsset, error) {
	var out []FixedAsset
	for id := int64(1); id < f.nextID; id++ {
		if asset, ok := f.assets[id]; ok && asset.ClientID == clientID {
			out = append(out, *asset)
		}
	}
	return out, nil
}

func (f *fakeRepo) TotalCost(_ context.Context, clientID int64) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, asset := range f.assets {
		if asset.ClientID == clientID && asset.Status != StatusDisposed {
			total = total.Add(asset.Cost)
		}
	}
	return total, nil
}

// WithTx snapshots the stores and restores them when fn fails, so the
// fake honours the all-or-nothing contract the pgx repository gets from
// its transaction.
func (f *fakeRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	assetsBefore := map[int64]*FixedAsset{}
	for id, asset := range f.assets {
		copied := *asset
		assetsBefore[id] = &copied
	}
	runsBefore := map[string]bool{}
	for k, v := range f.runs {
		runsBefore[k] = v
	}
	batchesBefore := append([]DepreciationBatch(nil), f.batches...)

	if err := fn(ctx, &fakeTx{repo: f}); err != nil {
		f.assets = assetsBefore
		f.runs = runsBefore
		f.batches = batchesBefore
		return err
	}
	return nil
}

type fakeTx struct {
	repo *fakeRepo
}

func (f *fakeTx) RecordRun(_ context.Context, clientID int64, periodKey string) error {
	key := fmt.Sprintf("%d:%s", clientID, periodKey)
	if f.repo.runs[key] {
		return ErrRunExists
	}
	f.repo.runs[key] = true
	return nil
}

func (f *fakeTx) ListActiveForUpdate(_ context.Context, clientID int64) ([]FixedAsset, error) {
	var out []FixedAsset
	for id := int64(1); id < f.repo.nextID; id++ {
		if asset, ok := f.repo.assets[id]; ok && asset.ClientID == clientID && asset.Status == StatusActive {
			out = append(out, *asset)
		}
	}
	return out, nil
}

func (f *fakeTx) ApplyDepreciation(_ context.Context, id int64, accumulated decimal.Decimal, status Status) error {
	asset, ok := f.repo.assets[id]
	if !ok {
		return shared.ErrNotFound
	}
	asset.AccumulatedDepreciation = accumulated
	asset.Status = status
	return nil
}

func (f *fakeTx) InsertPostingBatch(_ context.Context, batch DepreciationBatch) error {
	if f.repo.postingErr != nil {
		return f.repo.postingErr
	}
	for _, prev := range f.repo.batches {
		if prev.BatchID == batch.BatchID {
			return ledger.ErrDuplicateBatch
		}
	}
	f.repo.batches = append(f.repo.batches, batch)
	return nil
}

func TestRunMonthlyPostsBalancedBatch(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, DefaultConfig())

	_, err := svc.Create(context.Background(), CreateInput{
		ClientID:         7,
		Name:             "Truck",
		Category:         "Vehicles",
		AcquisitionDate:  time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		Cost:             d("36000"),
		Salvage:          decimal.Zero,
		UsefulLifeMonths: 36,
	})
	require.NoError(t, err)

	result, err := svc.RunMonthly(context.Background(), 7, "2025-02", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.AssetsProcessed)
	assert.True(t, result.TotalDepreciated.Equal(d("1000")))

	require.Len(t, repo.batches, 1)
	batch := repo.batches[0]
	assert.Equal(t, "2025-02", batch.PeriodKey)
	var debits, credits decimal.Decimal
	for _, line := range batch.Lines {
		debits = debits.Add(line.Debit)
		credits = credits.Add(line.Credit)
	}
	assert.True(t, debits.Equal(credits))

	stored, err := repo.Get(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.True(t, stored.AccumulatedDepreciation.Equal(d("1000")))
}

func TestRunMonthlyRejectsSecondRunForPeriod(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, DefaultConfig())

	_, err := svc.Create(context.Background(), CreateInput{
		ClientID:         7,
		Name:             "Truck",
		AcquisitionDate:  time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		Cost:             d("36000"),
		UsefulLifeMonths: 36,
	})
	require.NoError(t, err)

	_, err = svc.RunMonthly(context.Background(), 7, "2025-02", 1)
	require.NoError(t, err)

	before, err := repo.Get(context.Background(), 7, 1)
	require.NoError(t, err)

	_, err = svc.RunMonthly(context.Background(), 7, "2025-02", 1)
	require.ErrorIs(t, err, ErrRunExists)

	after, err := repo.Get(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.True(t, before.AccumulatedDepreciation.Equal(after.AccumulatedDepreciation))
	require.Len(t, repo.batches, 1)
}

func TestRunMonthlyFailedPostingRollsBackRegister(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, DefaultConfig())

	_, err := svc.Create(context.Background(), CreateInput{
		ClientID:         7,
		Name:             "Truck",
		AcquisitionDate:  time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		Cost:             d("36000"),
		UsefulLifeMonths: 36,
	})
	require.NoError(t, err)

	boom := errors.New("connection reset")
	repo.postingErr = boom
	_, err = svc.RunMonthly(context.Background(), 7, "2025-02", 1)
	require.ErrorIs(t, err, boom)

	// Nothing stuck half-way: the register is untouched and no batch
	// was emitted.
	stored, err := repo.Get(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.True(t, stored.AccumulatedDepreciation.IsZero())
	assert.Empty(t, repo.batches)

	// The run slot rolled back with everything else, so a retry
	// completes the month instead of being rejected.
	repo.postingErr = nil
	result, err := svc.RunMonthly(context.Background(), 7, "2025-02", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.AssetsProcessed)
	require.Len(t, repo.batches, 1)

	stored, err = repo.Get(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.True(t, stored.AccumulatedDepreciation.Equal(d("1000")))
}

func TestRunMonthlySkipsCappedAssets(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, DefaultConfig())

	created, err := svc.Create(context.Background(), CreateInput{
		ClientID:         7,
		Name:             "Old press",
		AcquisitionDate:  time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		Cost:             d("1200"),
		UsefulLifeMonths: 12,
	})
	require.NoError(t, err)
	// Active but already at the cap; the batch run skips it instead of
	// failing the whole month.
	repo.assets[created.ID].AccumulatedDepreciation = d("1200")

	result, err := svc.RunMonthly(context.Background(), 7, "2025-02", 1)
	require.NoError(t, err)
	assert.Equal(t, 0, result.AssetsProcessed)
	assert.Equal(t, 1, result.AssetsSkipped)
	assert.Empty(t, repo.batches)
}
