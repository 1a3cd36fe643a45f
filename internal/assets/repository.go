package assets

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ledgerd/ledgerd/internal/ledger"
	"github.com/ledgerd/ledgerd/internal/shared"
)

// Repository encapsulates DB operations for the asset register.
type Repository interface {
	Create(ctx context.Context, asset FixedAsset) (FixedAsset, error)
	Get(ctx context.Context, clientID, id int64) (FixedAsset, error)
	ListByClient(ctx context.Context, clientID int64) ([]FixedAsset, error)
	TotalCost(ctx context.Context, clientID int64) (decimal.Decimal, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the depreciation write path under a transaction.
// The run row, the register updates, and the posting batch all commit
// or roll back together.
type TxRepository interface {
	RecordRun(ctx context.Context, clientID int64, periodKey string) error
	ListActiveForUpdate(ctx context.Context, clientID int64) ([]FixedAsset, error)
	ApplyDepreciation(ctx context.Context, id int64, accumulated decimal.Decimal, status Status) error
	InsertPostingBatch(ctx context.Context, batch DepreciationBatch) error
}

// DepreciationBatch is the persisted form of one run's posting pairs.
type DepreciationBatch struct {
	ClientID  int64
	PeriodKey string
	BatchID   uuid.UUID
	Date      time.Time
	ActorID   int64
	Lines     []ledger.PostingLineInput
}

// ErrRunExists rejects a second depreciation run for the same client
// and period.
var ErrRunExists = errors.New("assets: depreciation already run for period")

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the pgx-backed asset register.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const assetColumns = `id, client_id, name, category, acquisition_date, cost, salvage, useful_life_months, accumulated_depreciation, status, created_at, updated_at`

func (r *repository) Create(ctx context.Context, asset FixedAsset) (FixedAsset, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO fixed_assets (client_id, name, category, acquisition_date, cost, salvage, useful_life_months, accumulated_depreciation, status)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING id, created_at, updated_at`,
		asset.ClientID, asset.Name, asset.Category, asset.AcquisitionDate, asset.Cost, asset.Salvage, asset.UsefulLifeMonths, asset.AccumulatedDepreciation, asset.Status).
		Scan(&asset.ID, &asset.CreatedAt, &asset.UpdatedAt)
	if err != nil {
		return FixedAsset{}, err
	}
	return asset, nil
}

func (r *repository) Get(ctx context.Context, clientID, id int64) (FixedAsset, error) {
	row := r.db.QueryRow(ctx, `SELECT `+assetColumns+` FROM fixed_assets WHERE client_id=$1 AND id=$2`, clientID, id)
	asset, err := scanAsset(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return FixedAsset{}, shared.ErrNotFound
	}
	return asset, err
}

func (r *repository) ListByClient(ctx context.Context, clientID int64) ([]FixedAsset, error) {
	rows, err := r.db.Query(ctx, `SELECT `+assetColumns+` FROM fixed_assets WHERE client_id=$1 ORDER BY id ASC`, clientID)
	if err != nil {
		return nil, err
	}
	return scanAssets(rows)
}

// TotalCost sums acquisition cost over the register, disposed assets
// excluded. Reconciliation compares it against the asset-cost ledger
// balance.
func (r *repository) TotalCost(ctx context.Context, clientID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(cost), 0) FROM fixed_assets WHERE client_id=$1 AND status <> $2`, clientID, StatusDisposed).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	wrapper := &txRepository{tx: tx}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

type txRepository struct {
	tx pgx.Tx
}

// RecordRun claims the (client, period) run slot. A unique violation
// means the month was already depreciated.
func (r *txRepository) RecordRun(ctx context.Context, clientID int64, periodKey string) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO depreciation_runs (client_id, period_key) VALUES ($1,$2)`, clientID, periodKey)
	if err != nil {
		if shared.IsUniqueViolation(err, "uq_depreciation_runs") {
			return ErrRunExists
		}
		return err
	}
	return nil
}

// InsertPostingBatch persists the run's expense/accumulated pairs as
// ordinary postings, claiming the batch id first so a replay collides
// instead of double-posting.
func (r *txRepository) InsertPostingBatch(ctx context.Context, batch DepreciationBatch) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO posting_batches (batch_id, client_id, posted_by, system_generated) VALUES ($1,$2,$3,true)`,
		batch.BatchID, batch.ClientID, batch.ActorID)
	if err != nil {
		if shared.IsUniqueViolation(err, "uq_posting_batches") {
			return ledger.ErrDuplicateBatch
		}
		return err
	}
	for _, line := range batch.Lines {
		_, err := r.tx.Exec(ctx, `INSERT INTO postings (client_id, entry_date, account_code, account_name, debit, credit, description, period_key, system_generated)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,true)`,
			batch.ClientID, batch.Date, line.AccountCode, line.AccountName, shared.Quantize(line.Debit), shared.Quantize(line.Credit), line.Description, batch.PeriodKey)
		if err != nil {
			return err
		}
	}
	return nil
}

// ListActiveForUpdate locks the active rows so concurrent runs cannot
// double-depreciate the same month.
func (r *txRepository) ListActiveForUpdate(ctx context.Context, clientID int64) ([]FixedAsset, error) {
	rows, err := r.tx.Query(ctx, `SELECT `+assetColumns+` FROM fixed_assets WHERE client_id=$1 AND status=$2 ORDER BY id ASC FOR UPDATE`, clientID, StatusActive)
	if err != nil {
		return nil, err
	}
	return scanAssets(rows)
}

func (r *txRepository) ApplyDepreciation(ctx context.Context, id int64, accumulated decimal.Decimal, status Status) error {
	tag, err := r.tx.Exec(ctx, `UPDATE fixed_assets SET accumulated_depreciation=$2, status=$3, updated_at=now() WHERE id=$1`, id, accumulated, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanAssets(rows pgx.Rows) ([]FixedAsset, error) {
	defer rows.Close()
	var out []FixedAsset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, asset)
	}
	return out, rows.Err()
}

func scanAsset(row pgx.Row) (FixedAsset, error) {
	var a FixedAsset
	err := row.Scan(&a.ID, &a.ClientID, &a.Name, &a.Category, &a.AcquisitionDate, &a.Cost, &a.Salvage, &a.UsefulLifeMonths, &a.AccumulatedDepreciation, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return FixedAsset{}, err
	}
	return a, nil
}
