package close

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerd/ledgerd/internal/ledger"
	"github.com/ledgerd/ledgerd/internal/shared"
)

// Repository encapsulates the period registry and the in-transaction
// reads and writes of a close run.
type Repository interface {
	GetPeriod(ctx context.Context, clientID int64, periodKey string) (Period, error)
	ListPeriods(ctx context.Context, clientID int64) ([]Period, error)
	CurrentPeriod(ctx context.Context, clientID int64) (string, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository is the close critical section. Everything a close run
// reads or writes goes through one transaction so the entry set, the
// status flip, and the period roll commit or roll back together.
type TxRepository interface {
	GetPeriodForUpdate(ctx context.Context, clientID int64, periodKey string) (Period, error)
	DocReviewCounts(ctx context.Context, clientID int64, periodKey string) (pending, rejected int, err error)
	UnreconciledBankCount(ctx context.Context, clientID int64, periodKey string) (int, error)
	PeriodEntries(ctx context.Context, clientID int64, periodKey string) ([]ledger.Entry, error)
	InsertClosingBatch(ctx context.Context, batch ClosingBatch) error
	MarkClosed(ctx context.Context, periodID, actorID int64, at time.Time) error
	MarkOpen(ctx context.Context, periodID int64, at time.Time) error
	SetCurrentPeriod(ctx context.Context, clientID int64, periodKey string) error
}

// ClosingBatch is the persisted form of one closing entry set.
type ClosingBatch struct {
	ClientID  int64
	PeriodKey string
	BatchID   uuid.UUID
	Date      time.Time
	ActorID   int64
	Lines     []ledger.PostingLineInput
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the pgx-backed period registry.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const periodColumns = `id, client_id, period_key, status, vat_status, wht_status, closed_at, closed_by, reopened_at, created_at, updated_at`

func (r *repository) GetPeriod(ctx context.Context, clientID int64, periodKey string) (Period, error) {
	row := r.db.QueryRow(ctx, `SELECT `+periodColumns+` FROM periods WHERE client_id=$1 AND period_key=$2`, clientID, periodKey)
	period, err := scanPeriod(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Period{}, shared.ErrNotFound
	}
	return period, err
}

func (r *repository) ListPeriods(ctx context.Context, clientID int64) ([]Period, error) {
	rows, err := r.db.Query(ctx, `SELECT `+periodColumns+` FROM periods WHERE client_id=$1 ORDER BY period_key DESC`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Period
	for rows.Next() {
		period, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, period)
	}
	return out, rows.Err()
}

func (r *repository) CurrentPeriod(ctx context.Context, clientID int64) (string, error) {
	var key string
	err := r.db.QueryRow(ctx, `SELECT current_period_key FROM clients WHERE id=$1`, clientID).Scan(&key)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", shared.ErrNotFound
	}
	return key, err
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

// GetPeriodForUpdate locks the period row, inserting an open row first
// if the month was never touched. The row lock is the transactional
// backstop behind the redis lease.
func (r *txRepository) GetPeriodForUpdate(ctx context.Context, clientID int64, periodKey string) (Period, error) {
	_, err := r.tx.Exec(ctx, `INSERT INTO periods (client_id, period_key, status, vat_status, wht_status)
VALUES ($1,$2,$3,$4,$4) ON CONFLICT (client_id, period_key) DO NOTHING`,
		clientID, periodKey, StatusOpen, FilingPending)
	if err != nil {
		return Period{}, err
	}
	row := r.tx.QueryRow(ctx, `SELECT `+periodColumns+` FROM periods WHERE client_id=$1 AND period_key=$2 FOR UPDATE`, clientID, periodKey)
	return scanPeriod(row)
}

func (r *txRepository) DocReviewCounts(ctx context.Context, clientID int64, periodKey string) (int, int, error) {
	var pending, rejected int
	err := r.tx.QueryRow(ctx, `SELECT
  COUNT(*) FILTER (WHERE status IN ('pending', 'processing')),
  COUNT(*) FILTER (WHERE status = 'rejected')
FROM source_documents WHERE client_id=$1 AND period_key=$2`, clientID, periodKey).Scan(&pending, &rejected)
	return pending, rejected, err
}

func (r *txRepository) UnreconciledBankCount(ctx context.Context, clientID int64, periodKey string) (int, error) {
	var count int
	err := r.tx.QueryRow(ctx, `SELECT COUNT(*) FROM bank_transactions WHERE client_id=$1 AND period_key=$2 AND reconciliation_status <> 'reconciled'`,
		clientID, periodKey).Scan(&count)
	return count, err
}

func (r *txRepository) PeriodEntries(ctx context.Context, clientID int64, periodKey string) ([]ledger.Entry, error) {
	rows, err := r.tx.Query(ctx, `SELECT id, client_id, entry_date, account_code, account_name, debit, credit, description, period_key, source_doc_id, system_generated, created_at
FROM postings WHERE client_id=$1 AND period_key=$2 ORDER BY entry_date ASC, id ASC`, clientID, periodKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []ledger.Entry
	for rows.Next() {
		var e ledger.Entry
		if err := rows.Scan(&e.ID, &e.ClientID, &e.Date, &e.AccountCode, &e.AccountName, &e.Debit, &e.Credit, &e.Description, &e.PeriodKey, &e.SourceDocID, &e.SystemGenerated, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// InsertClosingBatch persists the entry set as ordinary postings,
// claiming the batch id first so a replay collides instead of
// double-posting.
func (r *txRepository) InsertClosingBatch(ctx context.Context, batch ClosingBatch) error {
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

func (r *txRepository) MarkClosed(ctx context.Context, periodID, actorID int64, at time.Time) error {
	_, err := r.tx.Exec(ctx, `UPDATE periods SET status=$2, closed_at=$3, closed_by=$4, updated_at=$3 WHERE id=$1`,
		periodID, StatusClosed, at, actorID)
	return err
}

func (r *txRepository) MarkOpen(ctx context.Context, periodID int64, at time.Time) error {
	_, err := r.tx.Exec(ctx, `UPDATE periods SET status=$2, reopened_at=$3, updated_at=$3 WHERE id=$1`,
		periodID, StatusOpen, at)
	return err
}

func (r *txRepository) SetCurrentPeriod(ctx context.Context, clientID int64, periodKey string) error {
	_, err := r.tx.Exec(ctx, `UPDATE clients SET current_period_key=$2, updated_at=now() WHERE id=$1`, clientID, periodKey)
	return err
}

func scanPeriod(row pgx.Row) (Period, error) {
	var p Period
	err := row.Scan(&p.ID, &p.ClientID, &p.PeriodKey, &p.Status, &p.VATStatus, &p.WHTStatus, &p.ClosedAt, &p.ClosedBy, &p.ReopenedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Period{}, err
	}
	return p, nil
}
