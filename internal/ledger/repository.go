package ledger

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerd/ledgerd/internal/shared"
)

// Repository encapsulates DB operations for the posting store. The
// store is append-only: there is no update or delete.
type Repository interface {
	ListByPeriod(ctx context.Context, clientID int64, periodKey string) ([]Entry, error)
	ListThrough(ctx context.Context, clientID int64, asOf time.Time) ([]Entry, error)
	ListByAccount(ctx context.Context, clientID int64, accountCode string) ([]Entry, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes writes available within a transaction.
type TxRepository interface {
	RecordBatch(ctx context.Context, in PostingInput) error
	InsertEntries(ctx context.Context, in PostingInput) ([]Entry, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the pgx-backed posting store.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const entryColumns = `id, client_id, entry_date, account_code, account_name, debit, credit, description, period_key, source_doc_id, system_generated, created_at`

func (r *repository) ListByPeriod(ctx context.Context, clientID int64, periodKey string) ([]Entry, error) {
	rows, err := r.db.Query(ctx, `SELECT `+entryColumns+` FROM postings WHERE client_id=$1 AND period_key=$2 ORDER BY entry_date ASC, id ASC`, clientID, periodKey)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

func (r *repository) ListThrough(ctx context.Context, clientID int64, asOf time.Time) ([]Entry, error) {
	rows, err := r.db.Query(ctx, `SELECT `+entryColumns+` FROM postings WHERE client_id=$1 AND entry_date <= $2 ORDER BY entry_date ASC, id ASC`, clientID, asOf)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

func (r *repository) ListByAccount(ctx context.Context, clientID int64, accountCode string) ([]Entry, error) {
	rows, err := r.db.Query(ctx, `SELECT `+entryColumns+` FROM postings WHERE client_id=$1 AND account_code=$2 ORDER BY entry_date ASC, id ASC`, clientID, accountCode)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
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

// RecordBatch claims the batch id. A unique violation means the same
// batch was already posted, which keeps retries from double-posting.
func (r *txRepository) RecordBatch(ctx context.Context, in PostingInput) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO posting_batches (batch_id, client_id, posted_by, system_generated) VALUES ($1,$2,$3,$4)`,
		in.BatchID, in.ClientID, nullInt(in.PostedBy), in.SystemGenerated)
	if err != nil {
		if shared.IsUniqueViolation(err, "uq_posting_batches") {
			return ErrDuplicateBatch
		}
		return err
	}
	return nil
}

func (r *txRepository) InsertEntries(ctx context.Context, in PostingInput) ([]Entry, error) {
	periodKey := in.PeriodKey()
	out := make([]Entry, 0, len(in.Lines))
	for _, line := range in.Lines {
		entry := Entry{
			ClientID:        in.ClientID,
			Date:            in.Date,
			AccountCode:     line.AccountCode,
			AccountName:     line.AccountName,
			Debit:           shared.Quantize(line.Debit),
			Credit:          shared.Quantize(line.Credit),
			Description:     line.Description,
			PeriodKey:       periodKey,
			SourceDocID:     in.SourceDocID,
			SystemGenerated: in.SystemGenerated,
		}
		err := r.tx.QueryRow(ctx, `INSERT INTO postings (client_id, entry_date, account_code, account_name, debit, credit, description, period_key, source_doc_id, system_generated)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10) RETURNING id, created_at`,
			entry.ClientID, entry.Date, entry.AccountCode, entry.AccountName, entry.Debit, entry.Credit, entry.Description, entry.PeriodKey, entry.SourceDocID, entry.SystemGenerated).
			Scan(&entry.ID, &entry.CreatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

func scanEntries(rows pgx.Rows) ([]Entry, error) {
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ClientID, &e.Date, &e.AccountCode, &e.AccountName, &e.Debit, &e.Credit, &e.Description, &e.PeriodKey, &e.SourceDocID, &e.SystemGenerated, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nullInt(val int64) any {
	if val == 0 {
		return nil
	}
	return val
}
