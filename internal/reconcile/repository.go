package reconcile

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// DocumentStats summarizes one period's source documents.
type DocumentStats struct {
	Approved     int
	Pending      int
	Rejected     int
	ClaimableVAT decimal.Decimal
}

// Repository reads the collaborator registers. All reads are advisory
// snapshots; no locking.
type Repository interface {
	DocumentStats(ctx context.Context, clientID int64, periodKey string) (DocumentStats, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the pgx-backed register reader.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) DocumentStats(ctx context.Context, clientID int64, periodKey string) (DocumentStats, error) {
	var stats DocumentStats
	err := r.db.QueryRow(ctx, `SELECT
  COUNT(*) FILTER (WHERE status = 'approved'),
  COUNT(*) FILTER (WHERE status IN ('pending', 'processing')),
  COUNT(*) FILTER (WHERE status = 'rejected'),
  COALESCE(SUM(vat_amount) FILTER (WHERE status = 'approved' AND vat_claimable AND doc_type = 'full_tax_invoice'), 0)
FROM source_documents WHERE client_id=$1 AND period_key=$2`, clientID, periodKey).
		Scan(&stats.Approved, &stats.Pending, &stats.Rejected, &stats.ClaimableVAT)
	if err != nil {
		return DocumentStats{}, err
	}
	return stats, nil
}
