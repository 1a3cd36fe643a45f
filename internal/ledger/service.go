package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/ledgerd/ledgerd/internal/shared"
)

// AuditPort records ledger mutations into the audit trail.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// PeriodGuard rejects postings into closed periods.
type PeriodGuard interface {
	EnsurePeriodOpenForPosting(ctx context.Context, clientID int64, periodKey string) error
}

// Service coordinates posting writes and aggregation reads.
type Service struct {
	repo  Repository
	audit AuditPort
	guard PeriodGuard
	now   func() time.Time
}

// NewService constructs a Service instance.
func NewService(repo Repository, audit AuditPort, guard PeriodGuard) *Service {
	return &Service{repo: repo, audit: audit, guard: guard, now: time.Now}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Post validates and persists a posting batch.
func (s *Service) Post(ctx context.Context, input PostingInput) ([]Entry, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if s.guard != nil && !input.SystemGenerated {
		if err := s.guard.EnsurePeriodOpenForPosting(ctx, input.ClientID, input.PeriodKey()); err != nil {
			return nil, err
		}
	}
	var entries []Entry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.RecordBatch(ctx, input); err != nil {
			return err
		}
		inserted, err := tx.InsertEntries(ctx, input)
		if err != nil {
			return err
		}
		entries = inserted
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  input.PostedBy,
			Action:   "ledger.post",
			Entity:   "posting_batch",
			EntityID: input.BatchID.String(),
			Meta: map[string]any{
				"client_id": input.ClientID,
				"period":    input.PeriodKey(),
				"lines":     len(input.Lines),
			},
			At: s.now(),
		})
	}
	return entries, nil
}

// PeriodSummaries aggregates one period's postings per account.
func (s *Service) PeriodSummaries(ctx context.Context, clientID int64, periodKey string) ([]AccountSummary, error) {
	if _, err := shared.ParsePeriodKey(periodKey); err != nil {
		return nil, err
	}
	entries, err := s.repo.ListByPeriod(ctx, clientID, periodKey)
	if err != nil {
		return nil, err
	}
	return Aggregate(entries, Filter{}), nil
}

// SummariesThrough aggregates all postings up to and including asOf.
// The balance sheet builder uses this to compute its retained-earnings
// plug over the full posting history.
func (s *Service) SummariesThrough(ctx context.Context, clientID int64, asOf time.Time) ([]AccountSummary, error) {
	entries, err := s.repo.ListThrough(ctx, clientID, asOf)
	if err != nil {
		return nil, err
	}
	return Aggregate(entries, Filter{}), nil
}

// SummariesInRange aggregates postings whose dates fall in the
// half-open [from, to) window. The trend analyzer uses year windows.
func (s *Service) SummariesInRange(ctx context.Context, clientID int64, from, to time.Time) ([]AccountSummary, error) {
	entries, err := s.repo.ListThrough(ctx, clientID, to)
	if err != nil {
		return nil, err
	}
	return Aggregate(entries, Filter{From: from, To: to}), nil
}

// AccountLedger returns the running-balance view for one account.
func (s *Service) AccountLedger(ctx context.Context, clientID int64, accountCode string, from, to time.Time) ([]RunningBalanceRow, error) {
	if accountCode == "" {
		return nil, fmt.Errorf("ledger: account code required")
	}
	entries, err := s.repo.ListByAccount(ctx, clientID, accountCode)
	if err != nil {
		return nil, err
	}
	return RunningBalance(entries, Filter{AccountCode: accountCode, From: from, To: to}), nil
}
