package reports

import (
	"context"
	"time"

	"github.com/ledgerd/ledgerd/internal/ledger"
	"github.com/ledgerd/ledgerd/internal/shared"
)

// LedgerReader provides the aggregated balances statements are built
// from.
type LedgerReader interface {
	PeriodSummaries(ctx context.Context, clientID int64, periodKey string) ([]ledger.AccountSummary, error)
	SummariesThrough(ctx context.Context, clientID int64, asOf time.Time) ([]ledger.AccountSummary, error)
}

// Service builds financial statements on demand.
type Service struct {
	ledger LedgerReader
	cfg    Config
}

// NewService constructs a statement service.
func NewService(reader LedgerReader, cfg Config) *Service {
	if cfg.OtherIncomePrefix == "" {
		cfg = DefaultConfig()
	}
	return &Service{ledger: reader, cfg: cfg}
}

// Config exposes the active statement configuration.
func (s *Service) Config() Config {
	return s.cfg
}

// TrialBalance builds the trial balance for one period.
func (s *Service) TrialBalance(ctx context.Context, clientID int64, periodKey string) (TrialBalance, error) {
	if clientID <= 0 {
		return TrialBalance{}, shared.ErrClientRequired
	}
	summaries, err := s.ledger.PeriodSummaries(ctx, clientID, periodKey)
	if err != nil {
		return TrialBalance{}, err
	}
	return BuildTrialBalance(summaries, s.cfg), nil
}

// IncomeStatement builds the profit or loss view for one period.
func (s *Service) IncomeStatement(ctx context.Context, clientID int64, periodKey string) (IncomeStatement, error) {
	if clientID <= 0 {
		return IncomeStatement{}, shared.ErrClientRequired
	}
	summaries, err := s.ledger.PeriodSummaries(ctx, clientID, periodKey)
	if err != nil {
		return IncomeStatement{}, err
	}
	return BuildIncomeStatement(summaries, s.cfg), nil
}

// BalanceSheet builds the statement of financial position as of a date.
// Balances aggregate over the full posting history so equity carries
// prior periods' results.
func (s *Service) BalanceSheet(ctx context.Context, clientID int64, asOf time.Time) (BalanceSheet, error) {
	if clientID <= 0 {
		return BalanceSheet{}, shared.ErrClientRequired
	}
	summaries, err := s.ledger.SummariesThrough(ctx, clientID, asOf)
	if err != nil {
		return BalanceSheet{}, err
	}
	return BuildBalanceSheet(summaries, s.cfg), nil
}

// PeriodEndBalanceSheet builds the balance sheet as of the last day of
// the given period.
func (s *Service) PeriodEndBalanceSheet(ctx context.Context, clientID int64, periodKey string) (BalanceSheet, error) {
	_, end, err := shared.PeriodRange(periodKey)
	if err != nil {
		return BalanceSheet{}, err
	}
	return s.BalanceSheet(ctx, clientID, end.AddDate(0, 0, -1))
}
