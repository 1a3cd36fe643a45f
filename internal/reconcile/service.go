package reconcile

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerd/ledgerd/internal/ledger"
	"github.com/ledgerd/ledgerd/internal/shared"
)

// Config designates the ledger accounts each check reads.
type Config struct {
	// InputVATAccount is the input-VAT ledger account.
	InputVATAccount string
	// AssetCostPrefix selects fixed-asset cost accounts;
	// AccumDepreciationAccount is carved out of that range.
	AssetCostPrefix          string
	AccumDepreciationAccount string
	Weights                  Weights
	Tolerance                decimal.Decimal
}

// DefaultConfig matches the standard chart layout.
func DefaultConfig() Config {
	return Config{
		InputVATAccount:          "11540",
		AssetCostPrefix:          "12",
		AccumDepreciationAccount: "12900",
		Weights:                  DefaultWeights(),
		Tolerance:                shared.CentTolerance,
	}
}

// LedgerReader provides the balances the checks compare against.
type LedgerReader interface {
	PeriodSummaries(ctx context.Context, clientID int64, periodKey string) ([]ledger.AccountSummary, error)
	SummariesThrough(ctx context.Context, clientID int64, asOf time.Time) ([]ledger.AccountSummary, error)
}

// AssetRegister supplies the register-side cost total.
type AssetRegister interface {
	RegisterCost(ctx context.Context, clientID int64) (decimal.Decimal, error)
}

// Service runs reconciliation scans.
type Service struct {
	ledger LedgerReader
	assets AssetRegister
	repo   Repository
	cfg    Config
	now    func() time.Time
}

// NewService constructs a reconciliation Service.
func NewService(reader LedgerReader, assets AssetRegister, repo Repository, cfg Config) *Service {
	if cfg.InputVATAccount == "" {
		cfg = DefaultConfig()
	}
	return &Service{ledger: reader, assets: assets, repo: repo, cfg: cfg, now: time.Now}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Scan runs all checks for one client and period and returns the
// scored report.
func (s *Service) Scan(ctx context.Context, clientID int64, periodKey string) (Report, error) {
	if clientID <= 0 {
		return Report{}, shared.ErrClientRequired
	}
	_, periodEnd, err := shared.PeriodRange(periodKey)
	if err != nil {
		return Report{}, err
	}

	periodSummaries, err := s.ledger.PeriodSummaries(ctx, clientID, periodKey)
	if err != nil {
		return Report{}, err
	}
	// Asset cost accumulates across the asset's whole life, so that
	// check reads balances through period end rather than one month.
	historySummaries, err := s.ledger.SummariesThrough(ctx, clientID, periodEnd.AddDate(0, 0, -1))
	if err != nil {
		return Report{}, err
	}
	stats, err := s.repo.DocumentStats(ctx, clientID, periodKey)
	if err != nil {
		return Report{}, err
	}
	registerCost, err := s.assets.RegisterCost(ctx, clientID)
	if err != nil {
		return Report{}, err
	}

	input := Input{
		InputVATBalance:  balanceOf(periodSummaries, s.cfg.InputVATAccount),
		ClaimableVAT:     stats.ClaimableVAT,
		AssetCostBalance: s.assetCostBalance(historySummaries),
		RegisterCost:     registerCost,
		PendingDocs:      stats.Pending,
		NameConflicts:    nameConflicts(periodSummaries),
	}
	findings, score := Evaluate(input, s.cfg.Weights, s.cfg.Tolerance)
	return Report{
		ClientID:    clientID,
		Period:      periodKey,
		Findings:    findings,
		Score:       score,
		GeneratedAt: s.now(),
	}, nil
}

func (s *Service) assetCostBalance(summaries []ledger.AccountSummary) decimal.Decimal {
	total := decimal.Zero
	for _, sum := range summaries {
		if !strings.HasPrefix(sum.Code, s.cfg.AssetCostPrefix) || sum.Code == s.cfg.AccumDepreciationAccount {
			continue
		}
		total = total.Add(sum.Balance)
	}
	return total
}

func balanceOf(summaries []ledger.AccountSummary, code string) decimal.Decimal {
	for _, sum := range summaries {
		if sum.Code == code {
			return sum.Balance
		}
	}
	return decimal.Zero
}

func nameConflicts(summaries []ledger.AccountSummary) []string {
	var codes []string
	for _, sum := range summaries {
		if sum.NameConflict {
			codes = append(codes, sum.Code)
		}
	}
	return codes
}
