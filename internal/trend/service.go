package trend

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ledgerd/ledgerd/internal/ledger"
	"github.com/ledgerd/ledgerd/internal/reports"
	"github.com/ledgerd/ledgerd/internal/shared"
)

// maxYearSpan bounds one analysis request.
const maxYearSpan = 10

// YearFigures are one year's headline numbers.
type YearFigures struct {
	Year         int             `json:"year"`
	Revenue      decimal.Decimal `json:"revenue"`
	NetProfit    decimal.Decimal `json:"net_profit"`
	Margin       decimal.Decimal `json:"margin"`
	CurrentRatio decimal.Decimal `json:"current_ratio"`
	DebtToEquity decimal.Decimal `json:"debt_to_equity"`
}

// YoY compares two adjacent years.
type YoY struct {
	FromYear        int             `json:"from_year"`
	ToYear          int             `json:"to_year"`
	RevenueVariance decimal.Decimal `json:"revenue_variance"`
	RevenuePercent  decimal.Decimal `json:"revenue_percent"`
	ProfitVariance  decimal.Decimal `json:"profit_variance"`
	ProfitPercent   decimal.Decimal `json:"profit_percent"`
}

// Analysis is one full trend run across a year window.
type Analysis struct {
	ClientID    int64           `json:"client_id"`
	Years       []YearFigures   `json:"years"`
	YoY         []YoY           `json:"yoy"`
	RevenueCAGR decimal.Decimal `json:"revenue_cagr"`
	ProfitCAGR  decimal.Decimal `json:"profit_cagr"`
	AvgRevenue  decimal.Decimal `json:"avg_revenue"`
	AvgMargin   decimal.Decimal `json:"avg_margin"`
}

// LedgerReader provides the balances each year's statements are built
// from.
type LedgerReader interface {
	SummariesInRange(ctx context.Context, clientID int64, from, to time.Time) ([]ledger.AccountSummary, error)
	SummariesThrough(ctx context.Context, clientID int64, asOf time.Time) ([]ledger.AccountSummary, error)
}

// Service runs the statement builders once per requested year and
// derives the comparative figures.
type Service struct {
	ledger LedgerReader
	cfg    reports.Config
}

// NewService constructs a trend Service.
func NewService(reader LedgerReader, cfg reports.Config) *Service {
	if cfg.OtherIncomePrefix == "" {
		cfg = reports.DefaultConfig()
	}
	return &Service{ledger: reader, cfg: cfg}
}

// Analyze builds figures for each year in [startYear, endYear] and the
// comparisons between them. Years run concurrently; each year's
// statements are independent reads.
func (s *Service) Analyze(ctx context.Context, clientID int64, startYear, endYear int) (Analysis, error) {
	if clientID <= 0 {
		return Analysis{}, shared.ErrClientRequired
	}
	if startYear > endYear {
		return Analysis{}, fmt.Errorf("trend: start year %d after end year %d", startYear, endYear)
	}
	span := endYear - startYear + 1
	if span > maxYearSpan {
		return Analysis{}, fmt.Errorf("trend: span of %d years exceeds the maximum of %d", span, maxYearSpan)
	}

	years := make([]YearFigures, span)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < span; i++ {
		i := i
		g.Go(func() error {
			figures, err := s.yearFigures(gctx, clientID, startYear+i)
			if err != nil {
				return err
			}
			years[i] = figures
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Analysis{}, err
	}

	analysis := Analysis{ClientID: clientID, Years: years}
	revenues := make([]decimal.Decimal, 0, span)
	margins := make([]decimal.Decimal, 0, span)
	for i, year := range years {
		revenues = append(revenues, year.Revenue)
		margins = append(margins, year.Margin)
		if i > 0 {
			prev := years[i-1]
			analysis.YoY = append(analysis.YoY, YoY{
				FromYear:        prev.Year,
				ToYear:          year.Year,
				RevenueVariance: Variance(year.Revenue, prev.Revenue),
				RevenuePercent:  PercentVariance(year.Revenue, prev.Revenue),
				ProfitVariance:  Variance(year.NetProfit, prev.NetProfit),
				ProfitPercent:   PercentVariance(year.NetProfit, prev.NetProfit),
			})
		}
	}
	first, last := years[0], years[span-1]
	analysis.RevenueCAGR = CAGR(first.Revenue, last.Revenue, span-1)
	analysis.ProfitCAGR = ProfitCAGR(first.NetProfit, last.NetProfit, span-1)
	analysis.AvgRevenue = Average(revenues)
	analysis.AvgMargin = Average(margins)
	return analysis, nil
}

func (s *Service) yearFigures(ctx context.Context, clientID int64, year int) (YearFigures, error) {
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := yearStart.AddDate(1, 0, 0)

	yearSummaries, err := s.ledger.SummariesInRange(ctx, clientID, yearStart, yearEnd)
	if err != nil {
		return YearFigures{}, err
	}
	historySummaries, err := s.ledger.SummariesThrough(ctx, clientID, yearEnd.AddDate(0, 0, -1))
	if err != nil {
		return YearFigures{}, err
	}

	is := reports.BuildIncomeStatement(yearSummaries, s.cfg)
	bs := reports.BuildBalanceSheet(historySummaries, s.cfg)

	revenue := is.Revenue.Total.Add(is.OtherIncome.Total)
	return YearFigures{
		Year:         year,
		Revenue:      revenue,
		NetProfit:    is.NetProfit,
		Margin:       Margin(is.NetProfit, revenue),
		CurrentRatio: CurrentRatio(bs.CurrentAssets.Total, bs.CurrentLiabilities.Total),
		DebtToEquity: DebtToEquity(bs.TotalLiabilities, bs.TotalEquity),
	}, nil
}
