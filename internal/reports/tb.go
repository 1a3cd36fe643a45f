package reports

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerd/ledgerd/internal/ledger"
)

// BuildTrialBalance lists every aggregated account with its debit and
// credit totals. Zero-balance accounts stay in the listing so the
// totals reconcile against the raw posting store.
func BuildTrialBalance(summaries []ledger.AccountSummary, cfg Config) TrialBalance {
	tb := TrialBalance{
		Rows:        make([]TrialBalanceRow, 0, len(summaries)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, s := range summaries {
		tb.Rows = append(tb.Rows, TrialBalanceRow{
			Code:    s.Code,
			Name:    s.Name,
			Debit:   s.TotalDebit,
			Credit:  s.TotalCredit,
			Balance: s.Balance,
		})
		tb.TotalDebit = tb.TotalDebit.Add(s.TotalDebit)
		tb.TotalCredit = tb.TotalCredit.Add(s.TotalCredit)
	}
	tb.Balanced = tb.TotalDebit.Sub(tb.TotalCredit).Abs().LessThanOrEqual(cfg.tolerance())
	return tb
}
