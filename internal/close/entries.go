package close

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerd/ledgerd/internal/ledger"
	"github.com/ledgerd/ledgerd/internal/ledger/coa"
)

// Config carries the closing targets: the statutory CIT rate and the
// designated accounts the closing set posts to.
type Config struct {
	CITRate                 decimal.Decimal
	CITExpenseAccount       string
	CITPayableAccount       string
	RetainedEarningsAccount string
}

// DefaultConfig applies a 20% CIT rate with the standard designated
// accounts.
func DefaultConfig() Config {
	return Config{
		CITRate:                 decimal.New(20, -2),
		CITExpenseAccount:       "59500",
		CITPayableAccount:       "21500",
		RetainedEarningsAccount: "32000",
	}
}

// Figures are the amounts the closing set was built from.
type Figures struct {
	ProfitBeforeTax decimal.Decimal `json:"profit_before_tax"`
	CIT             decimal.Decimal `json:"cit"`
	NetProfit       decimal.Decimal `json:"net_profit"`
}

// BuildClosingEntries derives the closing entry set from one period's
// aggregated balances:
//
//  1. a zeroing line per nonzero revenue and expense account,
//  2. on positive profit, a CIT accrual pair plus a zeroing line for
//     the CIT expense account, and
//  3. the retained-earnings transfer of net profit (debit on a loss).
//
// The set is verified internally balanced before it is returned; an
// unbalanced set aborts with ErrClosingUnbalanced and nothing to
// persist.
func BuildClosingEntries(summaries []ledger.AccountSummary, cfg Config) ([]ledger.PostingLineInput, Figures, error) {
	var lines []ledger.PostingLineInput
	revenue, expense := decimal.Zero, decimal.Zero

	for _, s := range summaries {
		if s.Balance.IsZero() {
			continue
		}
		switch coa.TypeOf(s.Code) {
		case coa.AccountTypeRevenue:
			revenue = revenue.Add(s.Balance)
			lines = append(lines, zeroingLine(s, coa.SideCredit))
		case coa.AccountTypeExpense:
			expense = expense.Add(s.Balance)
			lines = append(lines, zeroingLine(s, coa.SideDebit))
		}
	}

	figures := Figures{ProfitBeforeTax: revenue.Sub(expense)}
	if figures.ProfitBeforeTax.IsPositive() {
		figures.CIT = figures.ProfitBeforeTax.Mul(cfg.CITRate).Round(2)
	}
	figures.NetProfit = figures.ProfitBeforeTax.Sub(figures.CIT)

	if figures.CIT.IsPositive() {
		lines = append(lines,
			ledger.PostingLineInput{
				AccountCode: cfg.CITExpenseAccount,
				AccountName: "Corporate Income Tax Expense",
				Debit:       figures.CIT,
				Description: "CIT accrual",
			},
			ledger.PostingLineInput{
				AccountCode: cfg.CITPayableAccount,
				AccountName: "Corporate Income Tax Payable",
				Credit:      figures.CIT,
				Description: "CIT accrual",
			},
			// The accrual itself lands in an expense account, so it
			// closes to zero in the same set.
			ledger.PostingLineInput{
				AccountCode: cfg.CITExpenseAccount,
				AccountName: "Corporate Income Tax Expense",
				Credit:      figures.CIT,
				Description: "close CIT expense",
			},
		)
	}

	if !figures.NetProfit.IsZero() {
		re := ledger.PostingLineInput{
			AccountCode: cfg.RetainedEarningsAccount,
			AccountName: "Retained Earnings",
			Description: "net result transfer",
		}
		if figures.NetProfit.IsPositive() {
			re.Credit = figures.NetProfit
		} else {
			re.Debit = figures.NetProfit.Neg()
		}
		lines = append(lines, re)
	}

	debits, credits := decimal.Zero, decimal.Zero
	for _, line := range lines {
		debits = debits.Add(line.Debit)
		credits = credits.Add(line.Credit)
	}
	if !debits.Equal(credits) {
		return nil, Figures{}, ErrClosingUnbalanced
	}
	return lines, figures, nil
}

// zeroingLine emits the line that zeroes one temporary account: the
// opposite of its normal side for a positive balance, the normal side
// itself when a contra balance has gone negative.
func zeroingLine(s ledger.AccountSummary, normal coa.Side) ledger.PostingLineInput {
	line := ledger.PostingLineInput{
		AccountCode: s.Code,
		AccountName: s.Name,
		Description: "period close",
	}
	amount := s.Balance
	flip := amount.IsNegative()
	if flip {
		amount = amount.Neg()
	}
	debitToZero := normal == coa.SideCredit
	if flip {
		debitToZero = !debitToZero
	}
	if debitToZero {
		line.Debit = amount
	} else {
		line.Credit = amount
	}
	return line
}
