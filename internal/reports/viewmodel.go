// Package reports derives financial statement views from aggregated
// ledger balances. Builders are pure: imbalances surface as flags on
// the returned view, never as errors.
package reports

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerd/ledgerd/internal/shared"
)

// Config carries the statement-shaping knobs: designated account
// sub-ranges, the statutory CIT rate, and the comparison tolerance.
type Config struct {
	OtherIncomePrefix  string
	CostOfSalesPrefix  string
	OtherExpensePrefix string
	CITRate            decimal.Decimal
	Tolerance          decimal.Decimal
}

// DefaultConfig returns the standard chart layout and a 20% CIT rate.
func DefaultConfig() Config {
	return Config{
		OtherIncomePrefix:  "42",
		CostOfSalesPrefix:  "51",
		OtherExpensePrefix: "59",
		CITRate:            decimal.New(20, -2),
		Tolerance:          shared.CentTolerance,
	}
}

// LineItem is one statement row.
type LineItem struct {
	Code   string          `json:"code"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// Section groups line items under a label with their total.
type Section struct {
	Label string          `json:"label"`
	Items []LineItem      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// TrialBalanceRow is one account's totals in the trial balance.
type TrialBalanceRow struct {
	Code    string          `json:"code"`
	Name    string          `json:"name"`
	Debit   decimal.Decimal `json:"debit"`
	Credit  decimal.Decimal `json:"credit"`
	Balance decimal.Decimal `json:"balance"`
}

// TrialBalance lists every account with debit/credit totals. Balanced
// reports the books-balance invariant; an unbalanced view is still
// returned in full so operators can locate the imbalance.
type TrialBalance struct {
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"total_debit"`
	TotalCredit decimal.Decimal   `json:"total_credit"`
	Balanced    bool              `json:"balanced"`
}

// IncomeStatement is the stepped profit or loss view.
type IncomeStatement struct {
	Revenue           Section         `json:"revenue"`
	CostOfSales       Section         `json:"cost_of_sales"`
	GrossProfit       decimal.Decimal `json:"gross_profit"`
	OperatingExpenses Section         `json:"operating_expenses"`
	OperatingProfit   decimal.Decimal `json:"operating_profit"`
	OtherIncome       Section         `json:"other_income"`
	OtherExpense      Section         `json:"other_expense"`
	ProfitBeforeTax   decimal.Decimal `json:"profit_before_tax"`
	TaxExpense        decimal.Decimal `json:"tax_expense"`
	NetProfit         decimal.Decimal `json:"net_profit"`
}

// BalanceSheet splits assets and liabilities current/non-current and
// carries a retained-earnings plug inside equity so the statement
// balances mid-period without an explicit closing posting.
type BalanceSheet struct {
	CurrentAssets             Section         `json:"current_assets"`
	NonCurrentAssets          Section         `json:"non_current_assets"`
	TotalAssets               decimal.Decimal `json:"total_assets"`
	CurrentLiabilities        Section         `json:"current_liabilities"`
	NonCurrentLiabilities     Section         `json:"non_current_liabilities"`
	TotalLiabilities          decimal.Decimal `json:"total_liabilities"`
	Equity                    Section         `json:"equity"`
	RetainedEarningsPlug      decimal.Decimal `json:"retained_earnings_plug"`
	TotalEquity               decimal.Decimal `json:"total_equity"`
	TotalLiabilitiesAndEquity decimal.Decimal `json:"total_liabilities_and_equity"`
	IsBalanced                bool            `json:"is_balanced"`
}

func (c Config) tolerance() decimal.Decimal {
	if c.Tolerance.IsPositive() {
		return c.Tolerance
	}
	return shared.CentTolerance
}

// suppressed reports whether a statement line is hidden for being zero.
// Trial balance rows are never suppressed.
func (c Config) suppressed(amount decimal.Decimal) bool {
	return amount.Abs().LessThan(c.tolerance())
}
