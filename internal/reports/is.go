package reports

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ledgerd/ledgerd/internal/ledger"
	"github.com/ledgerd/ledgerd/internal/ledger/coa"
)

// BuildIncomeStatement derives the stepped profit or loss view for one
// period's aggregated balances. The tax line is computed from profit
// before tax at the configured rate rather than read from a posting, so
// the statement previews the liability before the period is closed.
func BuildIncomeStatement(summaries []ledger.AccountSummary, cfg Config) IncomeStatement {
	is := IncomeStatement{
		Revenue:           newSection("Revenue"),
		CostOfSales:       newSection("Cost of Sales"),
		OperatingExpenses: newSection("Operating Expenses"),
		OtherIncome:       newSection("Other Income"),
		OtherExpense:      newSection("Other Expense"),
	}
	for _, s := range summaries {
		if cfg.suppressed(s.Balance) {
			continue
		}
		switch coa.TypeOf(s.Code) {
		case coa.AccountTypeRevenue:
			if strings.HasPrefix(s.Code, cfg.OtherIncomePrefix) {
				addLine(&is.OtherIncome, s)
			} else {
				addLine(&is.Revenue, s)
			}
		case coa.AccountTypeExpense:
			switch {
			case strings.HasPrefix(s.Code, cfg.CostOfSalesPrefix):
				addLine(&is.CostOfSales, s)
			case strings.HasPrefix(s.Code, cfg.OtherExpensePrefix):
				addLine(&is.OtherExpense, s)
			default:
				addLine(&is.OperatingExpenses, s)
			}
		}
	}
	is.GrossProfit = is.Revenue.Total.Sub(is.CostOfSales.Total)
	is.OperatingProfit = is.GrossProfit.Sub(is.OperatingExpenses.Total)
	is.ProfitBeforeTax = is.OperatingProfit.Add(is.OtherIncome.Total).Sub(is.OtherExpense.Total)
	is.TaxExpense = taxOn(is.ProfitBeforeTax, cfg.CITRate)
	is.NetProfit = is.ProfitBeforeTax.Sub(is.TaxExpense)
	return is
}

// taxOn applies the CIT rate to positive profit. Losses carry no
// current tax charge.
func taxOn(profitBeforeTax, rate decimal.Decimal) decimal.Decimal {
	if !profitBeforeTax.IsPositive() {
		return decimal.Zero
	}
	return profitBeforeTax.Mul(rate).Round(2)
}

func newSection(label string) Section {
	return Section{Label: label, Items: []LineItem{}, Total: decimal.Zero}
}

func addLine(sec *Section, s ledger.AccountSummary) {
	sec.Items = append(sec.Items, LineItem{Code: s.Code, Name: s.Name, Amount: s.Balance})
	sec.Total = sec.Total.Add(s.Balance)
}
