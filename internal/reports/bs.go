package reports

import (
	"github.com/shopspring/decimal"

	"github.com/ledgerd/ledgerd/internal/ledger"
	"github.com/ledgerd/ledgerd/internal/ledger/coa"
)

// retainedEarningsPlugLabel names the synthetic equity line carrying
// unclosed profit. After closing, the revenue and expense balances are
// zero and the plug disappears in favor of the real retained-earnings
// posting.
const retainedEarningsPlugLabel = "Retained Earnings (unclosed)"

// BuildBalanceSheet derives the statement of financial position from
// balances aggregated over the full posting history through the as-of
// date. Temporary-account balances fold into a retained-earnings plug
// inside equity so the statement balances before closing entries are
// posted.
func BuildBalanceSheet(summaries []ledger.AccountSummary, cfg Config) BalanceSheet {
	bs := BalanceSheet{
		CurrentAssets:         newSection("Current Assets"),
		NonCurrentAssets:      newSection("Non-current Assets"),
		CurrentLiabilities:    newSection("Current Liabilities"),
		NonCurrentLiabilities: newSection("Non-current Liabilities"),
		Equity:                newSection("Equity"),
	}
	plug := decimal.Zero
	for _, s := range summaries {
		cls := coa.Classify(s.Code)
		switch cls.Type {
		case coa.AccountTypeRevenue:
			plug = plug.Add(s.Balance)
			continue
		case coa.AccountTypeExpense:
			plug = plug.Sub(s.Balance)
			continue
		}
		if cfg.suppressed(s.Balance) {
			continue
		}
		switch cls.Type {
		case coa.AccountTypeAsset:
			if cls.IsCurrent {
				addLine(&bs.CurrentAssets, s)
			} else {
				addLine(&bs.NonCurrentAssets, s)
			}
		case coa.AccountTypeLiability:
			if cls.IsCurrent {
				addLine(&bs.CurrentLiabilities, s)
			} else {
				addLine(&bs.NonCurrentLiabilities, s)
			}
		case coa.AccountTypeEquity:
			addLine(&bs.Equity, s)
		}
	}
	bs.RetainedEarningsPlug = plug
	if !cfg.suppressed(plug) {
		bs.Equity.Items = append(bs.Equity.Items, LineItem{Name: retainedEarningsPlugLabel, Amount: plug})
	}
	bs.Equity.Total = bs.Equity.Total.Add(plug)

	bs.TotalAssets = bs.CurrentAssets.Total.Add(bs.NonCurrentAssets.Total)
	bs.TotalLiabilities = bs.CurrentLiabilities.Total.Add(bs.NonCurrentLiabilities.Total)
	bs.TotalEquity = bs.Equity.Total
	bs.TotalLiabilitiesAndEquity = bs.TotalLiabilities.Add(bs.TotalEquity)
	bs.IsBalanced = bs.TotalAssets.Sub(bs.TotalLiabilitiesAndEquity).Abs().LessThanOrEqual(cfg.tolerance())
	return bs
}
