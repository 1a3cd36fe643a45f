package reports

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ledgerd/ledgerd/internal/ledger"
	"github.com/ledgerd/ledgerd/internal/ledger/coa"
)

func d(v string) decimal.Decimal {
	out, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return out
}

func sum(code, name, debit, credit string) ledger.AccountSummary {
	td, tc := d(debit), d(credit)
	cls := coa.Classify(code)
	balance := td.Sub(tc)
	if cls.NormalSide == coa.SideCredit {
		balance = tc.Sub(td)
	}
	return ledger.AccountSummary{
		Code:        code,
		Name:        name,
		Type:        cls.Type,
		TotalDebit:  td,
		TotalCredit: tc,
		Balance:     balance,
	}
}

// singleSale is a 1000 sale with 20% VAT: receivable 1200 against
// revenue 1000 and output VAT 200.
func singleSale() []ledger.AccountSummary {
	return []ledger.AccountSummary{
		sum("11300", "Accounts Receivable", "1200", "0"),
		sum("21300", "VAT Payable", "0", "200"),
		sum("41100", "Sales Revenue", "0", "1000"),
	}
}

func TestBuildTrialBalanceTotals(t *testing.T) {
	tb := BuildTrialBalance(singleSale(), DefaultConfig())
	if len(tb.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(tb.Rows))
	}
	if !tb.TotalDebit.Equal(d("1200")) || !tb.TotalCredit.Equal(d("1200")) {
		t.Fatalf("totals = %s / %s, want 1200 / 1200", tb.TotalDebit, tb.TotalCredit)
	}
	if !tb.Balanced {
		t.Fatal("expected balanced trial balance")
	}
}

func TestBuildTrialBalanceKeepsZeroBalanceRows(t *testing.T) {
	summaries := append(singleSale(), sum("11100", "Cash", "500", "500"))
	tb := BuildTrialBalance(summaries, DefaultConfig())
	if len(tb.Rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(tb.Rows))
	}
	if !tb.TotalDebit.Equal(d("1700")) {
		t.Fatalf("total debit = %s, want 1700", tb.TotalDebit)
	}
}

func TestBuildTrialBalanceUnbalancedStillRendered(t *testing.T) {
	summaries := []ledger.AccountSummary{sum("11100", "Cash", "100", "0")}
	tb := BuildTrialBalance(summaries, DefaultConfig())
	if tb.Balanced {
		t.Fatal("expected unbalanced flag")
	}
	if len(tb.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(tb.Rows))
	}
}

func TestBuildIncomeStatementSingleSale(t *testing.T) {
	is := BuildIncomeStatement(singleSale(), DefaultConfig())
	if !is.Revenue.Total.Equal(d("1000")) {
		t.Fatalf("revenue = %s, want 1000", is.Revenue.Total)
	}
	if !is.ProfitBeforeTax.Equal(d("1000")) {
		t.Fatalf("profit before tax = %s, want 1000", is.ProfitBeforeTax)
	}
	if !is.TaxExpense.Equal(d("200")) {
		t.Fatalf("tax = %s, want 200", is.TaxExpense)
	}
	if !is.NetProfit.Equal(d("800")) {
		t.Fatalf("net = %s, want 800", is.NetProfit)
	}
}

func TestBuildIncomeStatementSteppedSections(t *testing.T) {
	summaries := []ledger.AccountSummary{
		sum("41100", "Sales Revenue", "0", "5000"),
		sum("42100", "Interest Income", "0", "100"),
		sum("51100", "Cost of Goods Sold", "2000", "0"),
		sum("60100", "Salaries", "1500", "0"),
		sum("59100", "FX Loss", "300", "0"),
	}
	is := BuildIncomeStatement(summaries, DefaultConfig())
	if !is.GrossProfit.Equal(d("3000")) {
		t.Fatalf("gross = %s, want 3000", is.GrossProfit)
	}
	if !is.OperatingProfit.Equal(d("1500")) {
		t.Fatalf("operating = %s, want 1500", is.OperatingProfit)
	}
	if !is.ProfitBeforeTax.Equal(d("1300")) {
		t.Fatalf("pbt = %s, want 1300", is.ProfitBeforeTax)
	}
	if !is.TaxExpense.Equal(d("260")) {
		t.Fatalf("tax = %s, want 260", is.TaxExpense)
	}
	if !is.NetProfit.Equal(d("1040")) {
		t.Fatalf("net = %s, want 1040", is.NetProfit)
	}
}

func TestBuildIncomeStatementLossCarriesNoTax(t *testing.T) {
	summaries := []ledger.AccountSummary{
		sum("41100", "Sales Revenue", "0", "100"),
		sum("60100", "Salaries", "500", "0"),
	}
	is := BuildIncomeStatement(summaries, DefaultConfig())
	if !is.TaxExpense.IsZero() {
		t.Fatalf("tax = %s, want 0", is.TaxExpense)
	}
	if !is.NetProfit.Equal(d("-400")) {
		t.Fatalf("net = %s, want -400", is.NetProfit)
	}
}

func TestBuildIncomeStatementSuppressesZeroLines(t *testing.T) {
	summaries := []ledger.AccountSummary{
		sum("41100", "Sales Revenue", "0", "1000"),
		sum("41200", "Service Revenue", "300", "300"),
	}
	is := BuildIncomeStatement(summaries, DefaultConfig())
	if len(is.Revenue.Items) != 1 {
		t.Fatalf("revenue items = %d, want 1", len(is.Revenue.Items))
	}
}

func TestBuildBalanceSheetSingleSale(t *testing.T) {
	bs := BuildBalanceSheet(singleSale(), DefaultConfig())
	if !bs.TotalAssets.Equal(d("1200")) {
		t.Fatalf("assets = %s, want 1200", bs.TotalAssets)
	}
	if !bs.TotalLiabilities.Equal(d("200")) {
		t.Fatalf("liabilities = %s, want 200", bs.TotalLiabilities)
	}
	if !bs.RetainedEarningsPlug.Equal(d("1000")) {
		t.Fatalf("plug = %s, want 1000", bs.RetainedEarningsPlug)
	}
	if !bs.IsBalanced {
		t.Fatalf("expected balanced sheet: assets %s vs L+E %s", bs.TotalAssets, bs.TotalLiabilitiesAndEquity)
	}
}

func TestBuildBalanceSheetCurrentSplit(t *testing.T) {
	summaries := []ledger.AccountSummary{
		sum("11100", "Cash", "400", "0"),
		sum("12100", "Machinery", "600", "0"),
		sum("21100", "Accounts Payable", "0", "150"),
		sum("22100", "Long-term Loan", "0", "550"),
		sum("31100", "Share Capital", "0", "300"),
	}
	bs := BuildBalanceSheet(summaries, DefaultConfig())
	if len(bs.CurrentAssets.Items) != 1 || len(bs.NonCurrentAssets.Items) != 1 {
		t.Fatalf("asset split = %d/%d, want 1/1", len(bs.CurrentAssets.Items), len(bs.NonCurrentAssets.Items))
	}
	if len(bs.CurrentLiabilities.Items) != 1 || len(bs.NonCurrentLiabilities.Items) != 1 {
		t.Fatalf("liability split = %d/%d, want 1/1", len(bs.CurrentLiabilities.Items), len(bs.NonCurrentLiabilities.Items))
	}
	if !bs.RetainedEarningsPlug.IsZero() {
		t.Fatalf("plug = %s, want 0", bs.RetainedEarningsPlug)
	}
	if !bs.IsBalanced {
		t.Fatal("expected balanced sheet")
	}
}

func TestBuildBalanceSheetContraAssetStaysNegative(t *testing.T) {
	summaries := []ledger.AccountSummary{
		sum("12100", "Machinery", "1000", "0"),
		sum("12900", "Accumulated Depreciation", "0", "100"),
		sum("31100", "Share Capital", "0", "900"),
	}
	bs := BuildBalanceSheet(summaries, DefaultConfig())
	if !bs.NonCurrentAssets.Total.Equal(d("900")) {
		t.Fatalf("non-current assets = %s, want 900", bs.NonCurrentAssets.Total)
	}
	if !bs.IsBalanced {
		t.Fatal("expected balanced sheet")
	}
}
