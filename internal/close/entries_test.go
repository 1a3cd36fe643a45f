package close

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
	return ledger.AccountSummary{Code: code, Name: name, Type: cls.Type, TotalDebit: td, TotalCredit: tc, Balance: balance}
}

func lineTotals(lines []ledger.PostingLineInput) (debits, credits decimal.Decimal) {
	for _, line := range lines {
		debits = debits.Add(line.Debit)
		credits = credits.Add(line.Credit)
	}
	return debits, credits
}

func TestBuildClosingEntriesSingleSale(t *testing.T) {
	summaries := []ledger.AccountSummary{
		sum("11100", "Cash", "1000", "0"),
		sum("41100", "Sales Revenue", "0", "1000"),
	}
	lines, figures, err := BuildClosingEntries(summaries, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 5 {
		t.Fatalf("lines = %d, want 5", len(lines))
	}
	if !figures.ProfitBeforeTax.Equal(d("1000")) || !figures.CIT.Equal(d("200")) || !figures.NetProfit.Equal(d("800")) {
		t.Fatalf("figures = %+v", figures)
	}
	debits, credits := lineTotals(lines)
	if !debits.Equal(credits) || !debits.Equal(d("1200")) {
		t.Fatalf("totals = %s / %s, want 1200 / 1200", debits, credits)
	}
	if lines[0].AccountCode != "41100" || !lines[0].Debit.Equal(d("1000")) {
		t.Fatalf("revenue zeroing line = %+v", lines[0])
	}
	last := lines[len(lines)-1]
	if last.AccountCode != "32000" || !last.Credit.Equal(d("800")) {
		t.Fatalf("retained earnings line = %+v", last)
	}
}

func TestBuildClosingEntriesLossDebitsRetainedEarnings(t *testing.T) {
	summaries := []ledger.AccountSummary{
		sum("41100", "Sales Revenue", "0", "100"),
		sum("60100", "Salaries", "500", "0"),
	}
	lines, figures, err := BuildClosingEntries(summaries, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !figures.CIT.IsZero() {
		t.Fatalf("CIT on a loss = %s, want 0", figures.CIT)
	}
	if !figures.NetProfit.Equal(d("-400")) {
		t.Fatalf("net = %s, want -400", figures.NetProfit)
	}
	last := lines[len(lines)-1]
	if last.AccountCode != "32000" || !last.Debit.Equal(d("400")) {
		t.Fatalf("retained earnings line = %+v", last)
	}
	debits, credits := lineTotals(lines)
	if !debits.Equal(credits) {
		t.Fatalf("unbalanced set: %s vs %s", debits, credits)
	}
}

func TestBuildClosingEntriesBreakEven(t *testing.T) {
	summaries := []ledger.AccountSummary{
		sum("41100", "Sales Revenue", "0", "500"),
		sum("60100", "Salaries", "500", "0"),
	}
	lines, figures, err := BuildClosingEntries(summaries, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !figures.NetProfit.IsZero() {
		t.Fatalf("net = %s, want 0", figures.NetProfit)
	}
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2 (no CIT, no retained-earnings transfer)", len(lines))
	}
	debits, credits := lineTotals(lines)
	if !debits.Equal(credits) {
		t.Fatalf("unbalanced set: %s vs %s", debits, credits)
	}
}

func TestBuildClosingEntriesHandlesContraBalances(t *testing.T) {
	// Sales returns drive a revenue account debit-negative; the zeroing
	// line flips sides.
	summaries := []ledger.AccountSummary{
		sum("41100", "Sales Revenue", "0", "900"),
		sum("41900", "Sales Returns", "50", "0"),
		sum("51100", "Cost of Goods Sold", "300", "0"),
	}
	lines, figures, err := BuildClosingEntries(summaries, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !figures.ProfitBeforeTax.Equal(d("550")) {
		t.Fatalf("pbt = %s, want 550", figures.ProfitBeforeTax)
	}
	var returns ledger.PostingLineInput
	for _, line := range lines {
		if line.AccountCode == "41900" {
			returns = line
		}
	}
	if !returns.Credit.Equal(d("50")) || !returns.Debit.IsZero() {
		t.Fatalf("contra revenue zeroing line = %+v", returns)
	}
	debits, credits := lineTotals(lines)
	if !debits.Equal(credits) {
		t.Fatalf("unbalanced set: %s vs %s", debits, credits)
	}
}

func TestBuildClosingEntriesEmptyPeriod(t *testing.T) {
	lines, figures, err := BuildClosingEntries(nil, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 0 {
		t.Fatalf("lines = %d, want 0", len(lines))
	}
	if !figures.ProfitBeforeTax.IsZero() {
		t.Fatalf("pbt = %s, want 0", figures.ProfitBeforeTax)
	}
}
