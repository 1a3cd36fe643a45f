package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ledgerd/ledgerd/internal/ledger/coa"
)

// Aggregate folds entries into per-account summaries, signed by each
// account's normal balance side. The input order does not matter; the
// result is sorted by account code. Pure: no I/O, no errors.
func Aggregate(entries []Entry, filter Filter) []AccountSummary {
	type nameTrack struct {
		name     string
		date     int64
		id       int64
		conflict bool
	}
	sums := make(map[string]*AccountSummary)
	names := make(map[string]*nameTrack)

	for _, e := range entries {
		if !filter.Matches(e) {
			continue
		}
		sum, ok := sums[e.AccountCode]
		if !ok {
			sum = &AccountSummary{
				Code:        e.AccountCode,
				Type:        coa.TypeOf(e.AccountCode),
				TotalDebit:  decimal.Zero,
				TotalCredit: decimal.Zero,
			}
			sums[e.AccountCode] = sum
		}
		sum.TotalDebit = sum.TotalDebit.Add(e.Debit)
		sum.TotalCredit = sum.TotalCredit.Add(e.Credit)

		// Most recent name wins; divergent names get flagged so the
		// reconciliation engine can surface the data-quality concern.
		track, ok := names[e.AccountCode]
		if !ok {
			names[e.AccountCode] = &nameTrack{name: e.AccountName, date: e.Date.UnixNano(), id: e.ID}
			continue
		}
		if e.AccountName != track.name {
			track.conflict = true
		}
		if e.Date.UnixNano() > track.date || (e.Date.UnixNano() == track.date && e.ID > track.id) {
			track.name = e.AccountName
			track.date = e.Date.UnixNano()
			track.id = e.ID
		}
	}

	out := make([]AccountSummary, 0, len(sums))
	for code, sum := range sums {
		if track := names[code]; track != nil {
			sum.Name = track.name
			sum.NameConflict = track.conflict
		}
		sum.Balance = signedBalance(sum.Code, sum.TotalDebit, sum.TotalCredit)
		out = append(out, *sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// RunningBalance returns the matching entries sorted ascending by date
// (insertion id breaks ties) with a cumulative signed balance column.
func RunningBalance(entries []Entry, filter Filter) []RunningBalanceRow {
	matched := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if filter.Matches(e) {
			matched = append(matched, e)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.Before(matched[j].Date)
		}
		return matched[i].ID < matched[j].ID
	})

	rows := make([]RunningBalanceRow, 0, len(matched))
	running := decimal.Zero
	for _, e := range matched {
		running = running.Add(signedBalance(e.AccountCode, e.Debit, e.Credit))
		rows = append(rows, RunningBalanceRow{Entry: e, Balance: running})
	}
	return rows
}

// Totals sums debits and credits over the filtered entries.
func Totals(entries []Entry, filter Filter) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, e := range entries {
		if !filter.Matches(e) {
			continue
		}
		debit = debit.Add(e.Debit)
		credit = credit.Add(e.Credit)
	}
	return debit, credit
}

func signedBalance(code string, debit, credit decimal.Decimal) decimal.Decimal {
	if coa.Classify(code).NormalSide == coa.SideDebit {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}
