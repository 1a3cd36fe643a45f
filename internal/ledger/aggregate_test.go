package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ledgerd/ledgerd/internal/ledger/coa"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func mustUUID(t *testing.T) uuid.UUID {
	t.Helper()
	id, err := uuid.NewRandom()
	require.NoError(t, err)
	return id
}

func day(dayOfMonth int) time.Time {
	return time.Date(2025, 6, dayOfMonth, 0, 0, 0, 0, time.UTC)
}

func TestAggregateSignsByNormalSide(t *testing.T) {
	entries := []Entry{
		{ID: 1, Date: day(1), AccountCode: "11100", AccountName: "Cash", Debit: d("1000"), Credit: decimal.Zero},
		{ID: 2, Date: day(1), AccountCode: "41100", AccountName: "Sales", Debit: decimal.Zero, Credit: d("1000")},
		{ID: 3, Date: day(2), AccountCode: "11100", AccountName: "Cash", Debit: decimal.Zero, Credit: d("250")},
	}

	sums := Aggregate(entries, Filter{})
	require.Len(t, sums, 2)

	cash := sums[0]
	require.Equal(t, "11100", cash.Code)
	require.Equal(t, coa.AccountTypeAsset, cash.Type)
	require.True(t, cash.Balance.Equal(d("750")), "cash balance %s", cash.Balance)

	sales := sums[1]
	require.Equal(t, "41100", sales.Code)
	require.True(t, sales.Balance.Equal(d("1000")), "sales balance %s", sales.Balance)
}

func TestAggregateExactOverManyPostings(t *testing.T) {
	// 0.1 style amounts drift under binary floats; decimals must not.
	entries := make([]Entry, 0, 2000)
	for i := 0; i < 1000; i++ {
		entries = append(entries,
			Entry{ID: int64(2 * i), Date: day(1), AccountCode: "11100", AccountName: "Cash", Debit: d("0.10"), Credit: decimal.Zero},
			Entry{ID: int64(2*i + 1), Date: day(1), AccountCode: "41100", AccountName: "Sales", Debit: decimal.Zero, Credit: d("0.10")},
		)
	}
	sums := Aggregate(entries, Filter{})
	require.True(t, sums[0].Balance.Equal(d("100")), "got %s", sums[0].Balance)
	require.True(t, sums[1].Balance.Equal(d("100")), "got %s", sums[1].Balance)

	debit, credit := Totals(entries, Filter{})
	require.True(t, debit.Equal(credit))
}

func TestAggregateLatestNameWinsAndFlagsConflict(t *testing.T) {
	entries := []Entry{
		{ID: 1, Date: day(1), AccountCode: "51000", AccountName: "Cost of Goods", Debit: d("10"), Credit: decimal.Zero},
		{ID: 2, Date: day(5), AccountCode: "51000", AccountName: "Cost of Sales", Debit: d("10"), Credit: decimal.Zero},
	}
	sums := Aggregate(entries, Filter{})
	require.Len(t, sums, 1)
	require.Equal(t, "Cost of Sales", sums[0].Name)
	require.True(t, sums[0].NameConflict)
}

func TestAggregateEmptyInput(t *testing.T) {
	require.Empty(t, Aggregate(nil, Filter{}))
	debit, credit := Totals(nil, Filter{})
	require.True(t, debit.IsZero())
	require.True(t, credit.IsZero())
}

func TestAggregateDateFilterIsHalfOpen(t *testing.T) {
	entries := []Entry{
		{ID: 1, Date: day(1), AccountCode: "11100", Debit: d("1"), Credit: decimal.Zero},
		{ID: 2, Date: day(15), AccountCode: "11100", Debit: d("2"), Credit: decimal.Zero},
		{ID: 3, Date: day(30), AccountCode: "11100", Debit: d("4"), Credit: decimal.Zero},
	}
	sums := Aggregate(entries, Filter{From: day(1), To: day(30)})
	require.Len(t, sums, 1)
	require.True(t, sums[0].TotalDebit.Equal(d("3")), "got %s", sums[0].TotalDebit)
}

func TestRunningBalanceOrdersByDateThenID(t *testing.T) {
	entries := []Entry{
		{ID: 3, Date: day(2), AccountCode: "11100", AccountName: "Cash", Debit: decimal.Zero, Credit: d("300")},
		{ID: 1, Date: day(1), AccountCode: "11100", AccountName: "Cash", Debit: d("1000"), Credit: decimal.Zero},
		{ID: 2, Date: day(1), AccountCode: "11100", AccountName: "Cash", Debit: d("500"), Credit: decimal.Zero},
	}
	rows := RunningBalance(entries, Filter{AccountCode: "11100"})
	require.Len(t, rows, 3)
	require.Equal(t, int64(1), rows[0].Entry.ID)
	require.True(t, rows[0].Balance.Equal(d("1000")))
	require.Equal(t, int64(2), rows[1].Entry.ID)
	require.True(t, rows[1].Balance.Equal(d("1500")))
	require.True(t, rows[2].Balance.Equal(d("1200")))
}

func TestPostingInputValidate(t *testing.T) {
	base := PostingInput{
		ClientID: 7,
		Date:     day(1),
		BatchID:  mustUUID(t),
		Lines: []PostingLineInput{
			{AccountCode: "11100", AccountName: "Cash", Debit: d("100")},
			{AccountCode: "41100", AccountName: "Sales", Credit: d("100")},
		},
	}
	require.NoError(t, base.Validate())

	unbalanced := base
	unbalanced.Lines = []PostingLineInput{
		{AccountCode: "11100", Debit: d("100")},
		{AccountCode: "41100", Credit: d("99")},
	}
	require.ErrorIs(t, unbalanced.Validate(), ErrUnbalanced)

	single := base
	single.Lines = base.Lines[:1]
	require.ErrorIs(t, single.Validate(), ErrTooFewLines)

	both := base
	both.Lines = []PostingLineInput{
		{AccountCode: "11100", Debit: d("100"), Credit: d("100")},
		{AccountCode: "41100", Credit: d("0.00"), Debit: d("0.00")},
	}
	require.Error(t, both.Validate())
}
