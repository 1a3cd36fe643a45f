package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerd/ledgerd/internal/ledger/coa"
)

// Entry is one immutable debit-or-credit line against an account code.
// Entries are append-only; a closed period never accepts new ones and
// posted ones are never updated or deleted.
type Entry struct {
	ID              int64
	ClientID        int64
	Date            time.Time
	AccountCode     string
	AccountName     string
	Debit           decimal.Decimal
	Credit          decimal.Decimal
	Description     string
	PeriodKey       string
	SourceDocID     *uuid.UUID
	SystemGenerated bool
	CreatedAt       time.Time
}

// AccountSummary aggregates all entries of one account code.
type AccountSummary struct {
	Code        string
	Name        string
	Type        coa.AccountType
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	// Balance is signed by the account's normal side: debit-normal
	// accounts carry debit minus credit, credit-normal the reverse.
	Balance decimal.Decimal
	// NameConflict marks codes posted under more than one account name.
	// The latest name wins; reconciliation surfaces the conflict.
	NameConflict bool
}

// RunningBalanceRow is one ledger line with its cumulative balance.
type RunningBalanceRow struct {
	Entry   Entry
	Balance decimal.Decimal
}
