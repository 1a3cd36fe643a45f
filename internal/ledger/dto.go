package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerd/ledgerd/internal/shared"
)

// PostingLineInput describes one line of a posting batch.
type PostingLineInput struct {
	AccountCode string
	AccountName string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

// PostingInput groups the lines posted as one journal batch. A batch
// must balance; single unbalanced lines are never accepted.
type PostingInput struct {
	ClientID        int64
	Date            time.Time
	BatchID         uuid.UUID
	Lines           []PostingLineInput
	SourceDocID     *uuid.UUID
	SystemGenerated bool
	PostedBy        int64
}

// Validate ensures posting input meets minimum criteria. A line with
// both debit and credit nonzero is rejected rather than netted, so the
// books-balance invariant stays exact.
func (in PostingInput) Validate() error {
	if in.ClientID == 0 {
		return shared.ErrClientRequired
	}
	if in.Date.IsZero() {
		return errors.New("ledger: posting date required")
	}
	if in.BatchID == uuid.Nil {
		return errors.New("ledger: batch id required")
	}
	if len(in.Lines) < 2 {
		return ErrTooFewLines
	}
	debit := decimal.Zero
	credit := decimal.Zero
	for idx, line := range in.Lines {
		if line.AccountCode == "" {
			return fmt.Errorf("ledger: line %d missing account code", idx)
		}
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return fmt.Errorf("ledger: line %d negative amount", idx)
		}
		if line.Debit.IsPositive() && line.Credit.IsPositive() {
			return fmt.Errorf("ledger: line %d cannot be both debit and credit", idx)
		}
		if line.Debit.IsZero() && line.Credit.IsZero() {
			return fmt.Errorf("ledger: line %d has no amount", idx)
		}
		debit = debit.Add(shared.Quantize(line.Debit))
		credit = credit.Add(shared.Quantize(line.Credit))
	}
	if !debit.Equal(credit) {
		return ErrUnbalanced
	}
	return nil
}

// PeriodKey returns the calendar month the batch posts into.
func (in PostingInput) PeriodKey() string {
	return shared.PeriodKeyFor(in.Date)
}

// Filter narrows aggregation to an account and/or date window.
// From/To form a half-open [From, To) range; zero values disable the
// respective bound.
type Filter struct {
	AccountCode string
	From        time.Time
	To          time.Time
}

// Matches reports whether an entry passes the filter.
func (f Filter) Matches(e Entry) bool {
	if f.AccountCode != "" && e.AccountCode != f.AccountCode {
		return false
	}
	if !f.From.IsZero() && e.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !e.Date.Before(f.To) {
		return false
	}
	return true
}

var (
	// ErrTooFewLines indicates a batch with fewer than two lines.
	ErrTooFewLines = errors.New("ledger: posting requires at least two lines")
	// ErrUnbalanced indicates batch debits do not equal credits.
	ErrUnbalanced = errors.New("ledger: posting debits must equal credits")
	// ErrDuplicateBatch indicates the batch id was already posted.
	ErrDuplicateBatch = errors.New("ledger: posting batch already recorded")
)
