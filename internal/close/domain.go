// Package close orchestrates period closing: readiness checks, the
// closing entry set, status transitions, and audited reopens.
package close

import (
	"errors"
	"fmt"
	"time"

	"github.com/ledgerd/ledgerd/internal/shared"
)

// PeriodStatus enumerates the per-client period states.
type PeriodStatus string

const (
	StatusOpen          PeriodStatus = "open"
	StatusPendingReview PeriodStatus = "pending_review"
	StatusClosed        PeriodStatus = "closed"
)

// Filing statuses for the VAT and WHT flags. They travel with the
// period row but do not gate closing.
const (
	FilingPending = "pending"
	FilingFiled   = "filed"
)

// Period is one client's month in the registry.
type Period struct {
	ID         int64        `json:"id"`
	ClientID   int64        `json:"client_id"`
	PeriodKey  string       `json:"period"`
	Status     PeriodStatus `json:"status"`
	VATStatus  string       `json:"vat_status"`
	WHTStatus  string       `json:"wht_status"`
	ClosedAt   *time.Time   `json:"closed_at,omitempty"`
	ClosedBy   *int64       `json:"closed_by,omitempty"`
	ReopenedAt *time.Time   `json:"reopened_at,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// ClosingReadiness is computed fresh from data on every check; it is
// never cached.
type ClosingReadiness struct {
	PendingDocs           int  `json:"pending_docs"`
	RejectedDocs          int  `json:"rejected_docs"`
	UnreconciledBankLines int  `json:"unreconciled_bank_lines"`
	TrialBalanceBalanced  bool `json:"trial_balance_balanced"`
}

// Ready reports whether every gate passes.
func (r ClosingReadiness) Ready() bool {
	return r.PendingDocs == 0 && r.RejectedDocs == 0 && r.UnreconciledBankLines == 0 && r.TrialBalanceBalanced
}

var (
	// ErrNotReady rejects a close whose readiness gates fail. The
	// concrete error is a NotReadyError carrying the violating counts.
	ErrNotReady = errors.New("close: period not ready")
	// ErrAlreadyClosed rejects a second close of the same period.
	// Re-closing would double-zero the temporary accounts.
	ErrAlreadyClosed = errors.New("close: period already closed")
	// ErrNotClosed rejects reopening a period that is not closed.
	ErrNotClosed = errors.New("close: period is not closed")
	// ErrReasonRequired rejects a reopen without an audit reason.
	ErrReasonRequired = errors.New("close: reopen reason required")
	// ErrClosingUnbalanced aborts a close whose generated entry set
	// does not balance. Nothing is persisted.
	ErrClosingUnbalanced = errors.New("close: closing entry set unbalanced")
)

// NotReadyError reports which readiness gates failed so the caller can
// guide remediation.
type NotReadyError struct {
	Readiness ClosingReadiness
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("close: period not ready: %d pending docs, %d rejected docs, %d unreconciled bank lines, trial balance balanced=%t",
		e.Readiness.PendingDocs, e.Readiness.RejectedDocs, e.Readiness.UnreconciledBankLines, e.Readiness.TrialBalanceBalanced)
}

// Is lets callers match the sentinel with errors.Is.
func (e *NotReadyError) Is(target error) bool {
	return target == ErrNotReady
}

// CloseInput identifies the period to close and who asked.
type CloseInput struct {
	ClientID  int64
	PeriodKey string
	ActorID   int64
}

// Validate enforces close preconditions on the input itself.
func (in CloseInput) Validate() error {
	if in.ClientID <= 0 {
		return shared.ErrClientRequired
	}
	if _, err := shared.ParsePeriodKey(in.PeriodKey); err != nil {
		return err
	}
	return nil
}

// ReopenInput identifies the period to reopen and carries the audited
// reason.
type ReopenInput struct {
	ClientID  int64
	PeriodKey string
	ActorID   int64
	Reason    string
}

// Validate requires a non-empty reason; reopening is a privileged,
// audited action.
func (in ReopenInput) Validate() error {
	if in.ClientID <= 0 {
		return shared.ErrClientRequired
	}
	if _, err := shared.ParsePeriodKey(in.PeriodKey); err != nil {
		return err
	}
	if in.Reason == "" {
		return ErrReasonRequired
	}
	return nil
}
