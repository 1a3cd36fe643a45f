// Package reconcile cross-checks ledger balances against external
// registers and scores period health. Findings are advisory: they feed
// the operator's checklist and never authorize or block a close on
// their own.
package reconcile

import (
	"time"

	"github.com/shopspring/decimal"
)

// Severity grades a finding.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Check names the cross-check that produced a finding.
const (
	CheckVAT       = "vat"
	CheckAssets    = "assets"
	CheckDocuments = "documents"
	CheckNames     = "account_names"
)

// Finding is one discrepancy between the ledger and a register.
type Finding struct {
	Check      string          `json:"check"`
	Severity   Severity        `json:"severity"`
	Message    string          `json:"message"`
	Expected   decimal.Decimal `json:"expected"`
	Actual     decimal.Decimal `json:"actual"`
	Difference decimal.Decimal `json:"difference"`
}

// Report is the scored outcome of one reconciliation scan.
type Report struct {
	ClientID    int64     `json:"client_id"`
	Period      string    `json:"period"`
	Findings    []Finding `json:"findings"`
	Score       int       `json:"score"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Weights are the score deductions per failed check.
type Weights struct {
	VATFail     int
	AssetFail   int
	PendingDocs int
}

// DefaultWeights deducts 20 for a VAT mismatch, 15 for an asset
// mismatch, and 30 for any pending documents, flooring at 0.
func DefaultWeights() Weights {
	return Weights{VATFail: 20, AssetFail: 15, PendingDocs: 30}
}
