package reconcile

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ledgerd/ledgerd/internal/shared"
)

// Input carries everything one scan compares: ledger balances on one
// side, register figures on the other. Missing data is zero, never an
// error.
type Input struct {
	// InputVATBalance is the ledger balance of the designated input-VAT
	// account; ClaimableVAT the VAT total across approved full tax
	// invoices flagged claimable.
	InputVATBalance decimal.Decimal
	ClaimableVAT    decimal.Decimal

	// AssetCostBalance is the ledger balance of fixed-asset cost
	// accounts, accumulated depreciation excluded; RegisterCost the
	// cost total across the asset register.
	AssetCostBalance decimal.Decimal
	RegisterCost     decimal.Decimal

	// PendingDocs counts documents still pending or processing.
	PendingDocs int

	// NameConflicts lists account codes posted under more than one
	// name, surfaced by the aggregator.
	NameConflicts []string
}

// Evaluate runs the cross-checks and scores the result from 100 down.
// Pure: same input, same report.
func Evaluate(in Input, weights Weights, tolerance decimal.Decimal) ([]Finding, int) {
	if !tolerance.IsPositive() {
		tolerance = shared.CentTolerance
	}
	var findings []Finding
	score := 100

	if diff := in.InputVATBalance.Sub(in.ClaimableVAT); diff.Abs().GreaterThanOrEqual(tolerance) {
		findings = append(findings, Finding{
			Check:      CheckVAT,
			Severity:   SeverityMedium,
			Message:    "input VAT balance does not match claimable VAT on approved documents",
			Expected:   in.ClaimableVAT,
			Actual:     in.InputVATBalance,
			Difference: diff,
		})
		score -= weights.VATFail
	}

	if diff := in.AssetCostBalance.Sub(in.RegisterCost); diff.Abs().GreaterThanOrEqual(tolerance) {
		findings = append(findings, Finding{
			Check:      CheckAssets,
			Severity:   SeverityMedium,
			Message:    "asset cost accounts do not match the fixed-asset register",
			Expected:   in.RegisterCost,
			Actual:     in.AssetCostBalance,
			Difference: diff,
		})
		score -= weights.AssetFail
	}

	if in.PendingDocs > 0 {
		findings = append(findings, Finding{
			Check:    CheckDocuments,
			Severity: SeverityHigh,
			Message:  fmt.Sprintf("%d documents still pending or processing", in.PendingDocs),
			Expected: decimal.Zero,
			Actual:   decimal.NewFromInt(int64(in.PendingDocs)),
		})
		score -= weights.PendingDocs
	}

	// Name conflicts are data-quality notes; they never cost points.
	for _, code := range in.NameConflicts {
		findings = append(findings, Finding{
			Check:    CheckNames,
			Severity: SeverityLow,
			Message:  fmt.Sprintf("account %s was posted under more than one name", code),
		})
	}

	if score < 0 {
		score = 0
	}
	return findings, score
}
