package assets

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ledgerd/ledgerd/internal/ledger"
)

var (
	// ErrAlreadyFullyDepreciated rejects a run against an asset whose
	// accumulated depreciation already reached cost minus salvage. The
	// asset is left untouched.
	ErrAlreadyFullyDepreciated = errors.New("assets: already fully depreciated")
	// ErrNotDepreciable rejects runs against disposed assets or assets
	// without a positive useful life.
	ErrNotDepreciable = errors.New("assets: not depreciable")
)

// StepResult is the outcome of one monthly depreciation step for one
// asset.
type StepResult struct {
	Amount         decimal.Decimal
	NewAccumulated decimal.Decimal
	ReachedCap     bool
}

// MonthlyDepreciation returns the straight-line monthly charge,
// (cost − salvage) / useful life in months, rounded to cents.
func MonthlyDepreciation(a FixedAsset) (decimal.Decimal, error) {
	if a.UsefulLifeMonths <= 0 {
		return decimal.Zero, fmt.Errorf("%w: useful life %d months", ErrNotDepreciable, a.UsefulLifeMonths)
	}
	return a.DepreciableBase().Div(decimal.NewFromInt(int64(a.UsefulLifeMonths))).Round(2), nil
}

// NextStep computes one monthly depreciation step without mutating the
// asset. The charge is capped at the remaining depreciable base; once
// nothing remains the step fails with ErrAlreadyFullyDepreciated.
func NextStep(a FixedAsset) (StepResult, error) {
	if a.Status == StatusDisposed {
		return StepResult{}, fmt.Errorf("%w: asset is disposed", ErrNotDepreciable)
	}
	monthly, err := MonthlyDepreciation(a)
	if err != nil {
		return StepResult{}, err
	}
	remaining := a.DepreciableBase().Sub(a.AccumulatedDepreciation)
	actual := decimal.Min(monthly, remaining)
	if !actual.IsPositive() {
		return StepResult{}, ErrAlreadyFullyDepreciated
	}
	newAccumulated := a.AccumulatedDepreciation.Add(actual)
	return StepResult{
		Amount:         actual,
		NewAccumulated: newAccumulated,
		ReachedCap:     newAccumulated.GreaterThanOrEqual(a.DepreciableBase()),
	}, nil
}

// BuildPostingLines turns per-category depreciation totals into a
// balanced expense/accumulated-depreciation line set, one debit/credit
// pair per category, categories sorted for deterministic output.
func BuildPostingLines(byCategory map[string]decimal.Decimal, cfg Config) []ledger.PostingLineInput {
	categories := make([]string, 0, len(byCategory))
	for category, total := range byCategory {
		if total.IsPositive() {
			categories = append(categories, category)
		}
	}
	sort.Strings(categories)
	lines := make([]ledger.PostingLineInput, 0, 2*len(categories))
	for _, category := range categories {
		total := byCategory[category]
		lines = append(lines,
			ledger.PostingLineInput{
				AccountCode: cfg.ExpenseAccountCode,
				AccountName: "Depreciation Expense - " + category,
				Debit:       total,
				Description: "monthly depreciation",
			},
			ledger.PostingLineInput{
				AccountCode: cfg.AccumulatedAccountCode,
				AccountName: "Accumulated Depreciation - " + category,
				Credit:      total,
				Description: "monthly depreciation",
			},
		)
	}
	return lines
}
