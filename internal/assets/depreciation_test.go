package assets

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal {
	out, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return out
}

func machine() FixedAsset {
	return FixedAsset{
		ID:               1,
		ClientID:         1,
		Name:             "Packing machine",
		Category:         "Machinery",
		Cost:             d("120000"),
		Salvage:          decimal.Zero,
		UsefulLifeMonths: 60,
		Status:           StatusActive,
	}
}

func TestMonthlyDepreciationStraightLine(t *testing.T) {
	monthly, err := MonthlyDepreciation(machine())
	require.NoError(t, err)
	assert.True(t, monthly.Equal(d("2000")), "monthly = %s", monthly)
}

func TestNextStepFullLifecycle(t *testing.T) {
	asset := machine()
	for month := 1; month <= 60; month++ {
		step, err := NextStep(asset)
		require.NoError(t, err, "month %d", month)
		assert.True(t, step.Amount.Equal(d("2000")), "month %d amount = %s", month, step.Amount)
		asset.AccumulatedDepreciation = step.NewAccumulated
		if step.ReachedCap {
			asset.Status = StatusFullyDepreciated
		}
	}
	assert.True(t, asset.AccumulatedDepreciation.Equal(d("120000")))
	assert.Equal(t, StatusFullyDepreciated, asset.Status)

	before := asset
	_, err := NextStep(asset)
	require.ErrorIs(t, err, ErrAlreadyFullyDepreciated)
	assert.Equal(t, before, asset, "failed step must not mutate the asset")
}

func TestNextStepTruncatesFinalCharge(t *testing.T) {
	asset := FixedAsset{
		Cost:             d("1000"),
		Salvage:          decimal.Zero,
		UsefulLifeMonths: 7,
		Status:           StatusActive,
	}
	var total decimal.Decimal
	steps := 0
	for {
		step, err := NextStep(asset)
		if err != nil {
			require.ErrorIs(t, err, ErrAlreadyFullyDepreciated)
			break
		}
		asset.AccumulatedDepreciation = step.NewAccumulated
		total = total.Add(step.Amount)
		steps++
		require.LessOrEqual(t, steps, 8, "run away loop")
	}
	assert.Equal(t, 7, steps)
	assert.True(t, total.Equal(d("1000")), "total = %s", total)
	assert.True(t, asset.AccumulatedDepreciation.Equal(d("1000")))
}

func TestNextStepRejectsDisposedAsset(t *testing.T) {
	asset := machine()
	asset.Status = StatusDisposed
	_, err := NextStep(asset)
	require.ErrorIs(t, err, ErrNotDepreciable)
}

func TestNextStepRespectsSalvage(t *testing.T) {
	asset := machine()
	asset.Salvage = d("20000")
	asset.AccumulatedDepreciation = d("99000")
	step, err := NextStep(asset)
	require.NoError(t, err)
	assert.True(t, step.Amount.Equal(d("1000")), "amount = %s", step.Amount)
	assert.True(t, step.ReachedCap)
}

func TestBuildPostingLinesBalancedPairs(t *testing.T) {
	lines := BuildPostingLines(map[string]decimal.Decimal{
		"Vehicles":  d("500"),
		"Machinery": d("2000"),
		"Empty":     decimal.Zero,
	}, DefaultConfig())
	require.Len(t, lines, 4)

	var debits, credits decimal.Decimal
	for _, line := range lines {
		debits = debits.Add(line.Debit)
		credits = credits.Add(line.Credit)
	}
	assert.True(t, debits.Equal(credits), "debits %s vs credits %s", debits, credits)
	assert.Equal(t, "Depreciation Expense - Machinery", lines[0].AccountName)
	assert.Equal(t, "Accumulated Depreciation - Machinery", lines[1].AccountName)
	assert.Equal(t, "62100", lines[0].AccountCode)
	assert.Equal(t, "12900", lines[1].AccountCode)
}
