package reconcile

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerd/ledgerd/internal/shared"
)

func d(v string) decimal.Decimal {
	out, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return out
}

func TestEvaluateCleanPeriodScoresFull(t *testing.T) {
	findings, score := Evaluate(Input{
		InputVATBalance:  d("700"),
		ClaimableVAT:     d("700"),
		AssetCostBalance: d("120000"),
		RegisterCost:     d("120000"),
	}, DefaultWeights(), shared.CentTolerance)
	assert.Empty(t, findings)
	assert.Equal(t, 100, score)
}

func TestEvaluateWithinToleranceStillPasses(t *testing.T) {
	findings, score := Evaluate(Input{
		InputVATBalance: d("700.004"),
		ClaimableVAT:    d("700"),
	}, DefaultWeights(), shared.CentTolerance)
	assert.Empty(t, findings)
	assert.Equal(t, 100, score)
}

func TestEvaluateDeductsPerCheck(t *testing.T) {
	findings, score := Evaluate(Input{
		InputVATBalance:  d("700"),
		ClaimableVAT:     d("650"),
		AssetCostBalance: d("120000"),
		RegisterCost:     d("115000"),
		PendingDocs:      3,
	}, DefaultWeights(), shared.CentTolerance)
	require.Len(t, findings, 3)
	assert.Equal(t, 100-20-15-30, score)

	byCheck := map[string]Finding{}
	for _, f := range findings {
		byCheck[f.Check] = f
	}
	assert.True(t, byCheck[CheckVAT].Difference.Equal(d("50")))
	assert.Equal(t, SeverityHigh, byCheck[CheckDocuments].Severity)
}

func TestEvaluateScoreFloorsAtZero(t *testing.T) {
	weights := Weights{VATFail: 60, AssetFail: 30, PendingDocs: 30}
	_, score := Evaluate(Input{
		InputVATBalance: d("1"),
		RegisterCost:    d("99"),
		PendingDocs:     1,
	}, weights, shared.CentTolerance)
	assert.Equal(t, 0, score)
}

func TestEvaluateNameConflictsAreFreeFindings(t *testing.T) {
	findings, score := Evaluate(Input{
		NameConflicts: []string{"41100"},
	}, DefaultWeights(), shared.CentTolerance)
	require.Len(t, findings, 1)
	assert.Equal(t, CheckNames, findings[0].Check)
	assert.Equal(t, SeverityLow, findings[0].Severity)
	assert.Equal(t, 100, score)
}
