package assets

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Config carries the posting targets for depreciation runs.
type Config struct {
	ExpenseAccountCode     string
	AccumulatedAccountCode string
}

// DefaultConfig places depreciation expense at 62100 and accumulated
// depreciation at 12900.
func DefaultConfig() Config {
	return Config{
		ExpenseAccountCode:     "62100",
		AccumulatedAccountCode: "12900",
	}
}

// ErrInvalidAsset aggregates register validation failures.
var ErrInvalidAsset = errors.New("assets: invalid asset")

// CreateInput describes a new register row.
type CreateInput struct {
	ClientID         int64
	Name             string
	Category         string
	AcquisitionDate  time.Time
	Cost             decimal.Decimal
	Salvage          decimal.Decimal
	UsefulLifeMonths int
}

// Validate enforces register constraints before persistence.
func (in CreateInput) Validate() error {
	if in.ClientID <= 0 {
		return fmt.Errorf("%w: client id required", ErrInvalidAsset)
	}
	if in.Name == "" {
		return fmt.Errorf("%w: name required", ErrInvalidAsset)
	}
	if !in.Cost.IsPositive() {
		return fmt.Errorf("%w: cost must be positive", ErrInvalidAsset)
	}
	if in.Salvage.IsNegative() {
		return fmt.Errorf("%w: salvage must not be negative", ErrInvalidAsset)
	}
	if in.Salvage.GreaterThanOrEqual(in.Cost) {
		return fmt.Errorf("%w: salvage must be below cost", ErrInvalidAsset)
	}
	if in.UsefulLifeMonths <= 0 {
		return fmt.Errorf("%w: useful life must be positive", ErrInvalidAsset)
	}
	if in.AcquisitionDate.IsZero() {
		return fmt.Errorf("%w: acquisition date required", ErrInvalidAsset)
	}
	return nil
}

// RunResult summarizes one monthly depreciation run.
type RunResult struct {
	Period           string
	AssetsProcessed  int
	AssetsSkipped    int
	TotalDepreciated decimal.Decimal
	ByCategory       map[string]decimal.Decimal
	BatchID          string
}
