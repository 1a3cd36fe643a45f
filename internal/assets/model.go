// Package assets maintains the fixed-asset register and runs monthly
// straight-line depreciation against it.
package assets

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates fixed-asset lifecycle states.
type Status string

const (
	StatusActive           Status = "active"
	StatusFullyDepreciated Status = "fully_depreciated"
	// StatusDisposed is terminal and set externally; disposed assets
	// never depreciate.
	StatusDisposed Status = "disposed"
)

// FixedAsset is one register row. AccumulatedDepreciation only ever
// grows, capped at Cost minus Salvage.
type FixedAsset struct {
	ID                      int64
	ClientID                int64
	Name                    string
	Category                string
	AcquisitionDate         time.Time
	Cost                    decimal.Decimal
	Salvage                 decimal.Decimal
	UsefulLifeMonths        int
	AccumulatedDepreciation decimal.Decimal
	Status                  Status
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// DepreciableBase returns cost minus salvage, the cap on accumulated
// depreciation.
func (a FixedAsset) DepreciableBase() decimal.Decimal {
	return a.Cost.Sub(a.Salvage)
}
