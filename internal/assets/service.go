package assets

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerd/ledgerd/internal/shared"
)

// AuditPort records register mutations into the audit trail.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates register CRUD and the monthly depreciation run.
type Service struct {
	repo  Repository
	audit AuditPort
	cfg   Config
	now   func() time.Time
}

// NewService constructs an asset Service.
func NewService(repo Repository, audit AuditPort, cfg Config) *Service {
	if cfg.ExpenseAccountCode == "" {
		cfg = DefaultConfig()
	}
	return &Service{repo: repo, audit: audit, cfg: cfg, now: time.Now}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Create validates and persists a new register row.
func (s *Service) Create(ctx context.Context, in CreateInput) (FixedAsset, error) {
	if err := in.Validate(); err != nil {
		return FixedAsset{}, err
	}
	asset, err := s.repo.Create(ctx, FixedAsset{
		ClientID:                in.ClientID,
		Name:                    in.Name,
		Category:                in.Category,
		AcquisitionDate:         in.AcquisitionDate,
		Cost:                    shared.Quantize(in.Cost),
		Salvage:                 shared.Quantize(in.Salvage),
		UsefulLifeMonths:        in.UsefulLifeMonths,
		AccumulatedDepreciation: decimal.Zero,
		Status:                  StatusActive,
	})
	if err != nil {
		return FixedAsset{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Action:   "assets.create",
			Entity:   "fixed_asset",
			EntityID: idString(asset.ID),
			Meta:     map[string]any{"client_id": asset.ClientID, "cost": asset.Cost.StringFixed(2)},
			At:       s.now(),
		})
	}
	return asset, nil
}

// List returns the client's register.
func (s *Service) List(ctx context.Context, clientID int64) ([]FixedAsset, error) {
	if clientID <= 0 {
		return nil, shared.ErrClientRequired
	}
	return s.repo.ListByClient(ctx, clientID)
}

// Get returns one register row.
func (s *Service) Get(ctx context.Context, clientID, id int64) (FixedAsset, error) {
	return s.repo.Get(ctx, clientID, id)
}

// RegisterCost sums acquisition cost for reconciliation.
func (s *Service) RegisterCost(ctx context.Context, clientID int64) (decimal.Decimal, error) {
	return s.repo.TotalCost(ctx, clientID)
}

// RunMonthly depreciates every active asset for one period and posts
// the resulting balanced batch. The run row, the register updates, and
// the posting batch share one transaction: a second run for the same
// period fails before any asset is touched, and a failed posting rolls
// the register back, so the ledger and the register never diverge.
func (s *Service) RunMonthly(ctx context.Context, clientID int64, periodKey string, actorID int64) (RunResult, error) {
	if clientID <= 0 {
		return RunResult{}, shared.ErrClientRequired
	}
	if _, err := shared.ParsePeriodKey(periodKey); err != nil {
		return RunResult{}, err
	}

	result := RunResult{
		Period:           periodKey,
		ByCategory:       map[string]decimal.Decimal{},
		TotalDepreciated: decimal.Zero,
	}
	batchID := runBatchID(clientID, periodKey)
	start, _, _ := shared.PeriodRange(periodKey)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.RecordRun(ctx, clientID, periodKey); err != nil {
			return err
		}
		active, err := tx.ListActiveForUpdate(ctx, clientID)
		if err != nil {
			return err
		}
		for _, asset := range active {
			step, err := NextStep(asset)
			if err != nil {
				// Active assets already at the cap just drop out of
				// the run; the per-asset endpoint is where the caller
				// gets the hard rejection.
				result.AssetsSkipped++
				continue
			}
			status := StatusActive
			if step.ReachedCap {
				status = StatusFullyDepreciated
			}
			if err := tx.ApplyDepreciation(ctx, asset.ID, step.NewAccumulated, status); err != nil {
				return err
			}
			category := asset.Category
			if category == "" {
				category = "General"
			}
			result.ByCategory[category] = result.ByCategory[category].Add(step.Amount)
			result.TotalDepreciated = result.TotalDepreciated.Add(step.Amount)
			result.AssetsProcessed++
		}
		if result.AssetsProcessed == 0 {
			return nil
		}
		result.BatchID = batchID.String()
		return tx.InsertPostingBatch(ctx, DepreciationBatch{
			ClientID:  clientID,
			PeriodKey: periodKey,
			BatchID:   batchID,
			Date:      start.AddDate(0, 1, -1),
			ActorID:   actorID,
			Lines:     BuildPostingLines(result.ByCategory, s.cfg),
		})
	})
	if err != nil {
		return RunResult{}, err
	}
	if result.AssetsProcessed == 0 {
		return result, nil
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "assets.depreciate",
			Entity:   "depreciation_run",
			EntityID: batchID.String(),
			Meta: map[string]any{
				"client_id": clientID,
				"period":    periodKey,
				"assets":    result.AssetsProcessed,
				"total":     result.TotalDepreciated.StringFixed(2),
			},
			At: s.now(),
		})
	}
	return result, nil
}

// runBatchID derives a stable batch id per client and period so
// retried runs collide with the posting-batch unique constraint
// instead of posting twice.
func runBatchID(clientID int64, periodKey string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("depreciation:"+idString(clientID)+":"+periodKey))
}

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}
