package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/ledgerd/ledgerd/internal/assets"
	"github.com/ledgerd/ledgerd/internal/ledger"
)

// DepreciationRunner is the slice of the asset service the job uses.
type DepreciationRunner interface {
	RunMonthly(ctx context.Context, clientID int64, periodKey string, actorID int64) (assets.RunResult, error)
}

// NewDepreciationHandler builds the asynq handler for the monthly
// depreciation run. Per-client failures are logged and skipped so one
// bad register cannot stall the whole fleet; an already-run month is
// expected on retries and not an error.
func NewDepreciationHandler(logger *slog.Logger, runner DepreciationRunner, clients ClientSource) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload RunPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		pairs, err := targets(ctx, payload, clients)
		if err != nil {
			return err
		}
		for _, pair := range pairs {
			result, err := runner.RunMonthly(ctx, pair.ClientID, pair.Period, 0)
			switch {
			case err == nil:
				logger.Info("depreciation run",
					slog.Int64("client_id", pair.ClientID),
					slog.String("period", pair.Period),
					slog.Int("assets", result.AssetsProcessed),
					slog.String("total", result.TotalDepreciated.StringFixed(2)))
			case errors.Is(err, assets.ErrRunExists), errors.Is(err, ledger.ErrDuplicateBatch):
				logger.Info("depreciation already run",
					slog.Int64("client_id", pair.ClientID),
					slog.String("period", pair.Period))
			default:
				logger.Error("depreciation run failed",
					slog.Int64("client_id", pair.ClientID),
					slog.String("period", pair.Period),
					slog.Any("error", err))
			}
		}
		return nil
	}
}
