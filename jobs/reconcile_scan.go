package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/ledgerd/ledgerd/internal/reconcile"
)

// ReconcileScanner is the slice of the reconciliation service the job
// uses.
type ReconcileScanner interface {
	Scan(ctx context.Context, clientID int64, periodKey string) (reconcile.Report, error)
}

// NewReconcileScanHandler builds the asynq handler for the periodic
// reconciliation scan. Scans are advisory; results land in the log and
// low scores are warned about.
func NewReconcileScanHandler(logger *slog.Logger, scanner ReconcileScanner, clients ClientSource) asynq.HandlerFunc {
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
			report, err := scanner.Scan(ctx, pair.ClientID, pair.Period)
			if err != nil {
				logger.Error("reconciliation scan failed",
					slog.Int64("client_id", pair.ClientID),
					slog.String("period", pair.Period),
					slog.Any("error", err))
				continue
			}
			attrs := []any{
				slog.Int64("client_id", pair.ClientID),
				slog.String("period", pair.Period),
				slog.Int("score", report.Score),
				slog.Int("findings", len(report.Findings)),
			}
			if report.Score < 70 {
				logger.Warn("reconciliation score low", attrs...)
			} else {
				logger.Info("reconciliation scan", attrs...)
			}
		}
		return nil
	}
}
