package close

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerd/ledgerd/internal/ledger"
	"github.com/ledgerd/ledgerd/internal/observability"
	"github.com/ledgerd/ledgerd/internal/shared"
)

// AuditPort records close and reopen transitions.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// CloseResult summarizes a successful close.
type CloseResult struct {
	Period     string  `json:"period"`
	NextPeriod string  `json:"next_period"`
	BatchID    string  `json:"batch_id"`
	Lines      int     `json:"lines"`
	Figures    Figures `json:"figures"`
}

// Service runs the close state machine.
type Service struct {
	repo    Repository
	locker  *shared.PeriodLocker
	audit   AuditPort
	metrics *observability.Metrics
	cfg     Config
	now     func() time.Time
}

// NewService constructs a close Service.
func NewService(repo Repository, locker *shared.PeriodLocker, audit AuditPort, metrics *observability.Metrics, cfg Config) *Service {
	if cfg.RetainedEarningsAccount == "" {
		cfg = DefaultConfig()
	}
	return &Service{repo: repo, locker: locker, audit: audit, metrics: metrics, cfg: cfg, now: time.Now}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// EnsurePeriodOpenForPosting is the posting guard: entries into a
// closed period are rejected. Unknown periods count as open; the row is
// created lazily on first close attempt.
func (s *Service) EnsurePeriodOpenForPosting(ctx context.Context, clientID int64, periodKey string) error {
	period, err := s.repo.GetPeriod(ctx, clientID, periodKey)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if period.Status == StatusClosed {
		return shared.ErrPeriodClosed
	}
	return nil
}

// Periods lists the client's period registry.
func (s *Service) Periods(ctx context.Context, clientID int64) ([]Period, error) {
	if clientID <= 0 {
		return nil, shared.ErrClientRequired
	}
	return s.repo.ListPeriods(ctx, clientID)
}

// CurrentPeriod returns the client's current-period pointer.
func (s *Service) CurrentPeriod(ctx context.Context, clientID int64) (string, error) {
	return s.repo.CurrentPeriod(ctx, clientID)
}

// Readiness computes the close gates fresh from data.
func (s *Service) Readiness(ctx context.Context, clientID int64, periodKey string) (ClosingReadiness, error) {
	if clientID <= 0 {
		return ClosingReadiness{}, shared.ErrClientRequired
	}
	if _, err := shared.ParsePeriodKey(periodKey); err != nil {
		return ClosingReadiness{}, err
	}
	var readiness ClosingReadiness
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		readiness, _, err = s.readiness(ctx, tx, clientID, periodKey)
		return err
	})
	return readiness, err
}

// Close validates readiness, persists the closing entry set, flips the
// period to closed, and rolls the client's current-period pointer, all
// in one transaction under the per-(client, period) lease. A second
// attempt observes closed and is rejected; nothing is ever re-posted.
func (s *Service) Close(ctx context.Context, in CloseInput) (CloseResult, error) {
	if err := in.Validate(); err != nil {
		return CloseResult{}, err
	}
	if err := s.locker.Acquire(ctx, in.ClientID, in.PeriodKey); err != nil {
		return CloseResult{}, err
	}
	defer s.locker.Release(ctx, in.ClientID, in.PeriodKey)

	nextKey, err := shared.NextPeriodKey(in.PeriodKey)
	if err != nil {
		return CloseResult{}, err
	}

	var result CloseResult
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		period, err := tx.GetPeriodForUpdate(ctx, in.ClientID, in.PeriodKey)
		if err != nil {
			return err
		}
		if period.Status == StatusClosed {
			return ErrAlreadyClosed
		}

		readiness, entries, err := s.readiness(ctx, tx, in.ClientID, in.PeriodKey)
		if err != nil {
			return err
		}
		if !readiness.Ready() {
			return &NotReadyError{Readiness: readiness}
		}

		lines, figures, err := BuildClosingEntries(ledger.Aggregate(entries, ledger.Filter{}), s.cfg)
		if err != nil {
			return err
		}

		batchID := uuid.New()
		if len(lines) > 0 {
			_, periodEnd, err := shared.PeriodRange(in.PeriodKey)
			if err != nil {
				return err
			}
			if err := tx.InsertClosingBatch(ctx, ClosingBatch{
				ClientID:  in.ClientID,
				PeriodKey: in.PeriodKey,
				BatchID:   batchID,
				Date:      periodEnd.AddDate(0, 0, -1),
				ActorID:   in.ActorID,
				Lines:     lines,
			}); err != nil {
				return err
			}
		}
		if err := tx.MarkClosed(ctx, period.ID, in.ActorID, s.now()); err != nil {
			return err
		}
		if err := tx.SetCurrentPeriod(ctx, in.ClientID, nextKey); err != nil {
			return err
		}
		result = CloseResult{
			Period:     in.PeriodKey,
			NextPeriod: nextKey,
			BatchID:    batchID.String(),
			Lines:      len(lines),
			Figures:    figures,
		}
		return nil
	})
	if err != nil {
		s.observe(err)
		return CloseResult{}, err
	}
	s.metrics.ObserveClose("closed")

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  in.ActorID,
			Action:   "close.close",
			Entity:   "period",
			EntityID: strconv.FormatInt(in.ClientID, 10) + ":" + in.PeriodKey,
			Meta: map[string]any{
				"client_id":  in.ClientID,
				"period":     in.PeriodKey,
				"lines":      result.Lines,
				"net_profit": result.Figures.NetProfit.StringFixed(2),
			},
			At: s.now(),
		})
	}
	return result, nil
}

// Reopen flips a closed period back to open. The closing entries stay
// posted; reversing them is a deliberate follow-up posting, never an
// automatic delete.
func (s *Service) Reopen(ctx context.Context, in ReopenInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	if err := s.locker.Acquire(ctx, in.ClientID, in.PeriodKey); err != nil {
		return err
	}
	defer s.locker.Release(ctx, in.ClientID, in.PeriodKey)

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		period, err := tx.GetPeriodForUpdate(ctx, in.ClientID, in.PeriodKey)
		if err != nil {
			return err
		}
		if period.Status != StatusClosed {
			return ErrNotClosed
		}
		return tx.MarkOpen(ctx, period.ID, s.now())
	})
	if err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  in.ActorID,
			Action:   "close.reopen",
			Entity:   "period",
			EntityID: strconv.FormatInt(in.ClientID, 10) + ":" + in.PeriodKey,
			Meta: map[string]any{
				"client_id": in.ClientID,
				"period":    in.PeriodKey,
				"reason":    in.Reason,
			},
			At: s.now(),
		})
	}
	return nil
}

func (s *Service) readiness(ctx context.Context, tx TxRepository, clientID int64, periodKey string) (ClosingReadiness, []ledger.Entry, error) {
	pending, rejected, err := tx.DocReviewCounts(ctx, clientID, periodKey)
	if err != nil {
		return ClosingReadiness{}, nil, err
	}
	unreconciled, err := tx.UnreconciledBankCount(ctx, clientID, periodKey)
	if err != nil {
		return ClosingReadiness{}, nil, err
	}
	entries, err := tx.PeriodEntries(ctx, clientID, periodKey)
	if err != nil {
		return ClosingReadiness{}, nil, err
	}
	debit, credit := ledger.Totals(entries, ledger.Filter{})
	return ClosingReadiness{
		PendingDocs:           pending,
		RejectedDocs:          rejected,
		UnreconciledBankLines: unreconciled,
		TrialBalanceBalanced:  shared.EqualWithin(debit, credit, shared.CentTolerance),
	}, entries, nil
}

func (s *Service) observe(err error) {
	switch {
	case errors.Is(err, ErrNotReady), errors.Is(err, ErrAlreadyClosed), errors.Is(err, shared.ErrLockHeld):
		s.metrics.ObserveClose("rejected")
	default:
		s.metrics.ObserveClose("failed")
	}
}
