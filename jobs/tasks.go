// Package jobs wires the background work: the monthly depreciation run
// and the reconciliation scan, both cron-scheduled through asynq.
package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDepreciationRun triggers the monthly depreciation run.
	TaskDepreciationRun = "assets:depreciate"
	// TaskReconcileScan triggers a reconciliation scan.
	TaskReconcileScan = "reconcile:scan"
)

// RunPayload targets one client and period, or every active client on
// its current period when ClientID is zero.
type RunPayload struct {
	ClientID     int64     `json:"client_id,omitempty"`
	Period       string    `json:"period,omitempty"`
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewDepreciationRunTask constructs an asynq task for the depreciation
// run.
func NewDepreciationRunTask(payload RunPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDepreciationRun, body, asynq.Queue(QueueDefault)), nil
}

// NewReconcileScanTask constructs an asynq task for the reconciliation
// scan.
func NewReconcileScanTask(payload RunPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReconcileScan, body, asynq.Queue(QueueDefault)), nil
}

// ClientPeriod pairs a client with its current open period.
type ClientPeriod struct {
	ClientID int64
	Period   string
}

// ClientSource lists the clients a broadcast task fans out to.
type ClientSource interface {
	ActiveClients(ctx context.Context) ([]ClientPeriod, error)
}

// targets resolves a payload to the client/period pairs it addresses.
func targets(ctx context.Context, payload RunPayload, clients ClientSource) ([]ClientPeriod, error) {
	if payload.ClientID > 0 {
		return []ClientPeriod{{ClientID: payload.ClientID, Period: payload.Period}}, nil
	}
	return clients.ActiveClients(ctx)
}
