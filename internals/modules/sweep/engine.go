package sweep

import (
	"context"
	"errors"
	"sync"
	"time"

	"taskalive/internals/modules/alert"
	"taskalive/internals/modules/monitor"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrSweepInProgress is returned when a tick is requested while a
// previous one is still executing. Ticks never overlap: the caller skips.
var ErrSweepInProgress = errors.New("sweep already in progress")

type MonitorStore interface {
	DueMonitors(ctx context.Context, now time.Time) ([]monitor.Monitor, error)
	RecoveredMonitors(ctx context.Context) ([]monitor.Monitor, error)
	TransitionStatus(ctx context.Context, monitorID uuid.UUID, from, to monitor.Status, deadline time.Time) (bool, error)
}

type Ledger interface {
	LatestUnmatchedDown(ctx context.Context, monitorID uuid.UUID) (*alert.Record, error)
	Insert(ctx context.Context, monitorID uuid.UUID, kind alert.Kind, channel alert.Channel, sentAt time.Time) error
}

type Dispatcher interface {
	Dispatch(ctx context.Context, m *monitor.Monitor, kind alert.Kind) []alert.Attempt
}

type Summary struct {
	Checked      int `json:"checked"`
	MarkedLate   int `json:"marked_late"`
	MarkedFailed int `json:"marked_failed"`
	AlertsSent   int `json:"alerts_sent"`
}

// Engine is the reconciliation core. Each sweep runs two passes: pass 1
// walks due monitors and applies HEALTHY→LATE and {HEALTHY,LATE}→FAILED,
// pass 2 walks healthy monitors with an open DOWN episode and settles
// them with a RECOVERY alert. The alert ledger makes both passes
// idempotent across ticks.
type Engine struct {
	store      MonitorStore
	ledger     Ledger
	dispatcher Dispatcher
	logger     *zerolog.Logger

	mu sync.Mutex
}

func NewEngine(store MonitorStore, ledger Ledger, dispatcher Dispatcher, logger *zerolog.Logger) *Engine {
	return &Engine{
		store:      store,
		ledger:     ledger,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (e *Engine) Sweep(ctx context.Context, now time.Time) (Summary, error) {
	if !e.mu.TryLock() {
		return Summary{}, ErrSweepInProgress
	}
	defer e.mu.Unlock()

	var sum Summary

	// Pass 1: failure detection. A store error here aborts the whole
	// tick with no state touched; the next tick retries.
	due, err := e.store.DueMonitors(ctx, now)
	if err != nil {
		return Summary{}, err
	}
	sum.Checked = len(due)

	for i := range due {
		m := &due[i]
		e.evaluateDue(ctx, m, now, &sum)
	}

	// Pass 2: recovery detection, decoupled from pass 1 so one monitor
	// is never processed inconsistently within a tick.
	recovered, err := e.store.RecoveredMonitors(ctx)
	if err != nil {
		return sum, err
	}

	for i := range recovered {
		m := &recovered[i]
		e.settleRecovery(ctx, m, now, &sum)
	}

	return sum, nil
}

func (e *Engine) evaluateDue(ctx context.Context, m *monitor.Monitor, now time.Time, sum *Summary) {
	if m.NextExpectedPingAt == nil {
		// never pinged, no baseline to judge against
		return
	}

	if !now.Before(m.GraceEnd()) {
		// grace expired
		if m.Status == monitor.StatusFailed {
			return
		}

		ok, err := e.store.TransitionStatus(ctx, m.ID, m.Status, monitor.StatusFailed, *m.NextExpectedPingAt)
		if err != nil {
			e.logger.Error().Err(err).
				Str("monitor_id", m.ID.String()).
				Msg("failed to mark monitor FAILED")
			return
		}
		if !ok {
			// a ping landed between our read and write. The transition
			// is keyed on status AND deadline, so even a ping that left
			// the status at HEALTHY (while pushing the deadline) makes
			// the write miss, and the monitor is not ours to flag.
			return
		}

		sum.MarkedFailed++
		sum.AlertsSent += e.dispatchAndRecord(ctx, m, alert.KindDown, now)
		return
	}

	// inside the grace window: quiet LATE, no alert
	if m.Status == monitor.StatusHealthy {
		ok, err := e.store.TransitionStatus(ctx, m.ID, monitor.StatusHealthy, monitor.StatusLate, *m.NextExpectedPingAt)
		if err != nil {
			e.logger.Error().Err(err).
				Str("monitor_id", m.ID.String()).
				Msg("failed to mark monitor LATE")
			return
		}
		if ok {
			sum.MarkedLate++
		}
	}
}

func (e *Engine) settleRecovery(ctx context.Context, m *monitor.Monitor, now time.Time, sum *Summary) {
	// re-check per monitor: the selection query and this read are both
	// covered by the single-sweep-at-a-time guarantee
	openDown, err := e.ledger.LatestUnmatchedDown(ctx, m.ID)
	if err != nil {
		e.logger.Error().Err(err).
			Str("monitor_id", m.ID.String()).
			Msg("failed to read alert ledger")
		return
	}
	if openDown == nil {
		// episode already settled
		return
	}

	sum.AlertsSent += e.dispatchAndRecord(ctx, m, alert.KindRecovery, now)
}

// dispatchAndRecord fans out one alert and writes a ledger row per
// channel that succeeded. Failed channels write nothing: they stay
// eligible for the next qualifying transition, and for nothing sooner.
func (e *Engine) dispatchAndRecord(ctx context.Context, m *monitor.Monitor, kind alert.Kind, now time.Time) int {
	attempts := e.dispatcher.Dispatch(ctx, m, kind)

	sent := 0
	for _, attempt := range attempts {
		if !attempt.OK {
			continue
		}
		if err := e.ledger.Insert(ctx, m.ID, kind, attempt.Channel, now); err != nil {
			e.logger.Error().Err(err).
				Str("monitor_id", m.ID.String()).
				Str("channel", string(attempt.Channel)).
				Msg("failed to record alert in ledger")
			continue
		}
		sent++
	}
	return sent
}
