package sweep

import (
	"context"
	"errors"
	"time"

	"taskalive/config"

	"github.com/rs/zerolog"
)

// Scheduler drives the engine on a fixed wall-clock tick. It is owned and
// started by the process supervisor; there is no package-level timer
// state. The engine's own guard serializes it with the HTTP trigger.
type Scheduler struct {
	ctx      context.Context
	interval time.Duration
	engine   *Engine
	logger   *zerolog.Logger
}

func NewScheduler(ctx context.Context, cfg *config.SweepConfig, engine *Engine, logger *zerolog.Logger) *Scheduler {
	return &Scheduler{
		ctx:      ctx,
		interval: cfg.Interval,
		engine:   engine,
		logger:   logger,
	}
}

// Run blocks until the context is cancelled.
func (s *Scheduler) Run() {
	if s.interval <= 0 {
		panic("sweep interval must be > 0")
	}

	s.logger.Info().Dur("interval", s.interval).Msg("sweep scheduler started")
	ticker := time.NewTicker(s.interval)
	defer func() {
		ticker.Stop()
		s.logger.Info().Msg("sweep scheduler stopped")
	}()

	for {
		select {
		case <-s.ctx.Done():
			return

		case <-ticker.C:
			s.doWork()
		}
	}
}

func (s *Scheduler) doWork() {
	sum, err := s.engine.Sweep(s.ctx, time.Now().UTC())
	if err != nil {
		if errors.Is(err, ErrSweepInProgress) {
			s.logger.Warn().Msg("previous sweep still running, tick skipped")
			return
		}
		// store trouble aborts the tick, state untouched, next tick retries
		s.logger.Error().Err(err).Msg("sweep tick failed")
		return
	}

	s.logger.Info().
		Int("checked", sum.Checked).
		Int("marked_late", sum.MarkedLate).
		Int("marked_failed", sum.MarkedFailed).
		Int("alerts_sent", sum.AlertsSent).
		Msg("sweep tick complete")
}
