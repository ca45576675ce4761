package retention

import (
	"context"
	"time"

	"taskalive/config"
	"taskalive/internals/modules/plan"

	"github.com/rs/zerolog"
)

type HistoryStore interface {
	PruneBefore(ctx context.Context, tier string, cutoff time.Time) (int64, error)
}

// Pruner is a background loop that enforces each plan tier's history
// retention window on the ping and alert tables.
type Pruner struct {
	ctx      context.Context
	interval time.Duration

	pings  HistoryStore
	alerts HistoryStore

	logger *zerolog.Logger
}

func NewPruner(ctx context.Context, cfg *config.RetentionConfig, pings, alerts HistoryStore, logger *zerolog.Logger) *Pruner {
	interval := time.Hour
	if cfg != nil && cfg.Interval > 0 {
		interval = cfg.Interval
	}
	return &Pruner{
		ctx:      ctx,
		interval: interval,
		pings:    pings,
		alerts:   alerts,
		logger:   logger,
	}
}

// Run blocks until the context is cancelled.
func (p *Pruner) Run() {
	p.logger.Info().Dur("interval", p.interval).Msg("retention pruner started")
	ticker := time.NewTicker(p.interval)
	defer func() {
		ticker.Stop()
		p.logger.Info().Msg("retention pruner stopped")
	}()

	for {
		select {
		case <-p.ctx.Done():
			return

		case <-ticker.C:
			p.doWork()
		}
	}
}

func (p *Pruner) doWork() {
	now := time.Now().UTC()

	for _, tier := range plan.AllTiers() {
		limits := plan.LimitsFor(tier)
		cutoff := now.AddDate(0, 0, -int(limits.HistoryDays))

		pruned, err := p.pings.PruneBefore(p.ctx, string(tier), cutoff)
		if err != nil {
			p.logger.Error().Err(err).Str("tier", string(tier)).Msg("failed to prune ping history")
		} else if pruned > 0 {
			p.logger.Info().Str("tier", string(tier)).Int64("rows", pruned).Msg("pruned ping history")
		}

		pruned, err = p.alerts.PruneBefore(p.ctx, string(tier), cutoff)
		if err != nil {
			p.logger.Error().Err(err).Str("tier", string(tier)).Msg("failed to prune alert history")
		} else if pruned > 0 {
			p.logger.Info().Str("tier", string(tier)).Int64("rows", pruned).Msg("pruned alert history")
		}
	}
}
