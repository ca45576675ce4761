package retention

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskalive/config"
	"taskalive/internals/modules/plan"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pruneCall struct {
	Tier   string
	Cutoff time.Time
}

type fakeHistoryStore struct {
	calls []pruneCall
	err   error
}

func (f *fakeHistoryStore) PruneBefore(_ context.Context, tier string, cutoff time.Time) (int64, error) {
	f.calls = append(f.calls, pruneCall{Tier: tier, Cutoff: cutoff})
	if f.err != nil {
		return 0, f.err
	}
	return 3, nil
}

func newTestPruner(pings, alerts HistoryStore) *Pruner {
	logger := zerolog.Nop()
	cfg := &config.RetentionConfig{Interval: time.Hour}
	return NewPruner(context.Background(), cfg, pings, alerts, &logger)
}

func TestPrunerCoversEveryTier(t *testing.T) {
	pings := &fakeHistoryStore{}
	alerts := &fakeHistoryStore{}
	p := newTestPruner(pings, alerts)

	p.doWork()

	tiers := plan.AllTiers()
	require.Len(t, pings.calls, len(tiers))
	require.Len(t, alerts.calls, len(tiers))

	for i, tier := range tiers {
		assert.Equal(t, string(tier), pings.calls[i].Tier)
		assert.Equal(t, string(tier), alerts.calls[i].Tier)
	}
}

func TestPrunerCutoffMatchesPlanWindow(t *testing.T) {
	pings := &fakeHistoryStore{}
	p := newTestPruner(pings, &fakeHistoryStore{})

	before := time.Now().UTC()
	p.doWork()
	after := time.Now().UTC()

	for _, call := range pings.calls {
		days := plan.LimitsFor(plan.Tier(call.Tier)).HistoryDays
		assert.False(t, call.Cutoff.Before(before.AddDate(0, 0, -int(days))))
		assert.False(t, call.Cutoff.After(after.AddDate(0, 0, -int(days))))
	}
}

func TestPrunerContinuesPastStoreError(t *testing.T) {
	pings := &fakeHistoryStore{err: errors.New("deadlock detected")}
	alerts := &fakeHistoryStore{}
	p := newTestPruner(pings, alerts)

	p.doWork()

	// an error on the ping table never skips the alert table or later tiers
	assert.Len(t, alerts.calls, len(plan.AllTiers()))
}

func TestPrunerDefaultInterval(t *testing.T) {
	logger := zerolog.Nop()
	p := NewPruner(context.Background(), nil, &fakeHistoryStore{}, &fakeHistoryStore{}, &logger)
	assert.Equal(t, time.Hour, p.interval)
}
