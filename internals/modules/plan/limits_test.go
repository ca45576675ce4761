package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimitsFor(t *testing.T) {
	assert.Equal(t, int32(5), LimitsFor(Free).MaxMonitors)
	assert.False(t, LimitsFor(Free).WebhooksEnabled)

	assert.True(t, LimitsFor(Starter).WebhooksEnabled)
	assert.False(t, LimitsFor(Starter).SMSEnabled)

	assert.True(t, LimitsFor(Pro).SMSEnabled)
	assert.Equal(t, int32(-1), LimitsFor(Enterprise).MaxMonitors)
}

func TestLimitsForUnknownTierFallsBackToFree(t *testing.T) {
	l := LimitsFor(Tier("LEGACY"))
	assert.Equal(t, LimitsFor(Free), l)
}

func TestCanCreateMonitor(t *testing.T) {
	assert.True(t, CanCreateMonitor(Free, 4))
	assert.False(t, CanCreateMonitor(Free, 5))
	assert.False(t, CanCreateMonitor(Free, 6))

	// unlimited tier never caps
	assert.True(t, CanCreateMonitor(Enterprise, 100000))
}
