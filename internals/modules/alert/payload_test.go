package alert

import (
	"testing"
	"time"

	"taskalive/internals/modules/monitor"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBuildContentDefaults(t *testing.T) {
	m := &monitor.Monitor{ID: uuid.New(), Name: "db-backup"}

	down := buildContent(m, KindDown)
	assert.Equal(t, "Monitor Down: db-backup", down.Subject)
	assert.Contains(t, down.Body, "has not received a ping")

	up := buildContent(m, KindRecovery)
	assert.Equal(t, "Monitor Recovered: db-backup", up.Subject)
	assert.Contains(t, up.Body, "back online")
}

func TestBuildContentCustomMessages(t *testing.T) {
	m := &monitor.Monitor{
		ID:              uuid.New(),
		Name:            "db-backup",
		DownMessage:     "Backups are stale, page the DBA.",
		RecoveryMessage: "Backups resumed.",
	}

	assert.Equal(t, "Backups are stale, page the DBA.", buildContent(m, KindDown).Body)
	assert.Equal(t, "Backups resumed.", buildContent(m, KindRecovery).Body)
}

func TestLastPingText(t *testing.T) {
	m := &monitor.Monitor{Name: "db-backup"}
	assert.Equal(t, "Never", lastPingText(m))

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.LastPingAt = &at
	assert.Equal(t, "Sun, 01 Mar 2026 12:00:00 UTC", lastPingText(m))
}

func TestFormatInterval(t *testing.T) {
	assert.Equal(t, "45s", formatInterval(45))
	assert.Equal(t, "5m", formatInterval(300))
	assert.Equal(t, "2h", formatInterval(7200))
	assert.Equal(t, "3d", formatInterval(259200))
}

func TestDiscordPayloadColors(t *testing.T) {
	m := &monitor.Monitor{ID: uuid.New(), Name: "db-backup"}

	down := discordPayload(m, KindDown, buildContent(m, KindDown), "https://app.example.com")
	embeds := down["embeds"].([]map[string]any)
	assert.Equal(t, 0xdc2626, embeds[0]["color"])

	up := discordPayload(m, KindRecovery, buildContent(m, KindRecovery), "https://app.example.com")
	embeds = up["embeds"].([]map[string]any)
	assert.Equal(t, 0x16a34a, embeds[0]["color"])
}
