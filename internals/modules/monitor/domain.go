package monitor

import (
	"time"

	"github.com/google/uuid"
)

// Status is the liveness state. PAUSED is not a status: a paused monitor
// keeps its last status and is simply excluded from sweep evaluation.
type Status string

const (
	StatusHealthy Status = "HEALTHY"
	StatusLate    Status = "LATE"
	StatusFailed  Status = "FAILED"
)

type Monitor struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Name      string

	// PingToken is the unguessable heartbeat address. Possession of the
	// token is the only authentication on the ping endpoint.
	PingToken string

	IntervalSec int32
	GraceSec    int32
	Paused      bool
	Tags        []string

	AlertEmails       []string
	SlackWebhookURL   string
	DiscordWebhookURL string
	TeamsWebhookURL   string

	DownMessage     string
	RecoveryMessage string

	Status             Status
	LastPingAt         *time.Time
	NextExpectedPingAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// GraceEnd is the instant after which a due monitor counts as failed.
// Only meaningful when NextExpectedPingAt is set.
func (m *Monitor) GraceEnd() time.Time {
	return m.NextExpectedPingAt.Add(time.Duration(m.GraceSec) * time.Second)
}

type CreateMonitorCmd struct {
	AccountID         uuid.UUID
	Name              string
	IntervalSec       int32
	GraceSec          int32
	Tags              []string
	AlertEmails       []string
	SlackWebhookURL   string
	DiscordWebhookURL string
	TeamsWebhookURL   string
	DownMessage       string
	RecoveryMessage   string
}

// UpdateMonitorCmd is a typed partial update: nil fields are left
// untouched. The repository enumerates exactly these fields, there is no
// dynamic column construction.
type UpdateMonitorCmd struct {
	Name              *string
	IntervalSec       *int32
	GraceSec          *int32
	Tags              *[]string
	AlertEmails       *[]string
	SlackWebhookURL   *string
	DiscordWebhookURL *string
	TeamsWebhookURL   *string
	DownMessage       *string
	RecoveryMessage   *string
}
