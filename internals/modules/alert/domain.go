package alert

import (
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindDown     Kind = "DOWN"
	KindRecovery Kind = "RECOVERY"
)

type Channel string

const (
	ChannelEmail   Channel = "EMAIL"
	ChannelSlack   Channel = "SLACK"
	ChannelDiscord Channel = "DISCORD"
	ChannelTeams   Channel = "TEAMS"
	ChannelSMS     Channel = "SMS"
)

// Record is one row of the append-only ledger. Besides being the audit
// trail, the ledger is what makes alerting idempotent: a DOWN row with no
// RECOVERY row at or after it marks an open episode.
type Record struct {
	ID        uuid.UUID
	MonitorID uuid.UUID
	Kind      Kind
	Channel   Channel
	SentAt    time.Time
}

// Attempt is one channel's delivery outcome. Only OK attempts get a
// ledger row; a failed channel leaves no row and is therefore eligible
// again on the next qualifying transition.
type Attempt struct {
	Channel Channel
	OK      bool
	Err     error
}
