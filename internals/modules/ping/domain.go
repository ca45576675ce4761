package ping

import (
	"time"

	"github.com/google/uuid"
)

// Ping is an immutable signal record, append-only. Liveness never reads
// this table; it is history and audit only.
type Ping struct {
	ID        uuid.UUID
	MonitorID uuid.UUID
	PingedAt  time.Time
	Message   string
	SourceIP  string
}

type IngestResult struct {
	NextPing time.Time
}
