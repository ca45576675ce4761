package alert

import (
	"context"
	"errors"
	"time"

	"taskalive/internals/modules/monitor"
	"taskalive/pkg/apperror"
	"taskalive/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(ctx context.Context, monitorID uuid.UUID, kind Kind, channel Channel, sentAt time.Time) error {
	const op = "repository.alert.insert"

	_, err := r.db.Exec(ctx,
		`INSERT INTO alerts (monitor_id, kind, channel, sent_at)
		 VALUES ($1, $2, $3, $4)`,
		utils.ToPgUUID(monitorID), string(kind), string(channel),
		utils.ToPgTimestamptz(sentAt))
	if err != nil {
		return apperror.New(apperror.Dependency, op, err)
	}
	return nil
}

// LatestUnmatchedDown returns the newest DOWN row that has no RECOVERY
// row at or after it, or nil when the monitor's last episode is settled.
func (r *Repository) LatestUnmatchedDown(ctx context.Context, monitorID uuid.UUID) (*Record, error) {
	const op = "repository.alert.latest_unmatched_down"

	var (
		id     pgtype.UUID
		sentAt pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx,
		`SELECT d.id, d.sent_at FROM alerts d
		 WHERE d.monitor_id = $1 AND d.kind = 'DOWN'
		   AND NOT EXISTS (
				SELECT 1 FROM alerts rec
				WHERE rec.monitor_id = d.monitor_id AND rec.kind = 'RECOVERY'
				  AND rec.sent_at >= d.sent_at)
		 ORDER BY d.sent_at DESC LIMIT 1`,
		utils.ToPgUUID(monitorID)).Scan(&id, &sentAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.New(apperror.Dependency, op, err)
	}

	return &Record{
		ID:        utils.FromPgUUID(id),
		MonitorID: monitorID,
		Kind:      KindDown,
		SentAt:    utils.FromPgTimestamptz(sentAt),
	}, nil
}

func (r *Repository) ListByMonitor(ctx context.Context, monitorID uuid.UUID, limit, offset int32) ([]monitor.AlertHistoryItem, error) {
	const op = "repository.alert.list_by_monitor"

	rows, err := r.db.Query(ctx,
		`SELECT kind, channel, sent_at FROM alerts
		 WHERE monitor_id = $1 ORDER BY sent_at DESC LIMIT $2 OFFSET $3`,
		utils.ToPgUUID(monitorID), limit, offset)
	if err != nil {
		return nil, apperror.New(apperror.Dependency, op, err)
	}
	defer rows.Close()

	items := make([]monitor.AlertHistoryItem, 0, limit)
	for rows.Next() {
		var (
			kind, channel string
			sentAt        pgtype.Timestamptz
		)
		if err := rows.Scan(&kind, &channel, &sentAt); err != nil {
			return nil, apperror.New(apperror.Dependency, op, err)
		}
		items = append(items, monitor.AlertHistoryItem{
			Kind:    kind,
			Channel: channel,
			SentAt:  utils.FromPgTimestamptz(sentAt),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.New(apperror.Dependency, op, err)
	}
	return items, nil
}

// PruneBefore deletes ledger rows older than the cutoff for accounts on
// the given plan tier.
func (r *Repository) PruneBefore(ctx context.Context, tier string, cutoff time.Time) (int64, error) {
	const op = "repository.alert.prune_before"

	tag, err := r.db.Exec(ctx,
		`DELETE FROM alerts al
		 USING monitors m, accounts a
		 WHERE al.monitor_id = m.id
		   AND m.account_id = a.id
		   AND a.plan = $1
		   AND al.sent_at < $2`,
		tier, utils.ToPgTimestamptz(cutoff))
	if err != nil {
		return 0, apperror.New(apperror.Dependency, op, err)
	}
	return tag.RowsAffected(), nil
}
