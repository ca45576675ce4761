package ping

import (
	"context"
	"errors"
	"time"

	"taskalive/internals/modules/monitor"
	"taskalive/pkg/apperror"
	"taskalive/pkg/redisstore"
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

func (r *Repository) ResolveToken(ctx context.Context, token string) (redisstore.MonitorRef, error) {
	const op = "repository.ping.resolve_token"

	var (
		id          pgtype.UUID
		intervalSec int32
	)
	err := r.db.QueryRow(ctx,
		`SELECT id, interval_sec FROM monitors WHERE ping_token = $1`,
		token).Scan(&id, &intervalSec)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return redisstore.MonitorRef{}, apperror.New(apperror.NotFound, op, err).
				WithMessage("monitor not found")
		}
		return redisstore.MonitorRef{}, apperror.New(apperror.Dependency, op, err)
	}

	return redisstore.MonitorRef{
		MonitorID:   utils.FromPgUUID(id),
		IntervalSec: intervalSec,
	}, nil
}

// RecordPing appends the signal and resets the monitor's liveness in one
// transaction. The monitor UPDATE is a single statement, so it is atomic
// with respect to the sweep's conditional status transitions.
func (r *Repository) RecordPing(ctx context.Context, monitorID uuid.UUID, now, nextPing time.Time, message, sourceIP string) error {
	const op = "repository.ping.record_ping"

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return apperror.New(apperror.Dependency, op, err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE monitors
		 SET status = $2, last_ping_at = $3, next_expected_ping_at = $4, updated_at = $3
		 WHERE id = $1`,
		utils.ToPgUUID(monitorID), string(monitor.StatusHealthy),
		utils.ToPgTimestamptz(now), utils.ToPgTimestamptz(nextPing))
	if err != nil {
		return apperror.New(apperror.Dependency, op, err)
	}
	if tag.RowsAffected() == 0 {
		// monitor deleted between cache hit and write
		return apperror.New(apperror.NotFound, op, pgx.ErrNoRows).
			WithMessage("monitor not found")
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO pings (monitor_id, pinged_at, message, source_ip)
		 VALUES ($1, $2, $3, $4)`,
		utils.ToPgUUID(monitorID), utils.ToPgTimestamptz(now),
		utils.ToPgText(message), utils.ToPgText(sourceIP))
	if err != nil {
		return apperror.New(apperror.Dependency, op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return apperror.New(apperror.Dependency, op, err)
	}
	return nil
}

func (r *Repository) ListByMonitor(ctx context.Context, monitorID uuid.UUID, limit, offset int32) ([]monitor.PingHistoryItem, error) {
	const op = "repository.ping.list_by_monitor"

	rows, err := r.db.Query(ctx,
		`SELECT pinged_at, message, source_ip FROM pings
		 WHERE monitor_id = $1 ORDER BY pinged_at DESC LIMIT $2 OFFSET $3`,
		utils.ToPgUUID(monitorID), limit, offset)
	if err != nil {
		return nil, apperror.New(apperror.Dependency, op, err)
	}
	defer rows.Close()

	items := make([]monitor.PingHistoryItem, 0, limit)
	for rows.Next() {
		var (
			pingedAt        pgtype.Timestamptz
			message, source pgtype.Text
		)
		if err := rows.Scan(&pingedAt, &message, &source); err != nil {
			return nil, apperror.New(apperror.Dependency, op, err)
		}
		items = append(items, monitor.PingHistoryItem{
			PingedAt: utils.FromPgTimestamptz(pingedAt),
			Message:  utils.FromPgText(message),
			SourceIP: utils.FromPgText(source),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.New(apperror.Dependency, op, err)
	}
	return items, nil
}

// PruneBefore deletes signal history older than the cutoff for accounts on
// the given plan tier. Used by the retention loop.
func (r *Repository) PruneBefore(ctx context.Context, tier string, cutoff time.Time) (int64, error) {
	const op = "repository.ping.prune_before"

	tag, err := r.db.Exec(ctx,
		`DELETE FROM pings p
		 USING monitors m, accounts a
		 WHERE p.monitor_id = m.id
		   AND m.account_id = a.id
		   AND a.plan = $1
		   AND p.pinged_at < $2`,
		tier, utils.ToPgTimestamptz(cutoff))
	if err != nil {
		return 0, apperror.New(apperror.Dependency, op, err)
	}
	return tag.RowsAffected(), nil
}
