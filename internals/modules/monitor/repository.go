package monitor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskalive/pkg/apperror"
	"taskalive/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const monitorColumns = `id, account_id, name, ping_token, interval_sec, grace_sec,
	paused, tags, alert_emails, slack_webhook_url, discord_webhook_url,
	teams_webhook_url, down_message, recovery_message, status,
	last_ping_at, next_expected_ping_at, created_at, updated_at`

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMonitor(row rowScanner) (Monitor, error) {
	var (
		m                  Monitor
		id, accountID      pgtype.UUID
		slack, discord     pgtype.Text
		teams, downMsg     pgtype.Text
		recoveryMsg        pgtype.Text
		lastPing, nextPing pgtype.Timestamptz
		created, updated   pgtype.Timestamptz
		status             string
	)

	err := row.Scan(
		&id, &accountID, &m.Name, &m.PingToken, &m.IntervalSec, &m.GraceSec,
		&m.Paused, &m.Tags, &m.AlertEmails, &slack, &discord,
		&teams, &downMsg, &recoveryMsg, &status,
		&lastPing, &nextPing, &created, &updated,
	)
	if err != nil {
		return Monitor{}, err
	}

	m.ID = utils.FromPgUUID(id)
	m.AccountID = utils.FromPgUUID(accountID)
	m.SlackWebhookURL = utils.FromPgText(slack)
	m.DiscordWebhookURL = utils.FromPgText(discord)
	m.TeamsWebhookURL = utils.FromPgText(teams)
	m.DownMessage = utils.FromPgText(downMsg)
	m.RecoveryMessage = utils.FromPgText(recoveryMsg)
	m.Status = Status(status)
	m.LastPingAt = utils.FromPgTimestamptzPtr(lastPing)
	m.NextExpectedPingAt = utils.FromPgTimestamptzPtr(nextPing)
	m.CreatedAt = utils.FromPgTimestamptz(created)
	m.UpdatedAt = utils.FromPgTimestamptz(updated)
	return m, nil
}

func (r *Repository) Create(ctx context.Context, cmd CreateMonitorCmd, pingToken string) (uuid.UUID, error) {
	const op = "repository.monitor.create"

	var id pgtype.UUID
	err := r.db.QueryRow(ctx,
		`INSERT INTO monitors (
			account_id, name, ping_token, interval_sec, grace_sec, tags,
			alert_emails, slack_webhook_url, discord_webhook_url,
			teams_webhook_url, down_message, recovery_message, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING id`,
		utils.ToPgUUID(cmd.AccountID), cmd.Name, pingToken,
		cmd.IntervalSec, cmd.GraceSec, cmd.Tags, cmd.AlertEmails,
		utils.ToPgText(cmd.SlackWebhookURL), utils.ToPgText(cmd.DiscordWebhookURL),
		utils.ToPgText(cmd.TeamsWebhookURL), utils.ToPgText(cmd.DownMessage),
		utils.ToPgText(cmd.RecoveryMessage), string(StatusHealthy),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, apperror.New(apperror.Dependency, op, err)
	}
	return utils.FromPgUUID(id), nil
}

func (r *Repository) Get(ctx context.Context, accountID, monitorID uuid.UUID) (Monitor, error) {
	const op = "repository.monitor.get"

	row := r.db.QueryRow(ctx,
		`SELECT `+monitorColumns+` FROM monitors WHERE id = $1 AND account_id = $2`,
		utils.ToPgUUID(monitorID), utils.ToPgUUID(accountID))

	m, err := scanMonitor(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Monitor{}, apperror.New(apperror.NotFound, op, err).WithMessage("monitor not found")
		}
		return Monitor{}, apperror.New(apperror.Dependency, op, err)
	}
	return m, nil
}

func (r *Repository) GetAll(ctx context.Context, accountID uuid.UUID, limit, offset int32) ([]Monitor, error) {
	const op = "repository.monitor.get_all"

	rows, err := r.db.Query(ctx,
		`SELECT `+monitorColumns+` FROM monitors
		 WHERE account_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		utils.ToPgUUID(accountID), limit, offset)
	if err != nil {
		return nil, apperror.New(apperror.Dependency, op, err)
	}
	defer rows.Close()

	monitors := make([]Monitor, 0, limit)
	for rows.Next() {
		m, err := scanMonitor(rows)
		if err != nil {
			return nil, apperror.New(apperror.Dependency, op, err)
		}
		monitors = append(monitors, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.New(apperror.Dependency, op, err)
	}
	return monitors, nil
}

func (r *Repository) CountByAccount(ctx context.Context, accountID uuid.UUID) (int32, error) {
	const op = "repository.monitor.count_by_account"

	var count int32
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM monitors WHERE account_id = $1`,
		utils.ToPgUUID(accountID)).Scan(&count)
	if err != nil {
		return 0, apperror.New(apperror.Dependency, op, err)
	}
	return count, nil
}

// Update applies a typed partial update. Every updatable column is
// enumerated here; nil command fields are not touched.
func (r *Repository) Update(ctx context.Context, accountID, monitorID uuid.UUID, cmd UpdateMonitorCmd) error {
	const op = "repository.monitor.update"

	sets := make([]string, 0, 10)
	args := []any{utils.ToPgUUID(monitorID), utils.ToPgUUID(accountID)}

	set := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if cmd.Name != nil {
		set("name", *cmd.Name)
	}
	if cmd.IntervalSec != nil {
		set("interval_sec", *cmd.IntervalSec)
	}
	if cmd.GraceSec != nil {
		set("grace_sec", *cmd.GraceSec)
	}
	if cmd.Tags != nil {
		set("tags", *cmd.Tags)
	}
	if cmd.AlertEmails != nil {
		set("alert_emails", *cmd.AlertEmails)
	}
	if cmd.SlackWebhookURL != nil {
		set("slack_webhook_url", utils.ToPgText(*cmd.SlackWebhookURL))
	}
	if cmd.DiscordWebhookURL != nil {
		set("discord_webhook_url", utils.ToPgText(*cmd.DiscordWebhookURL))
	}
	if cmd.TeamsWebhookURL != nil {
		set("teams_webhook_url", utils.ToPgText(*cmd.TeamsWebhookURL))
	}
	if cmd.DownMessage != nil {
		set("down_message", utils.ToPgText(*cmd.DownMessage))
	}
	if cmd.RecoveryMessage != nil {
		set("recovery_message", utils.ToPgText(*cmd.RecoveryMessage))
	}

	if len(sets) == 0 {
		return nil
	}

	query := `UPDATE monitors SET ` + strings.Join(sets, ", ") +
		`, updated_at = now() WHERE id = $1 AND account_id = $2`

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return apperror.New(apperror.Dependency, op, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.New(apperror.NotFound, op, pgx.ErrNoRows).WithMessage("monitor not found")
	}
	return nil
}

func (r *Repository) SetPaused(ctx context.Context, accountID, monitorID uuid.UUID, paused bool) error {
	const op = "repository.monitor.set_paused"

	tag, err := r.db.Exec(ctx,
		`UPDATE monitors SET paused = $3, updated_at = now()
		 WHERE id = $1 AND account_id = $2`,
		utils.ToPgUUID(monitorID), utils.ToPgUUID(accountID), paused)
	if err != nil {
		return apperror.New(apperror.Dependency, op, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.New(apperror.NotFound, op, pgx.ErrNoRows).WithMessage("monitor not found")
	}
	return nil
}

// Delete cascades to pings and alerts via FK constraints.
func (r *Repository) Delete(ctx context.Context, accountID, monitorID uuid.UUID) error {
	const op = "repository.monitor.delete"

	tag, err := r.db.Exec(ctx,
		`DELETE FROM monitors WHERE id = $1 AND account_id = $2`,
		utils.ToPgUUID(monitorID), utils.ToPgUUID(accountID))
	if err != nil {
		return apperror.New(apperror.Dependency, op, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.New(apperror.NotFound, op, pgx.ErrNoRows).WithMessage("monitor not found")
	}
	return nil
}

// DueMonitors feeds sweep pass 1: active monitors whose deadline has
// passed. Never-pinged monitors have a NULL deadline and are excluded.
func (r *Repository) DueMonitors(ctx context.Context, now time.Time) ([]Monitor, error) {
	const op = "repository.monitor.due_monitors"

	rows, err := r.db.Query(ctx,
		`SELECT `+monitorColumns+` FROM monitors
		 WHERE paused = FALSE
		   AND status IN ($1, $2)
		   AND next_expected_ping_at IS NOT NULL
		   AND next_expected_ping_at <= $3`,
		string(StatusHealthy), string(StatusLate), utils.ToPgTimestamptz(now))
	if err != nil {
		return nil, apperror.New(apperror.Dependency, op, err)
	}
	defer rows.Close()

	monitors := make([]Monitor, 0)
	for rows.Next() {
		m, err := scanMonitor(rows)
		if err != nil {
			return nil, apperror.New(apperror.Dependency, op, err)
		}
		monitors = append(monitors, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.New(apperror.Dependency, op, err)
	}
	return monitors, nil
}

// RecoveredMonitors feeds sweep pass 2: healthy active monitors that still
// have a DOWN alert with no RECOVERY at or after it.
func (r *Repository) RecoveredMonitors(ctx context.Context) ([]Monitor, error) {
	const op = "repository.monitor.recovered_monitors"

	rows, err := r.db.Query(ctx,
		`SELECT `+monitorColumns+` FROM monitors m
		 WHERE m.paused = FALSE
		   AND m.status = $1
		   AND EXISTS (
				SELECT 1 FROM alerts d
				WHERE d.monitor_id = m.id AND d.kind = 'DOWN'
				  AND NOT EXISTS (
						SELECT 1 FROM alerts rec
						WHERE rec.monitor_id = m.id AND rec.kind = 'RECOVERY'
						  AND rec.sent_at >= d.sent_at))`,
		string(StatusHealthy))
	if err != nil {
		return nil, apperror.New(apperror.Dependency, op, err)
	}
	defer rows.Close()

	monitors := make([]Monitor, 0)
	for rows.Next() {
		m, err := scanMonitor(rows)
		if err != nil {
			return nil, apperror.New(apperror.Dependency, op, err)
		}
		monitors = append(monitors, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.New(apperror.Dependency, op, err)
	}
	return monitors, nil
}

// TransitionStatus is the sweep's conditional write: it only applies when
// the row still holds both the status and the deadline the sweep based its
// decision on. Status alone is not enough: a ping on an already-HEALTHY
// monitor leaves the status unchanged but pushes the deadline, and that
// monitor must not be failed against its old deadline. A false return
// means a concurrent ping won the race and the caller must skip.
func (r *Repository) TransitionStatus(ctx context.Context, monitorID uuid.UUID, from, to Status, deadline time.Time) (bool, error) {
	const op = "repository.monitor.transition_status"

	tag, err := r.db.Exec(ctx,
		`UPDATE monitors SET status = $3, updated_at = now()
		 WHERE id = $1 AND status = $2 AND next_expected_ping_at = $4`,
		utils.ToPgUUID(monitorID), string(from), string(to),
		utils.ToPgTimestamptz(deadline))
	if err != nil {
		return false, apperror.New(apperror.Dependency, op, err)
	}
	return tag.RowsAffected() > 0, nil
}
