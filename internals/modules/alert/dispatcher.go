package alert

import (
	"context"
	"sync"
	"time"

	"taskalive/internals/modules/account"
	"taskalive/internals/modules/monitor"
	"taskalive/internals/modules/plan"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type AccountSource interface {
	GetByID(ctx context.Context, accountID uuid.UUID) (account.Account, error)
}

// Dispatcher fans one alert out across the monitor's configured channels.
// Channels run concurrently and each attempt is individually time-boxed,
// so one hung webhook endpoint cannot stall a sweep tick or starve the
// other channels.
type Dispatcher struct {
	emails   EmailSender
	webhooks WebhookSender
	sms      SMSSender
	accounts AccountSource

	appURL         string
	channelTimeout time.Duration
	logger         *zerolog.Logger
}

func NewDispatcher(
	emails EmailSender,
	webhooks WebhookSender,
	sms SMSSender,
	accounts AccountSource,
	appURL string,
	channelTimeout time.Duration,
	logger *zerolog.Logger,
) *Dispatcher {
	if channelTimeout <= 0 {
		channelTimeout = 10 * time.Second
	}
	return &Dispatcher{
		emails:         emails,
		webhooks:       webhooks,
		sms:            sms,
		accounts:       accounts,
		appURL:         appURL,
		channelTimeout: channelTimeout,
		logger:         logger,
	}
}

type channelJob struct {
	channel Channel
	send    func(ctx context.Context) error
}

// Dispatch attempts every eligible channel and reports a per-channel
// outcome. It never returns an error: an account lookup failure means no
// channel could be attempted and an empty result is returned, leaving the
// ledger untouched.
func (d *Dispatcher) Dispatch(ctx context.Context, m *monitor.Monitor, kind Kind) []Attempt {
	acct, err := d.accounts.GetByID(ctx, m.AccountID)
	if err != nil {
		d.logger.Error().Err(err).
			Str("monitor_id", m.ID.String()).
			Msg("account lookup failed, no alert channels attempted")
		return nil
	}

	limits := plan.LimitsFor(acct.Plan)
	content := buildContent(m, kind)

	jobs := d.collectJobs(m, acct, limits, kind, content)

	attempts := make([]Attempt, len(jobs))
	var wg sync.WaitGroup
	wg.Add(len(jobs))

	for i, job := range jobs {
		go func(i int, job channelJob) {
			defer wg.Done()

			sendCtx, cancel := context.WithTimeout(ctx, d.channelTimeout)
			defer cancel()

			err := job.send(sendCtx)
			attempts[i] = Attempt{Channel: job.channel, OK: err == nil, Err: err}

			if err != nil {
				d.logger.Error().Err(err).
					Str("monitor_id", m.ID.String()).
					Str("channel", string(job.channel)).
					Str("kind", string(kind)).
					Msg("alert channel delivery failed")
			}
		}(i, job)
	}
	wg.Wait()

	return attempts
}

func (d *Dispatcher) collectJobs(m *monitor.Monitor, acct account.Account, limits plan.Limits, kind Kind, content Content) []channelJob {
	jobs := make([]channelJob, 0, 5)

	// email is always attempted: primary address plus any extras
	recipients := append([]string{acct.Email}, m.AlertEmails...)
	html := emailHTML(m, kind, content, d.appURL)
	jobs = append(jobs, channelJob{
		channel: ChannelEmail,
		send: func(ctx context.Context) error {
			return d.emails.Send(ctx, recipients, content.Subject, html)
		},
	})

	if limits.WebhooksEnabled {
		if url := m.SlackWebhookURL; url != "" {
			payload := slackPayload(m, kind, content, d.appURL)
			jobs = append(jobs, channelJob{
				channel: ChannelSlack,
				send: func(ctx context.Context) error {
					return d.webhooks.Send(ctx, url, payload)
				},
			})
		}
		if url := m.DiscordWebhookURL; url != "" {
			payload := discordPayload(m, kind, content, d.appURL)
			jobs = append(jobs, channelJob{
				channel: ChannelDiscord,
				send: func(ctx context.Context) error {
					return d.webhooks.Send(ctx, url, payload)
				},
			})
		}
		if url := m.TeamsWebhookURL; url != "" {
			payload := teamsPayload(m, kind, content, d.appURL)
			jobs = append(jobs, channelJob{
				channel: ChannelTeams,
				send: func(ctx context.Context) error {
					return d.webhooks.Send(ctx, url, payload)
				},
			})
		}
	}

	if limits.SMSEnabled && acct.SMSNumber != "" {
		text := content.Subject + " - " + content.Body
		number := acct.SMSNumber
		monitorID := m.ID.String()
		jobs = append(jobs, channelJob{
			channel: ChannelSMS,
			send: func(ctx context.Context) error {
				return d.sms.Send(ctx, number, text, monitorID, kind)
			},
		})
	}

	return jobs
}
