package monitor

import "time"

type CreateMonitorRequest struct {
	Name              string   `json:"name" validate:"required,max=120"`
	IntervalSec       int32    `json:"interval_sec" validate:"required,gt=0"`
	GraceSec          int32    `json:"grace_sec" validate:"gte=0"`
	Tags              []string `json:"tags" validate:"dive,max=40"`
	AlertEmails       []string `json:"alert_emails" validate:"dive,email"`
	SlackWebhookURL   string   `json:"slack_webhook_url" validate:"omitempty,url"`
	DiscordWebhookURL string   `json:"discord_webhook_url" validate:"omitempty,url"`
	TeamsWebhookURL   string   `json:"teams_webhook_url" validate:"omitempty,url"`
	DownMessage       string   `json:"down_message" validate:"max=2000"`
	RecoveryMessage   string   `json:"recovery_message" validate:"max=2000"`
}

type UpdateMonitorRequest struct {
	Name              *string   `json:"name" validate:"omitempty,max=120"`
	IntervalSec       *int32    `json:"interval_sec" validate:"omitempty,gt=0"`
	GraceSec          *int32    `json:"grace_sec" validate:"omitempty,gte=0"`
	Tags              *[]string `json:"tags" validate:"omitempty,dive,max=40"`
	AlertEmails       *[]string `json:"alert_emails" validate:"omitempty,dive,email"`
	SlackWebhookURL   *string   `json:"slack_webhook_url" validate:"omitempty,url|eq="`
	DiscordWebhookURL *string   `json:"discord_webhook_url" validate:"omitempty,url|eq="`
	TeamsWebhookURL   *string   `json:"teams_webhook_url" validate:"omitempty,url|eq="`
	DownMessage       *string   `json:"down_message" validate:"omitempty,max=2000"`
	RecoveryMessage   *string   `json:"recovery_message" validate:"omitempty,max=2000"`
}

type GetMonitorResponse struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	PingToken          string     `json:"ping_token"`
	IntervalSec        int32      `json:"interval_sec"`
	GraceSec           int32      `json:"grace_sec"`
	Paused             bool       `json:"paused"`
	Tags               []string   `json:"tags,omitempty"`
	AlertEmails        []string   `json:"alert_emails,omitempty"`
	SlackWebhookURL    string     `json:"slack_webhook_url,omitempty"`
	DiscordWebhookURL  string     `json:"discord_webhook_url,omitempty"`
	TeamsWebhookURL    string     `json:"teams_webhook_url,omitempty"`
	DownMessage        string     `json:"down_message,omitempty"`
	RecoveryMessage    string     `json:"recovery_message,omitempty"`
	Status             string     `json:"status"`
	LastPingAt         *time.Time `json:"last_ping_at"`
	NextExpectedPingAt *time.Time `json:"next_expected_ping_at"`
}

type GetAllMonitorsResponse struct {
	Limit    int32                `json:"limit"`
	Offset   int32                `json:"offset"`
	Monitors []GetMonitorResponse `json:"monitors"`
}

type PingHistoryItem struct {
	PingedAt time.Time `json:"pinged_at"`
	Message  string    `json:"message,omitempty"`
	SourceIP string    `json:"source_ip,omitempty"`
}

type AlertHistoryItem struct {
	Kind    string    `json:"kind"`
	Channel string    `json:"channel"`
	SentAt  time.Time `json:"sent_at"`
}

func toMonitorResponse(m *Monitor) GetMonitorResponse {
	return GetMonitorResponse{
		ID:                 m.ID.String(),
		Name:               m.Name,
		PingToken:          m.PingToken,
		IntervalSec:        m.IntervalSec,
		GraceSec:           m.GraceSec,
		Paused:             m.Paused,
		Tags:               m.Tags,
		AlertEmails:        m.AlertEmails,
		SlackWebhookURL:    m.SlackWebhookURL,
		DiscordWebhookURL:  m.DiscordWebhookURL,
		TeamsWebhookURL:    m.TeamsWebhookURL,
		DownMessage:        m.DownMessage,
		RecoveryMessage:    m.RecoveryMessage,
		Status:             string(m.Status),
		LastPingAt:         m.LastPingAt,
		NextExpectedPingAt: m.NextExpectedPingAt,
	}
}
