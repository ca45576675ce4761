package alert

import (
	"fmt"
	"time"

	"taskalive/internals/modules/monitor"
)

// Content is a pure function of (monitor, kind). Custom down/recovery
// text on the monitor overrides the default template body.
type Content struct {
	Subject string
	Body    string
}

func buildContent(m *monitor.Monitor, kind Kind) Content {
	if kind == KindDown {
		body := m.DownMessage
		if body == "" {
			body = "Your monitor has not received a ping within the expected interval and grace period."
		}
		return Content{
			Subject: fmt.Sprintf("Monitor Down: %s", m.Name),
			Body:    body,
		}
	}

	body := m.RecoveryMessage
	if body == "" {
		body = "Your monitor has received a ping and is back online."
	}
	return Content{
		Subject: fmt.Sprintf("Monitor Recovered: %s", m.Name),
		Body:    body,
	}
}

func lastPingText(m *monitor.Monitor) string {
	if m.LastPingAt == nil {
		return "Never"
	}
	return m.LastPingAt.UTC().Format(time.RFC1123)
}

func formatInterval(seconds int32) string {
	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%dm", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("%dh", seconds/3600)
	default:
		return fmt.Sprintf("%dd", seconds/86400)
	}
}

func emailHTML(m *monitor.Monitor, kind Kind, content Content, appURL string) string {
	return fmt.Sprintf(
		`<h2>%s</h2><p>%s</p>
<table>
<tr><td>Monitor</td><td>%s</td></tr>
<tr><td>Last ping</td><td>%s</td></tr>
<tr><td>Expected interval</td><td>Every %s</td></tr>
</table>
<p><a href="%s/dashboard/monitors/%s">View monitor details</a></p>`,
		content.Subject, content.Body, m.Name, lastPingText(m),
		formatInterval(m.IntervalSec), appURL, m.ID)
}

// Slack Block Kit message.
func slackPayload(m *monitor.Monitor, kind Kind, content Content, appURL string) map[string]any {
	return map[string]any{
		"text": fmt.Sprintf("*%s*", content.Subject),
		"blocks": []map[string]any{
			{
				"type": "header",
				"text": map[string]any{"type": "plain_text", "text": content.Subject},
			},
			{
				"type": "section",
				"fields": []map[string]any{
					{"type": "mrkdwn", "text": fmt.Sprintf("*Monitor:*\n%s", m.Name)},
					{"type": "mrkdwn", "text": fmt.Sprintf("*Last ping:*\n%s", lastPingText(m))},
					{"type": "mrkdwn", "text": fmt.Sprintf("*Expected interval:*\nEvery %s", formatInterval(m.IntervalSec))},
				},
			},
			{
				"type": "section",
				"text": map[string]any{"type": "mrkdwn", "text": content.Body},
			},
		},
	}
}

// Discord embed.
func discordPayload(m *monitor.Monitor, kind Kind, content Content, appURL string) map[string]any {
	color := 0xdc2626 // red
	if kind == KindRecovery {
		color = 0x16a34a // green
	}

	return map[string]any{
		"embeds": []map[string]any{
			{
				"title":       content.Subject,
				"description": content.Body,
				"color":       color,
				"url":         fmt.Sprintf("%s/dashboard/monitors/%s", appURL, m.ID),
				"fields": []map[string]any{
					{"name": "Monitor", "value": m.Name, "inline": true},
					{"name": "Last ping", "value": lastPingText(m), "inline": true},
					{"name": "Expected interval", "value": fmt.Sprintf("Every %s", formatInterval(m.IntervalSec)), "inline": true},
				},
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			},
		},
	}
}

// Teams MessageCard.
func teamsPayload(m *monitor.Monitor, kind Kind, content Content, appURL string) map[string]any {
	themeColor := "DC2626"
	if kind == KindRecovery {
		themeColor = "16A34A"
	}

	return map[string]any{
		"@type":      "MessageCard",
		"@context":   "http://schema.org/extensions",
		"themeColor": themeColor,
		"title":      content.Subject,
		"summary":    content.Subject,
		"sections": []map[string]any{
			{
				"activityTitle": m.Name,
				"text":          content.Body,
				"facts": []map[string]any{
					{"name": "Last ping:", "value": lastPingText(m)},
					{"name": "Expected interval:", "value": fmt.Sprintf("Every %s", formatInterval(m.IntervalSec))},
				},
			},
		},
		"potentialAction": []map[string]any{
			{
				"@type": "OpenUri",
				"name":  "View Monitor Details",
				"targets": []map[string]any{
					{"os": "default", "uri": fmt.Sprintf("%s/dashboard/monitors/%s", appURL, m.ID)},
				},
			},
		},
	}
}

type smsMessage struct {
	To        string `json:"to"`
	Text      string `json:"text"`
	MonitorID string `json:"monitor_id"`
	Kind      string `json:"kind"`
}
