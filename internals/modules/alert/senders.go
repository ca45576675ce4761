package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type EmailSender interface {
	Send(ctx context.Context, to []string, subject, html string) error
}

type WebhookSender interface {
	Send(ctx context.Context, url string, payload any) error
}

type SMSSender interface {
	Send(ctx context.Context, number, text, monitorID string, kind Kind) error
}

// resendEmailSender posts to the Resend transactional email API.
type resendEmailSender struct {
	client *http.Client
	apiKey string
	from   string
}

func NewResendEmailSender(client *http.Client, apiKey, from string) EmailSender {
	return &resendEmailSender{client: client, apiKey: apiKey, from: from}
}

func (s *resendEmailSender) Send(ctx context.Context, to []string, subject, html string) error {
	body, err := json.Marshal(map[string]any{
		"from":    s.from,
		"to":      to,
		"subject": subject,
		"html":    html,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://api.resend.com/emails", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("resend returned status %d", resp.StatusCode)
	}
	return nil
}

// httpWebhookSender posts a JSON payload and treats any non-2xx as a
// delivery failure.
type httpWebhookSender struct {
	client *http.Client
}

func NewHTTPWebhookSender(client *http.Client) WebhookSender {
	return &httpWebhookSender{client: client}
}

func (s *httpWebhookSender) Send(ctx context.Context, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// AMQPPublisher is satisfied by pkg/rabbitmq.Publisher.
type AMQPPublisher interface {
	Publish(ctx context.Context, body []byte) error
}

// amqpSMSSender hands the message to the SMS gateway queue; a broker
// confirm is the channel's success signal.
type amqpSMSSender struct {
	publisher AMQPPublisher
}

func NewAMQPSMSSender(publisher AMQPPublisher) SMSSender {
	return &amqpSMSSender{publisher: publisher}
}

func (s *amqpSMSSender) Send(ctx context.Context, number, text, monitorID string, kind Kind) error {
	body, err := json.Marshal(smsMessage{
		To:        number,
		Text:      text,
		MonitorID: monitorID,
		Kind:      string(kind),
	})
	if err != nil {
		return err
	}
	return s.publisher.Publish(ctx, body)
}
