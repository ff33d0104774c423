package notify

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/slack-go/slack"
)

// Notifier delivers a run digest somewhere.
type Notifier interface {
	Notify(ctx context.Context, d Digest) error
}

// SlackNotifier sends notifications to Slack via an incoming webhook.
type SlackNotifier struct {
	WebhookURL string
	Client     *http.Client
}

// NewSlackNotifier creates a new SlackNotifier.
func NewSlackNotifier(webhookURL string) *SlackNotifier {
	return &SlackNotifier{
		WebhookURL: webhookURL,
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Notify posts the digest to the configured webhook.
func (s *SlackNotifier) Notify(ctx context.Context, d Digest) error {
	if s.WebhookURL == "" {
		return fmt.Errorf("slack webhook URL is not configured")
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	if err := slack.PostWebhookCustomHTTPContext(ctx, s.WebhookURL, client, buildMessage(d)); err != nil {
		return fmt.Errorf("failed to send slack notification: %w", err)
	}
	return nil
}

func buildMessage(d Digest) *slack.WebhookMessage {
	fields := []slack.AttachmentField{
		{Title: "Benchmarks", Value: orNone(d.Benchmarks)},
		{Title: "Failed", Value: orNone(d.Failures)},
		{Title: "Extra Flags", Value: flagsOrNone(d.ExtraFlags)},
		{Title: "Improvements", Value: strconv.Itoa(d.Improved), Short: true},
		{Title: "Regressions", Value: strconv.Itoa(d.Regressed), Short: true},
		{Title: "Neutral", Value: strconv.Itoa(d.Neutral), Short: true},
	}

	footer := d.Report
	if d.RunID != "" {
		footer = fmt.Sprintf("%s, run %s", d.Report, d.RunID)
	}

	return &slack.WebhookMessage{
		Text: d.Headline(),
		Attachments: []slack.Attachment{{
			Color:  d.color(),
			Title:  d.Sheet,
			Fields: fields,
			Footer: footer,
		}},
	}
}

func flagsOrNone(flags string) string {
	if flags == "" {
		return "None"
	}
	return flags
}
