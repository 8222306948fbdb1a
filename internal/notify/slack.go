package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/slack-go/slack"
)

// SlackWebhook sends notifications to an incoming Slack webhook.
type SlackWebhook struct {
	WebhookURL string
	Client     *http.Client
}

// NewSlackWebhook creates a new SlackWebhook.
func NewSlackWebhook(webhookURL string) *SlackWebhook {
	return &SlackWebhook{
		WebhookURL: webhookURL,
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts message to the configured webhook.
func (s *SlackWebhook) Send(ctx context.Context, message string) error {
	if s.WebhookURL == "" {
		return fmt.Errorf("slack webhook URL is not configured")
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	if err := slack.PostWebhookCustomHTTPContext(ctx, s.WebhookURL, client, &slack.WebhookMessage{Text: message}); err != nil {
		return fmt.Errorf("failed to send slack notification: %w", err)
	}
	return nil
}
