package notify

import (
	"context"
	"log/slog"

	"github.com/slack-go/slack"
)

// Event types
const (
	EventStart   = "on_start"
	EventSuccess = "on_success"
	EventFailure = "on_failure"
)

const defaultChannel = "#general"

// Options configures a Manager.
type Options struct {
	Enabled    bool
	Channel    string
	BotToken   string
	WebhookURL string
	// APIURL overrides the Slack Web API endpoint.
	APIURL string
}

// Manager posts run notifications to Slack, through the Web API when a bot
// token is available and through an incoming webhook otherwise. Messages
// after EventStart are threaded under the start message.
type Manager struct {
	client    slackPoster
	webhook   *SlackWebhook
	channelID string
	threadTS  string
}

var _ Notifier = (*Manager)(nil)

// NewManager creates a notification Manager. A disabled or unconfigured
// manager accepts every event and sends nothing.
func NewManager(opts Options) *Manager {
	m := &Manager{channelID: opts.Channel}
	if m.channelID == "" {
		m.channelID = defaultChannel
	}
	if !opts.Enabled {
		return m
	}

	switch {
	case opts.BotToken != "":
		var clientOpts []slack.Option
		if opts.APIURL != "" {
			clientOpts = append(clientOpts, slack.OptionAPIURL(opts.APIURL))
		}
		m.client = slack.New(opts.BotToken, clientOpts...)
	case opts.WebhookURL != "":
		m.webhook = NewSlackWebhook(opts.WebhookURL)
	default:
		slog.Warn("slack notifications enabled but neither SLACK_BOT_USER_TOKEN nor a webhook URL is set")
	}
	return m
}

// Enabled reports whether notifications will be sent.
func (m *Manager) Enabled() bool {
	return m.client != nil || m.webhook != nil
}

// Notify sends message for eventType. Failures are returned so the caller can
// log them; they never fail a run.
func (m *Manager) Notify(ctx context.Context, eventType string, message string) error {
	if !m.Enabled() {
		return nil
	}
	slog.Debug("sending notification", "event", eventType)

	if m.webhook != nil {
		return m.webhook.Send(ctx, message)
	}

	opts := []slack.MsgOption{slack.MsgOptionText(message, false)}
	if eventType != EventStart && m.threadTS != "" {
		opts = append(opts, slack.MsgOptionTS(m.threadTS))
	}

	_, ts, err := m.client.PostMessageContext(ctx, m.channelID, opts...)
	if err != nil {
		return err
	}
	if eventType == EventStart {
		m.threadTS = ts
	}
	return nil
}
