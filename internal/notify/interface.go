package notify

import (
	"context"

	"github.com/slack-go/slack"
)

// Notifier defines the interface for sending run notifications.
type Notifier interface {
	Notify(ctx context.Context, eventType string, message string) error
}

// slackPoster is the part of *slack.Client used by Manager.
type slackPoster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}
