// Package slack posts events to a Slack incoming webhook.
package slack

import (
	"context"
	"fmt"

	slackapi "github.com/slack-go/slack"

	"github.com/crimson-sun/oomnotify/internal/model"
	"github.com/crimson-sun/oomnotify/internal/sink"
)

func init() {
	sink.Register("slack", func(cfg sink.Config) (sink.Sink, error) {
		return New(cfg.Extra["webhook"], cfg.Extra["channel"])
	})
}

// Sink posts one chat message per event. channel may be empty, in which
// case the webhook's default channel receives the message.
type Sink struct {
	webhookURL string
	channel    string
}

// New creates a Sink for the given webhook URL.
func New(webhookURL, channel string) (*Sink, error) {
	if webhookURL == "" {
		return nil, fmt.Errorf("slack sink: webhook URL is required")
	}
	return &Sink{webhookURL: webhookURL, channel: channel}, nil
}

// Deliver posts the event summary as a message.
func (s *Sink) Deliver(ctx context.Context, event model.Event) error {
	msg := &slackapi.WebhookMessage{
		Channel:  s.channel,
		Username: "oomnotify",
		Text:     event.Summary(),
	}
	if err := slackapi.PostWebhookContext(ctx, s.webhookURL, msg); err != nil {
		return fmt.Errorf("slack sink: %w", err)
	}
	return nil
}

func (s *Sink) Name() string { return "slack" }

func (s *Sink) Close() error { return nil }
