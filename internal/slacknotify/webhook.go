// Package slacknotify posts report summaries to a Slack incoming
// webhook.
package slacknotify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"content-analytics/internal/config"
	"content-analytics/internal/model"
)

// Webhook posts the finished-report notification. Errors are returned
// to the caller, which treats them as non-fatal.
type Webhook struct {
	url       string
	channel   string
	username  string
	iconEmoji string
	hc        *http.Client
	log       *zap.Logger
}

// New builds a webhook notifier.
func New(cfg config.SlackConfig, timeout time.Duration, log *zap.Logger) *Webhook {
	return &Webhook{
		url:       cfg.WebhookURL,
		channel:   cfg.Channel,
		username:  cfg.Username,
		iconEmoji: cfg.IconEmoji,
		hc:        &http.Client{Timeout: timeout},
		log:       log,
	}
}

// Notify posts the report link plus the summary metrics as short
// attachment fields, in summary order.
func (w *Webhook) Notify(ctx context.Context, kind, fileURL, filename string, summary *model.Summary) error {
	fields := make([]slack.AttachmentField, 0, summary.Len())
	for _, m := range summary.Metrics() {
		fields = append(fields, slack.AttachmentField{
			Title: m.Name,
			Value: m.Value,
			Short: true,
		})
	}

	msg := &slack.WebhookMessage{
		Username:  w.username,
		IconEmoji: w.iconEmoji,
		Channel:   w.channel,
		Text:      fmt.Sprintf("Here are the %s analytics.", kind),
		Attachments: []slack.Attachment{{
			Fallback:  fmt.Sprintf("<%s|%s>", fileURL, filename),
			Title:     filename,
			TitleLink: fileURL,
			Pretext:   "Click for more details.",
			Color:     "good",
			Fields:    fields,
		}},
	}

	if err := slack.PostWebhookCustomHTTPContext(ctx, w.url, w.hc, msg); err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	w.log.Info("notification posted", zap.String("report", kind), zap.String("channel", w.channel))
	return nil
}
