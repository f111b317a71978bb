package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/agencyos/meeting-scribe/pkg/config"
)

// Notification is the chat-facing summary of a processed meeting
type Notification struct {
	Title           string
	MeetingType     string
	Date            string
	Summary         string
	AttendeeCount   int
	ActionItemCount int
	UrgentAlert     string
	PresentationURL string
}

// Client posts meeting summaries to a Slack incoming webhook. Delivery is
// best-effort; callers log failures and move on.
type Client struct {
	webhookURL string
	channel    string
	client     *http.Client
	logger     *zap.Logger
}

// NewClient creates a Slack client from config
func NewClient(cfg *config.SlackConfig, logger *zap.Logger) *Client {
	return &Client{
		webhookURL: cfg.WebhookURL,
		channel:    cfg.Channel,
		client:     &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// Enabled reports whether a webhook URL is configured
func (c *Client) Enabled() bool {
	return c.webhookURL != ""
}

type block map[string]interface{}

// Notify sends the block-kit message for a processed meeting
func (c *Client) Notify(ctx context.Context, n Notification) error {
	if !c.Enabled() {
		return nil
	}

	blocks := []block{
		{
			"type": "header",
			"text": map[string]string{"type": "plain_text", "text": "📝 " + n.Title},
		},
		{
			"type": "section",
			"fields": []map[string]string{
				{"type": "mrkdwn", "text": "*Type:*\n" + n.MeetingType},
				{"type": "mrkdwn", "text": "*Date:*\n" + n.Date},
				{"type": "mrkdwn", "text": fmt.Sprintf("*Attendees:*\n%d", n.AttendeeCount)},
				{"type": "mrkdwn", "text": fmt.Sprintf("*Action Items:*\n%d", n.ActionItemCount)},
			},
		},
		{
			"type": "section",
			"text": map[string]string{"type": "mrkdwn", "text": "*Summary:*\n" + n.Summary},
		},
	}

	if n.UrgentAlert != "" {
		blocks = append(blocks, block{
			"type": "section",
			"text": map[string]string{"type": "mrkdwn", "text": "🚨 *Urgent:* " + n.UrgentAlert},
		})
	}
	if n.PresentationURL != "" {
		blocks = append(blocks, block{
			"type": "section",
			"text": map[string]string{"type": "mrkdwn", "text": fmt.Sprintf("🎨 *<%s|View presentation>*", n.PresentationURL)},
		})
	}
	blocks = append(blocks, block{
		"type": "context",
		"elements": []map[string]string{
			{"type": "mrkdwn", "text": "Posted to " + c.channel + " | Processed by Meeting Scribe"},
		},
	})

	payload := map[string]interface{}{
		"text":   "✅ Meeting processed: " + n.Title,
		"blocks": blocks,
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.webhookURL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("slack returned status %d", resp.StatusCode)
	}

	if c.logger != nil {
		c.logger.Info("slack notification sent", zap.String("channel", c.channel))
	}
	return nil
}
