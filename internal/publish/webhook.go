package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/bilgisen/repurpose/internal/models"
)

// Payload is the JSON body posted to a connection's webhook.
type Payload struct {
	ContentID      string          `json:"content_id"`
	Topic          string          `json:"topic"`
	Platform       string          `json:"platform"`
	ScheduledFor   time.Time       `json:"scheduled_for"`
	OriginalScript string          `json:"original_script"`
	Variant        json.RawMessage `json:"variant,omitempty"`
}

// NewPayload builds the webhook body for c. Variant is the stored document for the
// target platform, when there is one.
func NewPayload(c *models.Content, platform string) Payload {
	p := Payload{
		ContentID:      c.ID,
		Topic:          c.Topic,
		Platform:       platform,
		OriginalScript: c.OriginalScript,
	}
	if c.ScheduledFor != nil {
		p.ScheduledFor = c.ScheduledFor.UTC()
	}
	if raw, ok := c.Variant(platform); ok {
		p.Variant = raw
	}
	return p
}

// Sender delivers one payload to one webhook URL.
type Sender interface {
	Send(ctx context.Context, url string, p Payload) error
}

// WebhookSender posts payloads with resty, retrying transport errors, 429 and 5xx.
type WebhookSender struct {
	client *resty.Client
}

type SenderOptions struct {
	Timeout      time.Duration
	RetryCount   int
	RetryWait    time.Duration
	RetryMaxWait time.Duration
}

func DefaultSenderOptions() SenderOptions {
	return SenderOptions{
		Timeout:      30 * time.Second,
		RetryCount:   3,
		RetryWait:    2 * time.Second,
		RetryMaxWait: 10 * time.Second,
	}
}

func NewWebhookSender(opts SenderOptions) *WebhookSender {
	client := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(opts.RetryWait).
		SetRetryMaxWaitTime(opts.RetryMaxWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		})
	return &WebhookSender{client: client}
}

func (s *WebhookSender) Send(ctx context.Context, url string, p Payload) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(p).
		Post(url)
	if err != nil {
		return fmt.Errorf("failed to post to %s: %w", url, err)
	}
	if resp.IsError() {
		return fmt.Errorf("unexpected status code %d from %s", resp.StatusCode(), url)
	}
	return nil
}
