package publish

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bilgisen/repurpose/internal/logger"
	"github.com/bilgisen/repurpose/internal/metrics"
	"github.com/bilgisen/repurpose/internal/models"
	"github.com/bilgisen/repurpose/internal/repository"
)

// Summary counts what one dispatch pass did.
type Summary struct {
	Due       int `json:"due"`
	Published int `json:"published"`
	Skipped   int `json:"skipped"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
}

// Dispatcher delivers due scheduled records to the active connections of their platform.
type Dispatcher struct {
	repo        repository.Repository
	sender      Sender
	concurrency int
	metrics     *metrics.Metrics

	// serializes passes so a ticker and a manual trigger never deliver twice
	running sync.Mutex
}

func NewDispatcher(repo repository.Repository, sender Sender, concurrency int, m *metrics.Metrics) *Dispatcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Dispatcher{repo: repo, sender: sender, concurrency: concurrency, metrics: m}
}

// DispatchDue runs one pass over records scheduled at or before now. Every delivery
// attempt is recorded in the post queue; a record becomes published once at least one
// delivery succeeds. Records without an active connection stay scheduled.
func (d *Dispatcher) DispatchDue(ctx context.Context, now time.Time) (Summary, error) {
	d.running.Lock()
	defer d.running.Unlock()

	log := logger.Get()
	start := time.Now()

	due, err := d.repo.ListDue(ctx, now)
	if err != nil {
		return Summary{}, fmt.Errorf("error listing due content: %w", err)
	}

	summary := Summary{Due: len(due)}
	if len(due) == 0 {
		log.Debug().Msg("No content due for publishing")
		return summary, nil
	}

	log.Info().
		Int("due", len(due)).
		Msg("Starting dispatch pass")

	var mu sync.Mutex
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, d.concurrency)

	for _, c := range due {
		select {
		case <-ctx.Done():
			wg.Wait()
			log.Warn().
				Int("published", summary.Published).
				Msg("Context cancelled during dispatch")
			return summary, ctx.Err()
		case semaphore <- struct{}{}:
		}

		wg.Add(1)
		go func(c *models.Content) {
			defer wg.Done()
			defer func() { <-semaphore }()

			res := d.dispatchOne(ctx, c, now)

			mu.Lock()
			summary.Delivered += res.delivered
			summary.Failed += res.failed
			switch {
			case res.skipped:
				summary.Skipped++
			case res.published:
				summary.Published++
			}
			mu.Unlock()
		}(c)
	}
	wg.Wait()

	log.Info().
		Int("due", summary.Due).
		Int("published", summary.Published).
		Int("skipped", summary.Skipped).
		Int("delivered", summary.Delivered).
		Int("failed", summary.Failed).
		Dur("duration", time.Since(start)).
		Msg("Finished dispatch pass")

	return summary, nil
}

type recordResult struct {
	skipped   bool
	published bool
	delivered int
	failed    int
}

func (d *Dispatcher) dispatchOne(ctx context.Context, c *models.Content, now time.Time) recordResult {
	log := logger.Get()
	var res recordResult

	platform := ""
	if c.Platform != nil {
		platform = *c.Platform
	}

	conns, err := d.repo.ActiveConnections(ctx, platform)
	if err != nil {
		log.Error().
			Err(err).
			Str("content_id", c.ID).
			Msg("Error loading connections")
		res.skipped = true
		return res
	}
	if len(conns) == 0 {
		log.Debug().
			Str("content_id", c.ID).
			Str("platform", platform).
			Msg("Skipping content without an active connection")
		res.skipped = true
		return res
	}

	payload := NewPayload(c, platform)
	for _, conn := range conns {
		entry := &models.PostQueueEntry{
			ContentID:     c.ID,
			ConnectionID:  conn.ID,
			Platform:      platform,
			ScheduledTime: payload.ScheduledFor,
		}

		if err := d.sender.Send(ctx, conn.WebhookURL, payload); err != nil {
			msg := err.Error()
			entry.Status = models.PostStatusFailed
			entry.ErrorMessage = &msg
			res.failed++
			log.Warn().
				Err(err).
				Str("content_id", c.ID).
				Str("connection_id", conn.ID).
				Msg("Webhook delivery failed")
		} else {
			postedAt := now.UTC()
			entry.Status = models.PostStatusPosted
			entry.PostedAt = &postedAt
			res.delivered++
		}
		d.metrics.WebhookDelivery(platform, entry.Status)

		if err := d.repo.CreatePostEntry(ctx, entry); err != nil {
			log.Error().
				Err(err).
				Str("content_id", c.ID).
				Msg("Error recording post queue entry")
		}
	}

	if res.delivered == 0 {
		return res
	}

	ok, err := d.repo.MarkPublished(ctx, c.ID, *c.ScheduledFor)
	if err != nil {
		log.Error().
			Err(err).
			Str("content_id", c.ID).
			Msg("Error marking content as published")
		return res
	}
	if !ok {
		log.Info().
			Str("content_id", c.ID).
			Msg("Content was rescheduled or edited during delivery, leaving its status")
		return res
	}
	res.published = true
	return res
}
