package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"gorm.io/gorm"

	"github.com/angelmondragon/shopdesk-backend/pkg/db/models"
	"github.com/angelmondragon/shopdesk-backend/pkg/enums"
	"github.com/angelmondragon/shopdesk-backend/pkg/outbox/registry"
)

const (
	publishResultOK           = "published"
	publishResultRetry        = "retry"
	publishResultDeadLettered = "dead_lettered"
)

// delivery tracks one claimed row through publish and settlement.
type delivery struct {
	event    models.OutboxEvent
	resolved *registry.ResolvedEvent
	pending  publishResult
	err      error
}

func (d *delivery) topic() string {
	if d.resolved == nil {
		return ""
	}
	return d.resolved.Descriptor.Topic
}

// processBatch claims up to batchSize rows, publishes them all before
// waiting on any acknowledgement, then settles each row in the same
// transaction that holds the row locks.
func (s *Service) processBatch(ctx context.Context) (bool, error) {
	claimed := false
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		events, err := s.repo.FetchUnpublishedForPublish(tx, s.batchSize, s.maxAttempts)
		if err != nil {
			return fmt.Errorf("claim outbox rows: %w", err)
		}
		if len(events) == 0 {
			return nil
		}
		claimed = true

		publishCtx, cancel := context.WithTimeout(ctx, s.publishTimeout)
		defer cancel()

		batch := make([]*delivery, len(events))
		for i, event := range events {
			batch[i] = s.send(publishCtx, event)
		}
		for _, d := range batch {
			if d.err == nil && d.pending != nil {
				_, d.err = d.pending.Get(publishCtx)
			}
			if err := s.settle(ctx, tx, d); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil && claimed {
		s.reportPending(ctx)
	}
	return claimed, err
}

// send resolves event and hands it to the topic publisher without blocking
// on the server acknowledgement.
func (s *Service) send(ctx context.Context, event models.OutboxEvent) *delivery {
	d := &delivery{event: event}
	d.resolved, d.err = s.registry.Resolve(event)
	if d.err != nil {
		return d
	}

	pub := s.publisher(d.topic())
	if pub == nil {
		d.err = registry.NewNonRetryableError(fmt.Errorf("no publisher for topic %q", d.topic()))
		return d
	}
	d.pending = pub.Publish(ctx, &gcppubsub.Message{
		Data: event.Payload,
		Attributes: map[string]string{
			"event_id":       d.resolved.Envelope.EventID,
			"event_type":     string(event.EventType),
			"aggregate_type": string(event.AggregateType),
			"aggregate_id":   event.AggregateID,
			"created_at":     event.CreatedAt.UTC().Format(time.RFC3339Nano),
		},
	})
	if d.pending == nil {
		d.err = registry.NewNonRetryableError(fmt.Errorf("publisher for %q returned no result", d.topic()))
	}
	return d
}

func (s *Service) settle(ctx context.Context, tx *gorm.DB, d *delivery) error {
	id := d.event.ID
	logCtx := s.logg.WithFields(ctx, s.deliveryFields(d))

	if d.err == nil {
		if err := s.repo.MarkPublishedTx(tx, id); err != nil {
			return fmt.Errorf("mark %s published: %w", id, err)
		}
		s.count(publishResultOK)
		s.logg.Info(logCtx, "outbox.published")
		return nil
	}

	var nonRetryable registry.NonRetryableError
	if errors.As(d.err, &nonRetryable) {
		return s.deadLetter(logCtx, tx, d, enums.OutboxDLQReasonNonRetryable, d.err)
	}
	if d.event.AttemptCount+1 >= s.maxAttempts {
		return s.deadLetter(logCtx, tx, d, enums.OutboxDLQReasonMaxAttempts,
			fmt.Errorf("gave up after %d attempts: %w", d.event.AttemptCount+1, d.err))
	}

	s.logg.Warn(s.logg.WithField(logCtx, "error", d.err.Error()), "outbox.publish_retry")
	if err := s.repo.MarkFailedTx(tx, id, d.err); err != nil {
		return fmt.Errorf("mark %s failed: %w", id, err)
	}
	s.count(publishResultRetry)
	return nil
}

func (s *Service) deadLetter(ctx context.Context, tx *gorm.DB, d *delivery, reason enums.OutboxDLQErrorReason, cause error) error {
	entry := d.event.DeadLetter(reason, cause, time.Now())
	if err := s.dlq.InsertTx(tx, entry); err != nil {
		return fmt.Errorf("dead-letter %s: %w", d.event.ID, err)
	}
	if err := s.repo.MarkTerminalTx(tx, d.event.ID, cause, s.maxAttempts); err != nil {
		return fmt.Errorf("mark %s terminal: %w", d.event.ID, err)
	}
	s.count(publishResultDeadLettered)
	s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"error": cause.Error(), "dlq_reason": reason}), "outbox.dead_lettered")
	return nil
}

func (s *Service) count(result string) {
	if s.metrics != nil {
		s.metrics.Published(result)
	}
}

func (s *Service) reportPending(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		pending, err := s.repo.CountPending(tx)
		if err == nil {
			s.metrics.SetPending(pending)
		}
		return err
	})
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "outbox.pending_count_failed")
	}
}

func (s *Service) deliveryFields(d *delivery) map[string]any {
	fields := map[string]any{
		"outbox_id":      d.event.ID.String(),
		"event_type":     d.event.EventType,
		"aggregate_type": d.event.AggregateType,
		"aggregate_id":   d.event.AggregateID,
		"attempt_count":  d.event.AttemptCount,
	}
	if topic := d.topic(); topic != "" {
		fields["topic"] = topic
		fields["event_id"] = d.resolved.Envelope.EventID
	}
	if d.event.LastError != nil {
		fields["last_error"] = *d.event.LastError
	}
	return fields
}
