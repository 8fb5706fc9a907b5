// Package publisher validates document events and publishes them to the
// document topic, retrying transient broker failures behind a circuit
// breaker.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/ingestion/validator"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/resilience"
)

// EventPublisher is satisfied by *kafka.Producer.
type EventPublisher interface {
	Publish(ctx context.Context, event kafka.Event) error
}

// Publisher sends document events one at a time, in order.
type Publisher struct {
	producer EventPublisher
	retry    resilience.RetryConfig
	breaker  *resilience.Breaker
	now      func() time.Time
	logger   *slog.Logger
}

func New(producer EventPublisher, retry resilience.RetryConfig) *Publisher {
	return &Publisher{
		producer: producer,
		retry:    retry,
		breaker:  resilience.NewBreaker("document-publish", resilience.BreakerConfig{}),
		now:      time.Now,
		logger:   slog.Default().With("component", "publisher"),
	}
}

// Publish validates and sends one event.
func (p *Publisher) Publish(ctx context.Context, ev ingestion.DocumentEvent) error {
	if err := validator.ValidateEvent(&ev); err != nil {
		return fmt.Errorf("event for document %d: %w", ev.ID, err)
	}
	if ev.EmittedAt.IsZero() {
		ev.EmittedAt = p.now().UTC()
	}
	err := resilience.Retry(ctx, "publish document event", p.retry, func(ctx context.Context) error {
		err := p.breaker.Execute(ctx, func(ctx context.Context) error {
			return p.producer.Publish(ctx, kafka.Event{Key: ev.Key(), Value: ev})
		})
		if errors.Is(err, resilience.ErrCircuitOpen) {
			return resilience.Permanent(err)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("publishing document %d: %w", ev.ID, err)
	}
	p.logger.Debug("document event published", "op", ev.Op, "doc_id", ev.ID)
	return nil
}

// PublishAll sends events in order. Invalid events are skipped and reported;
// a publish failure stops the run. It returns how many events were sent.
func (p *Publisher) PublishAll(ctx context.Context, events []ingestion.DocumentEvent) (int, error) {
	var errs error
	sent := 0
	for _, ev := range events {
		err := p.Publish(ctx, ev)
		var verr *validator.ValidationError
		switch {
		case err == nil:
			sent++
		case errors.As(err, &verr):
			p.logger.Warn("skipping invalid event", "doc_id", ev.ID, "error", err)
			errs = multierror.Append(errs, err)
		default:
			return sent, multierror.Append(errs, err).ErrorOrNil()
		}
	}
	p.logger.Info("events published", "sent", sent, "total", len(events))
	return sent, errs
}
