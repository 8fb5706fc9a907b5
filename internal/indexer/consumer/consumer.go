// Package consumer reads document events from Kafka and applies them to
// the index.
package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/ingestion/validator"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/metrics"
)

// Index is the mutation surface events are applied to. *service.Service
// satisfies it.
type Index interface {
	AddDocument(ctx context.Context, id int, text string, status index.Status, ratings []int) (bool, error)
	RemoveDocument(ctx context.Context, id int, policy index.Policy) (bool, error)
}

// IndexConsumer wraps a Kafka consumer to drive the indexing pipeline.
type IndexConsumer struct {
	consumer *kafka.Consumer
	logger   *slog.Logger
}

// New creates an IndexConsumer backed by the given Kafka consumer.
func New(kafkaConsumer *kafka.Consumer) *IndexConsumer {
	return &IndexConsumer{
		consumer: kafkaConsumer,
		logger:   slog.Default().With("component", "index-consumer"),
	}
}

// Start begins consuming Kafka messages. It blocks until ctx is cancelled.
func (ic *IndexConsumer) Start(ctx context.Context) error {
	ic.logger.Info("index consumer starting")
	return ic.consumer.Start(ctx)
}

// HandleMessage returns a Kafka MessageHandler that applies each document
// event to idx. Events that can never succeed (undecodable, invalid, or
// rejected by the index) are logged and committed; any other failure is
// returned so the message stays uncommitted. m may be nil.
func HandleMessage(idx Index, policy index.Policy, m *metrics.Metrics) kafka.MessageHandler {
	logger := slog.Default().With("component", "index-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ingestion.DocumentEvent](value)
		if err != nil {
			logger.Error("failed to decode document event",
				"error", err,
				"key", string(key),
			)
			m.EventConsumed("unknown", "malformed")
			return nil
		}
		if err := validator.ValidateEvent(&event); err != nil {
			logger.Warn("skipping invalid document event",
				"doc_id", event.ID,
				"error", err,
			)
			m.EventConsumed(string(event.Op), "invalid")
			return nil
		}

		switch event.Op {
		case ingestion.OpAdd:
			duplicate, err := idx.AddDocument(ctx, event.ID, event.Text, event.Status, event.Ratings)
			if errors.Is(err, apperrors.ErrInvalidID) || errors.Is(err, apperrors.ErrInvalidTerm) {
				logger.Warn("document rejected by index",
					"doc_id", event.ID,
					"code", apperrors.Code(err),
					"error", err,
				)
				m.EventConsumed(string(event.Op), "rejected")
				return nil
			}
			if err != nil {
				m.EventConsumed(string(event.Op), "failed")
				return fmt.Errorf("indexing document %d: %w", event.ID, err)
			}
			logger.Info("document indexed", "doc_id", event.ID, "duplicate", duplicate)
		case ingestion.OpRemove:
			removed, err := idx.RemoveDocument(ctx, event.ID, policy)
			if err != nil {
				m.EventConsumed(string(event.Op), "failed")
				return fmt.Errorf("removing document %d: %w", event.ID, err)
			}
			if !removed {
				logger.Debug("remove for unknown document", "doc_id", event.ID)
				m.EventConsumed(string(event.Op), "missing")
				return nil
			}
			logger.Info("document removed", "doc_id", event.ID)
		}
		m.EventConsumed(string(event.Op), "applied")
		return nil
	}
}
