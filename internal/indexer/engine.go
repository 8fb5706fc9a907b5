package indexer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/metrics"
)

// Engine owns the index store and reports every mutation to logs and
// metrics. Like the store it does no locking; service.Service serializes
// writers against readers.
type Engine struct {
	store   *index.Store
	cfg     config.IndexConfig
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewEngine builds the stop-word set from cfg.StopWords and the
// space-separated cfg.StopWordsText. m may be nil.
func NewEngine(cfg config.IndexConfig, m *metrics.Metrics) (*Engine, error) {
	stopWords := append([]string(nil), cfg.StopWords...)
	stopWords = append(stopWords, tokenizer.SplitIntoWords(cfg.StopWordsText)...)

	store, err := index.NewStore(stopWords, index.WithMaxParallelism(cfg.MaxParallelism))
	if err != nil {
		return nil, fmt.Errorf("creating index store: %w", err)
	}
	e := &Engine{
		store:   store,
		cfg:     cfg,
		metrics: m,
		logger:  logger.WithComponent("indexer"),
	}
	e.logger.Info("index engine ready",
		"stop_words", len(store.StopWords()),
		"max_parallelism", cfg.MaxParallelism,
	)
	return e, nil
}

// AddDocument indexes a document and reports whether its term set duplicates
// an earlier live document.
func (e *Engine) AddDocument(ctx context.Context, id int, text string, status index.Status, ratings []int) (bool, error) {
	log := logger.FromContext(ctx).With("component", "indexer")
	duplicate, err := e.store.Insert(id, text, status, ratings)
	if err != nil {
		e.metrics.DocumentRejected(apperrors.Code(err))
		log.Debug("document rejected", "doc_id", id, "error", err)
		return false, err
	}
	e.metrics.DocumentIndexed(duplicate)
	e.publishSize()
	log.Debug("document indexed",
		"doc_id", id,
		"status", status,
		"terms", len(e.store.Fingerprint(id)),
		"duplicate", duplicate,
	)
	return duplicate, nil
}

// RemoveDocument deletes id from the index. It reports false when id was not
// live. ctx is only consulted before work starts; once the per-term phase
// begins the removal always completes.
func (e *Engine) RemoveDocument(ctx context.Context, id int, policy index.Policy) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if !e.store.Remove(id, policy) {
		return false, nil
	}
	e.metrics.DocumentRemoved(policy.String())
	e.publishSize()
	logger.FromContext(ctx).Debug("document removed",
		"component", "indexer",
		"doc_id", id,
		"policy", policy,
	)
	return true, nil
}

func (e *Engine) publishSize() {
	e.metrics.IndexSize(e.store.DocumentCount(), e.store.TermCount())
}

// Store exposes the underlying store for read paths.
func (e *Engine) Store() *index.Store {
	return e.store
}

func (e *Engine) Config() config.IndexConfig {
	return e.cfg
}

func (e *Engine) IsStopWord(word string) bool {
	return e.store.IsStopWord(word)
}

func (e *Engine) TermFrequencies(id int) map[string]float64 {
	return e.store.TermFrequencies(id)
}

func (e *Engine) DocumentCount() int {
	return e.store.DocumentCount()
}

func (e *Engine) IDs() []int {
	return e.store.IDs()
}

func (e *Engine) DuplicateIDs() []int {
	return e.store.DuplicateIDs()
}
