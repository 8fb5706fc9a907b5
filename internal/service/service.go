// Package service puts a single-writer lock around the index. Mutations
// take the write lock; searches, matches and lookups share the read lock, so
// no reader ever sees a half-applied insert or removal.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/dedup"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/batch"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/requestqueue"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/metrics"
)

type Service struct {
	mu       sync.RWMutex
	engine   *indexer.Engine
	executor *executor.Executor
	queue    *requestqueue.Queue
	batch    *batch.Processor
	logger   *slog.Logger
}

// New wires the engine, executor, request window and batch processor from
// cfg. m may be nil.
func New(cfg *config.Config, m *metrics.Metrics) (*Service, error) {
	engine, err := indexer.NewEngine(cfg.Index, m)
	if err != nil {
		return nil, fmt.Errorf("creating index engine: %w", err)
	}
	exec := executor.New(engine, m)
	return &Service{
		engine:   engine,
		executor: exec,
		queue:    requestqueue.New(exec, cfg.RequestQueue, m),
		batch:    batch.New(exec, cfg.Batch),
		logger:   slog.Default().With("component", "service"),
	}, nil
}

func (s *Service) AddDocument(ctx context.Context, id int, text string, status index.Status, ratings []int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.AddDocument(ctx, id, text, status, ratings)
}

func (s *Service) RemoveDocument(ctx context.Context, id int, policy index.Policy) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.RemoveDocument(ctx, id, policy)
}

// RemoveDuplicates scans for duplicate documents and removes them in one
// exclusive section.
func (s *Service) RemoveDuplicates(ctx context.Context, policy index.Policy) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return dedup.RemoveDuplicates(ctx, s.engine, policy)
}

// FindDuplicates returns the ids a RemoveDuplicates call would remove.
func (s *Service) FindDuplicates() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return dedup.Find(s.engine.Store())
}

func (s *Service) FindTopDocuments(ctx context.Context, raw string, opts ...executor.Option) ([]ranker.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.executor.FindTopDocuments(ctx, raw, opts...)
}

// AddFindRequest searches through the request window.
func (s *Service) AddFindRequest(ctx context.Context, raw string, opts ...executor.Option) ([]ranker.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queue.AddFindRequest(ctx, raw, opts...)
}

func (s *Service) NoResultRequests() int {
	return s.queue.NoResultRequests()
}

// RequestWindowAllEmpty reports whether every request in a full window
// returned nothing.
func (s *Service) RequestWindowAllEmpty() bool {
	return s.queue.AllEmpty()
}

func (s *Service) MatchDocument(ctx context.Context, raw string, id int, policy index.Policy) ([]string, index.Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.executor.MatchDocument(ctx, raw, id, policy)
}

func (s *Service) ProcessQueries(ctx context.Context, queries []string) ([][]ranker.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.batch.ProcessQueries(ctx, queries)
}

func (s *Service) ProcessQueriesJoined(ctx context.Context, queries []string) ([]ranker.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.batch.ProcessQueriesJoined(ctx, queries)
}

func (s *Service) TermFrequencies(id int) map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.TermFrequencies(id)
}

func (s *Service) IDs() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.IDs()
}

func (s *Service) DocumentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.DocumentCount()
}

// CheckConsistency verifies the forward and inverted indexes agree.
func (s *Service) CheckConsistency() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.Store().CheckConsistency()
}
