package requestqueue

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/time/rate"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/metrics"
)

// DefaultCapacity is one request per minute for a day.
const DefaultCapacity = 1440

// Searcher runs one query. *executor.Executor satisfies it.
type Searcher interface {
	FindTopDocuments(ctx context.Context, raw string, opts ...executor.Option) ([]ranker.Document, error)
}

// Queue remembers whether each of the last Capacity requests returned
// nothing and keeps a running count of those that did.
//
// The count is corrected on eviction only when the evicted request was empty
// and the new one is not. Evicting an empty request to make room for another
// empty one leaves the count one higher than the window holds.
type Queue struct {
	searcher Searcher
	limiter  *rate.Limiter
	metrics  *metrics.Metrics
	logger   *slog.Logger

	mu       sync.Mutex
	ring     []bool
	head     int
	size     int
	noResult int
}

// New creates a Queue. A non-positive capacity means DefaultCapacity. When
// cfg.RequestsPerSecond is positive, requests above that rate are refused.
// m may be nil.
func New(searcher Searcher, cfg config.RequestQueueConfig, m *metrics.Metrics) *Queue {
	capacity := cfg.Capacity
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	q := &Queue{
		searcher: searcher,
		metrics:  m,
		logger:   slog.Default().With("component", "request-queue"),
		ring:     make([]bool, capacity),
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = max(1, int(cfg.RequestsPerSecond))
		}
		q.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return q
}

// AddFindRequest runs the query and records whether it found anything.
// Refused and failed requests are not recorded.
func (q *Queue) AddFindRequest(ctx context.Context, raw string, opts ...executor.Option) ([]ranker.Document, error) {
	if q.limiter != nil && !q.limiter.Allow() {
		q.metrics.RateLimited()
		q.logger.Warn("request refused by rate limit", "query", raw)
		return nil, apperrors.New(apperrors.ErrRateLimited, "too many find requests")
	}
	docs, err := q.searcher.FindTopDocuments(ctx, raw, opts...)
	if err != nil {
		return nil, err
	}
	q.record(len(docs) == 0)
	return docs, nil
}

func (q *Queue) record(empty bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == len(q.ring) {
		if q.ring[q.head] && !empty {
			q.noResult--
		}
		q.head = (q.head + 1) % len(q.ring)
		q.size--
	}
	if empty {
		q.noResult++
	}
	q.ring[(q.head+q.size)%len(q.ring)] = empty
	q.size++
	q.metrics.NoResults(q.noResult)
}

// NoResultRequests returns the running count of empty requests.
func (q *Queue) NoResultRequests() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.noResult
}

// Len returns how many requests the window currently holds.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// AllEmpty reports whether the window is full and every request it holds
// returned nothing. Unlike NoResultRequests it reads the window itself.
func (q *Queue) AllEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.size < len(q.ring) {
		return false
	}
	for _, empty := range q.ring {
		if !empty {
			return false
		}
	}
	return true
}

func (q *Queue) Capacity() int {
	return len(q.ring)
}
