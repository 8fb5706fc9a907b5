package batch

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/merger"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/config"
)

// Searcher runs one query. *executor.Executor satisfies it.
type Searcher interface {
	FindTopDocuments(ctx context.Context, raw string, opts ...executor.Option) ([]ranker.Document, error)
}

// Processor fans a batch of queries out across goroutines. Identical queries
// in flight at the same time are executed once.
type Processor struct {
	searcher Searcher
	limit    int
	group    singleflight.Group
	logger   *slog.Logger
	requests atomic.Int64
	executed atomic.Int64
}

func New(searcher Searcher, cfg config.BatchConfig) *Processor {
	limit := cfg.MaxConcurrentQueries
	if limit < 1 {
		limit = runtime.GOMAXPROCS(0)
	}
	return &Processor{
		searcher: searcher,
		limit:    limit,
		logger:   slog.Default().With("component", "batch"),
	}
}

// ProcessQueries runs every query with the default search options and
// returns the results in input order. The first failure cancels the queries
// not yet started.
func (p *Processor) ProcessQueries(ctx context.Context, queries []string) ([][]ranker.Document, error) {
	results := make([][]ranker.Document, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.limit)
	for i, query := range queries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			docs, err := p.find(gctx, query)
			if err != nil {
				return fmt.Errorf("query %d %q: %w", i, query, err)
			}
			results[i] = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	p.logger.Debug("batch processed",
		"queries", len(queries),
		"executed", p.executed.Load(),
		"requests", p.requests.Load(),
	)
	return results, nil
}

// ProcessQueriesJoined flattens ProcessQueries, keeping each query's results
// together and in query order.
func (p *Processor) ProcessQueriesJoined(ctx context.Context, queries []string) ([]ranker.Document, error) {
	results, err := p.ProcessQueries(ctx, queries)
	if err != nil {
		return nil, err
	}
	return slices.Concat(results...), nil
}

// ProcessQueriesMerged returns the best limit documents over the whole
// batch, each document at most once.
func (p *Processor) ProcessQueriesMerged(ctx context.Context, queries []string, limit int) ([]ranker.Document, error) {
	results, err := p.ProcessQueries(ctx, queries)
	if err != nil {
		return nil, err
	}
	return merger.Merge(results, limit, ranker.DefaultEpsilon), nil
}

func (p *Processor) find(ctx context.Context, query string) ([]ranker.Document, error) {
	p.requests.Add(1)
	val, err, _ := p.group.Do(query, func() (any, error) {
		p.executed.Add(1)
		// other batches may share this call, so one batch's cancellation
		// must not fail it
		return p.searcher.FindTopDocuments(context.WithoutCancel(ctx), query)
	})
	if err != nil {
		return nil, err
	}
	// shared calls hand every caller the same slice
	return slices.Clone(val.([]ranker.Document)), nil
}

// Stats returns how many searches were executed and how many callers shared
// another caller's execution.
func (p *Processor) Stats() (executed, coalesced int64) {
	executed = p.executed.Load()
	return executed, p.requests.Load() - executed
}
