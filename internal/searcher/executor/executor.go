package executor

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/accumulator"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/metrics"
)

const defaultAccumulatorShards = 64

// Predicate filters candidate documents during scoring.
type Predicate func(id int, status index.Status, rating int) bool

type findOptions struct {
	predicate Predicate
	policy    index.Policy
}

type Option func(*findOptions)

// WithPredicate replaces the default status filter.
func WithPredicate(p Predicate) Option {
	return func(o *findOptions) {
		o.predicate = p
	}
}

// WithStatus keeps only documents with exactly this status.
func WithStatus(status index.Status) Option {
	return WithPredicate(func(_ int, s index.Status, _ int) bool {
		return s == status
	})
}

func WithPolicy(policy index.Policy) Option {
	return func(o *findOptions) {
		o.policy = policy
	}
}

// Executor runs queries against an engine. It only reads the index, so
// callers must hold off writers while a query runs.
type Executor struct {
	engine         *indexer.Engine
	parser         *parser.Parser
	params         ranker.Params
	shards         int
	maxParallelism int
	metrics        *metrics.Metrics
	logger         *slog.Logger
}

// New builds an Executor from the engine's index settings. m may be nil.
func New(engine *indexer.Engine, m *metrics.Metrics) *Executor {
	cfg := engine.Config()
	shards := cfg.AccumulatorShards
	if shards < 1 {
		shards = defaultAccumulatorShards
	}
	parallelism := cfg.MaxParallelism
	if parallelism < 1 {
		parallelism = runtime.GOMAXPROCS(0)
	}
	return &Executor{
		engine: engine,
		parser: parser.New(engine),
		params: ranker.Params{
			Epsilon:    cfg.RelevanceEpsilon,
			MaxResults: cfg.MaxResults,
		},
		shards:         shards,
		maxParallelism: parallelism,
		metrics:        m,
		logger:         slog.Default().With("component", "query-executor"),
	}
}

// Parse parses raw against the engine's stop words.
func (e *Executor) Parse(raw string) (*parser.Query, error) {
	return e.parser.Parse(raw)
}

// FindTopDocuments parses raw, scores every matching document and returns
// the best ones in rank order. Without options only documents with
// StatusActual are considered and scoring is sequential.
func (e *Executor) FindTopDocuments(ctx context.Context, raw string, opts ...Option) ([]ranker.Document, error) {
	o := findOptions{
		predicate: func(_ int, s index.Status, _ int) bool { return s == index.StatusActual },
		policy:    index.Sequential,
	}
	for _, opt := range opts {
		opt(&o)
	}

	start := time.Now()
	q, err := e.parser.Parse(raw)
	if err != nil {
		e.metrics.Query(o.policy.String(), apperrors.Code(err), time.Since(start), 0)
		return nil, err
	}
	docs, err := e.FindAllDocuments(ctx, q, o.predicate, o.policy)
	if err != nil {
		e.metrics.Query(o.policy.String(), apperrors.Code(err), time.Since(start), 0)
		return nil, fmt.Errorf("scoring query %q: %w", raw, err)
	}
	candidates := len(docs)
	docs = ranker.Rank(docs, e.params)

	elapsed := time.Since(start)
	resultType := "hit"
	if len(docs) == 0 {
		resultType = "zero_result"
	}
	e.metrics.Query(o.policy.String(), resultType, elapsed, len(docs))
	logger.FromContext(ctx).Debug("query executed",
		"component", "query-executor",
		"query", raw,
		"plus", q.Plus,
		"minus", q.Minus,
		"policy", o.policy,
		"candidates", candidates,
		"results", len(docs),
		"duration_ms", elapsed.Milliseconds(),
	)
	return docs, nil
}

// FindAllDocuments scores every document that contains a plus term, passes
// pred and contains no minus term. The result is unordered.
func (e *Executor) FindAllDocuments(ctx context.Context, q *parser.Query, pred Predicate, policy index.Policy) ([]ranker.Document, error) {
	store := e.engine.Store()
	excluded := e.excluded(q.Minus)
	relevance := accumulator.New[int, float64](e.shards)

	score := func(term string) {
		if !store.HasTerm(term) {
			return
		}
		idf := store.InverseDocumentFrequency(term)
		store.RangePostings(term, func(id int, tf float64) bool {
			if excluded.Contains(uint64(id)) {
				return true
			}
			meta, _ := store.Document(id)
			if pred != nil && !pred(id, meta.Status, meta.Rating) {
				return true
			}
			relevance.Add(id, tf*idf)
			return true
		})
	}

	if policy == index.Parallel && len(q.Plus) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.maxParallelism)
		for _, term := range q.Plus {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				score(term)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for _, term := range q.Plus {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			score(term)
		}
	}

	entries := relevance.Drain()
	docs := make([]ranker.Document, 0, len(entries))
	for _, entry := range entries {
		meta, _ := store.Document(entry.Key)
		docs = append(docs, ranker.Document{
			ID:        entry.Key,
			Relevance: entry.Value,
			Rating:    meta.Rating,
		})
	}
	return docs, nil
}

// excluded collects every document holding a minus term. The inverted index
// is the transpose of the forward index, so this is the same set a per
// document forward lookup would reject.
func (e *Executor) excluded(minus []string) *roaring64.Bitmap {
	store := e.engine.Store()
	bm := roaring64.New()
	for _, term := range minus {
		store.RangePostings(term, func(id int, _ float64) bool {
			bm.Add(uint64(id))
			return true
		})
	}
	return bm
}

// MatchDocument returns the plus terms of raw present in document id, sorted,
// together with the document's status. Any minus term present empties the
// list. It fails with ErrUnknownDocument when id is not live.
func (e *Executor) MatchDocument(ctx context.Context, raw string, id int, policy index.Policy) ([]string, index.Status, error) {
	store := e.engine.Store()
	meta, ok := store.Document(id)
	if !ok {
		return nil, 0, apperrors.Newf(apperrors.ErrUnknownDocument, "document %d is not indexed", id)
	}
	q, err := e.parser.Parse(raw)
	if err != nil {
		return nil, 0, err
	}

	contains := func(term string) bool { return store.ContainsTerm(id, term) }
	if policy == index.Parallel {
		return e.matchParallel(ctx, q, contains, meta.Status)
	}
	for _, term := range q.Minus {
		if contains(term) {
			return []string{}, meta.Status, nil
		}
	}
	matched := make([]string, 0, len(q.Plus))
	for _, term := range q.Plus {
		if contains(term) {
			matched = append(matched, term)
		}
	}
	return matched, meta.Status, nil
}

func (e *Executor) matchParallel(ctx context.Context, q *parser.Query, contains func(string) bool, status index.Status) ([]string, index.Status, error) {
	minusHit := make([]bool, len(q.Minus))
	plusHit := make([]bool, len(q.Plus))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxParallelism)
	check := func(terms []string, hits []bool) {
		for i, term := range terms {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				hits[i] = contains(term)
				return nil
			})
		}
	}
	check(q.Minus, minusHit)
	check(q.Plus, plusHit)
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	for _, hit := range minusHit {
		if hit {
			return []string{}, status, nil
		}
	}
	matched := make([]string, 0, len(q.Plus))
	for i, term := range q.Plus {
		if plusHit[i] {
			matched = append(matched, term)
		}
	}
	return matched, status, nil
}
