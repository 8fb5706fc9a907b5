package requestqueue

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/metrics"
)

// stubSearcher finds one document for "hit" and nothing otherwise.
type stubSearcher struct{}

func (stubSearcher) FindTopDocuments(_ context.Context, raw string, _ ...executor.Option) ([]ranker.Document, error) {
	switch raw {
	case "hit":
		return []ranker.Document{{ID: 1}}, nil
	case "fail":
		return nil, apperrors.New(apperrors.ErrInvalidQuery, "bad")
	default:
		return nil, nil
	}
}

func TestEvictionAsymmetry(t *testing.T) {
	q := New(stubSearcher{}, config.RequestQueueConfig{Capacity: 3}, nil)
	steps := []struct {
		query string
		want  int
	}{
		{"miss", 1},
		{"miss", 2},
		{"miss", 3},
		// full: an empty request leaves, a hit arrives
		{"hit", 2},
		// an empty request leaves, an empty one arrives: no correction
		{"miss", 3},
		{"hit", 2},
		// a hit leaves, a hit arrives
		{"hit", 2},
		{"hit", 1},
		// a hit leaves, an empty one arrives
		{"miss", 2},
	}
	for i, step := range steps {
		_, err := q.AddFindRequest(context.Background(), step.query)
		require.NoError(t, err)
		assert.Equal(t, step.want, q.NoResultRequests(), "step %d (%s)", i, step.query)
	}
	assert.Equal(t, 3, q.Len())
}

func TestAllEmptyReadsWindow(t *testing.T) {
	q := New(stubSearcher{}, config.RequestQueueConfig{Capacity: 3}, nil)
	steps := []struct {
		query     string
		wantAll   bool
		wantCount int
	}{
		{"miss", false, 1},
		{"miss", false, 2},
		{"miss", true, 3},
		{"miss", true, 4},
		// the counter stays at the window size while the window holds a hit
		{"hit", false, 3},
	}
	for i, step := range steps {
		_, err := q.AddFindRequest(context.Background(), step.query)
		require.NoError(t, err)
		assert.Equal(t, step.wantAll, q.AllEmpty(), "step %d", i)
		assert.Equal(t, step.wantCount, q.NoResultRequests(), "step %d", i)
	}
}

func TestDefaultCapacityDay(t *testing.T) {
	engine, err := indexer.NewEngine(config.IndexConfig{StopWordsText: "and in at"}, nil)
	require.NoError(t, err)
	ctx := context.Background()
	docs := []string{
		"curly cat curly tail",
		"curly dog and fancy collar",
		"big cat fancy collar ",
		"big dog sparrow Eugene",
		"big dog sparrow Vasiliy",
	}
	for i, text := range docs {
		_, err := engine.AddDocument(ctx, i+1, text, index.StatusActual, []int{1, 2, 3})
		require.NoError(t, err)
	}

	q := New(executor.New(engine, nil), config.RequestQueueConfig{}, nil)
	require.Equal(t, DefaultCapacity, q.Capacity())
	for range 1439 {
		_, err := q.AddFindRequest(ctx, "empty request")
		require.NoError(t, err)
	}
	steps := []struct {
		query string
		want  int
	}{
		{"curly dog", 1439},
		{"big collar", 1438},
		{"sparrow", 1437},
	}
	for _, step := range steps {
		docs, err := q.AddFindRequest(ctx, step.query)
		require.NoError(t, err)
		assert.NotEmpty(t, docs)
		assert.Equal(t, step.want, q.NoResultRequests(), step.query)
	}
}

func TestFailedRequestNotRecorded(t *testing.T) {
	q := New(stubSearcher{}, config.RequestQueueConfig{Capacity: 2}, nil)
	_, err := q.AddFindRequest(context.Background(), "fail")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidQuery))
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 0, q.NoResultRequests())
}

func TestRateLimit(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	q := New(stubSearcher{}, config.RequestQueueConfig{
		Capacity:          10,
		RequestsPerSecond: 0.001,
		Burst:             2,
	}, m)

	for range 2 {
		_, err := q.AddFindRequest(context.Background(), "miss")
		require.NoError(t, err)
	}
	_, err := q.AddFindRequest(context.Background(), "miss")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrRateLimited))

	assert.Equal(t, 2, q.Len())
	assert.Equal(t, 2, q.NoResultRequests())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitedRequests))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.NoResultRequests))
}
