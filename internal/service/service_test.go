package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/config"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	cfg := config.Default()
	cfg.Index.StopWordsText = "and in on with"
	cfg.RequestQueue.Capacity = 4
	s, err := New(cfg, nil)
	require.NoError(t, err)
	return s
}

func TestServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	texts := []string{
		"funny pet and nasty rat",
		"funny pet with curly hair",
		"funny pet with curly hair",
		"nasty rat with curly hair",
	}
	for i, text := range texts {
		_, err := s.AddDocument(ctx, i+1, text, index.StatusActual, []int{i})
		require.NoError(t, err)
	}
	assert.Equal(t, 4, s.DocumentCount())
	assert.Equal(t, []int{3}, s.FindDuplicates())

	docs, err := s.FindTopDocuments(ctx, "curly -nasty")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	// equal relevance, so the higher rating comes first
	assert.Equal(t, 3, docs[0].ID)

	words, status, err := s.MatchDocument(ctx, "nasty hair", 4, index.Parallel)
	require.NoError(t, err)
	assert.Equal(t, []string{"hair", "nasty"}, words)
	assert.Equal(t, index.StatusActual, status)

	removed, err := s.RemoveDuplicates(ctx, index.Parallel)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, []int{1, 2, 4}, s.IDs())
	assert.Empty(t, s.TermFrequencies(3))

	_, err = s.AddFindRequest(ctx, "parrot")
	require.NoError(t, err)
	_, err = s.AddFindRequest(ctx, "rat", executor.WithPolicy(index.Parallel))
	require.NoError(t, err)
	assert.Equal(t, 1, s.NoResultRequests())
	assert.False(t, s.RequestWindowAllEmpty())

	grouped, err := s.ProcessQueries(ctx, []string{"rat", "hair"})
	require.NoError(t, err)
	joined, err := s.ProcessQueriesJoined(ctx, []string{"rat", "hair"})
	require.NoError(t, err)
	assert.Len(t, joined, len(grouped[0])+len(grouped[1]))
}

func TestConcurrentReadersAndWriters(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	for id := range 50 {
		_, err := s.AddDocument(ctx, id, fmt.Sprintf("word%d shared topic%d", id, id%5), index.StatusActual, []int{id})
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for w := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 25 {
				id := 100 + w*25 + i
				if _, err := s.AddDocument(ctx, id, fmt.Sprintf("shared new%d", id), index.StatusActual, nil); err != nil {
					t.Error(err)
				}
				if _, err := s.RemoveDocument(ctx, id, index.Parallel); err != nil {
					t.Error(err)
				}
			}
		}()
	}
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 25 {
				if _, err := s.FindTopDocuments(ctx, "shared topic1 -topic2", executor.WithPolicy(index.Parallel)); err != nil {
					t.Error(err)
				}
				if _, err := s.ProcessQueries(ctx, []string{"shared", "topic3"}); err != nil {
					t.Error(err)
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, s.DocumentCount())
	s.mu.RLock()
	defer s.mu.RUnlock()
	require.NoError(t, s.CheckConsistency())
}
