// Package dedup finds and removes documents whose distinct term set repeats
// one seen earlier in enumeration order.
package dedup

import (
	"context"
	"fmt"
	"slices"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/logger"
)

// Find returns, in enumeration order, every live document whose term set
// was already held by an earlier one. It does not modify the store.
func Find(store *index.Store) []int {
	seen := make(map[uint64][][]string)
	flagged := make([]int, 0)
	for id := range store.All() {
		terms := store.Fingerprint(id)
		key := index.FingerprintKey(terms)
		if slices.ContainsFunc(seen[key], func(prev []string) bool { return slices.Equal(prev, terms) }) {
			flagged = append(flagged, id)
			continue
		}
		seen[key] = append(seen[key], terms)
	}
	return flagged
}

// Remove deletes ids from the engine, logging each one first. Ids that are
// no longer live are skipped. It returns how many documents were removed.
func Remove(ctx context.Context, engine *indexer.Engine, ids []int, policy index.Policy) (int, error) {
	log := logger.FromContext(ctx).With("component", "dedup")
	removed := 0
	for _, id := range ids {
		log.Info("found duplicate document", "doc_id", id)
		ok, err := engine.RemoveDocument(ctx, id, policy)
		if err != nil {
			return removed, fmt.Errorf("removing duplicate %d: %w", id, err)
		}
		if ok {
			removed++
		}
	}
	return removed, nil
}

// RemoveDuplicates runs Find then Remove and logs how long the pass took.
func RemoveDuplicates(ctx context.Context, engine *indexer.Engine, policy index.Policy) (int, error) {
	log := logger.FromContext(ctx).With("component", "dedup")
	defer logger.Duration(log, "remove duplicates")()

	ids := Find(engine.Store())
	removed, err := Remove(ctx, engine, ids, policy)
	if err != nil {
		return removed, err
	}
	log.Info("duplicates removed", "found", len(ids), "removed", removed)
	return removed, nil
}
