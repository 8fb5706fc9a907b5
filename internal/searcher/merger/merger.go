package merger

import (
	"container/heap"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/ranker"
)

// Merge keeps the best limit documents across several ranked groups, using
// the same ordering as ranker.Rank. A document present in more than one
// group is kept once, with its best entry.
func Merge(groups [][]ranker.Document, limit int, epsilon float64) []ranker.Document {
	if limit <= 0 {
		limit = ranker.DefaultMaxResults
	}
	if epsilon <= 0 {
		epsilon = ranker.DefaultEpsilon
	}
	best := make(map[int]ranker.Document)
	for _, docs := range groups {
		for _, doc := range docs {
			if prev, ok := best[doc.ID]; !ok || ranker.Less(doc, prev, epsilon) {
				best[doc.ID] = doc
			}
		}
	}

	h := &docHeap{epsilon: epsilon}
	heap.Init(h)
	for _, doc := range best {
		heap.Push(h, doc)
		if h.Len() > limit {
			heap.Pop(h)
		}
	}
	result := make([]ranker.Document, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(h).(ranker.Document)
	}
	return result
}

// docHeap is a min-heap: the root is the worst document kept so far.
type docHeap struct {
	docs    []ranker.Document
	epsilon float64
}

func (h docHeap) Len() int { return len(h.docs) }

func (h docHeap) Less(i, j int) bool {
	return ranker.Less(h.docs[j], h.docs[i], h.epsilon)
}

func (h docHeap) Swap(i, j int) { h.docs[i], h.docs[j] = h.docs[j], h.docs[i] }

func (h *docHeap) Push(x any) {
	h.docs = append(h.docs, x.(ranker.Document))
}

func (h *docHeap) Pop() any {
	old := h.docs
	n := len(old)
	item := old[n-1]
	h.docs = old[:n-1]
	return item
}
