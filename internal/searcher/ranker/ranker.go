package ranker

import (
	"math"
	"sort"
)

const (
	DefaultEpsilon    = 1e-6
	DefaultMaxResults = 5
)

// Document is one search hit.
type Document struct {
	ID        int     `json:"id"`
	Relevance float64 `json:"relevance"`
	Rating    int     `json:"rating"`
}

// Params controls ordering and truncation. Zero fields take the defaults.
type Params struct {
	Epsilon    float64
	MaxResults int
}

func (p Params) withDefaults() Params {
	if p.Epsilon <= 0 {
		p.Epsilon = DefaultEpsilon
	}
	if p.MaxResults <= 0 {
		p.MaxResults = DefaultMaxResults
	}
	return p
}

// Less orders by descending relevance. Relevances closer than epsilon tie and
// fall back to descending rating, then ascending id.
func Less(a, b Document, epsilon float64) bool {
	if math.Abs(a.Relevance-b.Relevance) >= epsilon {
		return a.Relevance > b.Relevance
	}
	if a.Rating != b.Rating {
		return a.Rating > b.Rating
	}
	return a.ID < b.ID
}

// Rank sorts docs in place and returns at most MaxResults of them.
func Rank(docs []Document, params Params) []Document {
	params = params.withDefaults()
	sort.SliceStable(docs, func(i, j int) bool {
		return Less(docs[i], docs[j], params.Epsilon)
	})
	if len(docs) > params.MaxResults {
		docs = docs[:params.MaxResults]
	}
	return docs
}
