package index

import (
	"fmt"
	"iter"
	"math"
	"runtime"
	"slices"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/errors"
)

// Store owns the forward index (document -> term -> tf), the inverted index
// (term -> document -> tf), per-document metadata, the insertion-ordered set
// of live ids and the duplicate-content tracker.
//
// Store does no locking of its own. Insert and Remove must not run
// concurrently with each other or with any reader; see service.Service for
// the single-writer wrapper. Concurrent readers are safe.
type Store struct {
	stopWords      map[string]struct{}
	forward        map[int]map[string]float64
	inverted       map[string]map[int]float64
	docs           map[int]Meta
	order          []int
	dups           *duplicateTracker
	maxParallelism int
}

type Option func(*Store)

// WithMaxParallelism bounds the goroutines used by parallel removal. Zero
// means GOMAXPROCS.
func WithMaxParallelism(n int) Option {
	return func(s *Store) {
		s.maxParallelism = n
	}
}

// NewStore creates an empty Store. Every stop word must be a valid word;
// empty strings and repeats are ignored.
func NewStore(stopWords []string, opts ...Option) (*Store, error) {
	words := tokenizer.UniqueNonEmpty(stopWords)
	sw := make(map[string]struct{}, len(words))
	for _, w := range words {
		if !tokenizer.IsValidWord(w) {
			return nil, apperrors.Newf(apperrors.ErrInvalidTerm, "stop word %q contains a control character", w)
		}
		sw[w] = struct{}{}
	}
	s := &Store{
		stopWords: sw,
		forward:   make(map[int]map[string]float64),
		inverted:  make(map[string]map[int]float64),
		docs:      make(map[int]Meta),
		dups:      newDuplicateTracker(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// IsStopWord reports whether word is in the configured stop-word set.
func (s *Store) IsStopWord(word string) bool {
	_, ok := s.stopWords[word]
	return ok
}

// StopWords returns the configured stop words, sorted.
func (s *Store) StopWords() []string {
	words := make([]string, 0, len(s.stopWords))
	for w := range s.stopWords {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// Insert indexes a document. It fails with ErrInvalidID for a negative or
// already present id and with ErrInvalidTerm when a word contains a control
// character; in both cases nothing has been modified. The returned bool
// reports whether an earlier live document has the same distinct term set.
func (s *Store) Insert(id int, text string, status Status, ratings []int) (bool, error) {
	if id < 0 {
		return false, apperrors.Newf(apperrors.ErrInvalidID, "document id %d is negative", id)
	}
	if _, exists := s.docs[id]; exists {
		return false, apperrors.Newf(apperrors.ErrInvalidID, "document id %d already exists", id)
	}
	words, err := s.splitNoStop(text)
	if err != nil {
		return false, err
	}

	counts := make(map[string]int, len(words))
	for _, w := range words {
		counts[w]++
	}
	freqs := make(map[string]float64, len(counts))
	total := float64(len(words))
	for term, n := range counts {
		freqs[term] = float64(n) / total
	}

	for term, tf := range freqs {
		postings, ok := s.inverted[term]
		if !ok {
			postings = make(map[int]float64)
			s.inverted[term] = postings
		}
		postings[id] = tf
	}
	s.forward[id] = freqs
	s.docs[id] = Meta{
		Rating: averageRating(ratings),
		Status: status,
	}
	s.order = append(s.order, id)
	return s.dups.add(id, sortedTerms(freqs)), nil
}

func (s *Store) splitNoStop(text string) ([]string, error) {
	all := tokenizer.SplitIntoWords(text)
	words := all[:0]
	for _, w := range all {
		if !tokenizer.IsValidWord(w) {
			return nil, apperrors.Newf(apperrors.ErrInvalidTerm, "word %q contains a control character", w)
		}
		if s.IsStopWord(w) {
			continue
		}
		words = append(words, w)
	}
	return words, nil
}

// Remove deletes a document from every structure. It reports false, and
// changes nothing, when id is not live.
//
// With Parallel, the per-term posting deletions run concurrently. Empty
// terms are pruned and the forward entry, metadata and live-set membership
// are dropped only after every posting deletion has finished.
func (s *Store) Remove(id int, policy Policy) bool {
	freqs, ok := s.forward[id]
	if !ok {
		return false
	}

	lists := make([]map[int]float64, 0, len(freqs))
	for term := range freqs {
		if postings, ok := s.inverted[term]; ok {
			lists = append(lists, postings)
		}
	}
	if policy == Parallel && len(lists) > 1 {
		var g errgroup.Group
		g.SetLimit(s.parallelism())
		for _, postings := range lists {
			g.Go(func() error {
				delete(postings, id)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for _, postings := range lists {
			delete(postings, id)
		}
	}

	for term := range freqs {
		if len(s.inverted[term]) == 0 {
			delete(s.inverted, term)
		}
	}
	s.dups.remove(id, sortedTerms(freqs))
	delete(s.forward, id)
	delete(s.docs, id)
	if i := slices.Index(s.order, id); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	return true
}

func (s *Store) parallelism() int {
	if s.maxParallelism > 0 {
		return s.maxParallelism
	}
	return runtime.GOMAXPROCS(0)
}

// TermFrequencies returns a copy of the document's term frequencies, or an
// empty map when id is unknown.
func (s *Store) TermFrequencies(id int) map[string]float64 {
	freqs := s.forward[id]
	result := make(map[string]float64, len(freqs))
	for term, tf := range freqs {
		result[term] = tf
	}
	return result
}

// Fingerprint returns the document's distinct terms, sorted. It is nil for
// an unknown id.
func (s *Store) Fingerprint(id int) []string {
	freqs, ok := s.forward[id]
	if !ok {
		return nil
	}
	return sortedTerms(freqs)
}

// ContainsTerm reports whether term occurs in document id.
func (s *Store) ContainsTerm(id int, term string) bool {
	_, ok := s.forward[id][term]
	return ok
}

func (s *Store) Has(id int) bool {
	_, ok := s.docs[id]
	return ok
}

func (s *Store) Document(id int) (Meta, bool) {
	meta, ok := s.docs[id]
	return meta, ok
}

func (s *Store) DocumentCount() int {
	return len(s.docs)
}

// TermCount returns the number of distinct terms in the inverted index.
func (s *Store) TermCount() int {
	return len(s.inverted)
}

// IDs returns the live document ids in insertion order.
func (s *Store) IDs() []int {
	return slices.Clone(s.order)
}

// All yields the live document ids in insertion order.
func (s *Store) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		for _, id := range s.order {
			if !yield(id) {
				return
			}
		}
	}
}

func (s *Store) HasTerm(term string) bool {
	_, ok := s.inverted[term]
	return ok
}

// DocumentFrequency returns how many documents contain term.
func (s *Store) DocumentFrequency(term string) int {
	return len(s.inverted[term])
}

// RangePostings calls fn for every document containing term, in no
// particular order, until fn returns false.
func (s *Store) RangePostings(term string, fn func(id int, tf float64) bool) {
	for id, tf := range s.inverted[term] {
		if !fn(id, tf) {
			return
		}
	}
}

// InverseDocumentFrequency returns ln(documents / documents containing
// term). Callers must check HasTerm first; for an absent term the result is
// undefined.
func (s *Store) InverseDocumentFrequency(term string) float64 {
	return math.Log(float64(s.DocumentCount()) / float64(len(s.inverted[term])))
}

// DuplicateIDs returns the live ids that were flagged on insert because an
// earlier document had the same term set, in insertion order.
func (s *Store) DuplicateIDs() []int {
	return s.dups.ids()
}

// Snapshot returns the inverted index sorted by term, each posting list
// sorted by document id.
func (s *Store) Snapshot() []TermEntry {
	entries := make([]TermEntry, 0, len(s.inverted))
	for term, docs := range s.inverted {
		postings := make(PostingList, 0, len(docs))
		for id, tf := range docs {
			postings = append(postings, Posting{DocID: id, TermFreq: tf})
		}
		sort.Slice(postings, func(i, j int) bool {
			return postings[i].DocID < postings[j].DocID
		})
		entries = append(entries, TermEntry{
			Term:     term,
			Postings: postings,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Term < entries[j].Term
	})
	return entries
}

// CheckConsistency verifies that the forward and inverted indexes are
// transposes of each other and that metadata and the live set cover exactly
// the forward keys.
func (s *Store) CheckConsistency() error {
	if len(s.forward) != len(s.docs) || len(s.order) != len(s.docs) {
		return fmt.Errorf("size mismatch: forward=%d docs=%d order=%d", len(s.forward), len(s.docs), len(s.order))
	}
	for _, id := range s.order {
		if _, ok := s.forward[id]; !ok {
			return fmt.Errorf("live document %d has no forward entry", id)
		}
	}
	for id, freqs := range s.forward {
		for term, tf := range freqs {
			if got, ok := s.inverted[term][id]; !ok || got != tf {
				return fmt.Errorf("term %q of document %d missing from inverted index", term, id)
			}
		}
	}
	for term, docs := range s.inverted {
		if len(docs) == 0 {
			return fmt.Errorf("term %q has an empty posting list", term)
		}
		for id := range docs {
			if _, ok := s.forward[id][term]; !ok {
				return fmt.Errorf("inverted entry %q -> %d has no forward counterpart", term, id)
			}
		}
	}
	return nil
}

func sortedTerms(freqs map[string]float64) []string {
	terms := make([]string, 0, len(freqs))
	for term := range freqs {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}
