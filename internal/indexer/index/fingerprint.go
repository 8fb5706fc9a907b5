package index

import (
	"slices"

	"github.com/cespare/xxhash/v2"
)

// FingerprintKey hashes a sorted term set. Terms never contain control
// characters, so a NUL separator keeps distinct sets from concatenating to
// the same byte stream.
func FingerprintKey(terms []string) uint64 {
	d := xxhash.New()
	for _, t := range terms {
		_, _ = d.WriteString(t)
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}

type fingerprintGroup struct {
	terms []string
	count int
}

// duplicateTracker counts live documents per distinct term set. Groups are
// bucketed by hash and compared term by term, so a hash collision never
// merges two different sets.
type duplicateTracker struct {
	buckets map[uint64][]*fingerprintGroup
	flagged []int
}

func newDuplicateTracker() *duplicateTracker {
	return &duplicateTracker{
		buckets: make(map[uint64][]*fingerprintGroup),
	}
}

func (t *duplicateTracker) lookup(key uint64, terms []string) *fingerprintGroup {
	for _, g := range t.buckets[key] {
		if slices.Equal(g.terms, terms) {
			return g
		}
	}
	return nil
}

// add records id under terms and reports whether an earlier live document
// already had this set.
func (t *duplicateTracker) add(id int, terms []string) bool {
	key := FingerprintKey(terms)
	if g := t.lookup(key, terms); g != nil {
		g.count++
		t.flagged = append(t.flagged, id)
		return true
	}
	t.buckets[key] = append(t.buckets[key], &fingerprintGroup{terms: terms, count: 1})
	return false
}

func (t *duplicateTracker) remove(id int, terms []string) {
	key := FingerprintKey(terms)
	if g := t.lookup(key, terms); g != nil {
		g.count--
		if g.count == 0 {
			bucket := slices.DeleteFunc(t.buckets[key], func(x *fingerprintGroup) bool { return x == g })
			if len(bucket) == 0 {
				delete(t.buckets, key)
			} else {
				t.buckets[key] = bucket
			}
		}
	}
	if i := slices.Index(t.flagged, id); i >= 0 {
		t.flagged = slices.Delete(t.flagged, i, i+1)
	}
}

func (t *duplicateTracker) ids() []int {
	return slices.Clone(t.flagged)
}
