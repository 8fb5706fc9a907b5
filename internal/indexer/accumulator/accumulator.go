// Package accumulator provides a sharded map from integer keys to numeric
// values. Each shard has its own mutex, so goroutines adding into keys on
// different shards never block each other. It is used while scoring a query
// in parallel, where many goroutines add relevance into per-document totals.
package accumulator

import (
	"cmp"
	"slices"
	"sync"
)

// Integer is the set of key types a Map can be indexed by.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Number is the set of value types a Map can accumulate.
type Number interface {
	Integer | ~float32 | ~float64
}

type shard[K Integer, V Number] struct {
	mu     sync.Mutex
	values map[K]V
}

// Map is a fixed set of independently locked shards. Key k lives in shard
// k mod N. The zero value is not usable; construct with New.
type Map[K Integer, V Number] struct {
	shards []shard[K, V]
}

// Entry is one key/value pair produced by Drain.
type Entry[K Integer, V Number] struct {
	Key   K
	Value V
}

// New creates a Map with n shards. It panics if n < 1.
func New[K Integer, V Number](n int) *Map[K, V] {
	if n < 1 {
		panic("accumulator: shard count must be at least 1")
	}
	m := &Map[K, V]{shards: make([]shard[K, V], n)}
	for i := range m.shards {
		m.shards[i].values = make(map[K]V)
	}
	return m
}

func (m *Map[K, V]) shardFor(key K) *shard[K, V] {
	return &m.shards[m.ShardOf(key)]
}

// Access locks the shard owning key, hands fn a pointer to the key's value
// (zero if absent), and unlocks once fn returns or panics. The pointer must
// not be retained past fn.
func (m *Map[K, V]) Access(key K, fn func(v *V)) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.values[key]
	fn(&v)
	s.values[key] = v
}

// Add adds delta to the value stored under key.
func (m *Map[K, V]) Add(key K, delta V) {
	m.Access(key, func(v *V) { *v += delta })
}

// Drain copies every entry out, locking one shard at a time, and returns
// them sorted by key. The Map is left unchanged.
func (m *Map[K, V]) Drain() []Entry[K, V] {
	var entries []Entry[K, V]
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.Lock()
		for k, v := range s.values {
			entries = append(entries, Entry[K, V]{Key: k, Value: v})
		}
		s.mu.Unlock()
	}
	slices.SortFunc(entries, func(a, b Entry[K, V]) int {
		return cmp.Compare(a.Key, b.Key)
	})
	return entries
}

// Len returns the number of keys, counting one shard at a time.
func (m *Map[K, V]) Len() int {
	total := 0
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.Lock()
		total += len(s.values)
		s.mu.Unlock()
	}
	return total
}

// ShardCount returns N.
func (m *Map[K, V]) ShardCount() int {
	return len(m.shards)
}

// ShardOf returns the shard index key maps to.
func (m *Map[K, V]) ShardOf(key K) int {
	n := K(len(m.shards))
	idx := key % n
	if idx < 0 {
		idx += n
	}
	return int(idx)
}
