// Package ingestion defines the document event schema carried on the
// document topic and the corpus file format both CLIs read.
package ingestion

import (
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/index"
)

// Op is the action a DocumentEvent asks for.
type Op string

const (
	OpAdd    Op = "add"
	OpRemove Op = "remove"
)

// DocumentEvent is the Kafka message payload for one index mutation. Text,
// Status and Ratings are only meaningful for OpAdd.
type DocumentEvent struct {
	Op        Op           `json:"op"`
	ID        int          `json:"id"`
	Text      string       `json:"text,omitempty"`
	Status    index.Status `json:"status"`
	Ratings   []int        `json:"ratings,omitempty"`
	EmittedAt time.Time    `json:"emitted_at"`
}

// Key is the partition key: events for one document stay ordered.
func (e DocumentEvent) Key() string {
	return strconv.Itoa(e.ID)
}
