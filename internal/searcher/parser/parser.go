package parser

import (
	"fmt"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/errors"
)

var errInvalidQueryTerm = fmt.Errorf("%w: %w", apperrors.ErrInvalidQuery, apperrors.ErrInvalidTerm)

// StopWordChecker reports whether a word is excluded from indexing.
type StopWordChecker interface {
	IsStopWord(word string) bool
}

// Query is a parsed query. Plus and Minus are deduplicated, sorted and free
// of stop words.
type Query struct {
	Plus  []string
	Minus []string
	Raw   string
}

// IsEmpty reports whether the query has no plus terms and so can match
// nothing.
func (q *Query) IsEmpty() bool {
	return len(q.Plus) == 0
}

type Parser struct {
	stopWords StopWordChecker
}

func New(stopWords StopWordChecker) *Parser {
	return &Parser{stopWords: stopWords}
}

// Parse splits raw into plus and minus terms. A word starting with '-' is a
// minus term. A bare "-", a word starting with "--" and a word containing a
// control character are rejected with ErrInvalidQuery; the last also matches
// ErrInvalidTerm.
func (p *Parser) Parse(raw string) (*Query, error) {
	q := &Query{
		Plus:  make([]string, 0),
		Minus: make([]string, 0),
		Raw:   raw,
	}
	for _, word := range tokenizer.SplitIntoWords(raw) {
		minus := false
		term := word
		if strings.HasPrefix(term, "-") {
			minus = true
			term = term[1:]
		}
		if err := checkTerm(word, term); err != nil {
			return nil, err
		}
		if p.stopWords != nil && p.stopWords.IsStopWord(term) {
			continue
		}
		if minus {
			q.Minus = append(q.Minus, term)
		} else {
			q.Plus = append(q.Plus, term)
		}
	}
	q.Plus = tokenizer.UniqueNonEmpty(q.Plus)
	q.Minus = tokenizer.UniqueNonEmpty(q.Minus)
	return q, nil
}

func checkTerm(word, term string) error {
	switch {
	case term == "":
		return apperrors.Newf(apperrors.ErrInvalidQuery, "query word %q has no term after '-'", word)
	case term[0] == '-':
		return apperrors.Newf(apperrors.ErrInvalidQuery, "query word %q starts with a double minus", word)
	case !tokenizer.IsValidWord(term):
		return apperrors.Newf(errInvalidQueryTerm, "query word %q contains a control character", word)
	}
	return nil
}
