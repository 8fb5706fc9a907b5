package ingestion

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/index"
)

// ParseCorpus reads add events from r, one per line:
//
//	id<TAB>status<TAB>ratings<TAB>text
//
// ratings is a comma-separated list and may be empty. Blank lines and lines
// starting with '#' are skipped. Text is everything after the third tab.
// Malformed lines are collected into a *multierror.Error while the remaining
// lines are still returned.
func ParseCorpus(r io.Reader) ([]DocumentEvent, error) {
	var (
		events []DocumentEvent
		errs   error
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ev, err := parseLine(line)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("line %d: %w", lineNo, err))
			continue
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("reading corpus: %w", err))
	}
	return events, errs
}

func parseLine(line string) (DocumentEvent, error) {
	fields := strings.SplitN(line, "\t", 4)
	if len(fields) != 4 {
		return DocumentEvent{}, fmt.Errorf("want 4 tab-separated fields, got %d", len(fields))
	}
	id, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return DocumentEvent{}, fmt.Errorf("parsing id: %w", err)
	}
	status, err := index.ParseStatus(fields[1])
	if err != nil {
		return DocumentEvent{}, err
	}
	ratings, err := parseRatings(fields[2])
	if err != nil {
		return DocumentEvent{}, err
	}
	return DocumentEvent{
		Op:      OpAdd,
		ID:      id,
		Text:    fields[3],
		Status:  status,
		Ratings: ratings,
	}, nil
}

func parseRatings(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ratings := make([]int, 0, len(parts))
	for _, p := range parts {
		r, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("parsing rating %q: %w", p, err)
		}
		ratings = append(ratings, r)
	}
	return ratings, nil
}
