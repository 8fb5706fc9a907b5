// Package validator checks document events before they are published or
// applied, returning per-field error details.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/ingestion"
)

const maxTextLength = 1048576

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s:%s", field, msg))
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

// ValidateEvent checks the shape of an event. Term validity and id
// uniqueness are left to the index, which reports them with typed errors.
func ValidateEvent(ev *ingestion.DocumentEvent) error {
	errs := make(map[string]string)

	switch ev.Op {
	case ingestion.OpAdd, ingestion.OpRemove:
	case "":
		errs["op"] = "op is required"
	default:
		errs["op"] = fmt.Sprintf("unknown op %q", ev.Op)
	}
	if ev.ID < 0 {
		errs["id"] = "id must not be negative"
	}
	if ev.Op == ingestion.OpAdd {
		if len(ev.Text) > maxTextLength {
			errs["text"] = fmt.Sprintf("text must be at most %d bytes", maxTextLength)
		}
		if ev.Status < index.StatusActual || ev.Status > index.StatusRemoved {
			errs["status"] = fmt.Sprintf("unknown status %d", int(ev.Status))
		}
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
