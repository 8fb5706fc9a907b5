package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/ingestion"
)

func TestValidateEvent(t *testing.T) {
	tests := []struct {
		name       string
		event      ingestion.DocumentEvent
		wantFields []string
	}{
		{"valid add", ingestion.DocumentEvent{Op: ingestion.OpAdd, ID: 1, Text: "cat"}, nil},
		{"valid remove", ingestion.DocumentEvent{Op: ingestion.OpRemove, ID: 0}, nil},
		{"empty text allowed", ingestion.DocumentEvent{Op: ingestion.OpAdd, ID: 2}, nil},
		{"missing op", ingestion.DocumentEvent{ID: 1}, []string{"op"}},
		{"unknown op", ingestion.DocumentEvent{Op: "upsert", ID: 1}, []string{"op"}},
		{"negative id", ingestion.DocumentEvent{Op: ingestion.OpRemove, ID: -4}, []string{"id"}},
		{"bad status", ingestion.DocumentEvent{Op: ingestion.OpAdd, ID: 1, Status: index.Status(12)}, []string{"status"}},
		{"text too long", ingestion.DocumentEvent{Op: ingestion.OpAdd, ID: -1, Text: strings.Repeat("a", maxTextLength+1)}, []string{"id", "text"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEvent(&tt.event)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error %v is not a *ValidationError", err)
			}
			if len(verr.Fields) != len(tt.wantFields) {
				t.Errorf("fields = %v, want %v", verr.Fields, tt.wantFields)
			}
			for _, f := range tt.wantFields {
				if _, ok := verr.Fields[f]; !ok {
					t.Errorf("missing field %q in %v", f, verr.Fields)
				}
			}
		})
	}
}
