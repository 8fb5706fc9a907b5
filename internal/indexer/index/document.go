package index

import (
	"fmt"
	"strings"
)

// Status is a caller-supplied classification of a document. It is not a
// lifecycle state: removal deletes the document regardless of status.
type Status int

const (
	StatusActual Status = iota
	StatusIrrelevant
	StatusBanned
	StatusRemoved
)

func (s Status) String() string {
	switch s {
	case StatusActual:
		return "ACTUAL"
	case StatusIrrelevant:
		return "IRRELEVANT"
	case StatusBanned:
		return "BANNED"
	case StatusRemoved:
		return "REMOVED"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// ParseStatus accepts the String form case-insensitively, plus ACTIVE as an
// alias for ACTUAL.
func ParseStatus(s string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ACTUAL", "ACTIVE":
		return StatusActual, nil
	case "IRRELEVANT":
		return StatusIrrelevant, nil
	case "BANNED":
		return StatusBanned, nil
	case "REMOVED":
		return StatusRemoved, nil
	default:
		return 0, fmt.Errorf("unknown document status %q", s)
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Meta is the per-document metadata kept beside the term maps.
type Meta struct {
	Rating int
	Status Status
}

// Policy selects sequential or parallel execution for operations that can
// fan out internally.
type Policy int

const (
	Sequential Policy = iota
	Parallel
)

func (p Policy) String() string {
	if p == Parallel {
		return "parallel"
	}
	return "sequential"
}

// ParsePolicy accepts the String form case-insensitively.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sequential":
		return Sequential, nil
	case "parallel":
		return Parallel, nil
	default:
		return 0, fmt.Errorf("unknown execution policy %q", s)
	}
}

func averageRating(ratings []int) int {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return sum / len(ratings)
}
