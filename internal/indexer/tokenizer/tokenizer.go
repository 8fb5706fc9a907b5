// Package tokenizer splits document and query text into words and checks
// word validity. Words are separated by the space character only; any other
// byte, including tabs and newlines, stays part of the word so that the
// control-character check can reject it.
package tokenizer

import (
	"sort"
	"strings"
)

// SplitIntoWords returns the space-delimited words of text in order. Runs of
// spaces produce no empty words.
func SplitIntoWords(text string) []string {
	words := make([]string, 0, strings.Count(text, " ")+1)
	for {
		text = strings.TrimLeft(text, " ")
		if text == "" {
			return words
		}
		end := strings.IndexByte(text, ' ')
		if end < 0 {
			return append(words, text)
		}
		words = append(words, text[:end])
		text = text[end:]
	}
}

// IsValidWord reports whether word contains no control characters (bytes
// below the space character).
func IsValidWord(word string) bool {
	for i := 0; i < len(word); i++ {
		if word[i] < ' ' {
			return false
		}
	}
	return true
}

// UniqueNonEmpty returns the distinct non-empty strings of words, sorted.
func UniqueNonEmpty(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	result := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		result = append(result, w)
	}
	sort.Strings(result)
	return result
}
