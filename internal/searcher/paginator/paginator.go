// Package paginator splits result lists into fixed-size pages for display.
package paginator

// Page is one contiguous slice of a result list. Number starts at 1.
type Page[T any] struct {
	Number int `json:"number"`
	Items  []T `json:"items"`
	Total  int `json:"total"`
}

// Paginate splits items into pages of size elements; the last page may be
// shorter. A size below 1 is treated as 1. Pages share items' backing array.
func Paginate[T any](items []T, size int) []Page[T] {
	if size < 1 {
		size = 1
	}
	total := (len(items) + size - 1) / size
	pages := make([]Page[T], 0, total)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		pages = append(pages, Page[T]{
			Number: len(pages) + 1,
			Items:  items[start:end:end],
			Total:  total,
		})
	}
	return pages
}

// PageOf returns page number n (1-based), clamped to the valid range. It is
// empty when items is empty.
func PageOf[T any](items []T, n, size int) Page[T] {
	pages := Paginate(items, size)
	if len(pages) == 0 {
		return Page[T]{Number: 1, Items: []T{}}
	}
	n = max(1, min(n, len(pages)))
	return pages[n-1]
}
