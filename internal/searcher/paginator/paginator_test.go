package paginator

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPaginate(t *testing.T) {
	tests := []struct {
		name  string
		items []int
		size  int
		want  [][]int
	}{
		{"empty", nil, 2, [][]int{}},
		{"exact", []int{1, 2, 3, 4}, 2, [][]int{{1, 2}, {3, 4}}},
		{"remainder", []int{1, 2, 3, 4, 5}, 2, [][]int{{1, 2}, {3, 4}, {5}}},
		{"larger than list", []int{1, 2}, 10, [][]int{{1, 2}}},
		{"zero size", []int{1, 2}, 0, [][]int{{1}, {2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages := Paginate(tt.items, tt.size)
			got := make([][]int, 0, len(pages))
			for i, p := range pages {
				if p.Number != i+1 {
					t.Errorf("page %d has Number %d", i, p.Number)
				}
				if p.Total != len(tt.want) {
					t.Errorf("page %d has Total %d, want %d", i, p.Total, len(tt.want))
				}
				got = append(got, p.Items)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("pages mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPageAppendDoesNotClobber(t *testing.T) {
	items := []int{1, 2, 3, 4}
	pages := Paginate(items, 2)
	_ = append(pages[0].Items, 99)
	if items[2] != 3 {
		t.Errorf("append through page 1 overwrote page 2: %v", items)
	}
}

func TestPageOf(t *testing.T) {
	items := []string{"a", "b", "c"}
	tests := []struct {
		n    int
		want []string
	}{
		{0, []string{"a", "b"}},
		{1, []string{"a", "b"}},
		{2, []string{"c"}},
		{9, []string{"c"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, PageOf(items, tt.n, 2).Items); diff != "" {
			t.Errorf("PageOf(%d) mismatch (-want +got):\n%s", tt.n, diff)
		}
	}
	if got := PageOf([]string{}, 1, 2); len(got.Items) != 0 || got.Total != 0 {
		t.Errorf("PageOf(empty) = %+v", got)
	}
}
