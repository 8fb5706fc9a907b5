package ranker

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRank(t *testing.T) {
	tests := []struct {
		name   string
		docs   []Document
		params Params
		want   []int
	}{
		{
			name: "relevance descending",
			docs: []Document{{ID: 1, Relevance: 0.1}, {ID: 2, Relevance: 0.5}, {ID: 3, Relevance: 0.3}},
			want: []int{2, 3, 1},
		},
		{
			name: "near tie broken by rating",
			docs: []Document{
				{ID: 1, Relevance: 0.5, Rating: 1},
				{ID: 2, Relevance: 0.5 + 1e-7, Rating: 9},
				{ID: 3, Relevance: 0.5 - 1e-7, Rating: 4},
			},
			want: []int{2, 3, 1},
		},
		{
			name: "full tie broken by id",
			docs: []Document{{ID: 7, Relevance: 1, Rating: 2}, {ID: 3, Relevance: 1, Rating: 2}},
			want: []int{3, 7},
		},
		{
			name: "outside epsilon ignores rating",
			docs: []Document{{ID: 1, Relevance: 0.5, Rating: 100}, {ID: 2, Relevance: 0.5001, Rating: 0}},
			want: []int{2, 1},
		},
		{
			name: "default truncation",
			docs: []Document{
				{ID: 0, Relevance: 0.6}, {ID: 1, Relevance: 0.5}, {ID: 2, Relevance: 0.4},
				{ID: 3, Relevance: 0.3}, {ID: 4, Relevance: 0.2}, {ID: 5, Relevance: 0.1},
			},
			want: []int{0, 1, 2, 3, 4},
		},
		{
			name:   "custom limit and epsilon",
			docs:   []Document{{ID: 1, Relevance: 0.5, Rating: 1}, {ID: 2, Relevance: 0.45, Rating: 5}, {ID: 3, Relevance: 0.1}},
			params: Params{Epsilon: 0.1, MaxResults: 2},
			want:   []int{2, 1},
		},
		{
			name: "empty",
			docs: nil,
			want: []int{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := make([]int, 0)
			for _, d := range Rank(tt.docs, tt.params) {
				got = append(got, d.ID)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
