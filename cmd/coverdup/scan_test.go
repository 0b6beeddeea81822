package main

import (
	"reflect"
	"testing"
	"time"

	"cover-dedup/internal/dedupe"
)

func TestGroupReasons(t *testing.T) {
	tests := []struct {
		name   string
		result dedupe.Result
		want   []string
	}{
		{
			name: "exact only",
			result: dedupe.Result{
				Groups: [][]string{{"arc-a", "arc-b"}},
				Pairs:  []dedupe.Pair{{A: "arc-a", B: "arc-b", Reason: dedupe.ReasonExactCover}},
			},
			want: []string{"exact-cover"},
		},
		{
			name: "similar only",
			result: dedupe.Result{
				Groups: [][]string{{"arc-a", "arc-b"}},
				Pairs:  []dedupe.Pair{{A: "arc-a", B: "arc-b", Reason: dedupe.ReasonSimilarCover}},
			},
			want: []string{"similar-cover"},
		},
		{
			name: "both edge kinds in one group",
			result: dedupe.Result{
				Groups: [][]string{{"arc-a", "arc-b", "arc-c"}},
				Pairs: []dedupe.Pair{
					{A: "arc-a", B: "arc-b", Reason: dedupe.ReasonExactCover},
					{A: "arc-b", B: "arc-c", Reason: dedupe.ReasonSimilarCover},
				},
			},
			want: []string{"exact+similar"},
		},
		{
			name: "labels follow group order",
			result: dedupe.Result{
				Groups: [][]string{{"arc-a", "arc-b"}, {"arc-x", "arc-y"}},
				Pairs: []dedupe.Pair{
					{A: "arc-x", B: "arc-y", Reason: dedupe.ReasonSimilarCover},
					{A: "arc-a", B: "arc-b", Reason: dedupe.ReasonExactCover},
				},
			},
			want: []string{"exact-cover", "similar-cover"},
		},
		{
			name: "pair outside any group is ignored",
			result: dedupe.Result{
				Groups: [][]string{{"arc-a", "arc-b"}},
				Pairs: []dedupe.Pair{
					{A: "arc-a", B: "arc-b", Reason: dedupe.ReasonExactCover},
					{A: "arc-m", B: "arc-n", Reason: dedupe.ReasonSimilarCover},
				},
			},
			want: []string{"exact-cover"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := groupReasons(tt.result); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("groupReasons() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrintScanResultDoesNotPanic(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("printScanResult panicked: %v", r)
		}
	}()

	printScanResult(dedupe.Result{
		Groups: [][]string{},
		Pairs:  []dedupe.Pair{},
		Stats:  dedupe.Stats{Archives: 10},
	}, time.Millisecond)

	printScanResult(dedupe.Result{
		Groups: [][]string{{"arc-a", "arc-b"}},
		Pairs:  []dedupe.Pair{{A: "arc-a", B: "arc-b", Reason: dedupe.ReasonExactCover}},
		Stats:  dedupe.Stats{Archives: 10, ExactGroups: 1, SkippedBuckets: 2},
	}, time.Millisecond)
}
