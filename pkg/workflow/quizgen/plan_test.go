package quizgen

import (
	"strings"
	"testing"

	"ai-coursebuilder-be/pkg/workflow/state"
)

func TestSplitBucketsSumsExactly(t *testing.T) {
	for total := 1; total <= 30; total++ {
		byType := splitBuckets(total, typeWeights)
		sum := 0
		for _, c := range byType {
			if c < 0 {
				t.Fatalf("total %d: negative bucket %v", total, byType)
			}
			sum += c
		}
		if sum != total {
			t.Errorf("total %d: type buckets sum to %d (%v)", total, sum, byType)
		}

		if total >= len(typeWeights) {
			for key, c := range byType {
				if c == 0 {
					t.Errorf("total %d: bucket %s is empty (%v)", total, key, byType)
				}
			}
		}
	}
}

func TestSplitBucketsDifficulty(t *testing.T) {
	counts := splitBuckets(10, difficultyWeights)
	if counts[state.DifficultyEasy] != 3 || counts[state.DifficultyMedium] != 5 || counts[state.DifficultyHard] != 2 {
		t.Errorf("counts = %v, want 3/5/2", counts)
	}
}

func TestBuildPlanDescriptionAdjustment(t *testing.T) {
	tests := []struct {
		name      string
		desc      string
		base      int
		wantTotal int
	}{
		{"normal description", strings.Repeat("x", 100), 5, 5},
		{"rich description", strings.Repeat("x", 250), 5, 7},
		{"thin description", "short", 5, 3},
		{"thin description high base", "short", 8, 6},
		{"thin description keeps floor", "short", 4, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := BuildPlan([]state.Topic{{ID: "t1", Title: "T", Description: tt.desc}}, tt.base)
			if got := plan.Topics[0].Total; got != tt.wantTotal {
				t.Errorf("total = %d, want %d", got, tt.wantTotal)
			}

			sum := 0
			for _, c := range plan.Topics[0].ByType {
				sum += c
			}
			if sum != tt.wantTotal {
				t.Errorf("type buckets sum = %d, want %d", sum, tt.wantTotal)
			}
		})
	}
}
