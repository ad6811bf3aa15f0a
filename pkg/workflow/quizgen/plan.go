package quizgen

import (
	"sort"

	"ai-coursebuilder-be/pkg/workflow/state"
)

// Type and difficulty weights for question distribution.
var typeWeights = []weighted{
	{state.QuestionMultipleChoice, 0.60},
	{state.QuestionTrueFalse, 0.25},
	{state.QuestionShortAnswer, 0.15},
}

var difficultyWeights = []weighted{
	{state.DifficultyEasy, 0.30},
	{state.DifficultyMedium, 0.50},
	{state.DifficultyHard, 0.20},
}

type weighted struct {
	key    string
	weight float64
}

// TopicPlan is the per-topic question budget.
type TopicPlan struct {
	TopicID      string         `json:"topic_id"`
	TopicTitle   string         `json:"topic_title"`
	Total        int            `json:"total"`
	ByType       map[string]int `json:"by_type"`
	ByDifficulty map[string]int `json:"by_difficulty"`
}

// Plan is the full generation schedule, one entry per topic.
type Plan struct {
	Topics []TopicPlan `json:"topics"`
}

// BuildPlan computes each topic's target question count from the base
// count adjusted by description length: rich descriptions (>200 chars)
// get two extra questions, thin ones (<50 chars) drop to max(3, base-2).
func BuildPlan(topics []state.Topic, baseCount int) Plan {
	if baseCount < 1 {
		baseCount = 1
	}
	plan := Plan{}
	for _, t := range topics {
		total := baseCount
		switch {
		case len(t.Description) > 200:
			total = baseCount + 2
		case len(t.Description) < 50:
			total = baseCount - 2
			if total < 3 {
				total = 3
			}
		}
		plan.Topics = append(plan.Topics, TopicPlan{
			TopicID:      t.ID,
			TopicTitle:   t.Title,
			Total:        total,
			ByType:       splitBuckets(total, typeWeights),
			ByDifficulty: splitBuckets(total, difficultyWeights),
		})
	}
	return plan
}

// splitBuckets distributes total across weighted buckets using largest
// remainder rounding. Buckets always sum exactly to total, and when
// total allows it every weighted bucket gets at least one.
func splitBuckets(total int, weights []weighted) map[string]int {
	counts := make(map[string]int, len(weights))
	if total <= 0 {
		for _, w := range weights {
			counts[w.key] = 0
		}
		return counts
	}

	type alloc struct {
		key       string
		count     int
		remainder float64
	}
	allocs := make([]alloc, len(weights))
	assigned := 0
	for i, w := range weights {
		raw := w.weight * float64(total)
		whole := int(raw)
		allocs[i] = alloc{key: w.key, count: whole, remainder: raw - float64(whole)}
		assigned += whole
	}

	// Hand out the remainder to the largest fractional parts. Ties
	// resolve in declared weight order for determinism.
	sort.SliceStable(allocs, func(i, j int) bool {
		return allocs[i].remainder > allocs[j].remainder
	})
	for i := 0; assigned < total; i++ {
		allocs[i%len(allocs)].count++
		assigned++
	}

	for _, a := range allocs {
		counts[a.key] = a.count
	}

	// Floor of one per bucket when the total covers all buckets.
	if total >= len(weights) {
		for _, w := range weights {
			for counts[w.key] == 0 {
				biggest := ""
				for _, other := range weights {
					if biggest == "" || counts[other.key] > counts[biggest] {
						biggest = other.key
					}
				}
				counts[biggest]--
				counts[w.key]++
			}
		}
	}
	return counts
}
