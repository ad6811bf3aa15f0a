package validation

import (
	"fmt"
	"strings"

	"ai-coursebuilder-be/pkg/workflow/state"
	"ai-coursebuilder-be/pkg/workflow/structure"
)

// stageIssues is the output contract shared by the reasoning calls and
// the deterministic fallbacks.
type stageIssues struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// contentFallback flags topics with no matching content chunk and
// topics with a description under 20 characters.
func contentFallback(st *state.ConstructorState) stageIssues {
	var issues stageIssues
	for _, topic := range st.Structure.Topics {
		if !topicCovered(topic, st.Chunks) {
			issues.Errors = append(issues.Errors,
				fmt.Sprintf("content: no source material matches topic %q", topic.Title))
		}
		if len(strings.TrimSpace(topic.Description)) < 20 {
			issues.Warnings = append(issues.Warnings,
				fmt.Sprintf("content: topic %q has a very short description", topic.Title))
		}
	}
	return issues
}

func topicCovered(topic state.Topic, chunks []state.ContentChunk) bool {
	needles := append([]string{topic.Title}, topic.Concepts...)
	for _, chunk := range chunks {
		text := strings.ToLower(chunk.Text)
		for _, needle := range needles {
			needle = strings.ToLower(strings.TrimSpace(needle))
			if needle != "" && strings.Contains(text, needle) {
				return true
			}
		}
	}
	return false
}

// structureFallback re-runs the cycle detector and checks reachability
// from the first topic over the prerequisite graph.
func structureFallback(st *state.ConstructorState) stageIssues {
	var issues stageIssues
	titles := make([]string, len(st.Structure.Topics))
	for i, t := range st.Structure.Topics {
		titles[i] = t.Title
	}

	for _, cycle := range structure.DetectCycles(st.Structure.Prerequisites, titles) {
		issues.Errors = append(issues.Errors,
			"structure: prerequisite cycle: "+strings.Join(cycle, " -> "))
	}

	if len(titles) > 0 {
		reached := structure.ReachableFrom(titles[0], st.Structure.Prerequisites, titles)
		for _, title := range titles[1:] {
			if !reached[title] {
				issues.Warnings = append(issues.Warnings,
					fmt.Sprintf("structure: topic %q is not reachable from %q", title, titles[0]))
			}
		}
	}
	return issues
}

// quizFallback counts questions per topic: none is an error, fewer
// than three a warning.
func quizFallback(st *state.ConstructorState) stageIssues {
	var issues stageIssues
	counts := make(map[string]int)
	for _, q := range st.Questions {
		counts[q.TopicID]++
	}
	for _, topic := range st.Structure.Topics {
		switch n := counts[topic.ID]; {
		case n == 0:
			issues.Errors = append(issues.Errors,
				fmt.Sprintf("quiz: topic %q has no questions", topic.Title))
		case n < 3:
			issues.Warnings = append(issues.Warnings,
				fmt.Sprintf("quiz: topic %q has only %d questions", topic.Title, n))
		}
	}
	return issues
}
