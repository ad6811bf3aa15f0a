package tutor

import (
	"context"
	"fmt"
	"strings"

	"ai-coursebuilder-be/pkg/llm"
	"ai-coursebuilder-be/pkg/workflow"
	"ai-coursebuilder-be/pkg/workflow/state"
)

// Route is one intake decision: the mode to execute this turn and why.
type Route struct {
	Mode      state.TutorMode
	Rationale string
}

// keywordRoutes are checked before any model call. First match wins.
var keywordRoutes = []struct {
	words []string
	mode  state.TutorMode
	why   string
}{
	{[]string{"bye", "goodbye", "done", "finish", "that's all", "end session"}, state.ModeSummarize, "learner asked to wrap up"},
	{[]string{"quiz", "test me", "practice question"}, state.ModeQuiz, "learner asked for a quiz"},
	{[]string{"review"}, state.ModeQuiz, "learner asked for review practice"},
	{[]string{"gap", "weak", "improve", "where am i"}, state.ModeGapAnalysis, "learner asked about weak areas"},
	{[]string{"help", "stuck", "confused", "don't understand", "explain"}, state.ModeExplainer, "learner asked for an explanation"},
}

const routePrompt = `You are routing a tutoring session turn.

Learner message: %s
Current topic: %s
Weak topics: %s
Topics due for review: %s

Pick ONE mode from: explainer, gap_analysis, quiz, summarize.
Respond with a single JSON object:
{"mode": "<mode>", "rationale": "<one short sentence>"}`

var llmRoutable = map[state.TutorMode]bool{
	state.ModeExplainer:   true,
	state.ModeGapAnalysis: true,
	state.ModeQuiz:        true,
	state.ModeSummarize:   true,
}

func routeFill(st *state.TutorState, message string) string {
	return fmt.Sprintf(routePrompt,
		message,
		orNone(st.CurrentTopic),
		orNone(strings.Join(st.WeakTopics, ", ")),
		orNone(strings.Join(st.DueForReview, ", ")),
	)
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "none"
	}
	return s
}

// route picks the mode for this turn. An active quiz always grades
// first; explicit keywords beat the model; the model's pick must come
// from the allowed set; otherwise the state decides.
func (c *Coordinator) route(ctx context.Context, st *state.TutorState, message string) Route {
	if q := st.Quiz; q != nil && !q.Completed {
		if _, ok := q.Current(); ok {
			return Route{state.ModeGradeQuiz, "an answer to the active quiz is expected"}
		}
	}

	lower := strings.ToLower(message)
	for _, kr := range keywordRoutes {
		for _, w := range kr.words {
			if strings.Contains(lower, w) {
				return Route{kr.mode, kr.why}
			}
		}
	}

	if c.provider != nil && strings.TrimSpace(message) != "" {
		var picked struct {
			Mode      string `json:"mode"`
			Rationale string `json:"rationale"`
		}
		prompt := routeFill(st, message)
		if err := workflow.CallJSON(ctx, c.provider, prompt, &picked, llm.WithTemperature(0.2)); err == nil {
			mode := state.TutorMode(strings.ToLower(strings.TrimSpace(picked.Mode)))
			if llmRoutable[mode] {
				why := picked.Rationale
				if why == "" {
					why = "model-selected mode"
				}
				return Route{mode, why}
			}
		}
	}

	return defaultRoute(st)
}

// defaultRoute is the deterministic fallback ladder: close gaps, then
// review what is due, then surface weaknesses, then keep teaching.
func defaultRoute(st *state.TutorState) Route {
	if len(st.Gaps) > 0 {
		return Route{state.ModeExplainer, "open knowledge gaps to address"}
	}
	if len(st.DueForReview) > 0 {
		return Route{state.ModeQuiz, "topics are due for spaced review"}
	}
	if len(WeakTopics(st.Mastery)) > 0 {
		return Route{state.ModeGapAnalysis, "weak topics need a closer look"}
	}
	return Route{state.ModeExplainer, "continue teaching the course"}
}
