package tutor

import (
	"context"
	"errors"
	"testing"

	"ai-coursebuilder-be/pkg/workflow/state"
)

func TestRouteActiveQuizAlwaysGrades(t *testing.T) {
	c := NewCoordinator(&scriptedProvider{reply: `{"mode": "summarize"}`}, Deps{})
	st := state.NewTutorState("s1", "u1", "c1")
	st.Quiz = &state.ActiveQuiz{Questions: []state.QuizQuestion{{ID: "q1"}}}

	r := c.route(context.Background(), st, "quiz me please")
	if r.Mode != state.ModeGradeQuiz {
		t.Errorf("mode = %s, want %s while a question is open", r.Mode, state.ModeGradeQuiz)
	}
}

func TestRouteKeywordsBeatModel(t *testing.T) {
	provider := &scriptedProvider{reply: `{"mode": "explainer"}`}
	c := NewCoordinator(provider, Deps{})
	st := state.NewTutorState("s1", "u1", "c1")
	st.Mode = state.ModeIntake

	tests := []struct {
		message string
		want    state.TutorMode
	}{
		{"give me a quiz on slices", state.ModeQuiz},
		{"I want to review yesterday's topics", state.ModeQuiz},
		{"where are my gaps?", state.ModeGapAnalysis},
		{"I'm stuck on channels", state.ModeExplainer},
		{"ok bye for now", state.ModeSummarize},
		{"I'm done for today", state.ModeSummarize},
	}
	for _, tc := range tests {
		provider.calls = 0
		r := c.route(context.Background(), st, tc.message)
		if r.Mode != tc.want {
			t.Errorf("message %q: mode = %s, want %s", tc.message, r.Mode, tc.want)
		}
		if provider.calls != 0 {
			t.Errorf("message %q: keyword routing must not call the model", tc.message)
		}
	}
}

func TestRouteModelPickValidated(t *testing.T) {
	c := NewCoordinator(&scriptedProvider{reply: `{"mode": "gap_analysis", "rationale": "scores slipping"}`}, Deps{})
	st := state.NewTutorState("s1", "u1", "c1")

	r := c.route(context.Background(), st, "what should we do next?")
	if r.Mode != state.ModeGapAnalysis {
		t.Errorf("mode = %s, want the model's pick", r.Mode)
	}

	// An out-of-vocabulary pick falls through to the state default.
	c = NewCoordinator(&scriptedProvider{reply: `{"mode": "grade_quiz"}`}, Deps{})
	r = c.route(context.Background(), st, "what should we do next?")
	if r.Mode != state.ModeExplainer {
		t.Errorf("mode = %s, want the deterministic default", r.Mode)
	}
}

func TestRouteDefaultLadder(t *testing.T) {
	c := NewCoordinator(&scriptedProvider{err: errors.New("connection refused")}, Deps{})

	st := state.NewTutorState("s1", "u1", "c1")
	st.Gaps = []string{"pointers"}
	if r := c.route(context.Background(), st, "mm"); r.Mode != state.ModeExplainer {
		t.Errorf("with gaps: mode = %s, want explainer", r.Mode)
	}

	st = state.NewTutorState("s1", "u1", "c1")
	st.DueForReview = []string{"slices"}
	if r := c.route(context.Background(), st, "mm"); r.Mode != state.ModeQuiz {
		t.Errorf("with due reviews: mode = %s, want quiz", r.Mode)
	}

	st = state.NewTutorState("s1", "u1", "c1")
	st.Mastery = map[string]state.MasteryRecord{"maps": {Score: 0.2, Attempts: 3}}
	if r := c.route(context.Background(), st, "mm"); r.Mode != state.ModeGapAnalysis {
		t.Errorf("with weak topics: mode = %s, want gap_analysis", r.Mode)
	}

	st = state.NewTutorState("s1", "u1", "c1")
	if r := c.route(context.Background(), st, "mm"); r.Mode != state.ModeExplainer {
		t.Errorf("fresh session: mode = %s, want explainer", r.Mode)
	}
}
