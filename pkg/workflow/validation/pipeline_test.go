package validation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-coursebuilder-be/pkg/llm"
	"ai-coursebuilder-be/pkg/workflow/state"
)

type failingLLM struct{}

func (failingLLM) Generate(context.Context, string, ...llm.Option) (string, error) {
	return "", errors.New("connection refused")
}

func (failingLLM) Chat(context.Context, []llm.Message, ...llm.Option) (string, error) {
	return "", errors.New("connection refused")
}

type scriptedLLM struct {
	replies []string
	calls   int
}

func (s *scriptedLLM) Generate(context.Context, string, ...llm.Option) (string, error) {
	if s.calls >= len(s.replies) {
		return "", errors.New("connection refused")
	}
	reply := s.replies[s.calls]
	s.calls++
	return reply, nil
}

func (s *scriptedLLM) Chat(context.Context, []llm.Message, ...llm.Option) (string, error) {
	return "", errors.New("unused")
}

func readyState() *state.ConstructorState {
	st := state.NewConstructorState("sess-1", "creator-1")
	st.Info = state.CourseInfo{Title: "Go Basics", Description: "Learn Go", Difficulty: "beginner"}
	st.Chunks = []state.ContentChunk{
		{ID: "c1", Text: "Goroutines are lightweight threads managed by the runtime.", SourceFile: "f1"},
		{ID: "c2", Text: "Channels let goroutines communicate safely.", SourceFile: "f1"},
	}
	st.Structure = &state.CourseStructure{
		Units: []state.Unit{{ID: "u1", Title: "Concurrency"}},
		Topics: []state.Topic{
			{ID: "t1", Title: "Goroutines", Description: "Lightweight concurrency primitives in Go.", UnitID: "u1"},
			{ID: "t2", Title: "Channels", Description: "Typed conduits connecting goroutines together.", UnitID: "u1"},
		},
		Prerequisites: map[string][]string{"Channels": {"Goroutines"}},
	}
	for _, topicID := range []string{"t1", "t2"} {
		for i := 0; i < 3; i++ {
			st.Questions = append(st.Questions, state.QuizQuestion{
				ID: topicID + "-q" + string(rune('a'+i)), TopicID: topicID,
			})
		}
	}
	return st
}

func TestInvokeFallbacksPassCleanCourse(t *testing.T) {
	// Every reasoning call fails; deterministic fallbacks must still
	// validate and pass a clean course.
	p := NewPipeline(failingLLM{}, nil, nil, 0.8)

	update, err := p.Invoke(context.Background(), readyState())
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	result := update.Validation
	if result == nil {
		t.Fatal("no validation result")
	}
	if !result.Passed {
		t.Errorf("clean course failed: score %.2f, errors %v, warnings %v",
			result.ReadinessScore, result.Errors, result.Warnings)
	}
	if result.ReadinessScore < 0.8 {
		t.Errorf("score = %.2f, want >= 0.8", result.ReadinessScore)
	}
	if len(result.Dimensions) != 3 {
		t.Errorf("dimensions = %d, want 3", len(result.Dimensions))
	}
}

func TestInvokeErrorsBlockPassing(t *testing.T) {
	st := readyState()
	// Remove the quiz entirely: the quiz fallback reports per-topic errors.
	st.Questions = nil

	p := NewPipeline(failingLLM{}, nil, nil, 0.8)
	update, err := p.Invoke(context.Background(), st)
	if err != nil {
		t.Fatal(err)
	}
	result := update.Validation
	if result.Passed {
		t.Error("course with missing quizzes must not pass")
	}
	if result.Dimensions["quiz"].Status != "fail" {
		t.Errorf("quiz status = %s, want fail", result.Dimensions["quiz"].Status)
	}
}

func TestReadinessScoreBounds(t *testing.T) {
	st := readyState()
	st.Chunks = nil // content fallback flags every topic
	st.Questions = nil
	st.Structure.Prerequisites = map[string][]string{
		"Goroutines": {"Channels"},
		"Channels":   {"Goroutines"},
	}

	p := NewPipeline(failingLLM{}, nil, nil, 0.8)
	update, err := p.Invoke(context.Background(), st)
	if err != nil {
		t.Fatal(err)
	}
	score := update.Validation.ReadinessScore
	if score < 0 || score > 1 {
		t.Errorf("score = %v, out of [0,1]", score)
	}
	if update.Validation.Passed {
		t.Error("broken course must not pass")
	}
}

func TestStageUsesLLMWhenParsable(t *testing.T) {
	provider := &scriptedLLM{replies: []string{
		`{"errors": [], "warnings": ["content: cited example is outdated"]}`,
	}}
	p := NewPipeline(provider, nil, nil, 0.8)

	issues := p.stage(context.Background(), readyState(), "content", contentFallback)
	if len(issues.Warnings) != 1 || !strings.Contains(issues.Warnings[0], "outdated") {
		t.Errorf("issues = %+v, want the LLM-provided warning", issues)
	}
}

func TestQuizFallbackCounts(t *testing.T) {
	st := readyState()
	st.Questions = st.Questions[:4] // t1 keeps 3, t2 only 1

	issues := quizFallback(st)
	if len(issues.Errors) != 0 {
		t.Errorf("errors = %v", issues.Errors)
	}
	if len(issues.Warnings) != 1 {
		t.Errorf("warnings = %v, want one for t2", issues.Warnings)
	}
}

func TestContentFallbackFlagsUncovered(t *testing.T) {
	st := readyState()
	st.Structure.Topics = append(st.Structure.Topics,
		state.Topic{ID: "t3", Title: "Reflection", Description: "Runtime type inspection in detail."})

	issues := contentFallback(st)
	if len(issues.Errors) != 1 || !strings.Contains(issues.Errors[0], "Reflection") {
		t.Errorf("errors = %v, want uncovered Reflection", issues.Errors)
	}
}
