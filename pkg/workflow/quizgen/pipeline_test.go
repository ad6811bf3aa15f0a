package quizgen

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-coursebuilder-be/pkg/llm"
	"ai-coursebuilder-be/pkg/workflow/state"
)

type scriptedLLM struct {
	replies []string
	calls   int
}

func (s *scriptedLLM) Generate(_ context.Context, _ string, _ ...llm.Option) (string, error) {
	if s.calls >= len(s.replies) {
		return "", errors.New("connection refused")
	}
	reply := s.replies[s.calls]
	s.calls++
	return reply, nil
}

func (s *scriptedLLM) Chat(ctx context.Context, _ []llm.Message, opts ...llm.Option) (string, error) {
	return s.Generate(ctx, "", opts...)
}

func structuredState() *state.ConstructorState {
	st := state.NewConstructorState("sess-1", "creator-1")
	st.Structure = &state.CourseStructure{
		Units: []state.Unit{{ID: "u1", Title: "Unit"}},
		Topics: []state.Topic{
			{ID: "t1", Title: "Goroutines", Description: strings.Repeat("d", 100), UnitID: "u1"},
		},
		Prerequisites: map[string][]string{},
	}
	return st
}

const questionsReply = "```json\n" + `[
  {"type": "multiple_choice", "difficulty": "easy",
   "question": "Which keyword starts a goroutine?",
   "options": ["go", "run", "start", "spawn"], "correct_answer": "go",
   "explanation": "The go keyword."},
  {"type": "true_false", "difficulty": "medium",
   "question": "Goroutines share one address space.",
   "correct_answer": "True"},
  {"type": "short_answer", "difficulty": "hard",
   "question": "Explain how goroutines differ from OS threads.",
   "sample_answer": "They are multiplexed onto a small number of OS threads."}
]` + "\n```"

func TestPipelineInvoke(t *testing.T) {
	provider := &scriptedLLM{replies: []string{
		questionsReply,
		"```json\n[\"Grade on scheduler accuracy.\"]\n```",
	}}

	p := NewPipeline(provider, nil, nil, 5)
	update, err := p.Invoke(context.Background(), structuredState())
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}

	if len(update.Questions) != 3 {
		t.Fatalf("questions = %d, want 3", len(update.Questions))
	}
	for _, q := range update.Questions {
		if q.TopicID != "t1" {
			t.Errorf("question %s topic = %q, want t1", q.ID, q.TopicID)
		}
	}

	// true_false answers are normalized to lowercase literals.
	for _, q := range update.Questions {
		if q.Type == state.QuestionTrueFalse && q.CorrectAnswer != "true" {
			t.Errorf("tf answer = %q", q.CorrectAnswer)
		}
		if q.Type == state.QuestionShortAnswer && q.Rubric == "" {
			t.Error("short answer question has no rubric")
		}
	}
	if len(update.Errors) != 0 {
		t.Errorf("errors = %v", update.Errors)
	}
}

func TestValidateRejectsBadQuestions(t *testing.T) {
	p := NewPipeline(&scriptedLLM{}, nil, nil, 5)
	topic := TopicPlan{TopicID: "t1", TopicTitle: "Goroutines"}
	update := &state.ConstructorUpdate{}

	raw := []rawQuestion{
		{Type: state.QuestionMultipleChoice, Question: "short", Options: []string{"a", "b"}, CorrectAnswer: "a"},
		{Type: state.QuestionMultipleChoice, Question: "Which one of these is correct?",
			Options: []string{"a", "b", "a"}, CorrectAnswer: "a"},
		{Type: state.QuestionTrueFalse, Question: "Is this statement accurate?", CorrectAnswer: "maybe"},
		{Type: state.QuestionShortAnswer, Question: "Explain the scheduler briefly.", SampleAnswer: "ok"},
		{Type: "essay", Question: "Write a long essay about Go."},
	}

	valid := p.validate(topic, raw, update)
	if len(valid) != 1 {
		t.Fatalf("valid = %d, want only the short-answer question", len(valid))
	}
	if valid[0].Type != state.QuestionShortAnswer {
		t.Errorf("kept question type = %s", valid[0].Type)
	}
	if len(update.Errors) != 4 {
		t.Errorf("errors = %d, want 4: %v", len(update.Errors), update.Errors)
	}
	if len(update.Warnings) != 1 {
		t.Errorf("warnings = %d, want trivial-sample warning", len(update.Warnings))
	}
}

func TestFinalizeDropsUnresolvedTopic(t *testing.T) {
	p := NewPipeline(&scriptedLLM{}, nil, nil, 5)
	st := structuredState()
	update := &state.ConstructorUpdate{}

	bank := []state.QuizQuestion{
		{ID: "q1", TopicID: "t1", TopicTitle: "Goroutines", Question: "kept"},
		{ID: "q2", TopicID: "", TopicTitle: "goroutines", Question: "resolved by title"},
		{ID: "q3", TopicID: "ghost", TopicTitle: "Unknown Topic", Question: "dropped"},
	}

	final := p.finalize(st, bank, update)
	if len(final) != 2 {
		t.Fatalf("final = %d, want 2", len(final))
	}
	for _, q := range final {
		if q.TopicID != "t1" {
			t.Errorf("question %s topic = %q, want hydrated t1", q.ID, q.TopicID)
		}
	}
	if len(update.Errors) != 1 {
		t.Errorf("errors = %d, want exactly one mapping error", len(update.Errors))
	}
}

func TestPipelineTopicFailureIsolated(t *testing.T) {
	// Two topics; generation for the first fails, the second succeeds.
	st := structuredState()
	st.Structure.Topics = append(st.Structure.Topics,
		state.Topic{ID: "t2", Title: "Channels", Description: strings.Repeat("d", 100), UnitID: "u1"})

	provider := &scriptedLLM{replies: []string{
		"not json", "still not json", // topic 1: both attempts fail
		questionsReply,               // topic 2
		"```json\n[\"rubric\"]\n```", // topic 2 rubric
	}}

	p := NewPipeline(provider, nil, nil, 5)
	update, err := p.Invoke(context.Background(), st)
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if len(update.Errors) == 0 {
		t.Error("first topic failure not recorded")
	}
	if len(update.Questions) == 0 {
		t.Error("second topic should still produce questions")
	}
}

func TestGenerationCompleteFlag(t *testing.T) {
	gen := &generation{plan: BuildPlan([]state.Topic{
		{ID: "t1", Title: "A", Description: strings.Repeat("x", 60)},
		{ID: "t2", Title: "B", Description: strings.Repeat("x", 60)},
	}, 4)}

	if gen.complete {
		t.Fatal("complete before any topic processed")
	}
	if _, ok := gen.current(); !ok {
		t.Fatal("no current topic at start")
	}
	gen.advance()
	if gen.complete {
		t.Fatal("complete after first of two topics")
	}
	gen.advance()
	if !gen.complete {
		t.Fatal("not complete after last topic")
	}
	if _, ok := gen.current(); ok {
		t.Error("current() must refuse once complete")
	}
}
