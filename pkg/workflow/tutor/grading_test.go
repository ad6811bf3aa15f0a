package tutor

import (
	"context"
	"errors"
	"testing"

	"ai-coursebuilder-be/pkg/llm"
	"ai-coursebuilder-be/pkg/workflow/state"
)

type scriptedProvider struct {
	reply string
	err   error
	calls int
}

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	p.calls++
	return p.reply, p.err
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	p.calls++
	return p.reply, p.err
}

func TestGradeMultipleChoice(t *testing.T) {
	q := &state.QuizQuestion{
		Type:          state.QuestionMultipleChoice,
		Question:      "Which keyword declares a variable?",
		Options:       []string{"func", "var", "type", "const"},
		CorrectAnswer: "var",
	}
	provider := &scriptedProvider{err: errors.New("must not be called")}

	tests := []struct {
		answer string
		want   bool
	}{
		{"var", true},
		{"VAR", true},
		{" var ", true},
		{"B", true}, // option letter
		{"2", true}, // option index
		{"func", false},
		{"", false},
	}
	for _, tc := range tests {
		g := GradeAnswer(context.Background(), provider, q, tc.answer)
		if g.Correct != tc.want {
			t.Errorf("answer %q: correct = %v, want %v", tc.answer, g.Correct, tc.want)
		}
	}
	if provider.calls != 0 {
		t.Error("multiple-choice grading must never call the model")
	}
}

func TestGradeTrueFalse(t *testing.T) {
	q := &state.QuizQuestion{
		Type:          state.QuestionTrueFalse,
		Question:      "Slices share backing arrays.",
		CorrectAnswer: "true",
	}
	provider := &scriptedProvider{err: errors.New("must not be called")}

	tests := []struct {
		answer string
		want   bool
	}{
		{"true", true},
		{"True", true},
		{"T", true},
		{"yes", true},
		{"false", false},
		{"no", false},
	}
	for _, tc := range tests {
		g := GradeAnswer(context.Background(), provider, q, tc.answer)
		if g.Correct != tc.want {
			t.Errorf("answer %q: correct = %v, want %v", tc.answer, g.Correct, tc.want)
		}
	}
	if provider.calls != 0 {
		t.Error("true/false grading must never call the model")
	}
}

func TestGradeShortAnswerUsesRubric(t *testing.T) {
	q := &state.QuizQuestion{
		Type:         state.QuestionShortAnswer,
		Question:     "What does a goroutine do?",
		SampleAnswer: "A goroutine runs a function concurrently with other goroutines.",
		Rubric:       "Award full credit when the answer mentions concurrent execution.",
	}
	provider := &scriptedProvider{reply: `{"score": 0.8, "feedback": "Good answer."}`}

	g := GradeAnswer(context.Background(), provider, q, "It runs code at the same time as other code.")
	if !g.Correct || g.Score != 0.8 {
		t.Errorf("grade = %+v, want correct with score 0.8", g)
	}
	if g.Feedback != "Good answer." {
		t.Errorf("feedback = %q", g.Feedback)
	}
}

func TestGradeShortAnswerFallsBackToOverlap(t *testing.T) {
	q := &state.QuizQuestion{
		Type:         state.QuestionShortAnswer,
		Question:     "What does a goroutine do?",
		SampleAnswer: "goroutine runs function concurrently scheduler",
	}
	provider := &scriptedProvider{err: errors.New("connection refused")}

	g := GradeAnswer(context.Background(), provider, q, "A goroutine runs a function concurrently using the scheduler.")
	if !g.Correct {
		t.Errorf("high-overlap answer should pass the fallback, got %+v", g)
	}

	g = GradeAnswer(context.Background(), provider, q, "I have no idea.")
	if g.Correct || g.Score != 0 {
		t.Errorf("zero-overlap answer should fail the fallback, got %+v", g)
	}
}

func TestGradeShortAnswerEmpty(t *testing.T) {
	q := &state.QuizQuestion{Type: state.QuestionShortAnswer, SampleAnswer: "anything"}
	g := GradeAnswer(context.Background(), nil, q, "   ")
	if g.Correct || g.Score != 0 {
		t.Errorf("empty answer must score zero, got %+v", g)
	}
}

func TestGradeClampsRubricScore(t *testing.T) {
	q := &state.QuizQuestion{Type: state.QuestionShortAnswer, SampleAnswer: "sample", Rubric: "rubric"}
	provider := &scriptedProvider{reply: `{"score": 1.7, "feedback": "Over-enthusiastic."}`}
	g := GradeAnswer(context.Background(), provider, q, "an answer")
	if g.Score != 1 {
		t.Errorf("score = %v, want clamped to 1", g.Score)
	}
}
