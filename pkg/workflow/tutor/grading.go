package tutor

import (
	"context"
	"fmt"
	"strings"

	"ai-coursebuilder-be/pkg/llm"
	"ai-coursebuilder-be/pkg/workflow"
	"ai-coursebuilder-be/pkg/workflow/state"
)

// Grade is one graded answer. Score is in [0,1]; Correct means the
// answer counts toward the streak.
type Grade struct {
	Correct  bool
	Score    float64
	Feedback string
}

const rubricGradePrompt = `You are grading a short-answer question.

Question: %s
Rubric: %s
Reference answer: %s
Student answer: %s

Respond with a single JSON object:
{"score": <number 0.0-1.0>, "feedback": "<one or two sentences for the student>"}`

// GradeAnswer grades one answer. Multiple-choice and true/false are
// exact matches against the stored answer and never call the model.
// Short answers go through the rubric with a keyword-overlap fallback.
func GradeAnswer(ctx context.Context, provider llm.LLMProvider, q *state.QuizQuestion, answer string) Grade {
	switch q.Type {
	case state.QuestionMultipleChoice:
		return gradeExact(q, answer)
	case state.QuestionTrueFalse:
		return gradeTrueFalse(q, answer)
	case state.QuestionShortAnswer:
		return gradeShortAnswer(ctx, provider, q, answer)
	default:
		return Grade{Feedback: "This question could not be graded."}
	}
}

func gradeExact(q *state.QuizQuestion, answer string) Grade {
	given := strings.TrimSpace(answer)
	if strings.EqualFold(given, strings.TrimSpace(q.CorrectAnswer)) {
		return Grade{Correct: true, Score: 1, Feedback: "Correct."}
	}
	// Accept the option's letter or index when options are present.
	for i, opt := range q.Options {
		if !strings.EqualFold(strings.TrimSpace(opt), strings.TrimSpace(q.CorrectAnswer)) {
			continue
		}
		letter := string(rune('A' + i))
		if strings.EqualFold(given, letter) || given == fmt.Sprintf("%d", i+1) {
			return Grade{Correct: true, Score: 1, Feedback: "Correct."}
		}
	}
	return Grade{Feedback: fmt.Sprintf("Not quite. The correct answer is: %s", q.CorrectAnswer)}
}

func gradeTrueFalse(q *state.QuizQuestion, answer string) Grade {
	normalize := func(s string) string {
		s = strings.ToLower(strings.TrimSpace(s))
		switch s {
		case "t", "yes", "y":
			return "true"
		case "f", "no", "n":
			return "false"
		}
		return s
	}
	if normalize(answer) == normalize(q.CorrectAnswer) {
		return Grade{Correct: true, Score: 1, Feedback: "Correct."}
	}
	return Grade{Feedback: fmt.Sprintf("Not quite. The correct answer is: %s", q.CorrectAnswer)}
}

func gradeShortAnswer(ctx context.Context, provider llm.LLMProvider, q *state.QuizQuestion, answer string) Grade {
	if strings.TrimSpace(answer) == "" {
		return Grade{Feedback: "No answer was given."}
	}

	if provider != nil {
		var graded struct {
			Score    float64 `json:"score"`
			Feedback string  `json:"feedback"`
		}
		prompt := fmt.Sprintf(rubricGradePrompt, q.Question, q.Rubric, q.SampleAnswer, answer)
		if err := workflow.CallJSON(ctx, provider, prompt, &graded, llm.WithTemperature(0.2)); err == nil {
			if graded.Score < 0 {
				graded.Score = 0
			}
			if graded.Score > 1 {
				graded.Score = 1
			}
			if graded.Feedback == "" {
				graded.Feedback = "Answer graded against the rubric."
			}
			return Grade{Correct: graded.Score >= 0.5, Score: graded.Score, Feedback: graded.Feedback}
		}
	}
	return gradeByOverlap(q, answer)
}

// gradeByOverlap scores by the fraction of reference-answer keywords
// present in the student's answer. It runs when the rubric call fails.
func gradeByOverlap(q *state.QuizQuestion, answer string) Grade {
	keywords := contentWords(q.SampleAnswer)
	if len(keywords) == 0 {
		return Grade{Feedback: "This answer needs manual review."}
	}
	given := strings.ToLower(answer)
	hits := 0
	for _, w := range keywords {
		if strings.Contains(given, w) {
			hits++
		}
	}
	score := float64(hits) / float64(len(keywords))
	feedback := fmt.Sprintf("Your answer covered %d of %d key points.", hits, len(keywords))
	return Grade{Correct: score >= 0.5, Score: score, Feedback: feedback}
}

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "of": true,
	"to": true, "in": true, "is": true, "are": true, "it": true, "that": true,
	"this": true, "for": true, "with": true, "as": true, "on": true, "be": true,
}

func contentWords(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	seen := map[string]bool{}
	var words []string
	for _, f := range fields {
		if len(f) < 3 || stopwords[f] || seen[f] {
			continue
		}
		seen[f] = true
		words = append(words, f)
	}
	return words
}
