// Package quizgen generates and validates quiz questions topic by
// topic, then resolves every question back to a known topic before the
// bank is accepted.
package quizgen

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ai-coursebuilder-be/pkg/llm"
	"ai-coursebuilder-be/pkg/workflow"
	"ai-coursebuilder-be/pkg/workflow/events"
	"ai-coursebuilder-be/pkg/workflow/state"

	"github.com/google/uuid"
)

// DefaultBaseCount is the per-topic question target before description
// adjustments.
const DefaultBaseCount = 5

// Pipeline implements the quiz-generation sub-workflow:
// plan → (select_topic ⇄ generate → validate → rubric →
// check_completion) → finalize.
type Pipeline struct {
	provider  llm.LLMProvider
	bus       *events.Bus
	logger    *log.Logger
	baseCount int
}

var _ workflow.Subworkflow = &Pipeline{}

func NewPipeline(provider llm.LLMProvider, bus *events.Bus, logger *log.Logger, baseCount int) *Pipeline {
	if baseCount < 1 {
		baseCount = DefaultBaseCount
	}
	return &Pipeline{provider: provider, bus: bus, logger: logger, baseCount: baseCount}
}

func (p *Pipeline) Name() string { return "quizgen" }

// generation is the loop state. Termination is an explicit transition:
// advance sets Complete when the last topic has been processed, and
// the loop router reads only that flag.
type generation struct {
	plan     Plan
	index    int
	complete bool
}

func (g *generation) current() (TopicPlan, bool) {
	if g.complete || g.index >= len(g.plan.Topics) {
		return TopicPlan{}, false
	}
	return g.plan.Topics[g.index], true
}

func (g *generation) advance() {
	g.index++
	if g.index >= len(g.plan.Topics) {
		g.complete = true
	}
}

type rawQuestion struct {
	Type          string   `json:"type"`
	Difficulty    string   `json:"difficulty"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	SampleAnswer  string   `json:"sample_answer"`
	Explanation   string   `json:"explanation"`
}

func (p *Pipeline) Invoke(ctx context.Context, st *state.ConstructorState) (*state.ConstructorUpdate, error) {
	if st.Structure == nil || len(st.Structure.Topics) == 0 {
		return nil, fmt.Errorf("quizgen: no course structure to generate from")
	}

	update := &state.ConstructorUpdate{
		SubResults: map[string]map[string]any{"quizgen": {}},
		Progress:   0.85,
	}

	gen := &generation{plan: BuildPlan(st.Structure.Topics, p.baseCount)}
	p.emit(st.SessionID, "plan", 0.05)

	var bank []state.QuizQuestion
	for {
		topic, ok := gen.current()
		if !ok {
			break
		}
		p.emit(st.SessionID, "select_topic", p.fraction(gen))

		raw, err := p.generate(ctx, st, topic)
		if err != nil {
			update.Errors = append(update.Errors,
				fmt.Sprintf("quizgen: generation failed for topic %q: %s", topic.TopicTitle, llm.UserMessage(err)))
			p.logf("[GENERATE] topic %q failed: %v", topic.TopicTitle, err)
			gen.advance()
			continue
		}
		p.emit(st.SessionID, "generate", p.fraction(gen))

		valid := p.validate(topic, raw, update)
		p.emit(st.SessionID, "validate", p.fraction(gen))

		p.rubric(ctx, topic, valid)
		p.emit(st.SessionID, "rubric", p.fraction(gen))

		bank = append(bank, valid...)
		gen.advance()
		p.emit(st.SessionID, "check_completion", p.fraction(gen))
	}

	if !gen.complete {
		return nil, fmt.Errorf("quizgen: loop exited without completing")
	}

	final := p.finalize(st, bank, update)
	update.Questions = final
	p.emit(st.SessionID, "finalize", 1)

	update.SubResults["quizgen"] = map[string]any{
		"planned_topics": len(gen.plan.Topics),
		"questions":      len(final),
		"report": fmt.Sprintf("Generated %d quiz questions across %d topics.",
			len(final), len(gen.plan.Topics)),
	}
	return update, nil
}

func (p *Pipeline) generate(ctx context.Context, st *state.ConstructorState, topic TopicPlan) ([]rawQuestion, error) {
	var desc, concepts string
	if t, ok := st.Structure.TopicByRef(topic.TopicID, topic.TopicTitle); ok {
		desc = t.Description
		concepts = strings.Join(t.Concepts, ", ")
	}

	prompt := fmt.Sprintf(`Write %d quiz questions for the topic %q (%s).
Key concepts: %s
Counts by type: multiple_choice=%d, true_false=%d, short_answer=%d.
Counts by difficulty: easy=%d, medium=%d, hard=%d.
Respond with a JSON array only, each element:
{"type": "...", "difficulty": "...", "question": "...", "options": ["..."],
 "correct_answer": "...", "sample_answer": "...", "explanation": "..."}
For true_false the correct_answer must be the literal "true" or "false".
For multiple_choice the correct_answer must equal exactly one option.`,
		topic.Total, topic.TopicTitle, desc, concepts,
		topic.ByType[state.QuestionMultipleChoice],
		topic.ByType[state.QuestionTrueFalse],
		topic.ByType[state.QuestionShortAnswer],
		topic.ByDifficulty[state.DifficultyEasy],
		topic.ByDifficulty[state.DifficultyMedium],
		topic.ByDifficulty[state.DifficultyHard])

	var raw []rawQuestion
	if err := workflow.CallJSON(ctx, p.provider, prompt, &raw, llm.WithTemperature(0.6)); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty question list")
	}
	return raw, nil
}

// validate enforces the question contract. Violations drop the
// question with a recorded error; a weak short-answer sample is only a
// warning and the question is kept.
func (p *Pipeline) validate(topic TopicPlan, raw []rawQuestion, update *state.ConstructorUpdate) []state.QuizQuestion {
	var valid []state.QuizQuestion
	for _, q := range raw {
		text := strings.TrimSpace(q.Question)
		if len(text) < 10 {
			update.Errors = append(update.Errors,
				fmt.Sprintf("quizgen: question for %q rejected: text shorter than 10 characters", topic.TopicTitle))
			continue
		}

		switch q.Type {
		case state.QuestionMultipleChoice:
			correct := 0
			for _, opt := range q.Options {
				if strings.EqualFold(strings.TrimSpace(opt), strings.TrimSpace(q.CorrectAnswer)) {
					correct++
				}
			}
			if correct != 1 {
				update.Errors = append(update.Errors,
					fmt.Sprintf("quizgen: question for %q rejected: %d options match the correct answer", topic.TopicTitle, correct))
				continue
			}
		case state.QuestionTrueFalse:
			answer := strings.ToLower(strings.TrimSpace(q.CorrectAnswer))
			if answer != "true" && answer != "false" {
				update.Errors = append(update.Errors,
					fmt.Sprintf("quizgen: question for %q rejected: true/false answer is %q", topic.TopicTitle, q.CorrectAnswer))
				continue
			}
			q.CorrectAnswer = answer
		case state.QuestionShortAnswer:
			if len(strings.TrimSpace(q.SampleAnswer)) < 10 {
				update.Warnings = append(update.Warnings,
					fmt.Sprintf("quizgen: short-answer question for %q has a trivial sample answer", topic.TopicTitle))
			}
		default:
			update.Errors = append(update.Errors,
				fmt.Sprintf("quizgen: question for %q rejected: unknown type %q", topic.TopicTitle, q.Type))
			continue
		}

		valid = append(valid, state.QuizQuestion{
			ID:            uuid.NewString(),
			TopicID:       topic.TopicID,
			TopicTitle:    topic.TopicTitle,
			Type:          q.Type,
			Difficulty:    q.Difficulty,
			Question:      text,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			SampleAnswer:  q.SampleAnswer,
			Explanation:   q.Explanation,
		})
	}
	return valid
}

// rubric fills in grading rubrics for short-answer questions. The LLM
// is consulted once per topic; on failure a rubric derived from the
// sample answer is used instead.
func (p *Pipeline) rubric(ctx context.Context, topic TopicPlan, questions []state.QuizQuestion) {
	var shortAnswers []*state.QuizQuestion
	for i := range questions {
		if questions[i].Type == state.QuestionShortAnswer && questions[i].Rubric == "" {
			shortAnswers = append(shortAnswers, &questions[i])
		}
	}
	if len(shortAnswers) == 0 {
		return
	}

	var texts []string
	for _, q := range shortAnswers {
		texts = append(texts, q.Question)
	}
	prompt := fmt.Sprintf(`Write a one-sentence grading rubric for each question below, in order.
Respond with a JSON array of strings only.

Topic: %s
Questions:
- %s`, topic.TopicTitle, strings.Join(texts, "\n- "))

	var rubrics []string
	if err := workflow.CallJSON(ctx, p.provider, prompt, &rubrics); err != nil || len(rubrics) < len(shortAnswers) {
		p.logf("[RUBRIC] falling back to sample-answer rubrics for %q", topic.TopicTitle)
		for _, q := range shortAnswers {
			q.Rubric = "Award full credit when the answer covers: " + q.SampleAnswer
		}
		return
	}
	for i, q := range shortAnswers {
		q.Rubric = rubrics[i]
	}
}

// finalize resolves each question's topic reference by id first, then
// by case-insensitive title. Unresolvable questions are dropped with
// exactly one mapping error each.
func (p *Pipeline) finalize(st *state.ConstructorState, bank []state.QuizQuestion, update *state.ConstructorUpdate) []state.QuizQuestion {
	var final []state.QuizQuestion
	for _, q := range bank {
		topic, ok := st.Structure.TopicByRef(q.TopicID, q.TopicTitle)
		if !ok {
			update.Errors = append(update.Errors,
				fmt.Sprintf("quizgen: question %q dropped: topic reference %q cannot be resolved", q.ID, q.TopicTitle))
			continue
		}
		q.TopicID = topic.ID
		q.TopicTitle = topic.Title
		final = append(final, q)
	}
	return final
}

func (p *Pipeline) fraction(gen *generation) float64 {
	if len(gen.plan.Topics) == 0 {
		return 1
	}
	f := float64(gen.index) / float64(len(gen.plan.Topics))
	if f > 0.95 {
		f = 0.95
	}
	return f
}

func (p *Pipeline) emit(sessionID, step string, fraction float64) {
	if p.bus == nil {
		return
	}
	_ = p.bus.Publish(events.StepEvent{
		SessionID: sessionID,
		Workflow:  p.Name(),
		Step:      step,
		Progress:  fraction,
	})
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.logger != nil {
		p.logger.Printf(format, args...)
	}
}
