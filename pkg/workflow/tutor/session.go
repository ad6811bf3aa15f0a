// Package tutor drives an adaptive tutoring session over a published
// course. Each turn re-enters at intake, routes to exactly one mode,
// executes it, and drains into end_turn so the session can resume on
// the next message. Grading and mastery bookkeeping are deterministic;
// the model only explains, grades short answers, and phrases replies.
package tutor

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"ai-coursebuilder-be/pkg/llm"
	"ai-coursebuilder-be/pkg/workflow/events"
	"ai-coursebuilder-be/pkg/workflow/state"
)

// CourseSource loads the published course a session teaches.
type CourseSource interface {
	Structure(ctx context.Context, courseID string) (*state.CourseStructure, error)
	QuestionsForTopic(ctx context.Context, courseID, topic string, limit int) ([]state.QuizQuestion, error)
}

// ContentRetriever finds course content relevant to a query, used to
// ground explanations in the uploaded material.
type ContentRetriever interface {
	Retrieve(ctx context.Context, courseID, query string, limit int) ([]string, error)
}

// AttemptRecorder persists each graded answer.
type AttemptRecorder interface {
	RecordAttempt(ctx context.Context, st *state.TutorState, q *state.QuizQuestion, answer string, g Grade) error
}

// SessionCloser persists the final summary when a session ends.
type SessionCloser interface {
	CloseSession(ctx context.Context, st *state.TutorState) error
}

// Deps bundles the coordinator's collaborators and tunables. Zero
// tunables fall back to the package defaults.
type Deps struct {
	Course    CourseSource
	Retriever ContentRetriever
	Attempts  AttemptRecorder
	Closer    SessionCloser
	Bus       *events.Bus
	Logger    *log.Logger

	Smoothing      float64
	ReviewInterval time.Duration
	QuizSize       int
}

// DefaultQuizSize is how many questions an ad-hoc quiz pulls per topic.
const DefaultQuizSize = 3

// Coordinator composes one tutoring session's turn loop.
type Coordinator struct {
	provider  llm.LLMProvider
	course    CourseSource
	retriever ContentRetriever
	attempts  AttemptRecorder
	closer    SessionCloser
	bus       *events.Bus
	logger    *log.Logger

	smoothing      float64
	reviewInterval time.Duration
	quizSize       int
}

func NewCoordinator(provider llm.LLMProvider, deps Deps) *Coordinator {
	if deps.Smoothing <= 0 || deps.Smoothing > 1 {
		deps.Smoothing = DefaultSmoothing
	}
	if deps.ReviewInterval <= 0 {
		deps.ReviewInterval = DefaultReviewInterval
	}
	if deps.QuizSize <= 0 {
		deps.QuizSize = DefaultQuizSize
	}
	return &Coordinator{
		provider:       provider,
		course:         deps.Course,
		retriever:      deps.Retriever,
		attempts:       deps.Attempts,
		closer:         deps.Closer,
		bus:            deps.Bus,
		logger:         deps.Logger,
		smoothing:      deps.Smoothing,
		reviewInterval: deps.ReviewInterval,
		quizSize:       deps.QuizSize,
	}
}

// Turn advances the session by one learner message. Every mutation
// goes through Apply and is checkpointed; a failed save fails the
// turn.
func (c *Coordinator) Turn(ctx context.Context, st *state.TutorState, message string, save func(*state.TutorState) error) error {
	if message != "" {
		if err := c.step(st, &state.TutorUpdate{
			Messages: []state.Message{state.NewMessage(state.RoleUser, message)},
		}, save, "append_message"); err != nil {
			return err
		}
	}

	if st.ShouldEnd {
		return c.step(st, &state.TutorUpdate{
			Messages: []state.Message{state.NewMessage(state.RoleAssistant, "This session has ended. Start a new session to keep learning.")},
		}, save, "session_closed")
	}

	if st.Mode == state.ModeWelcome {
		update := &state.TutorUpdate{Mode: state.ModePtr(state.ModeEndTurn), Interactions: 1, Progress: 0.05}
		reply := c.welcome(ctx, st, update)
		update.Messages = []state.Message{state.NewMessage(state.RoleAssistant, reply)}
		return c.step(st, update, save, "welcome")
	}

	if err := c.step(st, &state.TutorUpdate{Mode: state.ModePtr(state.ModeIntake)}, save, "intake"); err != nil {
		return err
	}

	r := c.route(ctx, st, message)
	c.logf("[ROUTE] session=%s mode=%s (%s)", st.SessionID, r.Mode, r.Rationale)

	// Grading re-enters through quiz mode; intake cannot jump straight
	// to grade_quiz.
	if r.Mode == state.ModeGradeQuiz {
		if err := c.step(st, &state.TutorUpdate{Mode: state.ModePtr(state.ModeQuiz)}, save, "resume_quiz"); err != nil {
			return err
		}
	}
	if err := c.step(st, &state.TutorUpdate{
		Mode:       state.ModePtr(r.Mode),
		NextAction: state.StrPtr(string(r.Mode)),
		Rationale:  state.StrPtr(r.Rationale),
	}, save, "enter_"+string(r.Mode)); err != nil {
		return err
	}

	update := &state.TutorUpdate{Interactions: 1}
	var reply string
	switch r.Mode {
	case state.ModeExplainer:
		reply = c.explain(ctx, st, message, update)
	case state.ModeGapAnalysis:
		reply = c.analyzeGaps(ctx, st, update)
	case state.ModeQuiz:
		reply = c.startQuiz(ctx, st, update)
	case state.ModeGradeQuiz:
		reply = c.grade(ctx, st, message, update)
	case state.ModeSummarize:
		reply = c.summarize(ctx, st, update)
	default:
		reply = "What would you like to work on next?"
	}

	if update.Progress == 0 {
		update.Progress = softProgress(st.Interactions + 1)
	}
	update.Mode = state.ModePtr(state.ModeEndTurn)
	update.Messages = append(update.Messages, state.NewMessage(state.RoleAssistant, reply))
	return c.step(st, update, save, string(r.Mode))
}

// welcome loads the mastery snapshot and due topics and greets the
// learner.
func (c *Coordinator) welcome(ctx context.Context, st *state.TutorState, update *state.TutorUpdate) string {
	due := DueForReview(st.Mastery, c.reviewInterval, time.Now())
	update.DueForReview = due
	update.WeakTopics = WeakTopics(st.Mastery)

	var b strings.Builder
	b.WriteString("Welcome back! ")
	if c.course != nil {
		if cs, err := c.course.Structure(ctx, st.CourseID); err == nil && cs != nil {
			fmt.Fprintf(&b, "This course covers %d topics. ", len(cs.Topics))
		}
	}
	if len(due) > 0 {
		fmt.Fprintf(&b, "You have %d topic(s) due for review: %s. ", len(due), strings.Join(due, ", "))
	}
	if len(update.WeakTopics) > 0 {
		fmt.Fprintf(&b, "We could also strengthen %s. ", update.WeakTopics[0])
	}
	b.WriteString("Ask me to explain something, or say \"quiz\" to practice.")
	return c.phrase(ctx, "Rephrase this tutoring greeting warmly, keeping every fact:\n"+b.String(), b.String())
}

// explain teaches one topic, grounded in retrieved course content.
func (c *Coordinator) explain(ctx context.Context, st *state.TutorState, message string, update *state.TutorUpdate) string {
	topic := c.pickTopic(ctx, st)
	if topic == "" {
		return "I could not find a topic to explain. Ask me about something specific from the course."
	}
	update.CurrentTopic = state.StrPtr(topic)
	update.TopicsCovered = []string{topic}
	if len(st.Gaps) > 0 && strings.EqualFold(st.Gaps[0], topic) {
		update.Gaps = append([]string{}, st.Gaps[1:]...)
	}

	var passages []string
	if c.retriever != nil {
		query := topic
		if strings.TrimSpace(message) != "" {
			query = message
		}
		if found, err := c.retriever.Retrieve(ctx, st.CourseID, query, 4); err == nil {
			passages = found
		} else {
			update.Warnings = append(update.Warnings, fmt.Sprintf("content retrieval failed: %s", err))
		}
	}

	fallback := fmt.Sprintf("Let's look at %s. Work through the course material for this topic and ask me questions as they come up.", topic)
	prompt := fmt.Sprintf("You are a tutor. Explain the topic %q to a learner in a few short paragraphs, then ask one check-in question.", topic)
	if len(passages) > 0 {
		prompt += "\n\nGround the explanation in this course material:\n" + strings.Join(passages, "\n---\n")
	}
	if strings.TrimSpace(message) != "" {
		prompt += "\n\nThe learner asked: " + message
	}
	return c.phrase(ctx, prompt, fallback)
}

// analyzeGaps turns the mastery snapshot into named gaps.
func (c *Coordinator) analyzeGaps(ctx context.Context, st *state.TutorState, update *state.TutorUpdate) string {
	weak := WeakTopics(st.Mastery)
	update.WeakTopics = weak
	update.Gaps = append([]string{}, weak...)

	if len(weak) == 0 {
		return "No gaps stand out yet. Keep practicing and I will flag anything that needs work."
	}
	fallback := fmt.Sprintf("Based on your quiz history, these topics need attention: %s. Shall we start with %s?", strings.Join(weak, ", "), weak[0])
	prompt := "Rephrase this gap analysis for a learner, keeping every topic name:\n" + fallback
	return c.phrase(ctx, prompt, fallback)
}

// startQuiz pulls questions for the most pressing topic and opens an
// active quiz.
func (c *Coordinator) startQuiz(ctx context.Context, st *state.TutorState, update *state.TutorUpdate) string {
	topic := ""
	switch {
	case len(st.DueForReview) > 0:
		topic = st.DueForReview[0]
	case len(st.WeakTopics) > 0:
		topic = st.WeakTopics[0]
	case st.CurrentTopic != "":
		topic = st.CurrentTopic
	default:
		topic = c.pickTopic(ctx, st)
	}
	if topic == "" {
		return "I could not pick a topic to quiz you on yet. Ask me to explain something first."
	}
	if c.course == nil {
		update.Errors = append(update.Errors, "no question source configured")
		return "Quizzes are not available right now."
	}

	questions, err := c.course.QuestionsForTopic(ctx, st.CourseID, topic, c.quizSize)
	if err != nil {
		update.Errors = append(update.Errors, fmt.Sprintf("quiz load failed: %s", err))
		return fmt.Sprintf("I could not load questions for %s right now. Let's try again in a moment.", topic)
	}
	if len(questions) == 0 {
		update.Warnings = append(update.Warnings, fmt.Sprintf("no questions available for %s", topic))
		return fmt.Sprintf("There are no quiz questions for %s yet. Want me to explain it instead?", topic)
	}

	update.CurrentTopic = state.StrPtr(topic)
	update.Quiz = &state.ActiveQuiz{Questions: questions, StartedAt: time.Now()}
	return fmt.Sprintf("Quiz time on %s, %d question(s).\n\n%s", topic, len(questions), formatQuestion(&questions[0], 1))
}

// grade scores the learner's answer to the active quiz question and
// folds the result into mastery.
func (c *Coordinator) grade(ctx context.Context, st *state.TutorState, answer string, update *state.TutorUpdate) string {
	q, ok := st.Quiz.Current()
	if !ok {
		update.ClearQuiz = true
		return "There is no open question to grade. Say \"quiz\" to start a new one."
	}

	g := GradeAnswer(ctx, c.provider, q, answer)
	if c.attempts != nil {
		if err := c.attempts.RecordAttempt(ctx, st, q, answer, g); err != nil {
			update.Warnings = append(update.Warnings, fmt.Sprintf("attempt not recorded: %s", err))
		}
	}

	topicKey := q.TopicID
	if topicKey == "" {
		topicKey = q.TopicTitle
	}
	rec := st.Mastery[topicKey]
	rec = UpdateMastery(rec, g.Correct, c.smoothing)
	update.Mastery = map[string]state.MasteryRecord{topicKey: rec}

	next := *st.Quiz
	next.Position++
	next.Score += g.Score
	if next.Position >= len(next.Questions) {
		next.Completed = true
	}
	update.Quiz = &next

	var b strings.Builder
	b.WriteString(g.Feedback)
	if q.Explanation != "" && !g.Correct {
		b.WriteString(" ")
		b.WriteString(q.Explanation)
	}
	if next.Completed {
		fmt.Fprintf(&b, "\n\nQuiz complete. You scored %.1f out of %d.", next.Score, len(next.Questions))
		if rec.Score < weakThreshold {
			fmt.Fprintf(&b, " Let's review %s again soon.", topicLabel(q))
		}
	} else {
		b.WriteString("\n\n")
		b.WriteString(formatQuestion(&next.Questions[next.Position], next.Position+1))
	}
	return b.String()
}

// summarize closes the session with a final summary.
func (c *Coordinator) summarize(ctx context.Context, st *state.TutorState, update *state.TutorUpdate) string {
	duration := time.Since(st.CreatedAt).Round(time.Minute)
	weak := WeakTopics(st.Mastery)

	var b strings.Builder
	fmt.Fprintf(&b, "Session summary: %s together, %d interaction(s).", durationLabel(duration), st.Interactions+1)
	if len(st.TopicsCovered) > 0 {
		fmt.Fprintf(&b, " We covered %s.", strings.Join(st.TopicsCovered, ", "))
	}
	if len(weak) > 0 {
		fmt.Fprintf(&b, " Next time, focus on %s.", strings.Join(weak, ", "))
	} else {
		b.WriteString(" Keep up the steady progress.")
	}
	summary := c.phrase(ctx, "Rephrase this tutoring session summary warmly, keeping every fact:\n"+b.String(), b.String())

	update.Summary = state.StrPtr(summary)
	update.ShouldEnd = state.BoolPtr(true)
	update.EndReason = state.StrPtr("learner ended the session")
	update.Progress = 1

	// The update is merged after this step returns, so the closer gets
	// a copy carrying the final summary and this turn's interaction.
	if c.closer != nil {
		closing := *st
		closing.Summary = summary
		closing.ShouldEnd = true
		closing.EndReason = "learner ended the session"
		closing.Interactions = st.Interactions + 1
		closing.Progress = 1
		if err := c.closer.CloseSession(ctx, &closing); err != nil {
			update.Errors = append(update.Errors, fmt.Sprintf("session close failed: %s", err))
		}
	}
	return summary
}

// pickTopic chooses the next teaching target: open gaps first, then
// the current topic, then the first uncovered topic in course order.
func (c *Coordinator) pickTopic(ctx context.Context, st *state.TutorState) string {
	if len(st.Gaps) > 0 {
		return st.Gaps[0]
	}
	if st.CurrentTopic != "" {
		return st.CurrentTopic
	}
	if c.course == nil {
		return ""
	}
	cs, err := c.course.Structure(ctx, st.CourseID)
	if err != nil || cs == nil {
		return ""
	}
	covered := map[string]bool{}
	for _, t := range st.TopicsCovered {
		covered[strings.ToLower(t)] = true
	}
	for _, t := range cs.Topics {
		if !covered[strings.ToLower(t.Title)] {
			return t.Title
		}
	}
	if len(cs.Topics) > 0 {
		return cs.Topics[0].Title
	}
	return ""
}

func (c *Coordinator) phrase(ctx context.Context, prompt, fallback string) string {
	if c.provider == nil {
		return fallback
	}
	out, err := c.provider.Generate(ctx, prompt, llm.WithTemperature(0.7))
	if err != nil || strings.TrimSpace(out) == "" {
		return fallback
	}
	return strings.TrimSpace(out)
}

// step applies one update, checkpoints, and emits a step event.
func (c *Coordinator) step(st *state.TutorState, update *state.TutorUpdate, save func(*state.TutorState) error, name string) error {
	if err := st.Apply(update); err != nil {
		return fmt.Errorf("step %s: %w", name, err)
	}
	if save != nil {
		if err := save(st); err != nil {
			return fmt.Errorf("step %s: checkpoint: %w", name, err)
		}
	}
	if c.bus != nil {
		_ = c.bus.Publish(events.StepEvent{
			SessionID: st.SessionID,
			Workflow:  "tutor",
			Step:      name,
			Phase:     string(st.Mode),
			Progress:  st.Progress,
			Final:     st.ShouldEnd,
		})
	}
	return nil
}

func (c *Coordinator) logf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}

func formatQuestion(q *state.QuizQuestion, number int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question %d: %s", number, q.Question)
	for i, opt := range q.Options {
		fmt.Fprintf(&b, "\n  %c) %s", 'A'+i, opt)
	}
	if q.Type == state.QuestionTrueFalse {
		b.WriteString("\n  (true / false)")
	}
	return b.String()
}

func topicLabel(q *state.QuizQuestion) string {
	if q.TopicTitle != "" {
		return q.TopicTitle
	}
	return "this topic"
}

func durationLabel(d time.Duration) string {
	if d < time.Minute {
		return "a few minutes"
	}
	return d.String()
}

// softProgress keeps the progress bar moving through an open-ended
// session without ever reaching the summary's 1.0.
func softProgress(interactions int) float64 {
	p := 0.05 + 0.05*float64(interactions)
	if p > 0.9 {
		p = 0.9
	}
	return p
}
