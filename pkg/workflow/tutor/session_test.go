package tutor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-coursebuilder-be/pkg/workflow/state"
)

type fakeCourse struct {
	structure *state.CourseStructure
	questions []state.QuizQuestion
	err       error
}

func (f *fakeCourse) Structure(ctx context.Context, courseID string) (*state.CourseStructure, error) {
	return f.structure, f.err
}

func (f *fakeCourse) QuestionsForTopic(ctx context.Context, courseID, topic string, limit int) ([]state.QuizQuestion, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit > len(f.questions) {
		limit = len(f.questions)
	}
	return f.questions[:limit], nil
}

type recordedAttempt struct {
	questionID string
	answer     string
	grade      Grade
}

type fakeAttempts struct {
	attempts []recordedAttempt
}

func (f *fakeAttempts) RecordAttempt(ctx context.Context, st *state.TutorState, q *state.QuizQuestion, answer string, g Grade) error {
	f.attempts = append(f.attempts, recordedAttempt{q.ID, answer, g})
	return nil
}

type fakeCloser struct {
	closed int
	last   state.TutorState
	err    error
}

func (f *fakeCloser) CloseSession(ctx context.Context, st *state.TutorState) error {
	f.closed++
	f.last = *st
	return f.err
}

func offlineDeps(course *fakeCourse) Deps {
	return Deps{Course: course}
}

func newOfflineCoordinator(course *fakeCourse) *Coordinator {
	return NewCoordinator(&scriptedProvider{err: errors.New("connection refused")}, offlineDeps(course))
}

func TestTurnWelcomeGreetsAndEndsTurn(t *testing.T) {
	course := &fakeCourse{structure: &state.CourseStructure{Topics: []state.Topic{
		{ID: "t1", Title: "Slices"}, {ID: "t2", Title: "Maps"},
	}}}
	coord := newOfflineCoordinator(course)
	st := state.NewTutorState("s1", "u1", "c1")

	if err := coord.Turn(context.Background(), st, "", nil); err != nil {
		t.Fatalf("Turn: %v", err)
	}
	if st.Mode != state.ModeEndTurn {
		t.Errorf("mode = %s, want %s", st.Mode, state.ModeEndTurn)
	}
	if len(st.Messages) != 1 || st.Messages[0].Role != state.RoleAssistant {
		t.Fatalf("expected one assistant greeting, got %d messages", len(st.Messages))
	}
	if !strings.Contains(st.Messages[0].Content, "2 topics") {
		t.Errorf("greeting should mention the course size, got %q", st.Messages[0].Content)
	}
	if st.Interactions != 1 {
		t.Errorf("interactions = %d, want 1", st.Interactions)
	}
}

func TestTurnExplainsFirstUncoveredTopic(t *testing.T) {
	course := &fakeCourse{structure: &state.CourseStructure{Topics: []state.Topic{
		{ID: "t1", Title: "Slices"}, {ID: "t2", Title: "Maps"},
	}}}
	coord := newOfflineCoordinator(course)
	st := state.NewTutorState("s1", "u1", "c1")
	st.Mode = state.ModeEndTurn
	st.TopicsCovered = []string{"Slices"}

	if err := coord.Turn(context.Background(), st, "teach me the next thing", nil); err != nil {
		t.Fatalf("Turn: %v", err)
	}
	if st.CurrentTopic != "Maps" {
		t.Errorf("current topic = %q, want the first uncovered topic", st.CurrentTopic)
	}
	if len(st.TopicsCovered) != 2 {
		t.Errorf("topics covered = %v, want Slices and Maps", st.TopicsCovered)
	}
	if st.Mode != state.ModeEndTurn {
		t.Errorf("mode = %s, want %s", st.Mode, state.ModeEndTurn)
	}
}

func TestTurnQuizLifecycle(t *testing.T) {
	course := &fakeCourse{
		structure: &state.CourseStructure{Topics: []state.Topic{{ID: "t1", Title: "Slices"}}},
		questions: []state.QuizQuestion{
			{ID: "q1", TopicID: "t1", TopicTitle: "Slices", Type: state.QuestionTrueFalse, Question: "Slices share backing arrays.", CorrectAnswer: "true"},
			{ID: "q2", TopicID: "t1", TopicTitle: "Slices", Type: state.QuestionTrueFalse, Question: "Append never reallocates.", CorrectAnswer: "false"},
		},
	}
	attempts := &fakeAttempts{}
	coord := NewCoordinator(
		&scriptedProvider{err: errors.New("connection refused")},
		Deps{Course: course, Attempts: attempts},
	)

	st := state.NewTutorState("s1", "u1", "c1")
	st.Mode = state.ModeEndTurn
	ctx := context.Background()

	// Turn 1: ask for a quiz.
	if err := coord.Turn(ctx, st, "quiz me on slices", nil); err != nil {
		t.Fatalf("quiz turn: %v", err)
	}
	if st.Quiz == nil || len(st.Quiz.Questions) != 2 || st.Quiz.Position != 0 {
		t.Fatalf("expected an active 2-question quiz, got %+v", st.Quiz)
	}

	// Turn 2: correct answer advances the quiz and bumps mastery.
	if err := coord.Turn(ctx, st, "true", nil); err != nil {
		t.Fatalf("first answer: %v", err)
	}
	if st.Quiz.Position != 1 || st.Quiz.Completed {
		t.Fatalf("quiz should be mid-flight, got %+v", st.Quiz)
	}
	rec := st.Mastery["t1"]
	if rec.Attempts != 1 || rec.Streak != 1 || rec.Score <= 0 {
		t.Errorf("mastery after correct answer = %+v", rec)
	}

	// Turn 3: wrong answer completes the quiz and resets the streak.
	if err := coord.Turn(ctx, st, "true", nil); err != nil {
		t.Fatalf("second answer: %v", err)
	}
	if st.Quiz == nil || !st.Quiz.Completed {
		t.Fatalf("quiz should be completed, got %+v", st.Quiz)
	}
	rec = st.Mastery["t1"]
	if rec.Attempts != 2 || rec.Streak != 0 {
		t.Errorf("mastery after miss = %+v", rec)
	}
	if len(attempts.attempts) != 2 {
		t.Errorf("recorded attempts = %d, want 2", len(attempts.attempts))
	}
	last := st.Messages[len(st.Messages)-1]
	if !strings.Contains(last.Content, "Quiz complete") {
		t.Errorf("final reply should announce completion, got %q", last.Content)
	}
}

func TestTurnSummarizeEndsSession(t *testing.T) {
	closer := &fakeCloser{}
	coord := NewCoordinator(
		&scriptedProvider{err: errors.New("connection refused")},
		Deps{Course: &fakeCourse{}, Closer: closer},
	)

	st := state.NewTutorState("s1", "u1", "c1")
	st.Mode = state.ModeEndTurn
	st.TopicsCovered = []string{"Slices"}
	st.Interactions = 3
	ctx := context.Background()

	if err := coord.Turn(ctx, st, "I'm done, bye!", nil); err != nil {
		t.Fatalf("Turn: %v", err)
	}
	if !st.ShouldEnd {
		t.Error("summarize must end the session")
	}
	if st.Summary == "" || !strings.Contains(st.Summary, "Slices") {
		t.Errorf("summary should name covered topics, got %q", st.Summary)
	}
	if st.Progress != 1 {
		t.Errorf("progress = %v, want 1", st.Progress)
	}
	if closer.closed != 1 {
		t.Errorf("closer calls = %d, want 1", closer.closed)
	}
	// The closer persists the record, so it must see the final values,
	// not the pre-merge state.
	if closer.last.Summary != st.Summary {
		t.Errorf("closer saw summary %q, want %q", closer.last.Summary, st.Summary)
	}
	if closer.last.EndReason == "" {
		t.Error("closer saw an empty end reason")
	}
	if closer.last.Interactions != st.Interactions {
		t.Errorf("closer saw %d interactions, want %d", closer.last.Interactions, st.Interactions)
	}

	// A further message gets a closed-session reply, not a new mode.
	if err := coord.Turn(ctx, st, "one more thing", nil); err != nil {
		t.Fatalf("post-end turn: %v", err)
	}
	last := st.Messages[len(st.Messages)-1]
	if !strings.Contains(last.Content, "session has ended") {
		t.Errorf("post-end reply = %q", last.Content)
	}
}

func TestTurnQuizLoadFailureRecovers(t *testing.T) {
	course := &fakeCourse{err: errors.New("database unavailable")}
	coord := newOfflineCoordinator(course)

	st := state.NewTutorState("s1", "u1", "c1")
	st.Mode = state.ModeEndTurn
	st.CurrentTopic = "Slices"

	if err := coord.Turn(context.Background(), st, "quiz me", nil); err != nil {
		t.Fatalf("a failed quiz load must not fail the turn: %v", err)
	}
	if st.Quiz != nil {
		t.Error("no quiz should be opened on a load failure")
	}
	if len(st.Errors) == 0 {
		t.Error("the load failure should be recorded")
	}
	if st.Mode != state.ModeEndTurn {
		t.Errorf("mode = %s, want %s", st.Mode, state.ModeEndTurn)
	}
}

func TestTurnCheckpointFailureFailsTurn(t *testing.T) {
	coord := newOfflineCoordinator(&fakeCourse{})
	st := state.NewTutorState("s1", "u1", "c1")

	save := func(*state.TutorState) error { return errors.New("redis down") }
	err := coord.Turn(context.Background(), st, "hello", save)
	if err == nil {
		t.Fatal("a failed checkpoint save must fail the turn")
	}
	if !strings.Contains(err.Error(), "checkpoint") {
		t.Errorf("error should name the checkpoint, got %v", err)
	}
}
