package state

import (
	"time"

	"github.com/google/uuid"
)

// TutorMode is the named state of the tutoring session state machine.
type TutorMode string

const (
	ModeWelcome     TutorMode = "welcome"
	ModeIntake      TutorMode = "intake"
	ModeExplainer   TutorMode = "explainer"
	ModeGapAnalysis TutorMode = "gap_analysis"
	ModeQuiz        TutorMode = "quiz"
	ModeGradeQuiz   TutorMode = "grade_quiz"
	ModeSummarize   TutorMode = "summarize"
	ModeEndTurn     TutorMode = "end_turn"
)

// MasteryRecord tracks one topic's learner proficiency.
type MasteryRecord struct {
	Score       float64   `json:"score"` // [0,1]
	Streak      int       `json:"streak"`
	Attempts    int       `json:"attempts"`
	LastUpdated time.Time `json:"last_updated"`
}

// ActiveQuiz is the quiz currently being taken, if any.
type ActiveQuiz struct {
	Questions []QuizQuestion `json:"questions"`
	Position  int            `json:"position"`
	Score     float64        `json:"score"`
	StartedAt time.Time      `json:"started_at"`
	Completed bool           `json:"completed"`
}

// Current returns the question awaiting an answer.
func (q *ActiveQuiz) Current() (*QuizQuestion, bool) {
	if q == nil || q.Position < 0 || q.Position >= len(q.Questions) {
		return nil, false
	}
	return &q.Questions[q.Position], true
}

// TutorState is the full checkpointed state of one tutoring session.
type TutorState struct {
	SessionID string    `json:"session_id"`
	StudentID string    `json:"student_id"`
	CourseID  string    `json:"course_id"`
	Mode      TutorMode `json:"mode"`

	CurrentTopic string `json:"current_topic,omitempty"`
	CurrentUnit  string `json:"current_unit,omitempty"`

	Mastery       map[string]MasteryRecord `json:"mastery"`
	Gaps          []string                 `json:"gaps,omitempty"`
	WeakTopics    []string                 `json:"weak_topics,omitempty"`
	DueForReview  []string                 `json:"due_for_review,omitempty"`
	TopicsCovered []string                 `json:"topics_covered,omitempty"`

	Quiz *ActiveQuiz `json:"quiz,omitempty"`

	Messages      []Message `json:"messages"`
	NextAction    string    `json:"next_action,omitempty"`
	Rationale     string    `json:"rationale,omitempty"`
	Interactions  int       `json:"interactions"`
	ShouldEnd     bool      `json:"should_end"`
	EndReason     string    `json:"end_reason,omitempty"`
	Summary       string    `json:"summary,omitempty"`

	Progress float64  `json:"progress"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTutorState creates the initial state for a tutoring session.
func NewTutorState(sessionID, studentID, courseID string) *TutorState {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	now := time.Now()
	return &TutorState{
		SessionID: sessionID,
		StudentID: studentID,
		CourseID:  courseID,
		Mode:      ModeWelcome,
		Mastery:   map[string]MasteryRecord{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
