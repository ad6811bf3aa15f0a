package dto

import "time"

type TutorTurnRequest struct {
	SessionId string `json:"session_id"`
	CourseId  string `json:"course_id" validate:"required,uuid"`
	Message   string `json:"message" validate:"required"`
}

type TutorTurnResponse struct {
	SessionId    string   `json:"session_id"`
	Mode         string   `json:"mode"`
	Reply        string   `json:"reply"`
	NextAction   string   `json:"next_action,omitempty"`
	Progress     float64  `json:"progress"`
	ShouldEnd    bool     `json:"should_end"`
	EndReason    string   `json:"end_reason,omitempty"`
	Summary      string   `json:"summary,omitempty"`
	CurrentTopic string   `json:"current_topic,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}

type MasteryInfo struct {
	Topic       string    `json:"topic"`
	Score       float64   `json:"score"`
	Streak      int       `json:"streak"`
	Attempts    int       `json:"attempts"`
	LastUpdated time.Time `json:"last_updated"`
}

type TutorStateResponse struct {
	SessionId     string        `json:"session_id"`
	Mode          string        `json:"mode"`
	ModeHint      string        `json:"mode_hint"`
	CourseId      string        `json:"course_id"`
	CurrentTopic  string        `json:"current_topic,omitempty"`
	TopicsCovered []string      `json:"topics_covered,omitempty"`
	Gaps          []string      `json:"gaps,omitempty"`
	DueForReview  []string      `json:"due_for_review,omitempty"`
	Mastery       []MasteryInfo `json:"mastery"`
	QuizActive    bool          `json:"quiz_active"`
	Interactions  int           `json:"interactions"`
	Progress      float64       `json:"progress"`
	ShouldEnd     bool          `json:"should_end"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

type EndSessionResponse struct {
	SessionId string `json:"session_id"`
}
