package entity

import (
	"time"

	"github.com/google/uuid"
)

type QuizQuestion struct {
	Id            uuid.UUID
	CourseId      uuid.UUID
	TopicId       uuid.UUID
	Type          string
	Difficulty    string
	Question      string
	Options       []string
	CorrectAnswer string
	SampleAnswer  string
	Rubric        string
	Explanation   string
	CreatedAt     time.Time
}

type QuizAttempt struct {
	Id         uuid.UUID
	SessionId  string
	StudentId  uuid.UUID
	CourseId   uuid.UUID
	QuestionId uuid.UUID
	Answer     string
	Correct    bool
	Score      float64
	Feedback   string
	CreatedAt  time.Time
}
