package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type QuizQuestion struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CourseId      uuid.UUID      `gorm:"type:uuid;not null;index"`
	TopicId       uuid.UUID      `gorm:"type:uuid;not null;index"`
	Type          string         `gorm:"type:varchar(32);not null"`
	Difficulty    string         `gorm:"type:varchar(16)"`
	Question      string         `gorm:"type:text;not null"`
	Options       datatypes.JSON `gorm:"type:jsonb"`
	CorrectAnswer string         `gorm:"type:text"`
	SampleAnswer  string         `gorm:"type:text"`
	Rubric        string         `gorm:"type:text"`
	Explanation   string         `gorm:"type:text"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

type QuizAttempt struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId  string    `gorm:"type:varchar(64);index"`
	StudentId  uuid.UUID `gorm:"type:uuid;not null;index"`
	CourseId   uuid.UUID `gorm:"type:uuid;not null;index"`
	QuestionId uuid.UUID `gorm:"type:uuid;not null;index"`
	Answer     string    `gorm:"type:text"`
	Correct    bool
	Score      float64
	Feedback   string    `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}
