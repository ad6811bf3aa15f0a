package entity

import (
	"time"

	"github.com/google/uuid"
)

// TopicMastery is the durable mastery record behind the tutoring
// session's in-state snapshot.
type TopicMastery struct {
	Id          uuid.UUID
	StudentId   uuid.UUID
	CourseId    uuid.UUID
	TopicId     uuid.UUID
	Score       float64
	Streak      int
	Attempts    int
	LastUpdated time.Time
}

// TutorSessionRecord is the closed-session archive row written when a
// tutoring session summarizes.
type TutorSessionRecord struct {
	Id           uuid.UUID
	SessionId    string
	StudentId    uuid.UUID
	CourseId     uuid.UUID
	Summary      string
	EndReason    string
	Interactions int
	StartedAt    time.Time
	EndedAt      time.Time
}
