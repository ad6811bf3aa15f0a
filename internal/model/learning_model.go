package model

import (
	"time"

	"github.com/google/uuid"
)

type TopicMastery struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StudentId   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_mastery_key"`
	CourseId    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_mastery_key"`
	TopicId     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_mastery_key"`
	Score       float64
	Streak      int
	Attempts    int
	LastUpdated time.Time
}

func (TopicMastery) TableName() string {
	return "topic_mastery"
}

type TutorSessionRecord struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId    string    `gorm:"type:varchar(64);uniqueIndex"`
	StudentId    uuid.UUID `gorm:"type:uuid;not null;index"`
	CourseId     uuid.UUID `gorm:"type:uuid;not null;index"`
	Summary      string    `gorm:"type:text"`
	EndReason    string    `gorm:"type:varchar(255)"`
	Interactions int
	StartedAt    time.Time
	EndedAt      time.Time `gorm:"autoCreateTime"`
}

func (TutorSessionRecord) TableName() string {
	return "tutor_session_records"
}
