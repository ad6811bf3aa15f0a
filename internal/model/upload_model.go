package model

import (
	"time"

	"github.com/google/uuid"
)

type CourseUpload struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId string    `gorm:"type:varchar(64);not null;index"`
	CreatorId uuid.UUID `gorm:"type:uuid;not null;index"`
	Filename  string    `gorm:"type:varchar(255);not null"`
	Path      string    `gorm:"type:varchar(512);not null"`
	Type      string    `gorm:"type:varchar(32)"`
	Size      int64
	Status    string    `gorm:"type:varchar(16);default:'pending'"`
	Error     string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (CourseUpload) TableName() string {
	return "course_uploads"
}
