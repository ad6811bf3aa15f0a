package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Course struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatorId      uuid.UUID      `gorm:"type:uuid;not null;index"`
	Title          string         `gorm:"type:varchar(255);not null"`
	Description    string         `gorm:"type:text"`
	Difficulty     string         `gorm:"type:varchar(32)"`
	Tags           datatypes.JSON `gorm:"type:jsonb"`
	ReadinessScore float64
	PublishedAt    time.Time
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (Course) TableName() string {
	return "courses"
}

type CourseUnit struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CourseId    uuid.UUID `gorm:"type:uuid;not null;index"`
	Title       string    `gorm:"type:varchar(255);not null"`
	Description string    `gorm:"type:text"`
	Position    int       `gorm:"default:0"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (CourseUnit) TableName() string {
	return "course_units"
}

type CourseTopic struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CourseId      uuid.UUID      `gorm:"type:uuid;not null;index"`
	UnitId        uuid.UUID      `gorm:"type:uuid;index"`
	Title         string         `gorm:"type:varchar(255);not null"`
	Description   string         `gorm:"type:text"`
	Concepts      datatypes.JSON `gorm:"type:jsonb"`
	Prerequisites datatypes.JSON `gorm:"type:jsonb"`
	Position      int            `gorm:"default:0"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
}

func (CourseTopic) TableName() string {
	return "course_topics"
}
