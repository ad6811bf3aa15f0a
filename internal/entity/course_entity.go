package entity

import (
	"time"

	"github.com/google/uuid"
)

type Course struct {
	Id             uuid.UUID
	CreatorId      uuid.UUID
	Title          string
	Description    string
	Difficulty     string
	Tags           []string
	ReadinessScore float64
	PublishedAt    time.Time
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}

type CourseUnit struct {
	Id          uuid.UUID
	CourseId    uuid.UUID
	Title       string
	Description string
	Position    int
	CreatedAt   time.Time
}

type CourseTopic struct {
	Id            uuid.UUID
	CourseId      uuid.UUID
	UnitId        uuid.UUID
	Title         string
	Description   string
	Concepts      []string
	Prerequisites []string
	Position      int
	CreatedAt     time.Time
}
