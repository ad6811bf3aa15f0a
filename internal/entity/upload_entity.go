package entity

import (
	"time"

	"github.com/google/uuid"
)

// CourseUpload is a file registered under a construction session.
type CourseUpload struct {
	Id        uuid.UUID
	SessionId string
	CreatorId uuid.UUID
	Filename  string
	Path      string
	Type      string
	Size      int64
	Status    string
	Error     string
	CreatedAt time.Time
}
