package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByCourseID filters rows belonging to one course.
type ByCourseID struct {
	CourseID uuid.UUID
}

func (s ByCourseID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("course_id = ?", s.CourseID)
}

// ByCreatorID filters courses owned by one creator.
type ByCreatorID struct {
	CreatorID uuid.UUID
}

func (s ByCreatorID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("creator_id = ?", s.CreatorID)
}

// ByStudentID filters learner-scoped rows.
type ByStudentID struct {
	StudentID uuid.UUID
}

func (s ByStudentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("student_id = ?", s.StudentID)
}

// BySessionID filters rows registered under one workflow session.
type BySessionID struct {
	SessionID string
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

// ByTopicID filters rows attached to one topic.
type ByTopicID struct {
	TopicID uuid.UUID
}

func (s ByTopicID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("topic_id = ?", s.TopicID)
}

// ByUploadStatus filters uploads in one lifecycle status.
type ByUploadStatus struct {
	Status string
}

func (s ByUploadStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}
