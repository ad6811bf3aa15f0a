package dto

import (
	"time"

	"github.com/google/uuid"
)

type CourseSummaryResponse struct {
	Id             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Difficulty     string    `json:"difficulty"`
	Tags           []string  `json:"tags"`
	ReadinessScore float64   `json:"readiness_score"`
	PublishedAt    time.Time `json:"published_at"`
	CreatedAt      time.Time `json:"created_at"`
}

type CourseTopicResponse struct {
	Id            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Concepts      []string  `json:"concepts,omitempty"`
	Prerequisites []string  `json:"prerequisites,omitempty"`
	Position      int       `json:"position"`
}

type CourseUnitResponse struct {
	Id          uuid.UUID             `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Position    int                   `json:"position"`
	Topics      []CourseTopicResponse `json:"topics"`
}

type ShowCourseResponse struct {
	Id             uuid.UUID            `json:"id"`
	Title          string               `json:"title"`
	Description    string               `json:"description"`
	Difficulty     string               `json:"difficulty"`
	Tags           []string             `json:"tags"`
	ReadinessScore float64              `json:"readiness_score"`
	PublishedAt    time.Time            `json:"published_at"`
	Units          []CourseUnitResponse `json:"units"`
	QuestionCount  int                  `json:"question_count"`
	CreatedAt      time.Time            `json:"created_at"`
}
