package dto

import (
	"time"

	"ai-coursebuilder-be/pkg/workflow/state"
)

type ConstructorTurnRequest struct {
	SessionId string `json:"session_id"`
	Message   string `json:"message" validate:"required"`
}

type ConstructorTurnResponse struct {
	SessionId string  `json:"session_id"`
	Phase     string  `json:"phase"`
	Reply     string  `json:"reply"`
	Progress  float64 `json:"progress"`
	CourseId  string  `json:"course_id,omitempty"`
}

type UploadedFileInfo struct {
	Id       string `json:"id"`
	Filename string `json:"filename"`
	Type     string `json:"type"`
	Size     int64  `json:"size"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

type RegisterFilesResponse struct {
	SessionId string             `json:"session_id"`
	Files     []UploadedFileInfo `json:"files"`
}

// ConstructorStateResponse is the read view of a construction session.
// PhaseHint is a human-readable description of what the current phase
// expects from the creator.
type ConstructorStateResponse struct {
	SessionId  string                  `json:"session_id"`
	Phase      string                  `json:"phase"`
	PhaseHint  string                  `json:"phase_hint"`
	Info       state.CourseInfo        `json:"info"`
	Files      []UploadedFileInfo      `json:"files"`
	Structure  *state.CourseStructure  `json:"structure,omitempty"`
	Questions  int                     `json:"question_count"`
	Validation *state.ValidationResult `json:"validation,omitempty"`
	Progress   float64                 `json:"progress"`
	CourseId   string                  `json:"course_id,omitempty"`
	Errors     []string                `json:"errors,omitempty"`
	Warnings   []string                `json:"warnings,omitempty"`
	CreatedAt  time.Time               `json:"created_at"`
	UpdatedAt  time.Time               `json:"updated_at"`
}

// UpdateConstructorStateRequest carries a partial overwrite of the
// session's gathered course info. Empty fields are left untouched.
type UpdateConstructorStateRequest struct {
	Id          string
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Difficulty  string   `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	Tags        []string `json:"tags"`
}
