package state

import (
	"fmt"
	"time"
)

// ConstructorUpdate is a partial state produced by one step or
// sub-workflow. The merge policy is fixed: messages, errors and
// warnings append; progress takes the max; scalars and result slices
// overwrite when set; SubResults deep-merges per namespace key.
type ConstructorUpdate struct {
	Phase      *ConstructorPhase
	Info       *CourseInfo
	CourseID   string
	Messages   []Message
	Files      []UploadedFile
	Chunks     []ContentChunk
	Structure  *CourseStructure
	Questions  []QuizQuestion
	Validation *ValidationResult
	SubResults map[string]map[string]any
	Progress   float64
	Errors     []string
	Warnings   []string
}

// Apply merges the update into the state. The phase transition is
// checked against the transition table and file statuses may only move
// forward; a violation leaves the state untouched.
func (s *ConstructorState) Apply(u *ConstructorUpdate) error {
	if u == nil {
		return nil
	}
	if u.Phase != nil {
		if err := checkTransition(s.Phase, *u.Phase); err != nil {
			return err
		}
	}
	merged, err := mergeFiles(s.Files, u.Files)
	if err != nil {
		return err
	}

	if u.Phase != nil {
		s.Phase = *u.Phase
	}
	if u.Info != nil {
		s.Info = *u.Info
	}
	if u.CourseID != "" {
		s.CourseID = u.CourseID
	}
	s.Messages = append(s.Messages, u.Messages...)
	s.Files = merged
	if u.Chunks != nil {
		s.Chunks = u.Chunks
	}
	if u.Structure != nil {
		s.Structure = u.Structure
	}
	if u.Questions != nil {
		s.Questions = u.Questions
	}
	if u.Validation != nil {
		s.Validation = u.Validation
	}
	for name, result := range u.SubResults {
		if s.SubResults == nil {
			s.SubResults = map[string]map[string]any{}
		}
		if s.SubResults[name] == nil {
			s.SubResults[name] = map[string]any{}
		}
		for k, v := range result {
			s.SubResults[name][k] = v
		}
	}
	if u.Progress > s.Progress {
		s.Progress = clamp01(u.Progress)
	}
	s.Errors = append(s.Errors, u.Errors...)
	s.Warnings = append(s.Warnings, u.Warnings...)
	s.UpdatedAt = time.Now()
	return nil
}

// mergeFiles replaces file entries by id while enforcing forward-only
// status transitions. New files are appended.
func mergeFiles(current, incoming []UploadedFile) ([]UploadedFile, error) {
	if incoming == nil {
		return current, nil
	}
	merged := make([]UploadedFile, len(current))
	copy(merged, current)

	index := make(map[string]int, len(merged))
	for i, f := range merged {
		index[f.ID] = i
	}

	for _, f := range incoming {
		i, exists := index[f.ID]
		if !exists {
			index[f.ID] = len(merged)
			merged = append(merged, f)
			continue
		}
		prev := merged[i]
		if fileRank[f.Status] < fileRank[prev.Status] {
			return nil, fmt.Errorf("file %s: backward status transition %s -> %s", f.ID, prev.Status, f.Status)
		}
		if prev.Status == FileCompleted && f.Status != FileCompleted {
			return nil, fmt.Errorf("file %s: completed file cannot be reprocessed", f.ID)
		}
		merged[i] = f
	}
	return merged, nil
}

// TutorUpdate is the tutoring counterpart of ConstructorUpdate, with
// the same merge policy.
type TutorUpdate struct {
	Mode          *TutorMode
	CurrentTopic  *string
	CurrentUnit   *string
	Mastery       map[string]MasteryRecord
	Gaps          []string
	WeakTopics    []string
	DueForReview  []string
	TopicsCovered []string
	Quiz          *ActiveQuiz
	ClearQuiz     bool
	Messages      []Message
	NextAction    *string
	Rationale     *string
	Interactions  int
	ShouldEnd     *bool
	EndReason     *string
	Summary       *string
	Progress      float64
	Errors        []string
	Warnings      []string
}

// Apply merges the update into the tutor state, checking the mode
// transition table first.
func (s *TutorState) Apply(u *TutorUpdate) error {
	if u == nil {
		return nil
	}
	if u.Mode != nil {
		if err := checkTutorTransition(s.Mode, *u.Mode); err != nil {
			return err
		}
		s.Mode = *u.Mode
	}
	if u.CurrentTopic != nil {
		s.CurrentTopic = *u.CurrentTopic
	}
	if u.CurrentUnit != nil {
		s.CurrentUnit = *u.CurrentUnit
	}
	for id, rec := range u.Mastery {
		if s.Mastery == nil {
			s.Mastery = map[string]MasteryRecord{}
		}
		s.Mastery[id] = rec
	}
	if u.Gaps != nil {
		s.Gaps = u.Gaps
	}
	if u.WeakTopics != nil {
		s.WeakTopics = u.WeakTopics
	}
	if u.DueForReview != nil {
		s.DueForReview = u.DueForReview
	}
	s.TopicsCovered = appendMissing(s.TopicsCovered, u.TopicsCovered)
	if u.ClearQuiz {
		s.Quiz = nil
	} else if u.Quiz != nil {
		s.Quiz = u.Quiz
	}
	s.Messages = append(s.Messages, u.Messages...)
	if u.NextAction != nil {
		s.NextAction = *u.NextAction
	}
	if u.Rationale != nil {
		s.Rationale = *u.Rationale
	}
	s.Interactions += u.Interactions
	if u.ShouldEnd != nil {
		s.ShouldEnd = *u.ShouldEnd
	}
	if u.EndReason != nil {
		s.EndReason = *u.EndReason
	}
	if u.Summary != nil {
		s.Summary = *u.Summary
	}
	if u.Progress > s.Progress {
		s.Progress = clamp01(u.Progress)
	}
	s.Errors = append(s.Errors, u.Errors...)
	s.Warnings = append(s.Warnings, u.Warnings...)
	s.UpdatedAt = time.Now()
	return nil
}

func appendMissing(dst, src []string) []string {
	for _, v := range src {
		seen := false
		for _, existing := range dst {
			if existing == v {
				seen = true
				break
			}
		}
		if !seen {
			dst = append(dst, v)
		}
	}
	return dst
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Ptr helpers keep update literals readable at call sites.
func PhasePtr(p ConstructorPhase) *ConstructorPhase { return &p }
func ModePtr(m TutorMode) *TutorMode                { return &m }
func StrPtr(s string) *string                       { return &s }
func BoolPtr(b bool) *bool                          { return &b }
