package mapper

import (
	"ai-coursebuilder-be/internal/entity"
	"ai-coursebuilder-be/internal/model"
)

type LearningMapper struct{}

func NewLearningMapper() *LearningMapper {
	return &LearningMapper{}
}

func (m *LearningMapper) MasteryToEntity(r *model.TopicMastery) *entity.TopicMastery {
	if r == nil {
		return nil
	}
	return &entity.TopicMastery{
		Id:          r.Id,
		StudentId:   r.StudentId,
		CourseId:    r.CourseId,
		TopicId:     r.TopicId,
		Score:       r.Score,
		Streak:      r.Streak,
		Attempts:    r.Attempts,
		LastUpdated: r.LastUpdated,
	}
}

func (m *LearningMapper) MasteryToModel(r *entity.TopicMastery) *model.TopicMastery {
	if r == nil {
		return nil
	}
	return &model.TopicMastery{
		Id:          r.Id,
		StudentId:   r.StudentId,
		CourseId:    r.CourseId,
		TopicId:     r.TopicId,
		Score:       r.Score,
		Streak:      r.Streak,
		Attempts:    r.Attempts,
		LastUpdated: r.LastUpdated,
	}
}

func (m *LearningMapper) SessionToEntity(r *model.TutorSessionRecord) *entity.TutorSessionRecord {
	if r == nil {
		return nil
	}
	return &entity.TutorSessionRecord{
		Id:           r.Id,
		SessionId:    r.SessionId,
		StudentId:    r.StudentId,
		CourseId:     r.CourseId,
		Summary:      r.Summary,
		EndReason:    r.EndReason,
		Interactions: r.Interactions,
		StartedAt:    r.StartedAt,
		EndedAt:      r.EndedAt,
	}
}

func (m *LearningMapper) SessionToModel(r *entity.TutorSessionRecord) *model.TutorSessionRecord {
	if r == nil {
		return nil
	}
	return &model.TutorSessionRecord{
		Id:           r.Id,
		SessionId:    r.SessionId,
		StudentId:    r.StudentId,
		CourseId:     r.CourseId,
		Summary:      r.Summary,
		EndReason:    r.EndReason,
		Interactions: r.Interactions,
		StartedAt:    r.StartedAt,
		EndedAt:      r.EndedAt,
	}
}

func (m *LearningMapper) UploadToEntity(u *model.CourseUpload) *entity.CourseUpload {
	if u == nil {
		return nil
	}
	return &entity.CourseUpload{
		Id:        u.Id,
		SessionId: u.SessionId,
		CreatorId: u.CreatorId,
		Filename:  u.Filename,
		Path:      u.Path,
		Type:      u.Type,
		Size:      u.Size,
		Status:    u.Status,
		Error:     u.Error,
		CreatedAt: u.CreatedAt,
	}
}

func (m *LearningMapper) UploadToModel(u *entity.CourseUpload) *model.CourseUpload {
	if u == nil {
		return nil
	}
	return &model.CourseUpload{
		Id:        u.Id,
		SessionId: u.SessionId,
		CreatorId: u.CreatorId,
		Filename:  u.Filename,
		Path:      u.Path,
		Type:      u.Type,
		Size:      u.Size,
		Status:    u.Status,
		Error:     u.Error,
		CreatedAt: u.CreatedAt,
	}
}
