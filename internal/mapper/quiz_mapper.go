package mapper

import (
	"ai-coursebuilder-be/internal/entity"
	"ai-coursebuilder-be/internal/model"
)

type QuizMapper struct{}

func NewQuizMapper() *QuizMapper {
	return &QuizMapper{}
}

func (m *QuizMapper) ToEntity(q *model.QuizQuestion) *entity.QuizQuestion {
	if q == nil {
		return nil
	}
	return &entity.QuizQuestion{
		Id:            q.Id,
		CourseId:      q.CourseId,
		TopicId:       q.TopicId,
		Type:          q.Type,
		Difficulty:    q.Difficulty,
		Question:      q.Question,
		Options:       jsonToStrings(q.Options),
		CorrectAnswer: q.CorrectAnswer,
		SampleAnswer:  q.SampleAnswer,
		Rubric:        q.Rubric,
		Explanation:   q.Explanation,
		CreatedAt:     q.CreatedAt,
	}
}

func (m *QuizMapper) ToModel(q *entity.QuizQuestion) *model.QuizQuestion {
	if q == nil {
		return nil
	}
	return &model.QuizQuestion{
		Id:            q.Id,
		CourseId:      q.CourseId,
		TopicId:       q.TopicId,
		Type:          q.Type,
		Difficulty:    q.Difficulty,
		Question:      q.Question,
		Options:       stringsToJSON(q.Options),
		CorrectAnswer: q.CorrectAnswer,
		SampleAnswer:  q.SampleAnswer,
		Rubric:        q.Rubric,
		Explanation:   q.Explanation,
		CreatedAt:     q.CreatedAt,
	}
}

func (m *QuizMapper) ToEntities(models []*model.QuizQuestion) []*entity.QuizQuestion {
	entities := make([]*entity.QuizQuestion, len(models))
	for i, q := range models {
		entities[i] = m.ToEntity(q)
	}
	return entities
}

func (m *QuizMapper) AttemptToEntity(a *model.QuizAttempt) *entity.QuizAttempt {
	if a == nil {
		return nil
	}
	return &entity.QuizAttempt{
		Id:         a.Id,
		SessionId:  a.SessionId,
		StudentId:  a.StudentId,
		CourseId:   a.CourseId,
		QuestionId: a.QuestionId,
		Answer:     a.Answer,
		Correct:    a.Correct,
		Score:      a.Score,
		Feedback:   a.Feedback,
		CreatedAt:  a.CreatedAt,
	}
}

func (m *QuizMapper) AttemptToModel(a *entity.QuizAttempt) *model.QuizAttempt {
	if a == nil {
		return nil
	}
	return &model.QuizAttempt{
		Id:         a.Id,
		SessionId:  a.SessionId,
		StudentId:  a.StudentId,
		CourseId:   a.CourseId,
		QuestionId: a.QuestionId,
		Answer:     a.Answer,
		Correct:    a.Correct,
		Score:      a.Score,
		Feedback:   a.Feedback,
		CreatedAt:  a.CreatedAt,
	}
}
