package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"ai-coursebuilder-be/internal/constant"
	"ai-coursebuilder-be/internal/dto"
	"ai-coursebuilder-be/internal/entity"
	"ai-coursebuilder-be/internal/pkg/logger"
	"ai-coursebuilder-be/internal/repository/unitofwork"
	"ai-coursebuilder-be/pkg/embedding"
	"ai-coursebuilder-be/pkg/events"
	pktNats "ai-coursebuilder-be/pkg/nats"
	wfevents "ai-coursebuilder-be/pkg/workflow/events"
	"ai-coursebuilder-be/pkg/workflow/state"
	"ai-coursebuilder-be/pkg/workflow/tutor"

	"github.com/google/uuid"
)

type ITutorService interface {
	Turn(ctx context.Context, studentId uuid.UUID, req *dto.TutorTurnRequest) (*dto.TutorTurnResponse, error)
	StreamTurn(ctx context.Context, studentId uuid.UUID, req *dto.TutorTurnRequest) (<-chan wfevents.StepEvent, error)
	GetState(ctx context.Context, sessionId string) (*dto.TutorStateResponse, error)
	EndSession(ctx context.Context, sessionId string) (*dto.EndSessionResponse, error)
}

type tutorService struct {
	orchestrator *tutor.Orchestrator
	uowFactory   unitofwork.RepositoryFactory
	logger       logger.ILogger
}

func NewTutorService(
	orchestrator *tutor.Orchestrator,
	uowFactory unitofwork.RepositoryFactory,
	log logger.ILogger,
) ITutorService {
	return &tutorService{
		orchestrator: orchestrator,
		uowFactory:   uowFactory,
		logger:       log,
	}
}

func (s *tutorService) Turn(ctx context.Context, studentId uuid.UUID, req *dto.TutorTurnRequest) (*dto.TutorTurnResponse, error) {
	st, err := s.orchestrator.Invoke(ctx, tutor.TurnInput{
		SessionID: req.SessionId,
		StudentID: studentId.String(),
		CourseID:  req.CourseId,
		Message:   req.Message,
	})
	if err != nil {
		return nil, mapWorkflowError(err)
	}
	return &dto.TutorTurnResponse{
		SessionId:    st.SessionID,
		Mode:         string(st.Mode),
		Reply:        lastAssistantMessage(st.Messages),
		NextAction:   st.NextAction,
		Progress:     st.Progress,
		ShouldEnd:    st.ShouldEnd,
		EndReason:    st.EndReason,
		Summary:      st.Summary,
		CurrentTopic: st.CurrentTopic,
		Warnings:     st.Warnings,
	}, nil
}

func (s *tutorService) StreamTurn(ctx context.Context, studentId uuid.UUID, req *dto.TutorTurnRequest) (<-chan wfevents.StepEvent, error) {
	ch, err := s.orchestrator.Stream(ctx, tutor.TurnInput{
		SessionID: req.SessionId,
		StudentID: studentId.String(),
		CourseID:  req.CourseId,
		Message:   req.Message,
	})
	if err != nil {
		return nil, mapWorkflowError(err)
	}
	return ch, nil
}

func (s *tutorService) GetState(ctx context.Context, sessionId string) (*dto.TutorStateResponse, error) {
	st, err := s.orchestrator.GetState(ctx, sessionId)
	if err != nil {
		return nil, mapWorkflowError(err)
	}

	titles := s.topicTitles(ctx, st.CourseID)
	mastery := make([]dto.MasteryInfo, 0, len(st.Mastery))
	for key, rec := range st.Mastery {
		label := key
		if title, ok := titles[key]; ok {
			label = title
		}
		mastery = append(mastery, dto.MasteryInfo{
			Topic:       label,
			Score:       rec.Score,
			Streak:      rec.Streak,
			Attempts:    rec.Attempts,
			LastUpdated: rec.LastUpdated,
		})
	}
	sort.Slice(mastery, func(i, j int) bool { return mastery[i].Topic < mastery[j].Topic })

	return &dto.TutorStateResponse{
		SessionId:     st.SessionID,
		Mode:          string(st.Mode),
		ModeHint:      constant.ModeMessage(string(st.Mode)),
		CourseId:      st.CourseID,
		CurrentTopic:  st.CurrentTopic,
		TopicsCovered: st.TopicsCovered,
		Gaps:          st.Gaps,
		DueForReview:  st.DueForReview,
		Mastery:       mastery,
		QuizActive:    st.Quiz != nil && !st.Quiz.Completed,
		Interactions:  st.Interactions,
		Progress:      st.Progress,
		ShouldEnd:     st.ShouldEnd,
		CreatedAt:     st.CreatedAt,
		UpdatedAt:     st.UpdatedAt,
	}, nil
}

func (s *tutorService) EndSession(ctx context.Context, sessionId string) (*dto.EndSessionResponse, error) {
	if err := s.orchestrator.EndSession(ctx, sessionId); err != nil {
		return nil, mapWorkflowError(err)
	}
	return &dto.EndSessionResponse{SessionId: sessionId}, nil
}

func (s *tutorService) topicTitles(ctx context.Context, courseId string) map[string]string {
	id, err := uuid.Parse(courseId)
	if err != nil {
		return nil
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	topics, err := uow.CourseRepository().FindTopics(ctx, id)
	if err != nil {
		return nil
	}
	titles := make(map[string]string, len(topics))
	for _, t := range topics {
		titles[t.Id.String()] = t.Title
	}
	return titles
}

// TutorBackend implements the tutoring coordinator's collaborator
// interfaces on top of the persistence layer.
type TutorBackend struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	eventPublisher    *pktNats.Publisher
	smoothing         float64
	logger            logger.ILogger
}

func NewTutorBackend(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	eventPublisher *pktNats.Publisher,
	smoothing float64,
	log logger.ILogger,
) *TutorBackend {
	return &TutorBackend{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		eventPublisher:    eventPublisher,
		smoothing:         smoothing,
		logger:            log,
	}
}

var (
	_ tutor.CourseSource     = &TutorBackend{}
	_ tutor.ContentRetriever = &TutorBackend{}
	_ tutor.AttemptRecorder  = &TutorBackend{}
	_ tutor.SessionCloser    = &TutorBackend{}
	_ tutor.StateSeeder      = &TutorBackend{}
)

func (b *TutorBackend) Structure(ctx context.Context, courseID string) (*state.CourseStructure, error) {
	id, err := uuid.Parse(courseID)
	if err != nil {
		return nil, err
	}
	uow := b.uowFactory.NewUnitOfWork(ctx)

	units, err := uow.CourseRepository().FindUnits(ctx, id)
	if err != nil {
		return nil, err
	}
	topics, err := uow.CourseRepository().FindTopics(ctx, id)
	if err != nil {
		return nil, err
	}

	structure := &state.CourseStructure{
		Prerequisites: make(map[string][]string),
	}
	titlesByUnit := make(map[uuid.UUID][]string)
	for _, t := range topics {
		titlesByUnit[t.UnitId] = append(titlesByUnit[t.UnitId], t.Title)
		structure.Topics = append(structure.Topics, state.Topic{
			ID:          t.Id.String(),
			Title:       t.Title,
			Description: t.Description,
			Concepts:    t.Concepts,
			UnitID:      t.UnitId.String(),
			Order:       t.Position,
		})
		if len(t.Prerequisites) > 0 {
			structure.Prerequisites[t.Title] = t.Prerequisites
		}
	}
	for _, u := range units {
		structure.Units = append(structure.Units, state.Unit{
			ID:          u.Id.String(),
			Title:       u.Title,
			Description: u.Description,
			TopicTitles: titlesByUnit[u.Id],
			Order:       u.Position,
		})
	}
	return structure, nil
}

func (b *TutorBackend) QuestionsForTopic(ctx context.Context, courseID, topic string, limit int) ([]state.QuizQuestion, error) {
	courseId, err := uuid.Parse(courseID)
	if err != nil {
		return nil, err
	}
	uow := b.uowFactory.NewUnitOfWork(ctx)

	topicId, topicTitle, err := b.resolveTopic(ctx, uow, courseId, topic)
	if err != nil {
		return nil, err
	}

	rows, err := uow.QuizRepository().FindByTopic(ctx, courseId, topicId, limit)
	if err != nil {
		return nil, err
	}

	questions := make([]state.QuizQuestion, 0, len(rows))
	for _, row := range rows {
		questions = append(questions, state.QuizQuestion{
			ID:            row.Id.String(),
			TopicID:       row.TopicId.String(),
			TopicTitle:    topicTitle,
			Type:          row.Type,
			Difficulty:    row.Difficulty,
			Question:      row.Question,
			Options:       row.Options,
			CorrectAnswer: row.CorrectAnswer,
			SampleAnswer:  row.SampleAnswer,
			Rubric:        row.Rubric,
			Explanation:   row.Explanation,
		})
	}
	return questions, nil
}

// resolveTopic accepts either a topic row id or a title.
func (b *TutorBackend) resolveTopic(ctx context.Context, uow unitofwork.UnitOfWork, courseId uuid.UUID, topic string) (uuid.UUID, string, error) {
	topics, err := uow.CourseRepository().FindTopics(ctx, courseId)
	if err != nil {
		return uuid.Nil, "", err
	}
	if id, err := uuid.Parse(topic); err == nil {
		for _, t := range topics {
			if t.Id == id {
				return t.Id, t.Title, nil
			}
		}
	}
	for _, t := range topics {
		if strings.EqualFold(t.Title, topic) {
			return t.Id, t.Title, nil
		}
	}
	return uuid.Nil, "", fmt.Errorf("tutor: topic %q not found in course", topic)
}

func (b *TutorBackend) Retrieve(ctx context.Context, courseID, query string, limit int) ([]string, error) {
	courseId, err := uuid.Parse(courseID)
	if err != nil {
		return nil, err
	}
	resp, err := b.embeddingProvider.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, err
	}

	uow := b.uowFactory.NewUnitOfWork(ctx)
	rows, err := uow.ChunkEmbeddingRepository().SearchSimilar(ctx, resp.Embedding.Values, limit, courseId)
	if err != nil {
		return nil, err
	}
	docs := make([]string, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, row.Document)
	}
	return docs, nil
}

func (b *TutorBackend) RecordAttempt(ctx context.Context, st *state.TutorState, q *state.QuizQuestion, answer string, g tutor.Grade) error {
	studentId, err := uuid.Parse(st.StudentID)
	if err != nil {
		return err
	}
	courseId, err := uuid.Parse(st.CourseID)
	if err != nil {
		return err
	}
	questionId, err := uuid.Parse(q.ID)
	if err != nil {
		return err
	}

	uow := b.uowFactory.NewUnitOfWork(ctx)
	attempt := &entity.QuizAttempt{
		Id:         uuid.New(),
		SessionId:  st.SessionID,
		StudentId:  studentId,
		CourseId:   courseId,
		QuestionId: questionId,
		Answer:     answer,
		Correct:    g.Correct,
		Score:      g.Score,
		Feedback:   g.Feedback,
		CreatedAt:  time.Now(),
	}
	if err := uow.QuizRepository().CreateAttempt(ctx, attempt); err != nil {
		return err
	}

	// Mirror the in-state mastery update so the durable record survives
	// session cleanup.
	topicId, err := uuid.Parse(q.TopicID)
	if err != nil {
		b.logger.Warn("TUTOR", "mastery not persisted, question has no topic row", map[string]interface{}{
			"question_id": q.ID,
		})
		return nil
	}
	rec := tutor.UpdateMastery(st.Mastery[q.TopicID], g.Correct, b.smoothing)
	return uow.MasteryRepository().Upsert(ctx, &entity.TopicMastery{
		Id:          uuid.New(),
		StudentId:   studentId,
		CourseId:    courseId,
		TopicId:     topicId,
		Score:       rec.Score,
		Streak:      rec.Streak,
		Attempts:    rec.Attempts,
		LastUpdated: rec.LastUpdated,
	})
}

func (b *TutorBackend) CloseSession(ctx context.Context, st *state.TutorState) error {
	studentId, err := uuid.Parse(st.StudentID)
	if err != nil {
		return err
	}
	courseId, err := uuid.Parse(st.CourseID)
	if err != nil {
		return err
	}

	uow := b.uowFactory.NewUnitOfWork(ctx)
	record := &entity.TutorSessionRecord{
		Id:           uuid.New(),
		SessionId:    st.SessionID,
		StudentId:    studentId,
		CourseId:     courseId,
		Summary:      st.Summary,
		EndReason:    st.EndReason,
		Interactions: st.Interactions,
		StartedAt:    st.CreatedAt,
		EndedAt:      time.Now(),
	}
	if err := uow.TutorSessionRepository().SaveRecord(ctx, record); err != nil {
		return err
	}

	if b.eventPublisher != nil {
		evt := events.New(constant.SubjectSessionEnded, map[string]interface{}{
			"session_id": st.SessionID,
			"student_id": st.StudentID,
			"course_id":  st.CourseID,
			"end_reason": st.EndReason,
		})
		if err := b.eventPublisher.Publish(ctx, evt); err != nil {
			b.logger.Warn("TUTOR", "session ended event failed", map[string]interface{}{
				"session_id": st.SessionID,
				"error":      err.Error(),
			})
		}
	}
	return nil
}

// SeedState loads the student's persisted mastery into a fresh
// session so review scheduling works across sessions.
func (b *TutorBackend) SeedState(ctx context.Context, st *state.TutorState) error {
	studentId, err := uuid.Parse(st.StudentID)
	if err != nil {
		return nil
	}
	courseId, err := uuid.Parse(st.CourseID)
	if err != nil {
		return nil
	}

	uow := b.uowFactory.NewUnitOfWork(ctx)
	records, err := uow.MasteryRepository().FindByStudentAndCourse(ctx, studentId, courseId)
	if err != nil {
		return err
	}
	for _, r := range records {
		st.Mastery[r.TopicId.String()] = state.MasteryRecord{
			Score:       r.Score,
			Streak:      r.Streak,
			Attempts:    r.Attempts,
			LastUpdated: r.LastUpdated,
		}
	}
	return nil
}
