package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ai-coursebuilder-be/internal/config"
	"ai-coursebuilder-be/internal/constant"
	"ai-coursebuilder-be/internal/dto"
	"ai-coursebuilder-be/internal/entity"
	"ai-coursebuilder-be/internal/pkg/logger"
	"ai-coursebuilder-be/internal/pkg/mailer"
	"ai-coursebuilder-be/internal/repository/unitofwork"
	"ai-coursebuilder-be/pkg/events"
	pktNats "ai-coursebuilder-be/pkg/nats"
	"ai-coursebuilder-be/pkg/workflow/constructor"
	wfevents "ai-coursebuilder-be/pkg/workflow/events"
	"ai-coursebuilder-be/pkg/workflow/state"

	"github.com/google/uuid"
)

type IConstructorService interface {
	Turn(ctx context.Context, creatorId uuid.UUID, req *dto.ConstructorTurnRequest) (*dto.ConstructorTurnResponse, error)
	StreamTurn(ctx context.Context, creatorId uuid.UUID, req *dto.ConstructorTurnRequest) (<-chan wfevents.StepEvent, error)
	GetState(ctx context.Context, sessionId string) (*dto.ConstructorStateResponse, error)
	UpdateInfo(ctx context.Context, req *dto.UpdateConstructorStateRequest) (*dto.ConstructorStateResponse, error)
	RegisterUploads(ctx context.Context, creatorId uuid.UUID, sessionId string, uploads []*entity.CourseUpload) (*dto.RegisterFilesResponse, error)
	EndSession(ctx context.Context, sessionId string) error
}

type constructorService struct {
	orchestrator *constructor.Orchestrator
	uowFactory   unitofwork.RepositoryFactory
	logger       logger.ILogger
}

func NewConstructorService(
	orchestrator *constructor.Orchestrator,
	uowFactory unitofwork.RepositoryFactory,
	log logger.ILogger,
) IConstructorService {
	return &constructorService{
		orchestrator: orchestrator,
		uowFactory:   uowFactory,
		logger:       log,
	}
}

func (s *constructorService) Turn(ctx context.Context, creatorId uuid.UUID, req *dto.ConstructorTurnRequest) (*dto.ConstructorTurnResponse, error) {
	st, err := s.orchestrator.Invoke(ctx, constructor.TurnInput{
		SessionID: req.SessionId,
		CreatorID: creatorId.String(),
		Message:   req.Message,
	})
	if err != nil {
		return nil, mapWorkflowError(err)
	}
	return &dto.ConstructorTurnResponse{
		SessionId: st.SessionID,
		Phase:     string(st.Phase),
		Reply:     lastAssistantMessage(st.Messages),
		Progress:  st.Progress,
		CourseId:  st.CourseID,
	}, nil
}

func (s *constructorService) StreamTurn(ctx context.Context, creatorId uuid.UUID, req *dto.ConstructorTurnRequest) (<-chan wfevents.StepEvent, error) {
	ch, err := s.orchestrator.Stream(ctx, constructor.TurnInput{
		SessionID: req.SessionId,
		CreatorID: creatorId.String(),
		Message:   req.Message,
	})
	if err != nil {
		return nil, mapWorkflowError(err)
	}
	return ch, nil
}

func (s *constructorService) GetState(ctx context.Context, sessionId string) (*dto.ConstructorStateResponse, error) {
	st, err := s.orchestrator.GetState(ctx, sessionId)
	if err != nil {
		return nil, mapWorkflowError(err)
	}
	return constructorStateToResponse(st), nil
}

func (s *constructorService) UpdateInfo(ctx context.Context, req *dto.UpdateConstructorStateRequest) (*dto.ConstructorStateResponse, error) {
	current, err := s.orchestrator.GetState(ctx, req.Id)
	if err != nil {
		return nil, mapWorkflowError(err)
	}

	info := current.Info
	if req.Title != "" {
		info.Title = req.Title
	}
	if req.Description != "" {
		info.Description = req.Description
	}
	if req.Difficulty != "" {
		info.Difficulty = req.Difficulty
	}
	if len(req.Tags) > 0 {
		info.Tags = req.Tags
	}

	st, err := s.orchestrator.UpdateState(ctx, req.Id, &state.ConstructorUpdate{Info: &info})
	if err != nil {
		return nil, mapWorkflowError(err)
	}
	return constructorStateToResponse(st), nil
}

// RegisterUploads persists the upload rows, then registers the files
// with the running session so the next turn can ingest them.
func (s *constructorService) RegisterUploads(ctx context.Context, creatorId uuid.UUID, sessionId string, uploads []*entity.CourseUpload) (*dto.RegisterFilesResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	files := make([]state.UploadedFile, 0, len(uploads))
	for _, up := range uploads {
		up.CreatorId = creatorId
		up.SessionId = sessionId
		up.Status = string(state.FilePending)
		if err := uow.UploadRepository().Create(ctx, up); err != nil {
			return nil, err
		}
		files = append(files, state.UploadedFile{
			ID:       up.Id.String(),
			Filename: up.Filename,
			Path:     up.Path,
			Type:     up.Type,
			Size:     up.Size,
			Status:   state.FilePending,
		})
	}

	st, err := s.orchestrator.RegisterFiles(ctx, sessionId, files)
	if err != nil {
		return nil, mapWorkflowError(err)
	}

	resp := &dto.RegisterFilesResponse{SessionId: st.SessionID}
	for _, f := range st.Files {
		resp.Files = append(resp.Files, dto.UploadedFileInfo{
			Id:       f.ID,
			Filename: f.Filename,
			Type:     f.Type,
			Size:     f.Size,
			Status:   string(f.Status),
			Error:    f.Error,
		})
	}
	return resp, nil
}

func (s *constructorService) EndSession(ctx context.Context, sessionId string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChunkEmbeddingRepository().DeleteBySessionId(ctx, sessionId); err != nil {
		s.logger.Warn("CONSTRUCTOR", "failed to drop session chunks", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}
	return mapWorkflowError(s.orchestrator.EndSession(ctx, sessionId))
}

func constructorStateToResponse(st *state.ConstructorState) *dto.ConstructorStateResponse {
	resp := &dto.ConstructorStateResponse{
		SessionId:  st.SessionID,
		Phase:      string(st.Phase),
		PhaseHint:  constant.PhaseMessage(string(st.Phase)),
		Info:       st.Info,
		Structure:  st.Structure,
		Questions:  len(st.Questions),
		Validation: st.Validation,
		Progress:   st.Progress,
		CourseId:   st.CourseID,
		Errors:     st.Errors,
		Warnings:   st.Warnings,
		CreatedAt:  st.CreatedAt,
		UpdatedAt:  st.UpdatedAt,
	}
	for _, f := range st.Files {
		resp.Files = append(resp.Files, dto.UploadedFileInfo{
			Id:       f.ID,
			Filename: f.Filename,
			Type:     f.Type,
			Size:     f.Size,
			Status:   string(f.Status),
			Error:    f.Error,
		})
	}
	return resp
}

func lastAssistantMessage(messages []state.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "assistant" {
			return messages[i].Content
		}
	}
	return ""
}

// courseFinalizer persists a validated construction session as a
// published course. It implements the construction workflow's
// finalization hook.
type courseFinalizer struct {
	uowFactory     unitofwork.RepositoryFactory
	emailService   mailer.IEmailService
	eventPublisher *pktNats.Publisher
	cfg            *config.Config
	logger         logger.ILogger
}

func NewCourseFinalizer(
	uowFactory unitofwork.RepositoryFactory,
	emailService mailer.IEmailService,
	eventPublisher *pktNats.Publisher,
	cfg *config.Config,
	log logger.ILogger,
) constructor.Finalizer {
	return &courseFinalizer{
		uowFactory:     uowFactory,
		emailService:   emailService,
		eventPublisher: eventPublisher,
		cfg:            cfg,
		logger:         log,
	}
}

func (f *courseFinalizer) Finalize(ctx context.Context, st *state.ConstructorState) (string, error) {
	if st.Structure == nil {
		return "", fmt.Errorf("finalize: session has no course structure")
	}
	creatorId, err := uuid.Parse(st.CreatorID)
	if err != nil {
		return "", fmt.Errorf("finalize: invalid creator id: %w", err)
	}

	readiness := 0.0
	if st.Validation != nil {
		readiness = st.Validation.ReadinessScore
	}

	course := &entity.Course{
		Id:             uuid.New(),
		CreatorId:      creatorId,
		Title:          st.Info.Title,
		Description:    st.Info.Description,
		Difficulty:     st.Info.Difficulty,
		Tags:           st.Info.Tags,
		ReadinessScore: readiness,
		PublishedAt:    time.Now(),
		CreatedAt:      time.Now(),
	}

	units, topics, topicIds := buildCourseStructure(course.Id, st.Structure)

	uow := f.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return "", err
	}
	defer uow.Rollback()

	if err := uow.CourseRepository().Create(ctx, course); err != nil {
		return "", err
	}
	if err := uow.CourseRepository().ReplaceStructure(ctx, course.Id, units, topics); err != nil {
		return "", err
	}

	questions, skipped := buildQuizQuestions(course.Id, st.Questions, topicIds)
	if skipped > 0 {
		f.logger.Warn("CONSTRUCTOR", "skipped questions with unresolvable topics", map[string]interface{}{
			"session_id": st.SessionID,
			"skipped":    skipped,
		})
	}
	if len(questions) > 0 {
		if err := uow.QuizRepository().CreateBulk(ctx, questions); err != nil {
			return "", err
		}
	}

	if err := uow.ChunkEmbeddingRepository().AssignCourse(ctx, st.SessionID, course.Id); err != nil {
		return "", err
	}

	if err := uow.Commit(); err != nil {
		return "", err
	}

	f.notifyPublished(ctx, course)
	return course.Id.String(), nil
}

// notifyPublished is best-effort: the course is already committed, a
// failed notice must not fail finalization.
func (f *courseFinalizer) notifyPublished(ctx context.Context, course *entity.Course) {
	if f.emailService != nil && f.cfg.SMTP.NotifyEmail != "" {
		if err := f.emailService.SendCoursePublished(f.cfg.SMTP.NotifyEmail, course.Title, course.Id.String()); err != nil {
			f.logger.Warn("CONSTRUCTOR", "publish notice mail failed", map[string]interface{}{
				"course_id": course.Id.String(),
				"error":     err.Error(),
			})
		}
	}
	if f.eventPublisher != nil {
		evt := events.New(constant.SubjectCoursePublished, map[string]interface{}{
			"course_id":  course.Id.String(),
			"creator_id": course.CreatorId.String(),
			"title":      course.Title,
		})
		if err := f.eventPublisher.Publish(ctx, evt); err != nil {
			f.logger.Warn("CONSTRUCTOR", "publish event failed", map[string]interface{}{
				"course_id": course.Id.String(),
				"error":     err.Error(),
			})
		}
	}
}

// buildCourseStructure maps the in-state structure onto persistent
// rows. The returned index resolves a state topic reference (id or
// lowercased title) to its new row id.
func buildCourseStructure(courseId uuid.UUID, structure *state.CourseStructure) ([]*entity.CourseUnit, []*entity.CourseTopic, map[string]uuid.UUID) {
	unitIds := make(map[string]uuid.UUID, len(structure.Units))
	units := make([]*entity.CourseUnit, 0, len(structure.Units))
	for i, u := range structure.Units {
		id := uuid.New()
		unitIds[u.ID] = id
		units = append(units, &entity.CourseUnit{
			Id:          id,
			CourseId:    courseId,
			Title:       u.Title,
			Description: u.Description,
			Position:    i,
			CreatedAt:   time.Now(),
		})
	}

	topicIds := make(map[string]uuid.UUID, len(structure.Topics)*2)
	topics := make([]*entity.CourseTopic, 0, len(structure.Topics))
	for i, t := range structure.Topics {
		id := uuid.New()
		if t.ID != "" {
			topicIds[t.ID] = id
		}
		topicIds[strings.ToLower(t.Title)] = id
		topics = append(topics, &entity.CourseTopic{
			Id:            id,
			CourseId:      courseId,
			UnitId:        unitIds[t.UnitID],
			Title:         t.Title,
			Description:   t.Description,
			Concepts:      t.Concepts,
			Prerequisites: structure.Prerequisites[t.Title],
			Position:      i,
			CreatedAt:     time.Now(),
		})
	}
	return units, topics, topicIds
}

func buildQuizQuestions(courseId uuid.UUID, questions []state.QuizQuestion, topicIds map[string]uuid.UUID) ([]*entity.QuizQuestion, int) {
	rows := make([]*entity.QuizQuestion, 0, len(questions))
	skipped := 0
	for _, q := range questions {
		topicId, ok := topicIds[q.TopicID]
		if !ok {
			topicId, ok = topicIds[strings.ToLower(q.TopicTitle)]
		}
		if !ok {
			skipped++
			continue
		}
		rows = append(rows, &entity.QuizQuestion{
			Id:            uuid.New(),
			CourseId:      courseId,
			TopicId:       topicId,
			Type:          q.Type,
			Difficulty:    q.Difficulty,
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			SampleAnswer:  q.SampleAnswer,
			Rubric:        q.Rubric,
			Explanation:   q.Explanation,
			CreatedAt:     time.Now(),
		})
	}
	return rows, skipped
}
