package service

import (
	"context"
	"sort"

	"ai-coursebuilder-be/internal/dto"
	"ai-coursebuilder-be/internal/pkg/serverutils"
	"ai-coursebuilder-be/internal/repository/specification"
	"ai-coursebuilder-be/internal/repository/unitofwork"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ICourseService interface {
	List(ctx context.Context, creatorId uuid.UUID, limit, offset int) ([]*dto.CourseSummaryResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ShowCourseResponse, error)
	Delete(ctx context.Context, creatorId uuid.UUID, id uuid.UUID) error
}

type courseService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewCourseService(uowFactory unitofwork.RepositoryFactory) ICourseService {
	return &courseService{uowFactory: uowFactory}
}

func (s *courseService) List(ctx context.Context, creatorId uuid.UUID, limit, offset int) ([]*dto.CourseSummaryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	courses, err := uow.CourseRepository().FindAll(ctx,
		specification.ByCreatorID{CreatorID: creatorId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.CourseSummaryResponse, 0, len(courses))
	for _, c := range courses {
		result = append(result, &dto.CourseSummaryResponse{
			Id:             c.Id,
			Title:          c.Title,
			Description:    c.Description,
			Difficulty:     c.Difficulty,
			Tags:           c.Tags,
			ReadinessScore: c.ReadinessScore,
			PublishedAt:    c.PublishedAt,
			CreatedAt:      c.CreatedAt,
		})
	}
	return result, nil
}

func (s *courseService) Show(ctx context.Context, id uuid.UUID) (*dto.ShowCourseResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	course, err := uow.CourseRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, serverutils.NewAppError(fiber.StatusNotFound, "Course not found")
	}

	units, err := uow.CourseRepository().FindUnits(ctx, id)
	if err != nil {
		return nil, err
	}
	topics, err := uow.CourseRepository().FindTopics(ctx, id)
	if err != nil {
		return nil, err
	}
	questionCount, err := uow.QuizRepository().Count(ctx, specification.ByCourseID{CourseID: id})
	if err != nil {
		return nil, err
	}

	topicsByUnit := make(map[uuid.UUID][]dto.CourseTopicResponse)
	for _, t := range topics {
		topicsByUnit[t.UnitId] = append(topicsByUnit[t.UnitId], dto.CourseTopicResponse{
			Id:            t.Id,
			Title:         t.Title,
			Description:   t.Description,
			Concepts:      t.Concepts,
			Prerequisites: t.Prerequisites,
			Position:      t.Position,
		})
	}
	for unitId := range topicsByUnit {
		list := topicsByUnit[unitId]
		sort.Slice(list, func(i, j int) bool { return list[i].Position < list[j].Position })
		topicsByUnit[unitId] = list
	}

	resp := &dto.ShowCourseResponse{
		Id:             course.Id,
		Title:          course.Title,
		Description:    course.Description,
		Difficulty:     course.Difficulty,
		Tags:           course.Tags,
		ReadinessScore: course.ReadinessScore,
		PublishedAt:    course.PublishedAt,
		QuestionCount:  int(questionCount),
		CreatedAt:      course.CreatedAt,
	}
	for _, u := range units {
		resp.Units = append(resp.Units, dto.CourseUnitResponse{
			Id:          u.Id,
			Title:       u.Title,
			Description: u.Description,
			Position:    u.Position,
			Topics:      topicsByUnit[u.Id],
		})
	}
	return resp, nil
}

func (s *courseService) Delete(ctx context.Context, creatorId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	course, err := uow.CourseRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if course == nil {
		return serverutils.NewAppError(fiber.StatusNotFound, "Course not found")
	}
	if course.CreatorId != creatorId {
		return serverutils.NewAppError(fiber.StatusForbidden, "Not your course")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.QuizRepository().DeleteByCourseId(ctx, id); err != nil {
		return err
	}
	if err := uow.CourseRepository().Delete(ctx, id); err != nil {
		return err
	}
	return uow.Commit()
}
