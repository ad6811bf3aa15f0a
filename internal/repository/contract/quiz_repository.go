package contract

import (
	"context"

	"ai-coursebuilder-be/internal/entity"
	"ai-coursebuilder-be/internal/repository/specification"

	"github.com/google/uuid"
)

type QuizRepository interface {
	CreateBulk(ctx context.Context, questions []*entity.QuizQuestion) error
	DeleteByCourseId(ctx context.Context, courseId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.QuizQuestion, error)
	FindByTopic(ctx context.Context, courseId, topicId uuid.UUID, limit int) ([]*entity.QuizQuestion, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	CreateAttempt(ctx context.Context, attempt *entity.QuizAttempt) error
	FindAttempts(ctx context.Context, specs ...specification.Specification) ([]*entity.QuizAttempt, error)
}
