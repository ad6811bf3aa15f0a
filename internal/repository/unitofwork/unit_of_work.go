package unitofwork

import (
	"context"

	"ai-coursebuilder-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	CourseRepository() contract.CourseRepository
	QuizRepository() contract.QuizRepository
	MasteryRepository() contract.MasteryRepository
	TutorSessionRepository() contract.TutorSessionRepository
	UploadRepository() contract.UploadRepository
	ChunkEmbeddingRepository() contract.ChunkEmbeddingRepository
}
