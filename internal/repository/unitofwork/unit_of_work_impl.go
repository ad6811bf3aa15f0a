package unitofwork

import (
	"context"
	"fmt"

	"ai-coursebuilder-be/internal/repository/contract"
	"ai-coursebuilder-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB // The active transaction (nil outside Begin/Commit)
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

// Repository Accessors

func (u *UnitOfWorkImpl) CourseRepository() contract.CourseRepository {
	return implementation.NewCourseRepository(u.getDB())
}

func (u *UnitOfWorkImpl) QuizRepository() contract.QuizRepository {
	return implementation.NewQuizRepository(u.getDB())
}

func (u *UnitOfWorkImpl) MasteryRepository() contract.MasteryRepository {
	return implementation.NewMasteryRepository(u.getDB())
}

func (u *UnitOfWorkImpl) TutorSessionRepository() contract.TutorSessionRepository {
	return implementation.NewTutorSessionRepository(u.getDB())
}

func (u *UnitOfWorkImpl) UploadRepository() contract.UploadRepository {
	return implementation.NewUploadRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ChunkEmbeddingRepository() contract.ChunkEmbeddingRepository {
	return implementation.NewChunkEmbeddingRepository(u.getDB())
}
