package service

import (
	"context"
	"time"

	"ai-coursebuilder-be/internal/entity"
	"ai-coursebuilder-be/internal/repository/unitofwork"
	"ai-coursebuilder-be/pkg/workflow/ingestion"
	"ai-coursebuilder-be/pkg/workflow/state"

	"github.com/google/uuid"
)

// chunkIndexer persists embedded chunks under the construction
// session's namespace. Finalization later stamps the course id onto
// the session's rows, so during construction the namespace key is the
// session id.
type chunkIndexer struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewChunkIndexer(uowFactory unitofwork.RepositoryFactory) ingestion.VectorIndexer {
	return &chunkIndexer{uowFactory: uowFactory}
}

func (x *chunkIndexer) Index(ctx context.Context, sessionId string, chunk state.ContentChunk, vector []float32) (string, error) {
	uow := x.uowFactory.NewUnitOfWork(ctx)

	row := &entity.ChunkEmbedding{
		Id:             uuid.New(),
		SessionId:      sessionId,
		SourceFileId:   chunk.SourceFile,
		Document:       chunk.Text,
		EmbeddingValue: vector,
		ChunkIndex:     chunk.Index,
		CreatedAt:      time.Now(),
	}
	if err := uow.ChunkEmbeddingRepository().Create(ctx, row); err != nil {
		return "", err
	}
	return row.Id.String(), nil
}
