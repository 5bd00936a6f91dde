package service

import (
	"context"

	"ai-studyroom-be/internal/repository/unitofwork"
	"ai-studyroom-be/pkg/rag"

	"github.com/google/uuid"
)

// chunkRetriever adapts the document chunk repository to the rag.Retriever
// contract.
type chunkRetriever struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewChunkRetriever(uowFactory unitofwork.RepositoryFactory) rag.Retriever {
	return &chunkRetriever{uowFactory: uowFactory}
}

func (r *chunkRetriever) NearestChunks(ctx context.Context, vector []float32, documentID, ownerID uuid.UUID, k int) ([]rag.Chunk, error) {
	uow := r.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.DocumentChunkRepository().SearchSimilar(ctx, vector, documentID, ownerID, k)
	if err != nil {
		return nil, err
	}

	chunks := make([]rag.Chunk, len(scored))
	for i, s := range scored {
		chunks[i] = rag.Chunk{
			ID:         s.Chunk.Id,
			DocumentID: s.Chunk.DocumentId,
			OwnerID:    s.Chunk.OwnerId,
			Text:       s.Chunk.Content,
			Similarity: s.Similarity,
		}
	}
	return chunks, nil
}
