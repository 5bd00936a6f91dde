package contract

import (
	"context"

	"ai-studyroom-be/internal/entity"
	"ai-studyroom-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredChunk wraps DocumentChunk with its cosine similarity against the
// query vector.
type ScoredChunk struct {
	Chunk      *entity.DocumentChunk
	Similarity float64
}

type DocumentChunkRepository interface {
	Create(ctx context.Context, chunk *entity.DocumentChunk) error
	CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error
	DeleteByIds(ctx context.Context, ids []string) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilar returns the limit nearest chunks by cosine distance,
	// restricted to one document and one owner.
	SearchSimilar(ctx context.Context, embedding []float32, documentId, ownerId uuid.UUID, limit int) ([]*ScoredChunk, error)
}
