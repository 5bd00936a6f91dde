package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"ai-studyroom-be/internal/dto"
	"ai-studyroom-be/internal/entity"
	"ai-studyroom-be/internal/repository/contract"
	"ai-studyroom-be/internal/repository/specification"
	"ai-studyroom-be/internal/repository/unitofwork"
	"ai-studyroom-be/pkg/embedding"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDocumentRepo struct {
	contract.DocumentRepository

	document *entity.Document
	updated  *entity.Document
}

func (f *fakeDocumentRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	return f.document, nil
}

func (f *fakeDocumentRepo) Update(ctx context.Context, document *entity.Document) error {
	f.updated = document
	return nil
}

type fakeChunkRepo struct {
	contract.DocumentChunkRepository

	created []*entity.DocumentChunk
	deleted []uuid.UUID
}

func (f *fakeChunkRepo) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	f.created = append(f.created, chunks...)
	return nil
}

func (f *fakeChunkRepo) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	f.deleted = append(f.deleted, documentId)
	return nil
}

type fakeIngestUow struct {
	unitofwork.UnitOfWork

	documents *fakeDocumentRepo
	chunks    *fakeChunkRepo
	committed bool
}

func (f *fakeIngestUow) DocumentRepository() contract.DocumentRepository { return f.documents }
func (f *fakeIngestUow) DocumentChunkRepository() contract.DocumentChunkRepository {
	return f.chunks
}
func (f *fakeIngestUow) Begin(ctx context.Context) error { return nil }
func (f *fakeIngestUow) Commit() error {
	f.committed = true
	return nil
}
func (f *fakeIngestUow) Rollback() error { return nil }

type fakeIngestUowFactory struct{ uow *fakeIngestUow }

func (f *fakeIngestUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

// flakyEmbedder fails the first N calls, then succeeds.
type flakyEmbedder struct {
	failures int
	calls    int
}

func (f *flakyEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("provider unavailable")
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.1, 0.2}},
	}, nil
}

func ingestMessage(t *testing.T, documentId uuid.UUID) *message.Message {
	t.Helper()
	payload, err := json.Marshal(dto.PublishIngestDocumentMessage{DocumentId: documentId})
	require.NoError(t, err)
	return message.NewMessage("test", payload)
}

func newIngestFixture(doc *entity.Document, embedder embedding.EmbeddingProvider) (*consumerService, *fakeIngestUow) {
	uow := &fakeIngestUow{
		documents: &fakeDocumentRepo{document: doc},
		chunks:    &fakeChunkRepo{},
	}
	cs := &consumerService{
		uowFactory:        &fakeIngestUowFactory{uow: uow},
		embeddingProvider: embedder,
		chunkWords:        3,
		overlapWords:      0,
		logger:            nopLogger{},
	}
	return cs, uow
}

func TestIngestSplitsEmbedsAndIndexesEveryChunk(t *testing.T) {
	doc := &entity.Document{
		Id:      uuid.New(),
		OwnerId: uuid.New(),
		Content: strings.Repeat("word ", 7), // 7 words, 3 per chunk -> 3 chunks
	}
	cs, uow := newIngestFixture(doc, &flakyEmbedder{})

	cs.processMessage(context.Background(), ingestMessage(t, doc.Id))

	require.True(t, uow.committed)
	require.Len(t, uow.chunks.created, 3)
	for i, chunk := range uow.chunks.created {
		assert.Equal(t, entity.ChunkId(doc.Id, i), chunk.Id)
		assert.Equal(t, doc.OwnerId, chunk.OwnerId)
		assert.NotEmpty(t, chunk.Embedding)
	}
	require.NotNil(t, uow.documents.updated)
	assert.Len(t, uow.documents.updated.ChunkIds, 3)
}

func TestIngestRetriesEmbeddingOncePerChunk(t *testing.T) {
	doc := &entity.Document{
		Id:      uuid.New(),
		OwnerId: uuid.New(),
		Content: "just three words",
	}
	embedder := &flakyEmbedder{failures: 1}
	cs, uow := newIngestFixture(doc, embedder)

	cs.processMessage(context.Background(), ingestMessage(t, doc.Id))

	assert.True(t, uow.committed, "one transient failure is retried, not fatal")
	assert.Equal(t, 2, embedder.calls)
	assert.Len(t, uow.chunks.created, 1)
}

func TestIngestAbortsWhenAChunkStillFailsAfterRetry(t *testing.T) {
	doc := &entity.Document{
		Id:      uuid.New(),
		OwnerId: uuid.New(),
		Content: strings.Repeat("word ", 6),
	}
	embedder := &flakyEmbedder{failures: 100}
	cs, uow := newIngestFixture(doc, embedder)

	cs.processMessage(context.Background(), ingestMessage(t, doc.Id))

	assert.False(t, uow.committed)
	assert.Empty(t, uow.chunks.created, "no partial or zero-vector chunks are indexed")
	assert.Nil(t, uow.documents.updated)
}

func TestIngestAcksDocumentsDeletedBeforeProcessing(t *testing.T) {
	cs, uow := newIngestFixture(nil, &flakyEmbedder{})

	msg := ingestMessage(t, uuid.New())
	cs.processMessage(context.Background(), msg)

	assert.False(t, uow.committed)
	assert.Empty(t, uow.chunks.created)
}
