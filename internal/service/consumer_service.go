package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-studyroom-be/internal/dto"
	"ai-studyroom-be/internal/entity"
	"ai-studyroom-be/internal/pkg/logger"
	"ai-studyroom-be/internal/repository/specification"
	"ai-studyroom-be/internal/repository/unitofwork"
	"ai-studyroom-be/pkg/embedding"
	"ai-studyroom-be/pkg/events"
	pktNats "ai-studyroom-be/pkg/nats"
	"ai-studyroom-be/pkg/textsplit"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService is the ingest worker. It turns a queued document into
// embedded chunks: split by word count, embed each chunk, replace the
// document's index in one transaction.
type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	eventPublisher    *pktNats.Publisher
	chunkWords        int
	overlapWords      int
	logger            logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	eventPublisher *pktNats.Publisher,
	chunkWords int,
	overlapWords int,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		eventPublisher:    eventPublisher,
		chunkWords:        chunkWords,
		overlapWords:      overlapWords,
		logger:            log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishIngestDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("Consumer", "failed to unmarshal ingest message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.logger.Info("Consumer", "ingesting document", map[string]interface{}{"document_id": payload.DocumentId})

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: payload.DocumentId})
	if err != nil {
		cs.logger.Error("Consumer", "failed to load document", map[string]interface{}{"document_id": payload.DocumentId, "error": err.Error()})
		msg.Nack()
		return
	}
	if document == nil {
		// Deleted before the worker got to it.
		msg.Ack()
		return
	}

	chunks := textsplit.SplitWords(document.Content, cs.chunkWords, cs.overlapWords)
	newChunks := make([]*entity.DocumentChunk, 0, len(chunks))
	chunkIds := make([]string, 0, len(chunks))

	for i, chunk := range chunks {
		values, err := cs.embedChunk(ctx, chunk)
		if err != nil {
			// Abort the whole document rather than indexing a partial or
			// zero-vector chunk set.
			cs.logger.Error("Consumer", "embedding failed, aborting ingest", map[string]interface{}{
				"document_id": document.Id, "chunk_index": i, "error": err.Error(),
			})
			cs.publishIngestFailed(ctx, document, err.Error())
			msg.Nack()
			return
		}

		id := entity.ChunkId(document.Id, i)
		chunkIds = append(chunkIds, id)
		newChunks = append(newChunks, &entity.DocumentChunk{
			Id:         id,
			DocumentId: document.Id,
			OwnerId:    document.OwnerId,
			ChunkIndex: i,
			Content:    chunk,
			Embedding:  values,
			CreatedAt:  time.Now().UTC(),
		})
	}

	if err := uow.Begin(ctx); err != nil {
		cs.logger.Error("Consumer", "failed to begin transaction", map[string]interface{}{"error": err.Error()})
		msg.Nack()
		return
	}
	defer uow.Rollback()

	// Re-ingest replaces the previous index wholesale.
	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, document.Id); err != nil {
		cs.logger.Error("Consumer", "failed to delete old chunks", map[string]interface{}{"document_id": document.Id, "error": err.Error()})
		msg.Nack()
		return
	}

	if len(newChunks) > 0 {
		if err := uow.DocumentChunkRepository().CreateBulk(ctx, newChunks); err != nil {
			cs.logger.Error("Consumer", "failed to create chunks", map[string]interface{}{"document_id": document.Id, "error": err.Error()})
			msg.Nack()
			return
		}
	}

	document.ChunkIds = chunkIds
	now := time.Now().UTC()
	document.UpdatedAt = &now
	if err := uow.DocumentRepository().Update(ctx, document); err != nil {
		cs.logger.Error("Consumer", "failed to update document chunk ids", map[string]interface{}{"document_id": document.Id, "error": err.Error()})
		msg.Nack()
		return
	}

	if err := uow.Commit(); err != nil {
		cs.logger.Error("Consumer", "failed to commit ingest", map[string]interface{}{"document_id": document.Id, "error": err.Error()})
		msg.Nack()
		return
	}

	cs.logger.Info("Consumer", "document ingested", map[string]interface{}{
		"document_id": document.Id, "chunk_count": len(newChunks),
	})

	if cs.eventPublisher != nil {
		evt := events.NewDocumentIngested(document.Id.String(), document.OwnerId.String(), len(newChunks))
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			cs.logger.Warn("Consumer", "failed to publish DOCUMENT_INGESTED", map[string]interface{}{"error": err.Error()})
		}
	}

	msg.Ack()
}

// embedChunk calls the provider with one retry for transient failures.
func (cs *consumerService) embedChunk(ctx context.Context, chunk string) ([]float32, error) {
	res, err := cs.embeddingProvider.Generate(ctx, chunk, embedding.TaskDocument)
	if err != nil {
		res, err = cs.embeddingProvider.Generate(ctx, chunk, embedding.TaskDocument)
	}
	if err != nil {
		return nil, err
	}
	return res.Embedding.Values, nil
}

func (cs *consumerService) publishIngestFailed(ctx context.Context, document *entity.Document, reason string) {
	if cs.eventPublisher == nil {
		return
	}
	evt := events.NewDocumentIngestFailed(document.Id.String(), document.OwnerId.String(), reason)
	if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
		cs.logger.Warn("Consumer", "failed to publish DOCUMENT_INGEST_FAILED", map[string]interface{}{"error": err.Error()})
	}
}
