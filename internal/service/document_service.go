package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-studyroom-be/internal/apperr"
	"ai-studyroom-be/internal/dto"
	"ai-studyroom-be/internal/entity"
	"ai-studyroom-be/internal/pkg/logger"
	"ai-studyroom-be/internal/repository/specification"
	"ai-studyroom-be/internal/repository/unitofwork"
	"ai-studyroom-be/pkg/extract"
	"ai-studyroom-be/pkg/rag"

	"github.com/google/uuid"
)

type IDocumentService interface {
	// Upload extracts text synchronously so format errors surface to the
	// caller, then queues chunking and embedding for the ingest worker.
	Upload(ctx context.Context, ownerId uuid.UUID, filename, title string, raw []byte) (*dto.UploadDocumentResponse, error)
	Show(ctx context.Context, ownerId, id uuid.UUID) (*dto.ShowDocumentResponse, error)
	List(ctx context.Context, ownerId uuid.UUID) ([]*dto.ShowDocumentResponse, error)
	// Delete removes the document row and every indexed chunk it owns.
	Delete(ctx context.Context, ownerId, id uuid.UUID) error
	// Ask answers a question grounded strictly in the document's chunks.
	Ask(ctx context.Context, ownerId, documentId uuid.UUID, question string) (*dto.AskDocumentResponse, error)
}

type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	extractor        *extract.Registry
	publisherService IPublisherService
	answerer         *rag.Answerer
	logger           logger.ILogger
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	extractor *extract.Registry,
	publisherService IPublisherService,
	answerer *rag.Answerer,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		uowFactory:       uowFactory,
		extractor:        extractor,
		publisherService: publisherService,
		answerer:         answerer,
		logger:           log,
	}
}

func (s *documentService) Upload(ctx context.Context, ownerId uuid.UUID, filename, title string, raw []byte) (*dto.UploadDocumentResponse, error) {
	text, err := s.extractor.Extract(raw, filename)
	if err != nil {
		return nil, err
	}

	if title == "" {
		title = filename
	}

	document := entity.Document{
		Id:        uuid.New(),
		OwnerId:   ownerId,
		Filename:  filename,
		Title:     title,
		Content:   text,
		ChunkIds:  []string{},
		CreatedAt: time.Now().UTC(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.DocumentRepository().Create(ctx, &document); err != nil {
		return nil, apperr.Wrap(apperr.ErrPersistence, err)
	}

	payload, err := json.Marshal(dto.PublishIngestDocumentMessage{DocumentId: document.Id})
	if err != nil {
		return nil, err
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		return nil, err
	}

	s.logger.Info("DocumentService", "document queued for ingestion", map[string]interface{}{
		"document_id": document.Id, "owner_id": ownerId, "filename": filename,
	})

	return &dto.UploadDocumentResponse{
		Id:       document.Id,
		Filename: document.Filename,
		Title:    document.Title,
	}, nil
}

func (s *documentService) Show(ctx context.Context, ownerId, id uuid.UUID) (*dto.ShowDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	document, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.ByOwner{OwnerId: ownerId},
	)
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, nil
	}
	return toShowDocumentResponse(document), nil
}

func (s *documentService) List(ctx context.Context, ownerId uuid.UUID) ([]*dto.ShowDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	documents, err := uow.DocumentRepository().FindAll(ctx,
		specification.ByOwner{OwnerId: ownerId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.ShowDocumentResponse, len(documents))
	for i, d := range documents {
		out[i] = toShowDocumentResponse(d)
	}
	return out, nil
}

func (s *documentService) Delete(ctx context.Context, ownerId, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.ByOwner{OwnerId: ownerId},
	)
	if err != nil {
		return err
	}
	if document == nil {
		return apperr.Wrapf(apperr.ErrValidation, "document %s not found", id)
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if len(document.ChunkIds) > 0 {
		if err := uow.DocumentChunkRepository().DeleteByIds(ctx, document.ChunkIds); err != nil {
			return err
		}
	}
	// Chunks indexed before ChunkIds was written back are caught here.
	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, document.Id); err != nil {
		return err
	}
	if err := uow.DocumentRepository().Delete(ctx, document.Id); err != nil {
		return err
	}

	return uow.Commit()
}

func (s *documentService) Ask(ctx context.Context, ownerId, documentId uuid.UUID, question string) (*dto.AskDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	document, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: documentId},
		specification.ByOwner{OwnerId: ownerId},
	)
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, apperr.Wrapf(apperr.ErrValidation, "document %s not found", documentId)
	}

	answer, err := s.answerer.Answer(ctx, documentId, ownerId, question)
	if err != nil {
		return nil, err
	}

	contexts := make([]dto.AskDocumentContext, len(answer.ContextChunks))
	for i, c := range answer.ContextChunks {
		contexts[i] = dto.AskDocumentContext{
			ChunkId:    c.ID,
			Similarity: c.Similarity,
		}
	}

	return &dto.AskDocumentResponse{
		Answer:           answer.Text,
		TokensUsed:       answer.TokensUsed,
		ProcessingMillis: answer.ProcessingTime.Milliseconds(),
		Context:          contexts,
	}, nil
}

func toShowDocumentResponse(d *entity.Document) *dto.ShowDocumentResponse {
	return &dto.ShowDocumentResponse{
		Id:         d.Id,
		Filename:   d.Filename,
		Title:      d.Title,
		ChunkCount: len(d.ChunkIds),
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}
