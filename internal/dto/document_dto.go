package dto

import (
	"time"

	"github.com/google/uuid"
)

type UploadDocumentResponse struct {
	Id       uuid.UUID `json:"id"`
	Filename string    `json:"filename"`
	Title    string    `json:"title"`
}

type ShowDocumentResponse struct {
	Id         uuid.UUID  `json:"id"`
	Filename   string     `json:"filename"`
	Title      string     `json:"title"`
	ChunkCount int        `json:"chunk_count"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
}

type AskDocumentRequest struct {
	Question string `json:"question" validate:"required"`
}

type AskDocumentContext struct {
	ChunkId    string  `json:"chunk_id"`
	Similarity float64 `json:"similarity"`
}

type AskDocumentResponse struct {
	Answer           string               `json:"answer"`
	TokensUsed       int                  `json:"tokens_used"`
	ProcessingMillis int64                `json:"processing_millis"`
	Context          []AskDocumentContext `json:"context"`
}

// PublishIngestDocumentMessage is the payload queued for the ingestion
// worker after a document row is created.
type PublishIngestDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}
