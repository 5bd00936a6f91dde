package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Document is an uploaded file after text extraction. ChunkIds records every
// indexed chunk so deletion cascades by id list instead of scanning the
// vector index.
type Document struct {
	Id        uuid.UUID
	OwnerId   uuid.UUID
	Filename  string
	Title     string
	Content   string
	ChunkIds  []string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// DocumentChunk is one fixed-size slice of a document with its embedding.
// A chunk belongs to exactly one document and one owner; retrieval filters
// on both.
type DocumentChunk struct {
	Id         string
	DocumentId uuid.UUID
	OwnerId    uuid.UUID
	ChunkIndex int
	Content    string
	Embedding  []float32
	CreatedAt  time.Time
}

// ChunkId builds the deterministic chunk identifier documentId-index.
func ChunkId(documentId uuid.UUID, index int) string {
	return fmt.Sprintf("%s-%d", documentId, index)
}
