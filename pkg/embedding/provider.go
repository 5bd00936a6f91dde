package embedding

import (
	"context"
	"time"
)

// Task types passed through to providers that distinguish them.
const (
	TaskDocument = "RETRIEVAL_DOCUMENT"
	TaskQuery    = "RETRIEVAL_QUERY"
)

// requestTimeout is the per-call backstop when the caller's context carries
// no deadline of its own.
const requestTimeout = 30 * time.Second

// EmbeddingProvider defines the interface for generating text embeddings.
// Implementations honor ctx cancellation on the underlying HTTP call.
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error)
}

type EmbeddingResponseEmbedding struct {
	Values []float32 `json:"values"`
}

type EmbeddingResponse struct {
	Embedding EmbeddingResponseEmbedding `json:"embedding"`
}
