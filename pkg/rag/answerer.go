// Package rag answers questions strictly from a document's indexed chunks.
package rag

import (
	"context"
	"strings"
	"time"

	"ai-studyroom-be/internal/apperr"
	"ai-studyroom-be/pkg/embedding"
	"ai-studyroom-be/pkg/llm"

	"github.com/google/uuid"
)

// Chunk is one retrieved slice of an ingested document.
type Chunk struct {
	ID         string
	DocumentID uuid.UUID
	OwnerID    uuid.UUID
	Text       string
	Similarity float64
}

// Retriever finds the nearest chunks for a query vector, always filtered by
// both the owning document and the owning user.
type Retriever interface {
	NearestChunks(ctx context.Context, vector []float32, documentID, ownerID uuid.UUID, k int) ([]Chunk, error)
}

// Answer is the grounded reply plus the chunks it was grounded on. The
// chunks are returned for audit display only.
type Answer struct {
	Text           string
	ContextChunks  []Chunk
	TokensUsed     int
	ProcessingTime time.Duration
}

type Answerer struct {
	embedder  embedding.EmbeddingProvider
	retriever Retriever
	provider  llm.LLMProvider
	topK      int
	timeout   time.Duration
}

func NewAnswerer(embedder embedding.EmbeddingProvider, retriever Retriever, provider llm.LLMProvider, topK int, timeout time.Duration) *Answerer {
	if topK <= 0 {
		topK = 3
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Answerer{
		embedder:  embedder,
		retriever: retriever,
		provider:  provider,
		topK:      topK,
		timeout:   timeout,
	}
}

// Answer embeds the question, retrieves the nearest chunks scoped to
// (documentID, ownerID) and asks the model to answer from that context only.
// Every external call shares one bounded deadline.
func (a *Answerer) Answer(ctx context.Context, documentID, ownerID uuid.UUID, question string) (*Answer, error) {
	started := time.Now()

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	emb, err := a.embedder.Generate(ctx, question, embedding.TaskQuery)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrDownstream, err)
	}

	chunks, err := a.retriever.NearestChunks(ctx, emb.Embedding.Values, documentID, ownerID, a.topK)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrDownstream, err)
	}

	// Nothing indexed for this scope: answer the fallback directly instead of
	// letting the model improvise over an empty context.
	if len(chunks) == 0 {
		return &Answer{
			Text:           FallbackAnswer,
			ProcessingTime: time.Since(started),
		}, nil
	}

	builder := newPromptBuilder(chunks, question)
	reply, err := a.provider.Chat(ctx, []llm.Message{
		{Role: "system", Content: builder.SystemInstruction()},
		{Role: "user", Content: builder.Build()},
	}, llm.WithTemperature(0.2))
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrDownstream, err)
	}

	return &Answer{
		Text:           strings.TrimSpace(reply),
		ContextChunks:  chunks,
		TokensUsed:     approxTokens(builder.Build()) + approxTokens(reply),
		ProcessingTime: time.Since(started),
	}, nil
}

// approxTokens is a rough count for metadata; local providers report no usage.
func approxTokens(s string) int {
	return len(s) / 4
}
