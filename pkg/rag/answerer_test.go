package rag

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ai-studyroom-be/internal/apperr"
	"ai-studyroom-be/pkg/embedding"
	"ai-studyroom-be/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{1, 0, 0}},
	}, nil
}

type fakeRetriever struct {
	chunks []Chunk
	err    error

	gotDocumentID uuid.UUID
	gotOwnerID    uuid.UUID
	gotK          int
}

func (f *fakeRetriever) NearestChunks(ctx context.Context, vector []float32, documentID, ownerID uuid.UUID, k int) ([]Chunk, error) {
	f.gotDocumentID = documentID
	f.gotOwnerID = ownerID
	f.gotK = k
	return f.chunks, f.err
}

type fakeLLM struct {
	reply     string
	err       error
	gotSystem string
	gotUser   string
	called    bool
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.called = true
	for _, m := range history {
		switch m.Role {
		case "system":
			f.gotSystem = m.Content
		case "user":
			f.gotUser = m.Content
		}
	}
	return f.reply, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

func TestAnswerScopesRetrievalToDocumentAndOwner(t *testing.T) {
	docID, ownerID := uuid.New(), uuid.New()
	retriever := &fakeRetriever{chunks: []Chunk{{ID: "d-0", Text: "the sky is blue"}}}
	provider := &fakeLLM{reply: "The sky is blue."}

	a := NewAnswerer(&fakeEmbedder{}, retriever, provider, 3, time.Second)
	ans, err := a.Answer(context.Background(), docID, ownerID, "what color is the sky?")
	require.NoError(t, err)

	assert.Equal(t, docID, retriever.gotDocumentID)
	assert.Equal(t, ownerID, retriever.gotOwnerID)
	assert.Equal(t, 3, retriever.gotK)
	assert.Equal(t, "The sky is blue.", ans.Text)
	assert.Len(t, ans.ContextChunks, 1)
}

func TestAnswerAlwaysCarriesRestriction(t *testing.T) {
	retriever := &fakeRetriever{chunks: []Chunk{{Text: "the sky is blue"}}}
	provider := &fakeLLM{reply: FallbackAnswer}

	a := NewAnswerer(&fakeEmbedder{}, retriever, provider, 3, time.Second)
	_, err := a.Answer(context.Background(), uuid.New(), uuid.New(), "what color is the grass?")
	require.NoError(t, err)

	assert.Contains(t, provider.gotSystem, "Only answer based on the reference material")
	assert.Contains(t, provider.gotSystem, FallbackAnswer)
	assert.Contains(t, provider.gotUser, "the sky is blue")
	assert.Contains(t, provider.gotUser, "what color is the grass?")
}

func TestAnswerNoChunksReturnsFallbackWithoutModelCall(t *testing.T) {
	retriever := &fakeRetriever{}
	provider := &fakeLLM{reply: "should never be used"}

	a := NewAnswerer(&fakeEmbedder{}, retriever, provider, 3, time.Second)
	ans, err := a.Answer(context.Background(), uuid.New(), uuid.New(), "anything")
	require.NoError(t, err)

	assert.Equal(t, FallbackAnswer, ans.Text)
	assert.Empty(t, ans.ContextChunks)
	assert.False(t, provider.called)
}

func TestAnswerDownstreamFailures(t *testing.T) {
	tests := []struct {
		name      string
		embedder  *fakeEmbedder
		retriever *fakeRetriever
		provider  *fakeLLM
	}{
		{
			name:      "embedding fails",
			embedder:  &fakeEmbedder{err: errors.New("connection refused")},
			retriever: &fakeRetriever{},
			provider:  &fakeLLM{},
		},
		{
			name:      "retrieval fails",
			embedder:  &fakeEmbedder{},
			retriever: &fakeRetriever{err: errors.New("index unavailable")},
			provider:  &fakeLLM{},
		},
		{
			name:      "generation fails",
			embedder:  &fakeEmbedder{},
			retriever: &fakeRetriever{chunks: []Chunk{{Text: "ctx"}}},
			provider:  &fakeLLM{err: errors.New("model timeout")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAnswerer(tt.embedder, tt.retriever, tt.provider, 3, time.Second)
			_, err := a.Answer(context.Background(), uuid.New(), uuid.New(), "q")
			assert.True(t, errors.Is(err, apperr.ErrDownstream))
		})
	}
}

// stallingEmbedder hangs until its context is cancelled, like an endpoint
// that accepted the connection and never responds.
type stallingEmbedder struct{}

func (stallingEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Second):
		return nil, errors.New("embedder outlived the deadline")
	}
}

func TestAnswerDeadlineCoversTheEmbeddingCall(t *testing.T) {
	provider := &fakeLLM{reply: "never reached"}

	a := NewAnswerer(stallingEmbedder{}, &fakeRetriever{}, provider, 3, 50*time.Millisecond)

	started := time.Now()
	_, err := a.Answer(context.Background(), uuid.New(), uuid.New(), "q")

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrDownstream))
	assert.Less(t, time.Since(started), time.Second, "a stalled embedder must fail at the deadline")
	assert.False(t, provider.called)
}

func TestAnswerTrimsReply(t *testing.T) {
	retriever := &fakeRetriever{chunks: []Chunk{{Text: "ctx"}}}
	provider := &fakeLLM{reply: "\n  grounded answer \n"}

	a := NewAnswerer(&fakeEmbedder{}, retriever, provider, 3, time.Second)
	ans, err := a.Answer(context.Background(), uuid.New(), uuid.New(), "q")
	require.NoError(t, err)
	assert.Equal(t, "grounded answer", ans.Text)
	assert.False(t, strings.HasPrefix(ans.Text, " "))
}
