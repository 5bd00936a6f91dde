package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"ai-studyroom-be/internal/dto"
	"ai-studyroom-be/internal/entity"
	"ai-studyroom-be/pkg/rag"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatStore struct {
	mu        sync.Mutex
	appended  []entity.ChatMessage
	appendErr error
	history   []dto.ChatHistoryMessage
}

func (f *fakeChatStore) Append(ctx context.Context, roomId, topicId uuid.UUID, msg entity.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, msg)
	return nil
}

func (f *fakeChatStore) RecentDecrypted(ctx context.Context, roomId, topicId uuid.UUID, limit int) ([]dto.ChatHistoryMessage, error) {
	return f.history, nil
}

func (f *fakeChatStore) messages() []entity.ChatMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.ChatMessage, len(f.appended))
	copy(out, f.appended)
	return out
}

type fakeAnswerer struct {
	answer *rag.Answer
	err    error
	called bool

	// block, when set, stalls Answer until it is closed.
	block chan struct{}
	done  chan struct{}
}

func (f *fakeAnswerer) Answer(ctx context.Context, documentID, ownerID uuid.UUID, question string) (*rag.Answer, error) {
	f.called = true
	if f.block != nil {
		<-f.block
	}
	if f.done != nil {
		defer close(f.done)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.answer, nil
}

type fakeKeys struct{ err error }

func (f *fakeKeys) KeyMaterial(ctx context.Context, topicId uuid.UUID) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "key-material", nil
}

type fakeCipher struct{}

func (fakeCipher) Encrypt(topicKey, topicID, plaintext string) (string, error) {
	return "enc:" + plaintext, nil
}

type fakeDocs struct {
	documentId *uuid.UUID
	err        error
}

func (f *fakeDocs) Document(ctx context.Context, topicId uuid.UUID) (*uuid.UUID, error) {
	return f.documentId, f.err
}

type mediatorFixture struct {
	mediator *Mediator
	hub      *Hub
	store    *fakeChatStore
	answerer *fakeAnswerer
	docs     *fakeDocs

	room   uuid.UUID
	topic  uuid.UUID
	sender *Client
	peer   *Client
}

func newMediatorFixture(t *testing.T) *mediatorFixture {
	t.Helper()

	hub := NewHub(nopLogger{})
	store := &fakeChatStore{}
	answerer := &fakeAnswerer{answer: &rag.Answer{Text: "grounded answer", TokensUsed: 12, ProcessingTime: 80 * time.Millisecond}}
	docs := &fakeDocs{}

	m := NewMediator(hub, store, answerer, &fakeKeys{}, fakeCipher{}, docs, nil, "@chatbot", 50, nopLogger{})

	f := &mediatorFixture{
		mediator: m,
		hub:      hub,
		store:    store,
		answerer: answerer,
		docs:     docs,
		room:     uuid.New(),
		topic:    uuid.New(),
	}
	f.sender = newTestClient(uuid.New(), 16)
	f.peer = newTestClient(uuid.New(), 16)
	f.sender.RoomID, f.sender.TopicID = f.room, f.topic
	f.peer.RoomID, f.peer.TopicID = f.room, f.topic
	hub.Join(f.room, f.topic, f.sender.UserID, f.sender)
	hub.Join(f.room, f.topic, f.peer.UserID, f.peer)
	return f
}

func receiveFrame(t *testing.T, c *Client) map[string]interface{} {
	t.Helper()
	select {
	case raw := <-c.Send:
		var frame map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &frame))
		return frame
	case <-time.After(2 * time.Second):
		t.Fatal("no frame received")
		return nil
	}
}

func TestChatFrameIsPersistedEncryptedAndBroadcastPlain(t *testing.T) {
	f := newMediatorFixture(t)

	keepOpen := f.mediator.HandleFrame(f.sender, []byte(`{"type":"chat","content":"hello"}`))
	assert.True(t, keepOpen)

	// Both the sender and the peer get a copy.
	for _, c := range []*Client{f.sender, f.peer} {
		frame := receiveFrame(t, c)
		assert.Equal(t, "chat_message", frame["type"])
		assert.Equal(t, "hello", frame["content"])
		assert.Equal(t, false, frame["is_ai"])
	}

	msgs := f.store.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "enc:hello", msgs[0].Content, "stored content is ciphertext")
	assert.Equal(t, f.sender.UserID, msgs[0].SenderId)
}

func TestPersistenceFailureStillBroadcasts(t *testing.T) {
	f := newMediatorFixture(t)
	f.store.appendErr = errors.New("db down")

	f.mediator.HandleFrame(f.sender, []byte(`{"type":"chat","content":"hello"}`))

	frame := receiveFrame(t, f.peer)
	assert.Equal(t, "chat_message", frame["type"])
	assert.Equal(t, "hello", frame["content"])
}

func TestMalformedFrameAnswersErrorToSenderOnly(t *testing.T) {
	f := newMediatorFixture(t)

	keepOpen := f.mediator.HandleFrame(f.sender, []byte(`{not json`))
	assert.True(t, keepOpen, "validation errors never close the connection")

	frame := receiveFrame(t, f.sender)
	assert.Equal(t, "error", frame["type"])
	assert.Empty(t, f.peer.Send)
}

func TestUnknownFrameTypeAnswersError(t *testing.T) {
	f := newMediatorFixture(t)

	f.mediator.HandleFrame(f.sender, []byte(`{"type":"subscribe"}`))

	frame := receiveFrame(t, f.sender)
	assert.Equal(t, "error", frame["type"])
	assert.Contains(t, frame["message"], "subscribe")
}

func TestReadReceiptIsBroadcastOnlyAndNeverPersisted(t *testing.T) {
	f := newMediatorFixture(t)

	f.mediator.HandleFrame(f.sender, []byte(`{"type":"read_receipt","message_id":"abc-123"}`))

	frame := receiveFrame(t, f.peer)
	assert.Equal(t, "read_receipt", frame["type"])
	assert.Equal(t, f.sender.UserID.String(), frame["user_id"])
	assert.Equal(t, "abc-123", frame["message_id"])
	assert.Empty(t, f.sender.Send, "receipts are not echoed to the sender")
	assert.Empty(t, f.store.messages())
}

func TestPingAnswersPong(t *testing.T) {
	f := newMediatorFixture(t)

	f.mediator.HandleFrame(f.sender, []byte(`{"type":"ping"}`))

	frame := receiveFrame(t, f.sender)
	assert.Equal(t, "pong", frame["type"])
}

func TestTypingIsBroadcastOnlyAndNeverPersisted(t *testing.T) {
	f := newMediatorFixture(t)

	f.mediator.HandleFrame(f.sender, []byte(`{"type":"typing","is_typing":true}`))

	frame := receiveFrame(t, f.peer)
	assert.Equal(t, "typing", frame["type"])
	assert.Equal(t, true, frame["is_typing"])
	assert.Empty(t, f.sender.Send, "typing is not echoed to the sender")
	assert.Empty(t, f.store.messages())
}

func TestAIRequestWithoutTriggerPrefixIsRejected(t *testing.T) {
	f := newMediatorFixture(t)

	f.mediator.HandleFrame(f.sender, []byte(`{"type":"ai_request","content":"what is X?"}`))

	frame := receiveFrame(t, f.sender)
	assert.Equal(t, "error", frame["type"])
	assert.False(t, f.answerer.called)
}

func TestAIRequestWithoutDocumentAnswersFallback(t *testing.T) {
	f := newMediatorFixture(t)
	f.docs.documentId = nil

	f.mediator.HandleFrame(f.sender, []byte(`{"type":"ai_request","content":"@chatbot what is X?"}`))

	// First the trigger message itself.
	frame := receiveFrame(t, f.peer)
	assert.Equal(t, "chat_message", frame["type"])
	assert.Equal(t, "@chatbot what is X?", frame["content"])

	// Then the fallback, tagged as AI, without a model call.
	frame = receiveFrame(t, f.peer)
	assert.Equal(t, "ai_response", frame["type"])
	assert.Equal(t, rag.FallbackAnswer, frame["content"])
	assert.Equal(t, true, frame["is_ai"])
	assert.False(t, f.answerer.called)

	msgs := f.store.messages()
	require.Len(t, msgs, 2)
	assert.True(t, msgs[1].IsAI)
	assert.True(t, strings.HasPrefix(msgs[1].Content, "enc:"))
}

func TestAIRequestBroadcastsGroundedAnswerToWholeTopic(t *testing.T) {
	f := newMediatorFixture(t)
	docId := uuid.New()
	f.docs.documentId = &docId

	f.mediator.HandleFrame(f.sender, []byte(`{"type":"ai_request","content":"@chatbot what is X?"}`))

	// Trigger message first, on both clients.
	receiveFrame(t, f.sender)
	receiveFrame(t, f.peer)

	// The answer arrives asynchronously, to asker and peer alike.
	for _, c := range []*Client{f.sender, f.peer} {
		frame := receiveFrame(t, c)
		assert.Equal(t, "ai_response", frame["type"])
		assert.Equal(t, "grounded answer", frame["content"])
		meta, ok := frame["metadata"].(map[string]interface{})
		require.True(t, ok)
		assert.EqualValues(t, 12, meta["tokens_used"])
	}
}

func TestAIRequestDownstreamFailureAnswersErrorToSenderOnly(t *testing.T) {
	f := newMediatorFixture(t)
	docId := uuid.New()
	f.docs.documentId = &docId
	f.answerer.err = errors.New("model timeout")

	f.mediator.HandleFrame(f.sender, []byte(`{"type":"ai_request","content":"@chatbot what is X?"}`))

	// Trigger message first.
	receiveFrame(t, f.sender)
	receiveFrame(t, f.peer)

	frame := receiveFrame(t, f.sender)
	assert.Equal(t, "error", frame["type"])

	select {
	case raw := <-f.peer.Send:
		t.Fatalf("peer should not receive anything after the trigger, got %s", raw)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDisconnectDuringAIRequestDropsTheLateErrorFrame(t *testing.T) {
	f := newMediatorFixture(t)
	docId := uuid.New()
	f.docs.documentId = &docId
	f.answerer.block = make(chan struct{})
	f.answerer.done = make(chan struct{})
	f.answerer.err = errors.New("model timeout")

	f.mediator.HandleFrame(f.sender, []byte(`{"type":"ai_request","content":"@chatbot what is X?"}`))

	// Trigger message first.
	receiveFrame(t, f.sender)
	receiveFrame(t, f.peer)

	// The asker disconnects while the answer is still in flight, then the
	// answerer fails. The late error frame must be dropped, not a panic.
	f.mediator.HandleDisconnect(f.sender)
	receiveFrame(t, f.peer) // user_left
	close(f.answerer.block)

	select {
	case <-f.answerer.done:
	case <-time.After(2 * time.Second):
		t.Fatal("answerer never completed")
	}
	time.Sleep(50 * time.Millisecond)

	assert.True(t, f.sender.departed())
	assert.Empty(t, f.sender.Send, "no frame is delivered to a departed client")
	assert.Empty(t, f.peer.Send)
}

func TestLeaveRoomFrameClosesTheLoop(t *testing.T) {
	f := newMediatorFixture(t)

	keepOpen := f.mediator.HandleFrame(f.sender, []byte(`{"type":"leave_room"}`))
	assert.False(t, keepOpen)
}

func TestHandleDisconnectAnnouncesUserLeft(t *testing.T) {
	f := newMediatorFixture(t)

	f.mediator.HandleDisconnect(f.sender)

	sessions := f.hub.ListSessions(f.room, f.topic)
	require.Len(t, sessions, 1)
	assert.Same(t, f.peer, sessions[0])

	frame := receiveFrame(t, f.peer)
	assert.Equal(t, "user_left", frame["type"])
	assert.Equal(t, f.sender.UserID.String(), frame["user_id"])
}
