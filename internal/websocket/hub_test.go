package websocket

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func newTestClient(userId uuid.UUID, buffer int) *Client {
	c := NewClient(nil, nil, userId, uuid.Nil, uuid.Nil)
	c.Send = make(chan []byte, buffer)
	return c
}

func TestHubJoinAndListSessions(t *testing.T) {
	hub := NewHub(nopLogger{})
	room := uuid.New()
	topic := uuid.New()
	userA := uuid.New()
	userB := uuid.New()

	a := newTestClient(userA, 8)
	b1 := newTestClient(userB, 8)
	b2 := newTestClient(userB, 8)

	hub.Join(room, topic, userA, a)
	hub.Join(room, topic, userB, b1)
	hub.Join(room, topic, userB, b2)

	sessions := hub.ListSessions(room, topic)
	assert.Len(t, sessions, 3)

	users := hub.ListUsers(room)
	require.Contains(t, users, topic)
	assert.Len(t, users[topic], 2)
}

func TestHubJoinIsIdempotentPerConnection(t *testing.T) {
	hub := NewHub(nopLogger{})
	room := uuid.New()
	topicA := uuid.New()
	topicB := uuid.New()
	user := uuid.New()

	c := newTestClient(user, 8)
	hub.Join(room, topicA, user, c)
	hub.Join(room, topicB, user, c)

	assert.Empty(t, hub.ListSessions(room, topicA), "re-join must leave the prior scope first")
	assert.Len(t, hub.ListSessions(room, topicB), 1)
}

func TestHubLeaveTwiceIsSafeAndPrunesEmptyLevels(t *testing.T) {
	hub := NewHub(nopLogger{})
	room := uuid.New()
	topic := uuid.New()
	user := uuid.New()

	c := newTestClient(user, 8)
	hub.Join(room, topic, user, c)

	hub.Leave(c)
	hub.Leave(c) // no-op

	assert.Empty(t, hub.ListSessions(room, topic))
	assert.Empty(t, hub.ListUsers(room), "empty topic and room levels are removed")

	// Late sends after Leave are silent drops, never a panic.
	assert.True(t, c.departed())
	c.trySend([]byte("late"))
	assert.Empty(t, c.Send)
}

func TestBroadcastAfterLeaveSkipsDepartedClient(t *testing.T) {
	hub := NewHub(nopLogger{})
	room := uuid.New()
	topic := uuid.New()

	stayer := newTestClient(uuid.New(), 8)
	leaver := newTestClient(uuid.New(), 8)
	hub.Join(room, topic, stayer.UserID, stayer)
	hub.Join(room, topic, leaver.UserID, leaver)

	hub.Leave(leaver)
	hub.BroadcastToTopic(room, topic, []byte("frame"), nil)

	assert.Len(t, stayer.Send, 1)
	assert.Empty(t, leaver.Send)
}

func TestBroadcastToTopicExcludesSender(t *testing.T) {
	hub := NewHub(nopLogger{})
	room := uuid.New()
	topic := uuid.New()

	sender := newTestClient(uuid.New(), 8)
	other := newTestClient(uuid.New(), 8)
	hub.Join(room, topic, sender.UserID, sender)
	hub.Join(room, topic, other.UserID, other)

	hub.BroadcastToTopic(room, topic, []byte("hello"), sender)

	assert.Len(t, other.Send, 1)
	assert.Empty(t, sender.Send)
}

func TestBroadcastEvictsFullClientsAfterThePass(t *testing.T) {
	hub := NewHub(nopLogger{})
	room := uuid.New()
	topic := uuid.New()

	healthy := newTestClient(uuid.New(), 8)
	stuck := newTestClient(uuid.New(), 1)
	hub.Join(room, topic, healthy.UserID, healthy)
	hub.Join(room, topic, stuck.UserID, stuck)

	// Fill the stuck client's buffer so the next send fails.
	stuck.Send <- []byte("backlog")

	hub.BroadcastToTopic(room, topic, []byte("frame"), nil)

	sessions := hub.ListSessions(room, topic)
	require.Len(t, sessions, 1)
	assert.Same(t, healthy, sessions[0])
	assert.Len(t, healthy.Send, 1, "healthy client still got the frame")
}

func TestBroadcastToRoomCoversAllTopics(t *testing.T) {
	hub := NewHub(nopLogger{})
	room := uuid.New()
	topicA := uuid.New()
	topicB := uuid.New()

	a := newTestClient(uuid.New(), 8)
	b := newTestClient(uuid.New(), 8)
	hub.Join(room, topicA, a.UserID, a)
	hub.Join(room, topicB, b.UserID, b)

	hub.BroadcastToRoom(room, []byte("all"), nil)

	assert.Len(t, a.Send, 1)
	assert.Len(t, b.Send, 1)
}
