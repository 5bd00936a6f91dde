package websocket

import (
	"sync"

	"ai-studyroom-be/internal/pkg/logger"

	"github.com/google/uuid"
)

type scope struct {
	RoomId  uuid.UUID
	TopicId uuid.UUID
	UserId  uuid.UUID
}

// Hub tracks live connections across the nested room → topic → user scope
// and fans frames out to them. A user may hold several connections (one per
// device); each is its own entry.
type Hub struct {
	// rooms: RoomId -> TopicId -> UserId -> connections
	rooms map[uuid.UUID]map[uuid.UUID]map[uuid.UUID][]*Client

	// registered is the reverse mapping connection -> scope
	registered map[*Client]scope

	mu sync.RWMutex

	logger logger.ILogger
}

func NewHub(log logger.ILogger) *Hub {
	return &Hub{
		rooms:      make(map[uuid.UUID]map[uuid.UUID]map[uuid.UUID][]*Client),
		registered: make(map[*Client]scope),
		logger:     log,
	}
}

// Join registers the client under (room, topic, user). Idempotent per
// connection: a second Join on the same client first leaves its prior scope.
func (h *Hub) Join(roomId, topicId, userId uuid.UUID, client *Client) {
	h.mu.Lock()
	if _, ok := h.registered[client]; ok {
		h.removeLocked(client)
	}

	topics, ok := h.rooms[roomId]
	if !ok {
		topics = make(map[uuid.UUID]map[uuid.UUID][]*Client)
		h.rooms[roomId] = topics
	}
	users, ok := topics[topicId]
	if !ok {
		users = make(map[uuid.UUID][]*Client)
		topics[topicId] = users
	}
	users[userId] = append(users[userId], client)
	h.registered[client] = scope{RoomId: roomId, TopicId: topicId, UserId: userId}
	h.mu.Unlock()

	h.logger.Info("Hub", "client joined", map[string]interface{}{
		"room_id": roomId, "topic_id": topicId, "user_id": userId,
	})
}

// Leave deregisters the client. Safe to call twice; the second call is a
// no-op. Empty topic and room levels are pruned.
func (h *Hub) Leave(client *Client) {
	h.mu.Lock()
	sc, ok := h.registered[client]
	if ok {
		h.removeLocked(client)
	}
	h.mu.Unlock()

	if ok {
		client.shutdown()
		h.logger.Info("Hub", "client left", map[string]interface{}{
			"room_id": sc.RoomId, "topic_id": sc.TopicId, "user_id": sc.UserId,
		})
	}
}

// removeLocked unlinks the client from the nested map. Caller holds the lock.
func (h *Hub) removeLocked(client *Client) {
	sc, ok := h.registered[client]
	if !ok {
		return
	}
	delete(h.registered, client)

	topics, ok := h.rooms[sc.RoomId]
	if !ok {
		return
	}
	users, ok := topics[sc.TopicId]
	if !ok {
		return
	}
	conns := users[sc.UserId]
	for i, c := range conns {
		if c == client {
			users[sc.UserId] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(users[sc.UserId]) == 0 {
		delete(users, sc.UserId)
	}
	if len(users) == 0 {
		delete(topics, sc.TopicId)
	}
	if len(topics) == 0 {
		delete(h.rooms, sc.RoomId)
	}
}

// ListSessions snapshots the clients currently joined to (room, topic).
func (h *Hub) ListSessions(roomId, topicId uuid.UUID) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var out []*Client
	if users, ok := h.rooms[roomId][topicId]; ok {
		for _, conns := range users {
			out = append(out, conns...)
		}
	}
	return out
}

// ListUsers returns the distinct user ids present per topic of a room.
func (h *Hub) ListUsers(roomId uuid.UUID) map[uuid.UUID][]uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[uuid.UUID][]uuid.UUID)
	for topicId, users := range h.rooms[roomId] {
		ids := make([]uuid.UUID, 0, len(users))
		for userId := range users {
			ids = append(ids, userId)
		}
		out[topicId] = ids
	}
	return out
}

// BroadcastToTopic fans data out to every session in (room, topic) except
// exclude. Sends are non-blocking; a client whose buffer is full is evicted
// after the pass, exactly once.
func (h *Hub) BroadcastToTopic(roomId, topicId uuid.UUID, data []byte, exclude *Client) {
	h.mu.RLock()
	var targets []*Client
	if users, ok := h.rooms[roomId][topicId]; ok {
		for _, conns := range users {
			for _, c := range conns {
				if c != exclude {
					targets = append(targets, c)
				}
			}
		}
	}
	h.mu.RUnlock()

	h.send(targets, data)
}

// BroadcastToRoom fans data out to every topic's sessions under the room.
// Ordering is only guaranteed within a single topic.
func (h *Hub) BroadcastToRoom(roomId uuid.UUID, data []byte, exclude *Client) {
	h.mu.RLock()
	var targets []*Client
	for _, users := range h.rooms[roomId] {
		for _, conns := range users {
			for _, c := range conns {
				if c != exclude {
					targets = append(targets, c)
				}
			}
		}
	}
	h.mu.RUnlock()

	h.send(targets, data)
}

// send performs the two-phase fan-out: attempt every delivery first, then
// evict the failures so the registry is never mutated mid-iteration.
func (h *Hub) send(targets []*Client, data []byte) {
	var failed []*Client
	for _, client := range targets {
		if client.departed() {
			// Left between the snapshot and this send.
			continue
		}
		select {
		case client.Send <- data:
		default:
			failed = append(failed, client)
		}
	}

	for _, client := range failed {
		h.logger.Warn("Hub", "send buffer full, evicting client", map[string]interface{}{
			"user_id": client.UserID,
		})
		h.Leave(client)
	}
}
