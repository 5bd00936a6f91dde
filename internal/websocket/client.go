package websocket

import (
	"io"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBufferSize = 256
)

// newline separates frames coalesced into one websocket message so a client
// can split them back apart.
var newline = []byte{'\n'}

// Client is a middleman between one websocket connection and the hub.
type Client struct {
	Hub *Hub

	Conn *websocket.Conn

	UserID  uuid.UUID
	RoomID  uuid.UUID
	TopicID uuid.UUID

	// Buffered channel of outbound frames. Never closed: departed clients
	// drop late sends instead of panicking the sender.
	Send chan []byte

	// done signals writePump shutdown and marks the client departed.
	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(hub *Hub, conn *websocket.Conn, userId, roomId, topicId uuid.UUID) *Client {
	return &Client{
		Hub:     hub,
		Conn:    conn,
		UserID:  userId,
		RoomID:  roomId,
		TopicID: topicId,
		Send:    make(chan []byte, sendBufferSize),
		done:    make(chan struct{}),
	}
}

// shutdown marks the client departed exactly once, regardless of how many
// paths (eviction, leave frame, read error) race to it.
func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// departed reports whether the client has been deregistered. Sends racing
// with a disconnect check this and drop silently.
func (c *Client) departed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// readPump pumps inbound frames into the mediator until the socket dies.
func (c *Client) readPump(m *Mediator) {
	defer func() {
		m.HandleDisconnect(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				m.logger.Warn("Client", "unexpected close", map[string]interface{}{
					"user_id": c.UserID, "error": err.Error(),
				})
			}
			break
		}
		if !m.HandleFrame(c, raw) {
			break
		}
	}
}

// writePump pumps frames from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)
			c.drainTo(w)

			if err := w.Close(); err != nil {
				return
			}
		case <-c.done:
			// The hub deregistered us.
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// drainTo appends the queued frames to the current websocket message,
// newline-separated.
func (c *Client) drainTo(w io.Writer) {
	n := len(c.Send)
	for i := 0; i < n; i++ {
		w.Write(newline)
		w.Write(<-c.Send)
	}
}

// trySend queues a frame for this client only, without going through the
// hub. Used for error frames and pongs. A departed client drops the frame.
func (c *Client) trySend(data []byte) {
	if c.departed() {
		return
	}
	select {
	case c.Send <- data:
	default:
	}
}
