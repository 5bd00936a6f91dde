package websocket

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDrainToSeparatesQueuedFramesWithNewlines(t *testing.T) {
	c := newTestClient(uuid.New(), 8)
	c.Send <- []byte(`{"type":"typing"}`)
	c.Send <- []byte(`{"type":"pong"}`)

	var buf bytes.Buffer
	buf.Write([]byte(`{"type":"chat_message"}`))
	c.drainTo(&buf)

	lines := bytes.Split(buf.Bytes(), newline)
	assert.Len(t, lines, 3, "each frame stays individually parseable")
	assert.Equal(t, []byte(`{"type":"chat_message"}`), lines[0])
	assert.Equal(t, []byte(`{"type":"typing"}`), lines[1])
	assert.Equal(t, []byte(`{"type":"pong"}`), lines[2])
}

func TestShutdownIsIdempotent(t *testing.T) {
	c := newTestClient(uuid.New(), 8)
	assert.False(t, c.departed())

	c.shutdown()
	c.shutdown() // second call must not panic

	assert.True(t, c.departed())
}
