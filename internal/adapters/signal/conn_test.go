package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSendAppliesBackpressure(t *testing.T) {
	c := newWSConn(nil, 1)

	assert.NoError(t, c.Send(map[string]any{"type": "room.stage"}))
	assert.ErrorIs(t, c.Send(map[string]any{"type": "room.stage"}), ErrBackpressure,
		"a full queue drops the frame instead of blocking")
	assert.True(t, c.IsLive())
}

func TestSendAfterMarkClosed(t *testing.T) {
	c := newWSConn(nil, 1)

	// flip the flag directly: Close would touch the nil socket
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	assert.ErrorIs(t, c.Send("x"), ErrConnClosed)
	assert.False(t, c.IsLive())
}
