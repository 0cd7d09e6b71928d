package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubSendToUser(t *testing.T) {
	h := NewHub()
	phone := NewClient(7, "member", 1)
	tab := NewClient(7, "member", 1)
	other := NewClient(8, "member", 1)
	h.Register(phone)
	h.Register(tab)
	h.Register(other)
	assert.Equal(t, 3, h.ClientCount())

	n := h.SendToUser(7, map[string]string{"type": "general"})
	assert.Equal(t, 2, n)
	require.Len(t, phone.Send, 1)
	assert.JSONEq(t, `{"type":"general"}`, string(<-phone.Send))
	assert.Empty(t, other.Send)

	// tab's queue is full now; the send is dropped rather than blocking.
	assert.Equal(t, 1, h.SendToUser(7, "again"))
}

func TestHubCloseUnregisters(t *testing.T) {
	h := NewHub()
	c := NewClient(3, "admin", 4)
	h.Register(c)
	assert.True(t, h.Online(3))

	c.Close()
	c.Close()
	assert.False(t, h.Online(3))
	assert.Zero(t, h.SendToUser(3, "x"))
	_, open := <-c.Send
	assert.False(t, open)
}

func TestNilHubIsNoop(t *testing.T) {
	var h *Hub
	assert.Zero(t, h.SendToUser(1, "x"))
}
