package websocket

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubBroadcastReachesOnlySubscribers(t *testing.T) {
	hub := NewHub()

	a := NewClient("a", "u1", 4)
	a.Topics = []string{"appointment:1"}
	b := NewClient("b", "u2", 4)
	b.Topics = []string{"appointment:2"}
	hub.Register(a)
	hub.Register(b)

	require.NoError(t, hub.Publish(context.Background(), Event{Type: "call.offer", Topic: "appointment:1"}))

	require.Len(t, a.Send, 1)
	assert.Len(t, b.Send, 0)

	var got Event
	require.NoError(t, json.Unmarshal(<-a.Send, &got))
	assert.Equal(t, "call.offer", got.Type)
	assert.False(t, got.Timestamp.IsZero())
}

func TestHubSubscribeUnsubscribe(t *testing.T) {
	hub := NewHub()
	c := NewClient("c", "u1", 4)
	hub.Register(c)

	hub.ProcessMessage(c, ClientMessage{Action: "subscribe", Topics: []string{"x", "y", "secret"}}, func(topic string) bool {
		return topic != "secret"
	})
	assert.Equal(t, 1, hub.TopicCount("x"))
	assert.Equal(t, 1, hub.TopicCount("y"))
	assert.Equal(t, 0, hub.TopicCount("secret"))

	// duplicate subscribe is a no-op
	hub.Subscribe(c, []string{"x"})
	assert.Equal(t, []string{"x", "y"}, c.Topics)

	hub.ProcessMessage(c, ClientMessage{Action: "unsubscribe", Topics: []string{"x"}}, nil)
	assert.Equal(t, 0, hub.TopicCount("x"))
	assert.Equal(t, []string{"y"}, c.Topics)
}

func TestHubUnregisterClosesSendAndReportsCount(t *testing.T) {
	hub := NewHub()
	var counts []int
	hub.OnCountChange = func(n int) { counts = append(counts, n) }

	c := NewClient("c", "u1", 1)
	c.Topics = []string{"t"}
	hub.Register(c)
	hub.Unregister(c)
	hub.Unregister(c)

	_, open := <-c.Send
	assert.False(t, open)
	assert.Equal(t, 0, hub.TopicCount("t"))
	assert.Equal(t, 0, hub.ClientCount())
	assert.Equal(t, []int{1, 0}, counts)
}

func TestHubSkipsFullClients(t *testing.T) {
	hub := NewHub()
	c := NewClient("c", "u1", 1)
	c.Topics = []string{"t"}
	hub.Register(c)

	hub.Broadcast("t", Event{Type: "one"})
	hub.Broadcast("t", Event{Type: "two"})

	assert.Len(t, c.Send, 1)
}
