package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authCall struct {
	who   Identity
	topic string
	ctx   context.Context
}

// ownTopicOnly lets a user listen on "patient:<own id>" and nothing else.
func ownTopicOnly(calls chan<- authCall) TopicAuthorizer {
	return func(ctx context.Context, who Identity, topic string) bool {
		calls <- authCall{who: who, topic: topic, ctx: ctx}
		return topic == "patient:"+who.UserID
	}
}

func setupSocketServer(t *testing.T, authorize TopicAuthorizer) (*httptest.Server, *Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub()
	h := NewHandler(hub, []string{"*"}, authorize)

	identify := func(c *gin.Context) {
		c.Set(contextUserID, c.GetHeader("X-User"))
		c.Set(contextRole, "patient")
		c.Next()
	}

	r := gin.New()
	r.GET("/ws", identify, h.Connect)
	r.GET("/other", identify, func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, hub
}

func dial(t *testing.T, srv *httptest.Server, user, query string) (*gorillawebsocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	return gorillawebsocket.DefaultDialer.Dial(url, http.Header{"X-User": []string{user}})
}

func nextCall(t *testing.T, calls <-chan authCall) authCall {
	t.Helper()
	select {
	case call := <-calls:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("authorizer was not called")
		return authCall{}
	}
}

func TestConnectKeepsIdentityAfterOtherRequests(t *testing.T) {
	calls := make(chan authCall, 16)
	srv, hub := setupSocketServer(t, ownTopicOnly(calls))

	ws, _, err := dial(t, srv, "alice", "?topics=patient:alice")
	require.NoError(t, err)
	defer ws.Close()

	first := nextCall(t, calls)
	assert.Equal(t, Identity{UserID: "alice", Role: "patient"}, first.who)
	require.Eventually(t, func() bool { return hub.TopicCount("patient:alice") == 1 }, 2*time.Second, 10*time.Millisecond)

	// Other requests reuse pooled gin contexts; none of them may leak into the socket.
	for i := 0; i < 200; i++ {
		req, err := http.NewRequest(http.MethodGet, srv.URL+"/other", nil)
		require.NoError(t, err)
		req.Header.Set("X-User", "bob")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
	}

	require.NoError(t, ws.WriteJSON(ClientMessage{Action: "subscribe", Topics: []string{"patient:bob"}}))
	call := nextCall(t, calls)
	assert.Equal(t, "patient:bob", call.topic)
	assert.Equal(t, "alice", call.who.UserID)
	assert.NoError(t, call.ctx.Err(), "connection context outlives the upgrade request")
	assert.Equal(t, 0, hub.TopicCount("patient:bob"))
}

func TestConnectRejectsForbiddenTopic(t *testing.T) {
	calls := make(chan authCall, 4)
	srv, hub := setupSocketServer(t, ownTopicOnly(calls))

	ws, resp, err := dial(t, srv, "alice", "?topics=patient:bob")
	if ws != nil {
		ws.Close()
	}
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 0, hub.ClientCount())
}

func TestConnectionContextEndsWithSocket(t *testing.T) {
	calls := make(chan authCall, 4)
	srv, hub := setupSocketServer(t, ownTopicOnly(calls))

	ws, _, err := dial(t, srv, "alice", "?topics=patient:alice")
	require.NoError(t, err)
	call := nextCall(t, calls)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, ws.Close())

	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Error(t, call.ctx.Err())
}
