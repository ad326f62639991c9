package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 256
)

// Keys the auth middleware stores the caller under.
const (
	contextUserID = "userID"
	contextRole   = "role"
)

// Identity is the authenticated caller a connection was opened by. It is
// captured once at upgrade time and never re-read from the request.
type Identity struct {
	UserID string
	Role   string
}

// TopicAuthorizer decides whether the connected user may listen on a topic.
type TopicAuthorizer func(ctx context.Context, who Identity, topic string) bool

// Handler upgrades HTTP connections and pumps messages between the socket and the hub.
type Handler struct {
	hub       *Hub
	upgrader  gorillawebsocket.Upgrader
	authorize TopicAuthorizer
}

// NewHandler builds a handler accepting the given origins ("*" allows all).
func NewHandler(hub *Hub, allowedOrigins []string, authorize TopicAuthorizer) *Handler {
	return &Handler{
		hub:       hub,
		authorize: authorize,
		upgrader: gorillawebsocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// Connect handles GET /ws?topics=a,b. The caller must already be authenticated.
func (h *Handler) Connect(c *gin.Context) {
	who := Identity{UserID: c.GetString(contextUserID), Role: c.GetString(contextRole)}

	// gin recycles c once this handler returns, so the pumps must not touch it.
	ctx, cancel := context.WithCancel(context.WithoutCancel(c.Request.Context()))
	allow := func(topic string) bool {
		return h.authorize == nil || h.authorize(ctx, who, topic)
	}

	var topics []string
	for _, t := range strings.Split(c.Query("topics"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			if !allow(t) {
				cancel()
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "topic not permitted: " + t})
				return
			}
			topics = append(topics, t)
		}
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		cancel()
		log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}

	client := NewClient(uuid.NewString(), who.UserID, sendBuffer)
	client.Topics = topics
	h.hub.Register(client)

	go h.writePump(client, ws)
	go h.readPump(client, ws, allow, cancel)
}

func (h *Handler) readPump(client *Client, ws *gorillawebsocket.Conn, allow func(string) bool, done context.CancelFunc) {
	defer func() {
		done()
		h.hub.Unregister(client)
		ws.Close()
	}()

	ws.SetReadLimit(4096)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := ws.ReadMessage()
		if err != nil {
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		h.hub.ProcessMessage(client, msg, allow)
	}
}

func (h *Handler) writePump(client *Client, ws *gorillawebsocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ws.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = ws.WriteMessage(gorillawebsocket.CloseMessage, []byte{})
				return
			}
			if err := ws.WriteMessage(gorillawebsocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(gorillawebsocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}
