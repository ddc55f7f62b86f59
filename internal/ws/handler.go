package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"waifuhub/backend/internal/models"
	"waifuhub/backend/internal/service"
	apperrors "waifuhub/backend/pkg/errors"
	"waifuhub/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced at the HTTP layer
	},
	HandshakeTimeout: 10 * time.Second,
	ReadBufferSize:   1024,
	WriteBufferSize:  1024,
}

// Inbound message types
const (
	typeStart   = "start"
	typeMessage = "message"
)

type inbound struct {
	Type      string `json:"type"`
	WaifuID   uint   `json:"waifu_id,omitempty"`
	Character *struct {
		Name        string `json:"name"`
		Personality string `json:"personality"`
		Style       string `json:"style"`
		HairColor   string `json:"hair_color"`
		Biography   string `json:"biography"`
	} `json:"character,omitempty"`
	Content string `json:"content,omitempty"`
}

type outbound struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Handler serves connection-scoped chat sessions. The session holds the
// conversation history; each incoming message goes through the same reply
// path as the HTTP chat endpoint.
type Handler struct {
	chats *service.ChatService
	log   *logger.Logger

	// keepalive interval, overridable in tests
	pingInterval time.Duration
}

// NewHandler creates a new websocket chat handler
func NewHandler(chats *service.ChatService, log *logger.Logger) *Handler {
	return &Handler{chats: chats, log: log, pingInterval: pingPeriod}
}

// session is the per-connection state
type session struct {
	waifuID   uint
	character *models.ChatRequest
	history   []models.ChatTurn
}

// wsConn serializes writes. The connection permits at most one concurrent
// writer, and the keepalive goroutine writes alongside the reply path.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsConn) writeJSON(msg outbound) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.conn.WriteJSON(msg)
}

func (w *wsConn) ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.conn.WriteMessage(websocket.PingMessage, nil)
}

// Serve upgrades the request and runs the session loop until the peer
// disconnects.
func (h *Handler) Serve(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	userID, _ := c.Get("userId")
	uid, _ := userID.(uint)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	wc := &wsConn{conn: conn}

	pings := time.NewTicker(h.pingInterval)
	defer pings.Stop()
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-pings.C:
				if err := wc.ping(); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	sess := &session{}
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("websocket read failed", "error", err)
			}
			return
		}

		var msg inbound
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.send(wc, outbound{Type: "error", Code: apperrors.CodeValidation, Message: "malformed message"})
			continue
		}

		switch msg.Type {
		case typeStart:
			h.handleStart(wc, sess, &msg)
		case typeMessage:
			h.handleMessage(c, wc, sess, uid, msg.Content)
		default:
			h.send(wc, outbound{Type: "error", Code: apperrors.CodeValidation, Message: "unknown message type"})
		}
	}
}

// handleStart binds the session to a character and resets the history.
func (h *Handler) handleStart(conn *wsConn, sess *session, msg *inbound) {
	if msg.WaifuID == 0 && msg.Character == nil {
		h.send(conn, outbound{Type: "error", Code: apperrors.CodeValidation,
			Message: "start requires waifu_id or character attributes"})
		return
	}

	sess.waifuID = msg.WaifuID
	sess.history = nil
	sess.character = &models.ChatRequest{WaifuID: msg.WaifuID}
	if msg.Character != nil {
		sess.character.Name = msg.Character.Name
		sess.character.Personality = msg.Character.Personality
		sess.character.Style = msg.Character.Style
		sess.character.HairColor = msg.Character.HairColor
		sess.character.Biography = msg.Character.Biography
	}

	h.send(conn, outbound{Type: "started"})
}

// handleMessage produces a reply and appends both turns to the session.
func (h *Handler) handleMessage(c *gin.Context, conn *wsConn, sess *session, userID uint, content string) {
	if sess.character == nil {
		h.send(conn, outbound{Type: "error", Code: apperrors.CodeValidation,
			Message: "send a start message first"})
		return
	}
	if content == "" {
		h.send(conn, outbound{Type: "error", Code: apperrors.CodeValidation,
			Message: "content is required"})
		return
	}

	req := *sess.character
	req.Messages = sess.history
	req.NewMessage = content

	reply, err := h.chats.Reply(c.Request.Context(), userID, &req)
	if err != nil {
		appErr := apperrors.FromError(err)
		h.send(conn, outbound{Type: "error", Code: appErr.Code, Message: appErr.Message})
		return
	}

	sess.history = append(sess.history,
		models.ChatTurn{Role: models.RoleUser, Content: content},
		models.ChatTurn{Role: models.RoleAssistant, Content: reply},
	)
	h.send(conn, outbound{Type: "reply", Content: reply})
}

func (h *Handler) send(conn *wsConn, msg outbound) {
	if err := conn.writeJSON(msg); err != nil {
		h.log.Warn("websocket write failed", "error", err)
	}
}
