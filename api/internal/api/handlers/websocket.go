package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"cifra/api/internal/core/domain"
)

// ==============================================================================
// 1. WebSocket Configuration & Constants
// ==============================================================================

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum frame size allowed from peer.
	maxMessageSize = 128 * 1024

	// Results queued for the writer before the reader blocks.
	sessionBuffer = 16
)

// LiveFrame is an inbound transform request on a live session.
type LiveFrame struct {
	ID        string `json:"id,omitempty"`
	Cipher    string `json:"cipher"`
	Operation string `json:"operation"`
	Text      string `json:"text"`
	Key       string `json:"key"`
	Sanitize  bool   `json:"sanitize"`
}

// LiveReply answers one LiveFrame. ID echoes the frame so clients can drop
// stale replies while the user is still typing.
type LiveReply struct {
	ID     string         `json:"id,omitempty"`
	Result *domain.Result `json:"result,omitempty"`
	Error  *ErrorResponse `json:"error,omitempty"`
}

// ==============================================================================
// 2. The Handler Struct (Dependency Injection)
// ==============================================================================

type WebSocketHandler struct {
	Service  domain.CipherService
	Logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewWebSocketHandler accepts upgrades from the given origins; an empty list
// falls back to gorilla's same-origin check.
func NewWebSocketHandler(service domain.CipherService, logger *slog.Logger, allowedOrigins []string) *WebSocketHandler {
	h := &WebSocketHandler{
		Service: service,
		Logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	if len(allowedOrigins) > 0 {
		allowed := make(map[string]bool, len(allowedOrigins))
		for _, o := range allowedOrigins {
			allowed[o] = true
		}
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowed["*"] || allowed[origin]
		}
	}
	return h
}

// ==============================================================================
// 3. HTTP Methods (The Upgrader)
// ==============================================================================

// Live handles GET /api/v1/ws. Every inbound frame is transformed and
// answered in order.
func (h *WebSocketHandler) Live(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Error("Failed to upgrade WebSocket connection", slog.String("error", err.Error()))
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	replies := make(chan LiveReply, sessionBuffer)

	// The read pump owns the transform work and closes replies when the peer leaves.
	go h.readPump(ctx, cancel, ws, replies)

	// The write pump blocks this handler until the session ends.
	h.writePump(ws, replies)
}

// ==============================================================================
// 4. The Write Pump
// ==============================================================================

func (h *WebSocketHandler) writePump(ws *websocket.Conn, replies <-chan LiveReply) {
	defer ws.Close()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case reply, ok := <-replies:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
				return
			}
			if err := ws.WriteJSON(reply); err != nil {
				h.Logger.Warn("Failed to write JSON to WebSocket", slog.String("error", err.Error()))
				return
			}

		case <-ticker.C:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ==============================================================================
// 5. The Read Pump
// ==============================================================================

func (h *WebSocketHandler) readPump(ctx context.Context, cancel context.CancelFunc, ws *websocket.Conn, replies chan<- LiveReply) {
	defer close(replies)
	defer cancel()

	ws.SetReadLimit(maxMessageSize)
	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var frame LiveFrame
		if err := ws.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.Logger.Warn("WebSocket closed unexpectedly", slog.String("error", err.Error()))
			}
			return
		}
		ws.SetReadDeadline(time.Now().Add(pongWait))

		select {
		case replies <- h.answer(ctx, frame):
		case <-ctx.Done():
			return
		}
	}
}

func (h *WebSocketHandler) answer(ctx context.Context, frame LiveFrame) LiveReply {
	reply := LiveReply{ID: frame.ID}

	req, err := toTransformRequest(frame.Cipher, frame.Operation, frame.Text, frame.Key, frame.Sanitize)
	if err == nil {
		var res domain.Result
		res, err = h.Service.Transform(ctx, req)
		if err == nil {
			reply.Result = &res
			return reply
		}
	}

	_, body := classify(err)
	reply.Error = &body
	return reply
}
