package handler

import (
	"context"
	"log/slog"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hertz-contrib/websocket"

	"github.com/khaledelhady44/The-boy-who-lived/internal/gateway"
)

// WSHandler upgrades the per-chat websocket route and hands the connection
// to the gateway. Admission runs after the upgrade so a rejected client
// receives a proper close frame instead of a bare HTTP error.
type WSHandler struct {
	gateway  *gateway.Gateway
	upgrader websocket.HertzUpgrader
	logger   *slog.Logger
}

// NewWSHandler creates a new websocket handler
func NewWSHandler(gw *gateway.Gateway, logger *slog.Logger) *WSHandler {
	return &WSHandler{
		gateway: gw,
		upgrader: websocket.HertzUpgrader{
			CheckOrigin: func(ctx *app.RequestContext) bool {
				return true
			},
		},
		logger: logger,
	}
}

// Chat serves the live messaging endpoint of one chat
// GET /api/v1/chats/:id/send
func (h *WSHandler) Chat(ctx context.Context, c *app.RequestContext) {
	// Everything needed after the upgrade is captured now; the request
	// context must not be touched from inside the websocket callback.
	chatID := c.Param("id")
	token := extractToken(c)

	err := h.upgrader.Upgrade(c, func(conn *websocket.Conn) {
		username, err := h.gateway.Admit(ctx, chatID, token)
		if err != nil {
			closeMsg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "policy violation")
			if werr := conn.WriteMessage(websocket.CloseMessage, closeMsg); werr != nil {
				h.logger.Debug("failed to send close frame", "error", werr)
			}
			_ = conn.Close()
			return
		}

		h.gateway.Serve(ctx, chatID, username, &wsConn{conn: conn})
	})
	if err != nil {
		h.logger.Error("websocket upgrade failed", "chat_id", chatID, "error", err)
		BadRequestResponse(c, "websocket upgrade failed")
	}
}

// extractToken pulls the bearer credential from the Authorization header,
// falling back to the token query parameter for clients that cannot set
// headers on the upgrade request.
func extractToken(c *app.RequestContext) string {
	auth := string(c.GetHeader("Authorization"))
	if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return c.Query("token")
}

// wsConn adapts a hertz websocket connection to the gateway transport.
type wsConn struct {
	conn *websocket.Conn
}

// ReadText blocks until the next text frame. Other frame types are skipped;
// control frames are handled inside ReadMessage.
func (w *wsConn) ReadText() (string, error) {
	for {
		msgType, data, err := w.conn.ReadMessage()
		if err != nil {
			return "", err
		}
		if msgType != websocket.TextMessage {
			continue
		}
		return string(data), nil
	}
}

// WriteFrame sends one frame as a JSON text message.
func (w *wsConn) WriteFrame(frame gateway.Frame) error {
	data, err := sonic.Marshal(frame)
	if err != nil {
		return err
	}
	return w.conn.WriteMessage(websocket.TextMessage, data)
}

// Close tears the underlying connection down.
func (w *wsConn) Close() error {
	return w.conn.Close()
}
