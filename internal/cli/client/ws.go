package client

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"github.com/khaledelhady44/The-boy-who-lived/internal/cli/types"
)

// ChatStream is one live websocket conversation with the server.
type ChatStream struct {
	conn *websocket.Conn
}

// ConnectChat dials the chat's websocket endpoint. The bearer token rides on
// the upgrade request; an invalid token or foreign chat comes back as a
// policy-violation close on the first read.
func (c *APIClient) ConnectChat(chatID string) (*ChatStream, error) {
	wsURL := toWebsocketURL(c.server) + fmt.Sprintf(endpointChatSend, chatID)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.token)

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.Dial(wsURL, header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", wsURL, err)
	}

	return &ChatStream{conn: conn}, nil
}

// toWebsocketURL swaps the http scheme for the websocket one.
func toWebsocketURL(server string) string {
	if strings.HasPrefix(server, "https://") {
		return "wss://" + strings.TrimPrefix(server, "https://")
	}
	return "ws://" + strings.TrimPrefix(server, "http://")
}

// Send transmits one message text.
func (s *ChatStream) Send(text string) error {
	return s.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

// Recv blocks until the next frame from the server.
func (s *ChatStream) Recv() (*types.Frame, error) {
	for {
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
				return nil, fmt.Errorf("connection rejected: check your login and chat id")
			}
			return nil, err
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var frame types.Frame
		if err := sonic.Unmarshal(data, &frame); err != nil {
			return nil, fmt.Errorf("failed to parse frame: %w", err)
		}
		return &frame, nil
	}
}

// Close shuts the websocket down cleanly.
func (s *ChatStream) Close() error {
	deadline := time.Now().Add(time.Second)
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, deadline)
	return s.conn.Close()
}
