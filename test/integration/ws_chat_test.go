//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/gorilla/websocket"

	"github.com/khaledelhady44/The-boy-who-lived/internal/config"
	"github.com/khaledelhady44/The-boy-who-lived/internal/gateway"
	"github.com/khaledelhady44/The-boy-who-lived/internal/handler"
	"github.com/khaledelhady44/The-boy-who-lived/internal/infrastructure/agent"
	infradb "github.com/khaledelhady44/The-boy-who-lived/internal/infrastructure/database"
	"github.com/khaledelhady44/The-boy-who-lived/internal/router"
	"github.com/khaledelhady44/The-boy-who-lived/internal/usecase"
)

const (
	testAddr = "127.0.0.1:18080"
	baseURL  = "http://" + testAddr
	wsBase   = "ws://" + testAddr
)

// startServer wires the full stack against an in-memory store and runs it
// until the test ends.
func startServer(t *testing.T) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	db, err := infradb.NewClient(config.DatabaseConfig{InMemory: true}, logger)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	userRepo := infradb.NewUserRepository(db)
	userUsecase := usecase.NewUserUsecase(userRepo, logger)
	userHandler := handler.NewUserHandler(userUsecase, "integration-test-secret-0123456789abcdef", time.Hour, logger)

	chatRepo := infradb.NewChatRepository(db)
	messageRepo := infradb.NewMessageRepository(db)
	chatUsecase := usecase.NewChatUsecase(chatRepo, messageRepo, 30, logger)
	chatHandler := handler.NewChatHandler(chatUsecase, logger)

	generator := agent.NewScriptedGenerator(logger)
	registry := gateway.NewRegistry()
	gw := gateway.New(registry, chatUsecase, messageRepo, generator, userHandler,
		gateway.Options{SendBufferSize: 16, MaxMessageLen: 10000}, logger)
	wsHandler := handler.NewWSHandler(gw, logger)

	healthHandler := handler.NewHealthHandler(db)

	h := server.New(server.WithHostPorts(testAddr))
	router.Setup(h, userHandler, chatHandler, wsHandler, healthHandler)

	go h.Spin()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.Shutdown(ctx)
	})

	waitUntilReady(t)
}

func waitUntilReady(t *testing.T) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/ping")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == 200 {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatal("server did not become ready")
}

func postJSON(t *testing.T, path, token string, body map[string]string) (int, map[string]interface{}) {
	t.Helper()
	payload, _ := json.Marshal(body)
	req, err := http.NewRequest(http.MethodPost, baseURL+path, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var decoded map[string]interface{}
	_ = json.Unmarshal(raw, &decoded)
	return resp.StatusCode, decoded
}

func registerAndLogin(t *testing.T, username string) string {
	t.Helper()
	status, _ := postJSON(t, "/api/v1/auth/register", "", map[string]string{
		"username":  username,
		"email":     username + "@example.com",
		"full_name": "Integration Tester",
		"password":  "password123",
	})
	if status != 201 {
		t.Fatalf("register returned %d", status)
	}

	status, body := postJSON(t, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": "password123",
	})
	if status != 200 {
		t.Fatalf("login returned %d", status)
	}

	data := body["data"].(map[string]interface{})
	return data["token"].(string)
}

func createChat(t *testing.T, token, name string) string {
	t.Helper()
	status, body := postJSON(t, "/api/v1/chats", token, map[string]string{"name": name})
	if status != 201 {
		t.Fatalf("create chat returned %d", status)
	}
	data := body["data"].(map[string]interface{})
	return data["id"].(string)
}

func dialChat(t *testing.T, chatID, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	url := fmt.Sprintf("%s/api/v1/chats/%s/send", wsBase, chatID)
	return websocket.DefaultDialer.Dial(url, header)
}

type wireFrame struct {
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Error     bool   `json:"error"`
}

func readFrame(t *testing.T, conn *websocket.Conn) wireFrame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read frame: %v", err)
	}
	var frame wireFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("failed to decode frame %q: %v", data, err)
	}
	return frame
}

func TestWebsocketChatSession(t *testing.T) {
	startServer(t)

	token := registerAndLogin(t, "ws_user")
	chatID := createChat(t, token, "integration chat")

	conn, _, err := dialChat(t, chatID, token)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	// First turn: user message echoed, reply follows
	if err := conn.WriteMessage(websocket.TextMessage, []byte("hello")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	userFrame := readFrame(t, conn)
	if userFrame.Sender != "USER" || userFrame.Message != "hello" {
		t.Fatalf("unexpected first frame: %+v", userFrame)
	}
	sysFrame := readFrame(t, conn)
	if sysFrame.Sender != "SYSTEM" || sysFrame.Message == "" {
		t.Fatalf("unexpected reply frame: %+v", sysFrame)
	}

	// Reconnect: both sides of the turn replay in order
	conn.Close()
	conn2, _, err := dialChat(t, chatID, token)
	if err != nil {
		t.Fatalf("redial failed: %v", err)
	}
	defer conn2.Close()

	replayUser := readFrame(t, conn2)
	replaySys := readFrame(t, conn2)
	if replayUser.Message != "hello" || replayUser.Sender != "USER" {
		t.Fatalf("unexpected replayed frame: %+v", replayUser)
	}
	if replaySys.Sender != "SYSTEM" || replaySys.Message != sysFrame.Message {
		t.Fatalf("replayed reply differs from the live one: %+v", replaySys)
	}
}

func TestWebsocketFanout(t *testing.T) {
	startServer(t)

	token := registerAndLogin(t, "fanout_user")
	chatID := createChat(t, token, "fanout chat")

	conn1, _, err := dialChat(t, chatID, token)
	if err != nil {
		t.Fatalf("dial 1 failed: %v", err)
	}
	defer conn1.Close()

	conn2, _, err := dialChat(t, chatID, token)
	if err != nil {
		t.Fatalf("dial 2 failed: %v", err)
	}
	defer conn2.Close()

	// Give the second session a moment to register
	time.Sleep(200 * time.Millisecond)

	if err := conn1.WriteMessage(websocket.TextMessage, []byte("to everyone")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	for name, conn := range map[string]*websocket.Conn{"sender": conn1, "observer": conn2} {
		userFrame := readFrame(t, conn)
		if userFrame.Message != "to everyone" {
			t.Fatalf("%s: unexpected frame %+v", name, userFrame)
		}
		sysFrame := readFrame(t, conn)
		if sysFrame.Sender != "SYSTEM" {
			t.Fatalf("%s: unexpected reply %+v", name, sysFrame)
		}
	}
}

func TestWebsocketRejectsBadCredentials(t *testing.T) {
	startServer(t)

	token := registerAndLogin(t, "victim_user")
	chatID := createChat(t, token, "private chat")

	cases := []struct {
		name  string
		chat  string
		token string
	}{
		{"missing token", chatID, ""},
		{"forged token", chatID, "not-a-real-token"},
		{"missing chat", "00000000-0000-0000-0000-000000000000", token},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			conn, _, err := dialChat(t, tc.chat, tc.token)
			if err != nil {
				// The upgrade itself may be refused; that is also a rejection.
				return
			}
			defer conn.Close()

			_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
			_, _, err = conn.ReadMessage()
			if err == nil {
				t.Fatal("expected the connection to be closed")
			}
			if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
				t.Fatalf("expected policy violation close, got: %v", err)
			}
		})
	}
}

func TestWebsocketForeignChatRejected(t *testing.T) {
	startServer(t)

	ownerToken := registerAndLogin(t, "owner_user")
	chatID := createChat(t, ownerToken, "owner chat")

	intruderToken := registerAndLogin(t, "intruder_user")

	conn, _, err := dialChat(t, chatID, intruderToken)
	if err != nil {
		return
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err = conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("expected policy violation close, got: %v", err)
	}
}
