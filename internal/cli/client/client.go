package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/khaledelhady44/The-boy-who-lived/internal/cli/types"
)

// APIClient wraps the Hertz client for HTTP communication with the server.
type APIClient struct {
	client *client.Client
	server string
	token  string
}

// NewAPIClient creates a new API client
func NewAPIClient(server, token string) (*APIClient, error) {
	normalizedServer, err := normalizeServerURL(server)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	c, err := client.NewClient(
		client.WithDialTimeout(10*time.Second),
		client.WithMaxIdleConnDuration(60*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &APIClient{
		client: c,
		server: normalizedServer,
		token:  token,
	}, nil
}

// normalizeServerURL ensures the server address has a scheme and no path.
func normalizeServerURL(server string) (string, error) {
	if !strings.Contains(server, "://") {
		server = "http://" + server
	}

	u, err := url.Parse(server)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid server URL")
	}

	return fmt.Sprintf("%s://%s", u.Scheme, u.Host), nil
}

// Server returns the normalized server address.
func (c *APIClient) Server() string {
	return c.server
}

// Token returns the bearer token the client was created with.
func (c *APIClient) Token() string {
	return c.token
}

// do sends one JSON request and decodes the enveloped response into out.
func (c *APIClient) do(ctx context.Context, method, path string, body interface{}, wantStatus int, out interface{}) error {
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetMethod(method)
	req.SetRequestURI(c.server + path)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		bodyBytes, err := sonic.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		req.Header.SetContentTypeBytes([]byte("application/json"))
		req.SetBody(bodyBytes)
	}

	if err := c.client.Do(ctx, req, resp); err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode() != wantStatus {
		return fmt.Errorf("%s %s failed with HTTP status %d: %s", method, path, resp.StatusCode(), apiErrorMessage(resp.Body()))
	}

	if out != nil {
		if err := sonic.Unmarshal(resp.Body(), out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}

// apiErrorMessage extracts the server's message from an error body, falling
// back to the raw body.
func apiErrorMessage(body []byte) string {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := sonic.Unmarshal(body, &envelope); err == nil && envelope.Message != "" {
		return envelope.Message
	}
	return string(body)
}

// Register creates a new account.
func (c *APIClient) Register(ctx context.Context, req types.RegisterRequest) (*types.User, error) {
	var resp types.APIResponse[types.User]
	if err := c.do(ctx, consts.MethodPost, endpointRegister, req, 201, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Login performs user login
func (c *APIClient) Login(ctx context.Context, username, password string) (*types.LoginData, error) {
	reqBody := types.LoginRequest{
		Username: username,
		Password: password,
	}

	var resp types.APIResponse[types.LoginData]
	if err := c.do(ctx, consts.MethodPost, endpointLogin, reqBody, 200, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// CreateChat creates a chat owned by the authenticated user.
func (c *APIClient) CreateChat(ctx context.Context, name string) (*types.Chat, error) {
	reqBody := map[string]string{"name": name}

	var resp types.APIResponse[types.Chat]
	if err := c.do(ctx, consts.MethodPost, endpointChats, reqBody, 201, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// ListChats lists the authenticated user's chats, newest first.
func (c *APIClient) ListChats(ctx context.Context) ([]types.Chat, error) {
	var resp types.APIResponse[types.ChatListData]
	if err := c.do(ctx, consts.MethodGet, endpointChats, nil, 200, &resp); err != nil {
		return nil, err
	}
	return resp.Data.Chats, nil
}

// History returns the stored message log of one chat.
func (c *APIClient) History(ctx context.Context, chatID string) ([]types.Message, error) {
	var resp types.APIResponse[types.MessageListData]
	path := fmt.Sprintf(endpointHistory, chatID)
	if err := c.do(ctx, consts.MethodGet, path, nil, 200, &resp); err != nil {
		return nil, err
	}
	return resp.Data.Messages, nil
}
