package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/khaledelhady44/The-boy-who-lived/internal/domain"
)

// generateRequest is the wire request to the agent service.
type generateRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
}

// generateResponse is the wire response from the agent service.
type generateResponse struct {
	Reply string `json:"reply"`
	Error string `json:"error,omitempty"`
}

// RemoteGenerator calls an external agent service over HTTP. The service
// keeps its own per-conversation memory keyed by the conversation id.
type RemoteGenerator struct {
	client  *client.Client
	baseURL string
	timeout time.Duration
	logger  *slog.Logger
}

var _ domain.ReplyGenerator = (*RemoteGenerator)(nil)

// NewRemoteGenerator creates a remote generator client.
func NewRemoteGenerator(baseURL string, timeout time.Duration, logger *slog.Logger) (*RemoteGenerator, error) {
	c, err := client.NewClient(
		client.WithDialTimeout(10 * time.Second),
		client.WithMaxIdleConnDuration(60 * time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create agent client: %w", err)
	}

	logger.Info("remote agent client created", "base_url", baseURL, "timeout", timeout)

	return &RemoteGenerator{
		client:  c,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Generate sends the user text to the agent service and returns its reply.
func (g *RemoteGenerator) Generate(ctx context.Context, text, conversationID string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	body, err := sonic.Marshal(generateRequest{
		Message:        text,
		ConversationID: conversationID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode generate request: %w", err)
	}

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer protocol.ReleaseRequest(req)
	defer protocol.ReleaseResponse(resp)

	req.SetMethod(consts.MethodPost)
	req.SetRequestURI(g.baseURL + "/generate")
	req.Header.SetContentTypeBytes([]byte("application/json"))
	req.SetBody(body)

	if err := g.client.Do(ctx, req, resp); err != nil {
		return "", fmt.Errorf("agent request failed: %w", err)
	}

	if resp.StatusCode() != consts.StatusOK {
		return "", fmt.Errorf("agent returned status %d", resp.StatusCode())
	}

	var out generateResponse
	if err := sonic.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("failed to decode agent response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("agent error: %s", out.Error)
	}
	if strings.TrimSpace(out.Reply) == "" {
		return "", fmt.Errorf("agent returned an empty reply")
	}

	g.logger.Debug("remote reply generated", "conversation_id", conversationID)
	return out.Reply, nil
}
