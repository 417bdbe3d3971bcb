package handler

import (
	"context"
	"log/slog"

	"github.com/cloudwego/hertz/pkg/app"

	"github.com/khaledelhady44/The-boy-who-lived/internal/domain"
	"github.com/khaledelhady44/The-boy-who-lived/internal/handler/dto"
)

// ChatHandler handles chat CRUD requests. Live messaging runs over the
// websocket route, not here.
type ChatHandler struct {
	usecase domain.ChatUsecase
	logger  *slog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(usecase domain.ChatUsecase, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// CreateChat creates a chat owned by the authenticated user
// POST /api/v1/chats
func (h *ChatHandler) CreateChat(ctx context.Context, c *app.RequestContext) {
	username, ok := currentUsername(c)
	if !ok {
		h.logger.Error("username not found in context")
		ErrorResponse(c, domain.ErrUnauthorized)
		return
	}

	var req dto.CreateChatRequest
	if err := c.BindJSON(&req); err != nil {
		h.logger.Error("invalid create chat request", "error", err)
		ErrorResponse(c, domain.ErrInvalidInput)
		return
	}
	if err := req.Validate(); err != nil {
		ErrorResponse(c, domain.NewInvalidInputError(err.Error()))
		return
	}

	chat, err := h.usecase.CreateChat(ctx, username, req.Name)
	if err != nil {
		h.logger.Error("create chat failed", "error", err, "username", username)
		ErrorResponse(c, err)
		return
	}

	CreatedResponse(c, dto.ToChatResponse(chat))
}

// ListChats lists the authenticated user's chats, newest first
// GET /api/v1/chats
func (h *ChatHandler) ListChats(ctx context.Context, c *app.RequestContext) {
	username, ok := currentUsername(c)
	if !ok {
		h.logger.Error("username not found in context")
		ErrorResponse(c, domain.ErrUnauthorized)
		return
	}

	chats, err := h.usecase.ListChats(ctx, username)
	if err != nil {
		h.logger.Error("list chats failed", "error", err, "username", username)
		ErrorResponse(c, err)
		return
	}

	SuccessResponse(c, dto.ToChatListResponse(chats))
}

// GetHistory returns the stored message log of one chat in chronological
// order. Only the owner may read it; anyone else gets the same not-found
// answer as a chat that does not exist.
// GET /api/v1/chats/:id/messages
func (h *ChatHandler) GetHistory(ctx context.Context, c *app.RequestContext) {
	username, ok := currentUsername(c)
	if !ok {
		h.logger.Error("username not found in context")
		ErrorResponse(c, domain.ErrUnauthorized)
		return
	}

	chatID := c.Param("id")
	if chatID == "" {
		ErrorResponse(c, domain.ErrInvalidInput)
		return
	}

	owned, err := h.usecase.BelongsTo(ctx, chatID, username)
	if err != nil {
		h.logger.Error("ownership check failed", "error", err, "chat_id", chatID)
		ErrorResponse(c, err)
		return
	}
	if !owned {
		ErrorResponse(c, domain.NewNotFoundError("chat", chatID))
		return
	}

	messages, err := h.usecase.History(ctx, chatID)
	if err != nil {
		h.logger.Error("history lookup failed", "error", err, "chat_id", chatID)
		ErrorResponse(c, err)
		return
	}

	SuccessResponse(c, dto.ToMessageListResponse(messages))
}
