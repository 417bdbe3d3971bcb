package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/khaledelhady44/The-boy-who-lived/internal/domain"
	"github.com/khaledelhady44/The-boy-who-lived/internal/domain/entity"
)

// chatUsecase implements the ChatUsecase interface. It coordinates chat
// metadata and the per-chat message log.
type chatUsecase struct {
	chatRepo    domain.ChatRepository
	messageRepo domain.MessageRepository
	listLimit   int
	logger      *slog.Logger
}

// NewChatUsecase creates a new ChatUsecase instance.
//
// listLimit caps the number of chats returned per user; values below one
// fall back to 100.
func NewChatUsecase(
	chatRepo domain.ChatRepository,
	messageRepo domain.MessageRepository,
	listLimit int,
	logger *slog.Logger,
) domain.ChatUsecase {
	if listLimit < 1 {
		listLimit = 100
	}
	return &chatUsecase{
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		listLimit:   listLimit,
		logger:      logger,
	}
}

// CreateChat creates a chat owned by the given username.
func (u *chatUsecase) CreateChat(ctx context.Context, owner, name string) (*entity.Chat, error) {
	if owner == "" {
		return nil, domain.NewInvalidInputError("owner is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, domain.NewInvalidInputError("chat name is required")
	}

	chat, err := u.chatRepo.Create(ctx, &entity.Chat{
		Name:  strings.TrimSpace(name),
		Owner: owner,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}

	u.logger.Info("chat created", "chat_id", chat.ID, "owner", chat.Owner, "name", chat.Name)
	return chat, nil
}

// ListChats returns the user's chats, newest first.
func (u *chatUsecase) ListChats(ctx context.Context, owner string) ([]*entity.Chat, error) {
	if owner == "" {
		return nil, domain.NewInvalidInputError("owner is required")
	}

	chats, err := u.chatRepo.ListByOwner(ctx, owner, u.listLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	return chats, nil
}

// BelongsTo reports whether chatID exists and is owned by username. A
// missing chat is not an error here; it simply does not belong to anyone.
func (u *chatUsecase) BelongsTo(ctx context.Context, chatID, username string) (bool, error) {
	chat, err := u.chatRepo.Get(ctx, chatID)
	if err != nil {
		if domain.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get chat: %w", err)
	}
	return chat.Owner == username, nil
}

// History returns the chat's full message log in ascending timestamp order.
func (u *chatUsecase) History(ctx context.Context, chatID string) ([]*entity.Message, error) {
	if chatID == "" {
		return nil, domain.NewInvalidInputError("chat id is required")
	}

	messages, err := u.messageRepo.List(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}
