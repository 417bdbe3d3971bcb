package domain

import (
	"context"

	"github.com/khaledelhady44/The-boy-who-lived/internal/domain/entity"
)

// ============ Repository interfaces ============

// ChatRepository is the chat data access interface.
type ChatRepository interface {
	// Create stores a new chat
	Create(ctx context.Context, chat *entity.Chat) (*entity.Chat, error)

	// Get fetches a chat by id
	Get(ctx context.Context, chatID string) (*entity.Chat, error)

	// ListByOwner returns the owner's chats, newest first, capped at limit
	ListByOwner(ctx context.Context, owner string, limit int) ([]*entity.Chat, error)
}

// MessageRepository is the append-only message log interface.
type MessageRepository interface {
	// Append persists a message and returns the stored record
	Append(ctx context.Context, msg *entity.Message) (*entity.Message, error)

	// List returns every message of a chat in ascending timestamp order
	List(ctx context.Context, chatID string) ([]*entity.Message, error)
}

// ============ Collaborator interfaces ============

// ReplyGenerator produces the system side of a conversation turn. The
// conversationID scopes whatever memory the generator keeps; the same id
// across calls must reuse prior context. Implementations may be remote,
// slow, or fail transiently.
type ReplyGenerator interface {
	Generate(ctx context.Context, text, conversationID string) (string, error)
}

// ============ Usecase interface ============

// ChatUsecase is the chat business logic interface.
type ChatUsecase interface {
	// CreateChat creates a chat owned by the given username
	CreateChat(ctx context.Context, owner, name string) (*entity.Chat, error)

	// ListChats returns the user's chats
	ListChats(ctx context.Context, owner string) ([]*entity.Chat, error)

	// BelongsTo reports whether the chat exists and is owned by username
	BelongsTo(ctx context.Context, chatID, username string) (bool, error)

	// History returns the chat's full message log in stored order
	History(ctx context.Context, chatID string) ([]*entity.Message, error)
}
