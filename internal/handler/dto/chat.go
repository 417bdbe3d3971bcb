package dto

import (
	"time"

	"github.com/samber/lo"

	"github.com/khaledelhady44/The-boy-who-lived/internal/domain/entity"
)

// CreateChatRequest is the HTTP chat-creation payload.
type CreateChatRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// Validate checks the payload against its tags.
func (r *CreateChatRequest) Validate() error {
	return validate.Struct(r)
}

// ChatResponse is the HTTP representation of a chat.
type ChatResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Owner     string `json:"owner"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ChatListResponse is the HTTP chat list.
type ChatListResponse struct {
	Chats []*ChatResponse `json:"chats"`
	Total int             `json:"total"`
}

// ToChatResponse converts entity.Chat to ChatResponse.
func ToChatResponse(chat *entity.Chat) *ChatResponse {
	return &ChatResponse{
		ID:        chat.ID,
		Name:      chat.Name,
		Owner:     chat.Owner,
		CreatedAt: chat.CreatedAt.Format(time.RFC3339),
		UpdatedAt: chat.UpdatedAt.Format(time.RFC3339),
	}
}

// ToChatListResponse converts a slice of entity.Chat to ChatListResponse.
func ToChatListResponse(chats []*entity.Chat) *ChatListResponse {
	items := lo.Map(chats, func(chat *entity.Chat, _ int) *ChatResponse {
		return ToChatResponse(chat)
	})
	return &ChatListResponse{
		Chats: items,
		Total: len(items),
	}
}
