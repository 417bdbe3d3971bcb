package dto

import (
	"time"

	"github.com/samber/lo"

	"github.com/khaledelhady44/The-boy-who-lived/internal/domain/entity"
)

// MessageResponse is the HTTP representation of a stored message.
type MessageResponse struct {
	ID        string `json:"id"`
	ChatID    string `json:"chat_id"`
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// MessageListResponse is the HTTP message history of one chat.
type MessageListResponse struct {
	Messages []*MessageResponse `json:"messages"`
	Total    int                `json:"total"`
}

// ToMessageResponse converts entity.Message to MessageResponse.
func ToMessageResponse(msg *entity.Message) *MessageResponse {
	return &MessageResponse{
		ID:        msg.ID,
		ChatID:    msg.ChatID,
		Sender:    string(msg.Sender),
		Message:   msg.Content,
		Timestamp: msg.Timestamp.Format(time.RFC3339Nano),
	}
}

// ToMessageListResponse converts a slice of entity.Message to MessageListResponse.
func ToMessageListResponse(messages []*entity.Message) *MessageListResponse {
	items := lo.Map(messages, func(msg *entity.Message, _ int) *MessageResponse {
		return ToMessageResponse(msg)
	})
	return &MessageListResponse{
		Messages: items,
		Total:    len(items),
	}
}
