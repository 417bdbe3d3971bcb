package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/khaledelhady44/The-boy-who-lived/internal/domain"
	"github.com/khaledelhady44/The-boy-who-lived/internal/domain/entity"
)

type testChatRepository struct {
	chats map[string]*entity.Chat
	seq   int
}

func newTestChatRepository() *testChatRepository {
	return &testChatRepository{chats: make(map[string]*entity.Chat)}
}

func (r *testChatRepository) Create(ctx context.Context, chat *entity.Chat) (*entity.Chat, error) {
	r.seq++
	stored := *chat
	stored.ID = fmt.Sprintf("chat-%d", r.seq)
	stored.CreatedAt = time.Now().Add(time.Duration(r.seq) * time.Millisecond)
	stored.UpdatedAt = stored.CreatedAt
	r.chats[stored.ID] = &stored
	return &stored, nil
}

func (r *testChatRepository) Get(ctx context.Context, chatID string) (*entity.Chat, error) {
	if chat, ok := r.chats[chatID]; ok {
		return chat, nil
	}
	return nil, domain.NewNotFoundError("chat", chatID)
}

func (r *testChatRepository) ListByOwner(ctx context.Context, owner string, limit int) ([]*entity.Chat, error) {
	var out []*entity.Chat
	for _, chat := range r.chats {
		if chat.Owner == owner {
			out = append(out, chat)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type testMessageRepository struct {
	messages map[string][]*entity.Message
}

func newTestMessageRepository() *testMessageRepository {
	return &testMessageRepository{messages: make(map[string][]*entity.Message)}
}

func (r *testMessageRepository) Append(ctx context.Context, msg *entity.Message) (*entity.Message, error) {
	stored := *msg
	if stored.ID == "" {
		stored.ID = fmt.Sprintf("msg-%d", len(r.messages[msg.ChatID])+1)
	}
	if stored.Timestamp.IsZero() {
		stored.Timestamp = time.Now()
	}
	r.messages[msg.ChatID] = append(r.messages[msg.ChatID], &stored)
	return &stored, nil
}

func (r *testMessageRepository) List(ctx context.Context, chatID string) ([]*entity.Message, error) {
	return r.messages[chatID], nil
}

func newTestChatUsecase(listLimit int) (domain.ChatUsecase, *testChatRepository, *testMessageRepository) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	chatRepo := newTestChatRepository()
	messageRepo := newTestMessageRepository()
	return NewChatUsecase(chatRepo, messageRepo, listLimit, logger), chatRepo, messageRepo
}

func TestCreateChat(t *testing.T) {
	uc, _, _ := newTestChatUsecase(30)

	chat, err := uc.CreateChat(context.Background(), "harry", "  common room  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chat.ID == "" {
		t.Error("expected an id to be assigned")
	}
	if chat.Name != "common room" {
		t.Errorf("name = %q, want trimmed %q", chat.Name, "common room")
	}
	if chat.Owner != "harry" {
		t.Errorf("owner = %q, want %q", chat.Owner, "harry")
	}

	if _, err := uc.CreateChat(context.Background(), "", "x"); !domain.IsInvalidInput(err) {
		t.Errorf("missing owner: err = %v, want invalid input", err)
	}
	if _, err := uc.CreateChat(context.Background(), "harry", "   "); !domain.IsInvalidInput(err) {
		t.Errorf("blank name: err = %v, want invalid input", err)
	}
}

func TestListChatsRespectsLimit(t *testing.T) {
	uc, _, _ := newTestChatUsecase(3)

	for i := 0; i < 5; i++ {
		if _, err := uc.CreateChat(context.Background(), "harry", fmt.Sprintf("chat %d", i)); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}
	if _, err := uc.CreateChat(context.Background(), "ron", "other owner"); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	chats, err := uc.ListChats(context.Background(), "harry")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chats) != 3 {
		t.Fatalf("len = %d, want 3", len(chats))
	}
	// Newest first
	if chats[0].Name != "chat 4" {
		t.Errorf("first chat = %q, want the newest", chats[0].Name)
	}
	for _, chat := range chats {
		if chat.Owner != "harry" {
			t.Errorf("foreign chat %q leaked into the list", chat.ID)
		}
	}
}

func TestBelongsTo(t *testing.T) {
	uc, _, _ := newTestChatUsecase(30)

	chat, err := uc.CreateChat(context.Background(), "harry", "mine")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	tests := []struct {
		name     string
		chatID   string
		username string
		want     bool
	}{
		{"owner matches", chat.ID, "harry", true},
		{"different owner", chat.ID, "draco", false},
		{"missing chat", "no-such-chat", "harry", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := uc.BelongsTo(context.Background(), tt.chatID, tt.username)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("BelongsTo = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHistory(t *testing.T) {
	uc, _, messageRepo := newTestChatUsecase(30)

	chat, err := uc.CreateChat(context.Background(), "harry", "mine")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	for i, text := range []string{"hello", "hello yourself", "how are you"} {
		sender := entity.SenderUser
		if i%2 == 1 {
			sender = entity.SenderSystem
		}
		if _, err := messageRepo.Append(context.Background(), &entity.Message{
			ChatID:  chat.ID,
			Sender:  sender,
			Content: text,
		}); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	history, err := uc.History(context.Background(), chat.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("len = %d, want 3", len(history))
	}
	if history[0].Content != "hello" || history[2].Content != "how are you" {
		t.Error("history out of order")
	}

	if _, err := uc.History(context.Background(), ""); !domain.IsInvalidInput(err) {
		t.Errorf("blank chat id: err = %v, want invalid input", err)
	}
}
