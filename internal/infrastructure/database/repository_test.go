package database

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khaledelhady44/The-boy-who-lived/internal/config"
	"github.com/khaledelhady44/The-boy-who-lived/internal/domain"
	"github.com/khaledelhady44/The-boy-who-lived/internal/domain/entity"
)

func testDB(t *testing.T) *badger.DB {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	db, err := NewClient(config.DatabaseConfig{InMemory: true}, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func TestUserRepository(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		created, err := repo.Create(ctx, &entity.User{
			Username:     "harry",
			Email:        "harry@hogwarts.edu",
			FullName:     "Harry Potter",
			PasswordHash: "hash",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.False(t, created.CreatedAt.IsZero())

		got, err := repo.GetByUsername(ctx, "harry")
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "harry@hogwarts.edu", got.Email)
		assert.Nil(t, got.LastLoginAt)
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := repo.Create(ctx, &entity.User{Username: "harry", PasswordHash: "hash"})
		require.Error(t, err)
		assert.True(t, domain.IsAlreadyExists(err))
	})

	t.Run("unknown username", func(t *testing.T) {
		_, err := repo.GetByUsername(ctx, "voldemort")
		require.Error(t, err)
		assert.True(t, domain.IsNotFound(err))
	})

	t.Run("update last login", func(t *testing.T) {
		require.NoError(t, repo.UpdateLastLogin(ctx, "harry"))

		got, err := repo.GetByUsername(ctx, "harry")
		require.NoError(t, err)
		require.NotNil(t, got.LastLoginAt)
		assert.WithinDuration(t, time.Now(), *got.LastLoginAt, time.Minute)

		err = repo.UpdateLastLogin(ctx, "voldemort")
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestChatRepository(t *testing.T) {
	db := testDB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		created, err := repo.Create(ctx, &entity.Chat{Name: "common room", Owner: "harry"})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)

		got, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "common room", got.Name)
		assert.Equal(t, "harry", got.Owner)
	})

	t.Run("get missing chat", func(t *testing.T) {
		_, err := repo.Get(ctx, "nope")
		require.Error(t, err)
		assert.True(t, domain.IsNotFound(err))
	})

	t.Run("list by owner newest first", func(t *testing.T) {
		for i := 0; i < 4; i++ {
			_, err := repo.Create(ctx, &entity.Chat{
				Name:  fmt.Sprintf("chat %d", i),
				Owner: "hermione",
			})
			require.NoError(t, err)
			// Distinct creation timestamps keep the index order stable
			time.Sleep(2 * time.Millisecond)
		}

		chats, err := repo.ListByOwner(ctx, "hermione", 30)
		require.NoError(t, err)
		require.Len(t, chats, 4)
		assert.Equal(t, "chat 3", chats[0].Name)
		assert.Equal(t, "chat 0", chats[3].Name)
	})

	t.Run("list respects limit", func(t *testing.T) {
		chats, err := repo.ListByOwner(ctx, "hermione", 2)
		require.NoError(t, err)
		require.Len(t, chats, 2)
		assert.Equal(t, "chat 3", chats[0].Name)
	})

	t.Run("list excludes other owners", func(t *testing.T) {
		chats, err := repo.ListByOwner(ctx, "harry", 30)
		require.NoError(t, err)
		for _, chat := range chats {
			assert.Equal(t, "harry", chat.Owner)
		}
	})

	t.Run("list unknown owner", func(t *testing.T) {
		chats, err := repo.ListByOwner(ctx, "nobody", 30)
		require.NoError(t, err)
		assert.Empty(t, chats)
	})
}

func TestMessageRepository(t *testing.T) {
	db := testDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	t.Run("append fills id and timestamp", func(t *testing.T) {
		msg, err := repo.Append(ctx, &entity.Message{
			ChatID:  "chat-1",
			Sender:  entity.SenderUser,
			Content: "hello",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, msg.ID)
		assert.False(t, msg.Timestamp.IsZero())
	})

	t.Run("append validation", func(t *testing.T) {
		_, err := repo.Append(ctx, &entity.Message{Sender: entity.SenderUser, Content: "x"})
		assert.True(t, domain.IsInvalidInput(err), "missing chat id")

		_, err = repo.Append(ctx, &entity.Message{ChatID: "chat-1", Sender: entity.SenderUser, Content: "  "})
		assert.True(t, domain.IsInvalidInput(err), "blank content")
	})

	t.Run("list returns chronological order", func(t *testing.T) {
		base := time.Now().UTC()
		// Append out of chronological order; the key scheme sorts them.
		for _, m := range []struct {
			offset time.Duration
			text   string
			sender entity.Sender
		}{
			{2 * time.Second, "third", entity.SenderUser},
			{0, "first", entity.SenderUser},
			{1 * time.Second, "second", entity.SenderSystem},
		} {
			_, err := repo.Append(ctx, &entity.Message{
				ChatID:    "chat-ordered",
				Sender:    m.sender,
				Content:   m.text,
				Timestamp: base.Add(m.offset),
			})
			require.NoError(t, err)
		}

		messages, err := repo.List(ctx, "chat-ordered")
		require.NoError(t, err)
		require.Len(t, messages, 3)
		assert.Equal(t, "first", messages[0].Content)
		assert.Equal(t, "second", messages[1].Content)
		assert.Equal(t, "third", messages[2].Content)
		assert.Equal(t, entity.SenderSystem, messages[1].Sender)
	})

	t.Run("list is scoped to the chat", func(t *testing.T) {
		_, err := repo.Append(ctx, &entity.Message{
			ChatID:  "chat-other",
			Sender:  entity.SenderUser,
			Content: "elsewhere",
		})
		require.NoError(t, err)

		messages, err := repo.List(ctx, "chat-ordered")
		require.NoError(t, err)
		for _, msg := range messages {
			assert.Equal(t, "chat-ordered", msg.ChatID)
		}
	})

	t.Run("list empty chat", func(t *testing.T) {
		messages, err := repo.List(ctx, "chat-empty")
		require.NoError(t, err)
		assert.Empty(t, messages)
	})

	t.Run("same nanosecond messages both survive", func(t *testing.T) {
		ts := time.Now().UTC()
		for _, text := range []string{"a", "b"} {
			_, err := repo.Append(ctx, &entity.Message{
				ChatID:    "chat-collision",
				Sender:    entity.SenderUser,
				Content:   text,
				Timestamp: ts,
			})
			require.NoError(t, err)
		}

		messages, err := repo.List(ctx, "chat-collision")
		require.NoError(t, err)
		assert.Len(t, messages, 2)
	})
}
