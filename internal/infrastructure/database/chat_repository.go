package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/khaledelhady44/The-boy-who-lived/internal/domain"
	"github.com/khaledelhady44/The-boy-who-lived/internal/domain/entity"
)

const (
	chatKeyPrefix    = "chat:"
	chatIdxKeyPrefix = "chatidx:"
)

// chatRecord is the stored form of a chat.
type chatRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// chatRepository is the badger implementation of ChatRepository.
//
// Chats live under "chat:{id}". A second index key
// "chatidx:{owner}:{19-digit-ns}:{id}" orders a reverse prefix scan by
// creation time, newest first, the same key scheme the message log uses.
type chatRepository struct {
	db *badger.DB
}

// NewChatRepository creates a new ChatRepository instance.
func NewChatRepository(db *badger.DB) domain.ChatRepository {
	return &chatRepository{db: db}
}

func chatKey(chatID string) []byte {
	return []byte(chatKeyPrefix + chatID)
}

func chatIdxKey(owner, chatID string, createdAt time.Time) []byte {
	return []byte(fmt.Sprintf("%s%s:%019d:%s", chatIdxKeyPrefix, owner, createdAt.UnixNano(), chatID))
}

// Create stores a new chat and its owner index entry.
func (r *chatRepository) Create(ctx context.Context, chat *entity.Chat) (*entity.Chat, error) {
	now := time.Now().UTC()
	rec := chatRecord{
		ID:        uuid.New().String(),
		Name:      chat.Name,
		Owner:     chat.Owner,
		CreatedAt: now,
		UpdatedAt: now,
	}

	value, err := sonic.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(chatKey(rec.ID), value); err != nil {
			return err
		}
		return txn.Set(chatIdxKey(rec.Owner, rec.ID, rec.CreatedAt), []byte(rec.ID))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}

	return toChatEntity(rec), nil
}

// Get fetches a chat by id.
func (r *chatRepository) Get(ctx context.Context, chatID string) (*entity.Chat, error) {
	var rec chatRecord
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(chatKey(chatID))
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			return sonic.Unmarshal(value, &rec)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, domain.NewNotFoundError("Chat", chatID)
		}
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}

	return toChatEntity(rec), nil
}

// ListByOwner returns the owner's chats, newest first, capped at limit.
func (r *chatRepository) ListByOwner(ctx context.Context, owner string, limit int) ([]*entity.Chat, error) {
	var ids []string
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(chatIdxKeyPrefix + owner + ":")
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Reverse scans need a seek position past the newest index key.
		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(ids) == limit {
				break
			}
			id, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			ids = append(ids, string(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}

	chats := make([]*entity.Chat, 0, len(ids))
	for _, id := range ids {
		chat, err := r.Get(ctx, id)
		if err != nil {
			if domain.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		chats = append(chats, chat)
	}
	return chats, nil
}

func toChatEntity(rec chatRecord) *entity.Chat {
	return &entity.Chat{
		ID:        rec.ID,
		Name:      rec.Name,
		Owner:     rec.Owner,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}
