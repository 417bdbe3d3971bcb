package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/khaledelhady44/The-boy-who-lived/internal/domain"
	"github.com/khaledelhady44/The-boy-who-lived/internal/domain/entity"
)

const msgKeyPrefix = "msg:"

// messageRecord is the stored form of a message.
type messageRecord struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// messageRepository is the badger implementation of MessageRepository.
//
// Keys are "msg:{chat_id}:{timestamp_padded}:{uuid}":
//  1. the 19-digit zero-padded nanosecond timestamp makes a plain prefix
//     scan return messages in chronological order;
//  2. the uuid suffix disambiguates two messages stored in the same
//     nanosecond, so neither is lost.
type messageRepository struct {
	db *badger.DB
}

// NewMessageRepository creates a new MessageRepository instance.
func NewMessageRepository(db *badger.DB) domain.MessageRepository {
	return &messageRepository{db: db}
}

func messageKey(chatID string, ts time.Time, id string) []byte {
	return []byte(fmt.Sprintf("%s%s:%019d:%s", msgKeyPrefix, chatID, ts.UnixNano(), id))
}

// Append persists a message. The id and timestamp are filled in when the
// caller left them empty; messages are never mutated afterwards.
func (r *messageRepository) Append(ctx context.Context, msg *entity.Message) (*entity.Message, error) {
	if msg.ChatID == "" {
		return nil, domain.NewInvalidInputError("chat id is required")
	}
	if strings.TrimSpace(msg.Content) == "" {
		return nil, domain.NewInvalidInputError("message content is required")
	}

	rec := messageRecord{
		ID:        msg.ID,
		ChatID:    msg.ChatID,
		Sender:    string(msg.Sender),
		Content:   msg.Content,
		Timestamp: msg.Timestamp,
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	value, err := sonic.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(rec.ChatID, rec.Timestamp, rec.ID), value)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}

	return toMessageEntity(rec), nil
}

// List returns every message of a chat in ascending timestamp order.
func (r *messageRepository) List(ctx context.Context, chatID string) ([]*entity.Message, error) {
	var values [][]byte
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(msgKeyPrefix + chatID + ":")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			value, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			values = append(values, value)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	messages := make([]*entity.Message, 0, len(values))
	for _, value := range values {
		var rec messageRecord
		if err := sonic.Unmarshal(value, &rec); err != nil {
			return nil, fmt.Errorf("failed to decode message: %w", err)
		}
		messages = append(messages, toMessageEntity(rec))
	}
	return messages, nil
}

func toMessageEntity(rec messageRecord) *entity.Message {
	return &entity.Message{
		ID:        rec.ID,
		ChatID:    rec.ChatID,
		Sender:    entity.Sender(rec.Sender),
		Content:   rec.Content,
		Timestamp: rec.Timestamp,
	}
}
