package entity

import "time"

// Sender tags one side of a conversation turn.
type Sender string

const (
	SenderUser   Sender = "USER"
	SenderSystem Sender = "SYSTEM"
)

// Message is one immutable timestamped utterance within a chat. The
// timestamp is the sole ordering key inside a chat.
type Message struct {
	ID        string
	ChatID    string
	Sender    Sender
	Content   string
	Timestamp time.Time
}
