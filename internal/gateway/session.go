// Package gateway owns the lifecycle of real-time chat connections: one
// session per websocket, a process-wide registry keyed by chat id, and the
// per-turn orchestration between the message store and the reply generator.
package gateway

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/khaledelhady44/The-boy-who-lived/internal/domain/entity"
)

// Frame is the wire format of every server-to-client send.
type Frame struct {
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp,omitempty"`
	Error     bool   `json:"error,omitempty"`
}

func toFrame(msg *entity.Message) Frame {
	return Frame{
		Sender:    string(msg.Sender),
		Message:   msg.Content,
		Timestamp: msg.Timestamp.Format(time.RFC3339Nano),
	}
}

func errorFrame(message string) Frame {
	return Frame{
		Sender:  string(entity.SenderSystem),
		Message: message,
		Error:   true,
	}
}

// Conn is the minimal transport surface a session needs. The websocket
// handler adapts the real connection; tests supply fakes.
type Conn interface {
	// ReadText blocks until the next inbound text frame or disconnect
	ReadText() (string, error)

	// WriteFrame sends one frame to the peer
	WriteFrame(frame Frame) error

	// Close tears the transport down
	Close() error
}

// Session is one live connection, bound to one chat and one authenticated
// username for its whole lifetime. Outbound frames go through a bounded
// queue drained by a single write pump, so a slow peer never blocks the
// sender's turn: when the queue is full the oldest frame is dropped.
type Session struct {
	ID       string
	ChatID   string
	Username string

	conn   Conn
	out    chan Frame
	closed chan struct{}
	once   sync.Once
	logger *slog.Logger
}

func newSession(chatID, username string, conn Conn, sendBuffer int, logger *slog.Logger) *Session {
	if sendBuffer < 1 {
		sendBuffer = 16
	}
	id := uuid.New().String()
	return &Session{
		ID:       id,
		ChatID:   chatID,
		Username: username,
		conn:     conn,
		out:      make(chan Frame, sendBuffer),
		closed:   make(chan struct{}),
		logger:   logger.With("session_id", id, "chat_id", chatID),
	}
}

// Send enqueues a frame without blocking. Overflow drops the oldest queued
// frame; delivery is best effort, at most once.
func (s *Session) Send(frame Frame) {
	select {
	case <-s.closed:
		return
	default:
	}

	select {
	case s.out <- frame:
		return
	default:
	}

	select {
	case <-s.out:
		s.logger.Warn("outbound queue full, dropping oldest frame")
	default:
	}
	select {
	case s.out <- frame:
	default:
	}
}

// writePump drains the outbound queue onto the transport. It runs in its
// own goroutine and exits when the session closes or a write fails.
func (s *Session) writePump() {
	for {
		select {
		case frame := <-s.out:
			if err := s.conn.WriteFrame(frame); err != nil {
				s.logger.Debug("write failed, closing session", "error", err)
				s.close()
				return
			}
		case <-s.closed:
			return
		}
	}
}

// close shuts the session down exactly once.
func (s *Session) close() {
	s.once.Do(func() {
		close(s.closed)
		if err := s.conn.Close(); err != nil {
			s.logger.Debug("transport close failed", "error", err)
		}
	})
}
