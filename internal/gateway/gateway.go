package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/khaledelhady44/The-boy-who-lived/internal/domain"
	"github.com/khaledelhady44/The-boy-who-lived/internal/domain/entity"
)

// TokenVerifier validates a bearer token and returns the authenticated
// username. Implemented by the auth layer on top of the same JWT middleware
// that protects the HTTP routes.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

// Options tune per-connection behaviour.
type Options struct {
	SendBufferSize int // outbound queue length per session
	MaxMessageLen  int // inbound frame cap in bytes, 0 for unlimited
}

// Gateway orchestrates one persistent connection per call to Serve:
// admission, history replay, the sequential turn loop, fan-out through the
// registry, and guaranteed deregistration on teardown.
type Gateway struct {
	registry  *Registry
	chats     domain.ChatUsecase
	messages  domain.MessageRepository
	generator domain.ReplyGenerator
	verifier  TokenVerifier
	opts      Options
	logger    *slog.Logger
}

// New creates a gateway. The registry is shared across all connections of
// the process; everything else is a per-call collaborator.
func New(
	registry *Registry,
	chats domain.ChatUsecase,
	messages domain.MessageRepository,
	generator domain.ReplyGenerator,
	verifier TokenVerifier,
	opts Options,
	logger *slog.Logger,
) *Gateway {
	return &Gateway{
		registry:  registry,
		chats:     chats,
		messages:  messages,
		generator: generator,
		verifier:  verifier,
		opts:      opts,
		logger:    logger,
	}
}

// Admit verifies the bearer credential and chat ownership. It returns the
// authenticated username, or an unauthorized/forbidden error that the
// transport layer surfaces as a single policy-violation close. No state is
// touched on failure; a rejected connection never reaches the registry.
func (g *Gateway) Admit(ctx context.Context, chatID, token string) (string, error) {
	if token == "" {
		return "", domain.NewUnauthorizedError("missing credentials")
	}

	username, err := g.verifier.VerifyToken(ctx, token)
	if err != nil {
		g.logger.Warn("connection rejected", "chat_id", chatID, "reason", "invalid token")
		return "", domain.NewUnauthorizedError("invalid or expired token")
	}

	owned, err := g.chats.BelongsTo(ctx, chatID, username)
	if err != nil {
		return "", fmt.Errorf("ownership check failed: %w", err)
	}
	if !owned {
		// Missing chat and foreign chat are deliberately indistinguishable
		// to the client; the reason attribute keeps them apart in logs.
		g.logger.Warn("connection rejected",
			"chat_id", chatID,
			"username", username,
			"reason", "chat not found or not owned",
		)
		return "", domain.NewForbiddenError("no such user or chat")
	}

	return username, nil
}

// Serve runs an admitted connection until the peer disconnects or a fatal
// transport error occurs. Deregistration is deferred so it runs on every
// exit path, including a panic mid-turn.
func (g *Gateway) Serve(ctx context.Context, chatID, username string, conn Conn) {
	sess := newSession(chatID, username, conn, g.opts.SendBufferSize, g.logger)

	g.registry.Register(chatID, sess)
	defer func() {
		g.registry.Deregister(chatID, sess)
		sess.close()
		g.logger.Info("connection closed", "chat_id", chatID, "username", username, "session_id", sess.ID)
	}()

	// Replay goes straight to the transport: the write pump has not started
	// yet, so stored history is on the wire, in stored order, before any
	// live frame. Concurrent broadcasts meanwhile queue up behind it.
	if err := g.replayHistory(ctx, sess); err != nil {
		g.logger.Error("history replay failed", "chat_id", chatID, "error", err)
		return
	}

	go sess.writePump()

	g.logger.Info("connection active", "chat_id", chatID, "username", username, "session_id", sess.ID)

	for {
		text, err := conn.ReadText()
		if err != nil {
			return
		}

		if strings.TrimSpace(text) == "" {
			continue
		}
		if g.opts.MaxMessageLen > 0 && len(text) > g.opts.MaxMessageLen {
			sess.Send(errorFrame("message too long"))
			continue
		}

		// One turn fully completes before the next frame is read; there is
		// no pipelining on a single connection.
		g.handleTurn(ctx, sess, text)
	}
}

// replayHistory writes the chat's stored log to this session only.
func (g *Gateway) replayHistory(ctx context.Context, sess *Session) error {
	history, err := g.messages.List(ctx, sess.ChatID)
	if err != nil {
		return err
	}
	for _, msg := range history {
		if err := sess.conn.WriteFrame(toFrame(msg)); err != nil {
			return err
		}
	}
	return nil
}

// handleTurn runs one inbound-text → generated-reply cycle. Both sides are
// persisted before they are broadcast. Store and generator failures are
// turn-local: the sender gets an in-band error frame and the connection
// keeps accepting frames.
func (g *Gateway) handleTurn(ctx context.Context, sess *Session, text string) {
	userMsg, err := g.messages.Append(ctx, &entity.Message{
		ChatID:    sess.ChatID,
		Sender:    entity.SenderUser,
		Content:   text,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		g.logger.Error("failed to persist user message", "chat_id", sess.ChatID, "error", err)
		sess.Send(errorFrame("your message could not be saved, please try again"))
		return
	}
	g.registry.Broadcast(sess.ChatID, toFrame(userMsg))

	reply, err := g.generator.Generate(ctx, text, sess.ChatID)
	if err != nil {
		g.logger.Error("reply generation failed", "chat_id", sess.ChatID, "error", err)
		sess.Send(errorFrame("the other side seems to have lost their wand, try again in a moment"))
		return
	}

	sysMsg, err := g.messages.Append(ctx, &entity.Message{
		ChatID:    sess.ChatID,
		Sender:    entity.SenderSystem,
		Content:   reply,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		g.logger.Error("failed to persist reply", "chat_id", sess.ChatID, "error", err)
		sess.Send(errorFrame("the reply could not be saved"))
		return
	}
	g.registry.Broadcast(sess.ChatID, toFrame(sysMsg))
}
