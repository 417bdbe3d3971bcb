package agent

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator() *ScriptedGenerator {
	return NewScriptedGenerator(slog.New(slog.NewTextHandler(os.Stdout, nil)))
}

func TestScriptedGeneratorGreeting(t *testing.T) {
	g := newTestGenerator()

	reply, err := g.Generate(context.Background(), "Hi!", "conv-1")
	require.NoError(t, err)
	assert.Contains(t, reply, "Harry here")
}

func TestScriptedGeneratorRemembersName(t *testing.T) {
	g := newTestGenerator()
	ctx := context.Background()

	reply, err := g.Generate(ctx, "my name is neville, pleased to meet you", "conv-1")
	require.NoError(t, err)
	assert.Contains(t, reply, "Neville")

	reply, err = g.Generate(ctx, "goodbye!", "conv-1")
	require.NoError(t, err)
	assert.Contains(t, reply, "Neville", "name should persist across turns of the same conversation")
}

func TestScriptedGeneratorMemoryIsPerConversation(t *testing.T) {
	g := newTestGenerator()
	ctx := context.Background()

	_, err := g.Generate(ctx, "i'm Luna", "conv-1")
	require.NoError(t, err)

	reply, err := g.Generate(ctx, "bye", "conv-2")
	require.NoError(t, err)
	assert.NotContains(t, reply, "Luna", "conversations must not share memory")
}

func TestScriptedGeneratorKeywords(t *testing.T) {
	g := newTestGenerator()
	ctx := context.Background()

	tests := []struct {
		text string
		want string
	}{
		{"do you like quidditch?", "Seeker"},
		{"are you scared of voldemort?", "fear of a name"},
		{"what would hermione say", "cleverest witch"},
		{"tell me about ron", "best mate"},
		{"teach me lumos", "Lumos!"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			reply, err := g.Generate(ctx, tt.text, "conv-"+tt.text)
			require.NoError(t, err)
			assert.Contains(t, reply, tt.want)
		})
	}
}

func TestScriptedGeneratorFallbackCycles(t *testing.T) {
	g := newTestGenerator()
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < len(fallbackReplies); i++ {
		reply, err := g.Generate(ctx, "something entirely unremarkable", "conv-1")
		require.NoError(t, err)
		seen[reply] = true
	}
	assert.Greater(t, len(seen), 1, "fallback replies should vary between turns")
}

func TestScriptedGeneratorNeverEmpty(t *testing.T) {
	g := newTestGenerator()
	ctx := context.Background()

	for _, text := range []string{"", "   ", "x", "HELLO THERE", "my name is "} {
		reply, err := g.Generate(ctx, text, "conv-1")
		require.NoError(t, err)
		assert.NotEmpty(t, strings.TrimSpace(reply))
	}
}

func TestScriptedGeneratorCancelledContext(t *testing.T) {
	g := newTestGenerator()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Generate(ctx, "hello", "conv-1")
	assert.Error(t, err)
}
