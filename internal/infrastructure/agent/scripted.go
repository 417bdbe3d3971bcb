// Package agent provides ReplyGenerator implementations: a scripted
// in-process Harry Potter persona and a client for a remote agent service.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/khaledelhady44/The-boy-who-lived/internal/domain"
)

// conversationState is the scripted generator's per-conversation memory.
type conversationState struct {
	turns    int
	userName string
}

// ScriptedGenerator answers as Harry Potter from a fixed rule table. It is
// deterministic given the same conversation, keeps its memory keyed by
// conversation id, and needs no external service.
type ScriptedGenerator struct {
	mu     sync.Mutex
	memory map[string]*conversationState
	logger *slog.Logger
}

var _ domain.ReplyGenerator = (*ScriptedGenerator)(nil)

// NewScriptedGenerator creates a scripted generator.
func NewScriptedGenerator(logger *slog.Logger) *ScriptedGenerator {
	return &ScriptedGenerator{
		memory: make(map[string]*conversationState),
		logger: logger,
	}
}

var fallbackReplies = []string{
	"Blimey, that sounds brilliant! Have you ever tried a spell like Lumos or Wingardium Leviosa?",
	"That reminds me of when Ron and I nicked his dad's flying car. Ever been in a bit of a tight spot like that?",
	"Cheers! Fancy a go at something magical today?",
	"Brilliant! Hermione would know loads more about that than me, mind you.",
	"Wicked! D'you reckon an owl could carry that all the way to Hogwarts?",
}

// Generate produces Harry's side of the turn.
func (g *ScriptedGenerator) Generate(ctx context.Context, text, conversationID string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	g.mu.Lock()
	state, ok := g.memory[conversationID]
	if !ok {
		state = &conversationState{}
		g.memory[conversationID] = state
	}
	state.turns++
	reply := g.scriptReply(state, text)
	g.mu.Unlock()

	g.logger.Debug("scripted reply generated",
		"conversation_id", conversationID,
		"turn", state.turns,
	)
	return reply, nil
}

func (g *ScriptedGenerator) scriptReply(state *conversationState, text string) string {
	lower := strings.ToLower(strings.TrimSpace(text))

	if name, ok := extractName(lower); ok {
		state.userName = name
		return fmt.Sprintf("Brilliant to meet you, %s! Which Hogwarts house d'you reckon you'd be in?", name)
	}

	switch {
	case state.turns == 1 && isGreeting(lower):
		return "Hiya! Harry here. What's your name, then? And which house would you fancy at Hogwarts?"
	case strings.Contains(lower, "quidditch"):
		return "Quidditch! Best thing about Hogwarts, honestly. I play Seeker for Gryffindor. Ever flown a broom?"
	case strings.Contains(lower, "voldemort") || strings.Contains(lower, "you know who"):
		return "We don't say his name lightly... but I'm not afraid of him. Dumbledore says fear of a name only increases fear of the thing itself."
	case strings.Contains(lower, "hermione"):
		return "Hermione's the cleverest witch of our age, no question. She'd have the answer before you finished asking."
	case strings.Contains(lower, "ron"):
		return "Ron's my best mate. Bit rubbish at Wizard's Chess to lose to him though, he always wins."
	case strings.Contains(lower, "lumos"):
		return "Lumos! Handy one, that. Got me through a few dark corridors under the invisibility cloak."
	case strings.Contains(lower, "bye") || strings.Contains(lower, "goodbye"):
		if state.userName != "" {
			return fmt.Sprintf("See you around, %s! Mind the stairs, they like to move.", state.userName)
		}
		return "See you around! Mind the stairs, they like to move."
	}

	return fallbackReplies[(state.turns-1)%len(fallbackReplies)]
}

func isGreeting(lower string) bool {
	for _, g := range []string{"hi", "hello", "hey", "hiya"} {
		if lower == g || strings.HasPrefix(lower, g+" ") || strings.HasPrefix(lower, g+"!") {
			return true
		}
	}
	return false
}

func extractName(lower string) (string, bool) {
	for _, p := range []string{"my name is ", "i am ", "i'm ", "call me "} {
		if rest, ok := strings.CutPrefix(lower, p); ok {
			fields := strings.Fields(rest)
			if len(fields) == 0 {
				continue
			}
			name := strings.Trim(fields[0], ".,!?")
			if name != "" {
				return strings.ToUpper(name[:1]) + name[1:], true
			}
		}
	}
	return "", false
}
