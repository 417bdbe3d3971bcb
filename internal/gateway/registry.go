package gateway

import "sync"

// Registry is the process-wide map from chat id to the set of live sessions
// subscribed to that chat. A session appears here exactly between admission
// and teardown; empty sets are removed with their key.
//
// Register, Deregister and Broadcast are safe for concurrent use from
// independent connection lifecycles.
type Registry struct {
	mu    sync.RWMutex
	chats map[string]map[*Session]struct{}
}

// NewRegistry creates an empty registry. Construct one per process and
// inject it into every gateway instance; there is no ambient singleton.
func NewRegistry() *Registry {
	return &Registry{
		chats: make(map[string]map[*Session]struct{}),
	}
}

// Register adds a session to its chat's set. Registering the same pair
// twice has no additional effect.
func (r *Registry) Register(chatID string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.chats[chatID]
	if !ok {
		set = make(map[*Session]struct{})
		r.chats[chatID] = set
	}
	set[s] = struct{}{}
}

// Deregister removes a session from its chat's set and drops the set once
// empty. Removing an absent pair is a no-op so disconnect races are safe.
func (r *Registry) Deregister(chatID string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.chats[chatID]
	if !ok {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(r.chats, chatID)
	}
}

// Broadcast sends a frame to every session currently registered for the
// chat. Delivery is best effort, at most once per session: a session whose
// queue overflows or whose transport is gone is skipped, never retried.
func (r *Registry) Broadcast(chatID string, frame Frame) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for s := range r.chats[chatID] {
		s.Send(frame)
	}
}

// Count returns the number of sessions registered for a chat.
func (r *Registry) Count(chatID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.chats[chatID])
}

// HasChat reports whether the chat has any registered session.
func (r *Registry) HasChat(chatID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.chats[chatID]
	return ok
}
