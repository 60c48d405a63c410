package chat

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Registry keeps one in-memory conversation per authenticated session.
// Nothing is persisted: dropping a key discards its log.
type Registry struct {
	engine *Engine
	logger *zap.Logger

	mu    sync.Mutex
	convs map[string]*Conversation
}

// NewRegistry creates an empty registry backed by engine.
func NewRegistry(engine *Engine, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		engine: engine,
		logger: logger,
		convs:  make(map[string]*Conversation),
	}
}

// Get returns the conversation for key, creating it on first use.
func (r *Registry) Get(key string) *Conversation {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.convs[key]; ok {
		return c
	}
	c := r.engine.NewConversation()
	r.convs[key] = c
	r.logger.Debug("conversation started", zap.String("session", key))
	return c
}

// Lookup returns the conversation for key without creating one.
func (r *Registry) Lookup(key string) (*Conversation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convs[key]
	return c, ok
}

// Drop discards the conversation for key.
func (r *Registry) Drop(key string) bool {
	r.mu.Lock()
	c, ok := r.convs[key]
	delete(r.convs, key)
	r.mu.Unlock()

	if ok {
		c.Close()
		r.logger.Debug("conversation dropped", zap.String("session", key))
	}
	return ok
}

// EvictIdle drops conversations untouched for longer than maxIdle. A
// conversation with a reply in flight is kept.
func (r *Registry) EvictIdle(maxIdle time.Duration) int {
	cutoff := r.engine.now().Add(-maxIdle)

	r.mu.Lock()
	var evicted []*Conversation
	for key, c := range r.convs {
		if c.State() == AwaitingResponse || c.LastActive().After(cutoff) {
			continue
		}
		delete(r.convs, key)
		evicted = append(evicted, c)
	}
	r.mu.Unlock()

	for _, c := range evicted {
		c.Close()
	}
	return len(evicted)
}

// Len returns the number of live conversations.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.convs)
}
