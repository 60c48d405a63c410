package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sahilchouksey/smart-campus-api/services/assistant"
	"go.uber.org/zap"
)

// DefaultResolveTimeout bounds the simulated wait plus the responder call.
const DefaultResolveTimeout = 10 * time.Second

// Latency is the suspension point between a user message and its reply.
type Latency interface {
	Delay() time.Duration
	Wait(ctx context.Context, d time.Duration) error
}

// Engine holds what every conversation shares: the classifier, the catalog,
// the responder and the latency source.
type Engine struct {
	classifier *assistant.Classifier
	catalog    *assistant.Catalog
	responder  assistant.Responder
	latency    Latency

	strict  bool
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithStrict makes rejected submits and resolves return errors instead of
// being ignored.
func WithStrict(strict bool) Option {
	return func(e *Engine) { e.strict = strict }
}

// WithTimeout sets the resolve timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithResponder replaces the catalog as the reply source.
func WithResponder(r assistant.Responder) Option {
	return func(e *Engine) { e.responder = r }
}

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator overrides message ID generation.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) { e.newID = gen }
}

// NewEngine wires the chat engine. The catalog must carry the welcome and
// unavailable entries in addition to what the classifier already checked.
func NewEngine(classifier *assistant.Classifier, catalog *assistant.Catalog, latency Latency, opts ...Option) (*Engine, error) {
	if classifier == nil || catalog == nil || latency == nil {
		return nil, fmt.Errorf("chat engine requires a classifier, a catalog and a latency source")
	}
	for _, intent := range []assistant.Intent{assistant.IntentWelcome, assistant.IntentUnavailable} {
		if !catalog.Has(intent) {
			return nil, fmt.Errorf("%w: %s", assistant.ErrUnknownIntent, intent)
		}
	}

	e := &Engine{
		classifier: classifier,
		catalog:    catalog,
		responder:  catalog,
		latency:    latency,
		timeout:    DefaultResolveTimeout,
		logger:     zap.NewNop(),
		now:        time.Now,
		newID:      func() string { return uuid.Must(uuid.NewV7()).String() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// NewConversation starts a conversation seeded with the welcome message.
func (e *Engine) NewConversation() *Conversation {
	now := e.now()
	return &Conversation{
		engine:     e,
		state:      Seed(e.catalog.Lookup(assistant.IntentWelcome), now),
		lastActive: now,
		subs:       make(map[int]chan Update),
	}
}

// Classifier exposes the engine's classifier.
func (e *Engine) Classifier() *assistant.Classifier {
	return e.classifier
}
