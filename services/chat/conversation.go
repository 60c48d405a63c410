package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sahilchouksey/smart-campus-api/services/assistant"
	"go.uber.org/zap"
)

// Snapshot is a read-only copy of a conversation for rendering.
type Snapshot struct {
	Messages         []Message `json:"messages"`
	State            TurnState `json:"state"`
	ShowQuickActions bool      `json:"show_quick_actions"`
}

// Update is delivered to subscribers after every transition.
type Update struct {
	Effects  []Effect
	Snapshot Snapshot
}

// Conversation owns one message log. All transitions go through Step while
// holding mu, so the log has a single writer.
type Conversation struct {
	engine *Engine

	mu         sync.Mutex
	state      State
	resolving  bool
	lastActive time.Time
	closed     bool
	subs       map[int]chan Update
	nextSub    int
}

// Submit appends a user message and moves to AwaitingResponse. A rejected
// submit returns nil, nil unless the engine is strict.
func (c *Conversation) Submit(text string) (*Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolving = false

	next, effects, err := Step(c.state, SubmitEvent{
		ID:   c.engine.newID(),
		Text: text,
		At:   c.engine.now(),
	})
	if err != nil {
		return nil, c.reject(err)
	}
	c.commitLocked(next, effects)

	msg := next.Messages[len(next.Messages)-1]
	return &msg, nil
}

// Resolve classifies the pending query, waits on the latency source and
// appends the reply. If the wait or the responder fails the turn still
// completes, with the unavailable reply, and the cause is returned wrapped
// in ErrReplyUnavailable alongside the message.
func (c *Conversation) Resolve(ctx context.Context) (*Message, error) {
	c.mu.Lock()
	pending, ok := c.state.Pending()
	if !ok {
		c.mu.Unlock()
		return nil, c.reject(ErrInvalidState)
	}
	if c.resolving {
		c.mu.Unlock()
		return nil, c.reject(ErrResolveInFlight)
	}
	c.resolving = true
	c.mu.Unlock()
	settled := false
	defer func() {
		if !settled {
			c.mu.Lock()
			c.resolving = false
			c.mu.Unlock()
		}
	}()

	e := c.engine
	intent := e.classifier.Classify(pending.Text)
	text, cause := c.produce(ctx, intent)
	if cause != nil {
		e.logger.Warn("reply unavailable, using fallback",
			zap.String("intent", string(intent)),
			zap.Error(cause),
		)
		intent = assistant.IntentUnavailable
		text = e.catalog.Lookup(assistant.IntentUnavailable)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolving = false
	settled = true

	next, effects, err := Step(c.state, ReplyEvent{
		ID:     e.newID(),
		Intent: intent,
		Text:   text,
		At:     e.now(),
	})
	if err != nil {
		return nil, err
	}
	c.commitLocked(next, effects)

	reply := next.Messages[len(next.Messages)-1]
	if cause != nil {
		return &reply, fmt.Errorf("%w: %w", ErrReplyUnavailable, cause)
	}
	return &reply, nil
}

// produce runs the latency wait and the responder. A panic in either is
// returned as an error so the turn still completes.
func (c *Conversation) produce(ctx context.Context, intent assistant.Intent) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrResponderPanic, r)
		}
	}()

	e := c.engine
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	if err := e.latency.Wait(ctx, e.latency.Delay()); err != nil {
		return "", err
	}
	return e.responder.Respond(ctx, intent)
}

// Turn submits text and resolves it. If the submit is ignored in lenient
// mode both messages are nil.
func (c *Conversation) Turn(ctx context.Context, text string) (user *Message, reply *Message, err error) {
	user, err = c.Submit(text)
	if err != nil || user == nil {
		return nil, nil, err
	}
	reply, err = c.Resolve(ctx)
	return user, reply, err
}

// Snapshot returns a copy of the log and turn state.
func (c *Conversation) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// State returns the current turn state.
func (c *Conversation) State() TurnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Turn
}

// LastActive is the time of the last transition.
func (c *Conversation) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}

// Subscribe registers a buffered feed of updates. Updates that do not fit
// in the buffer are dropped for that subscriber. The returned func
// unsubscribes and closes the channel.
func (c *Conversation) Subscribe(buffer int) (<-chan Update, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Update, buffer)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if sub, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(sub)
			}
		})
	}
}

// Subscribers is the number of live subscriptions.
func (c *Conversation) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// Close ends all subscriptions. The log stays readable.
func (c *Conversation) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
}

func (c *Conversation) reject(err error) error {
	if c.engine.strict {
		return err
	}
	c.engine.logger.Debug("ignored chat event", zap.Error(err))
	return nil
}

func (c *Conversation) commitLocked(next State, effects []Effect) {
	c.state = next
	c.lastActive = c.engine.now()

	if len(c.subs) == 0 {
		return
	}
	update := Update{Effects: effects, Snapshot: c.snapshotLocked()}
	for id, ch := range c.subs {
		select {
		case ch <- update:
		default:
			c.engine.logger.Debug("dropped update for slow subscriber", zap.Int("subscriber", id))
		}
	}
}

func (c *Conversation) snapshotLocked() Snapshot {
	msgs := make([]Message, len(c.state.Messages))
	copy(msgs, c.state.Messages)
	return Snapshot{
		Messages:         msgs,
		State:            c.state.Turn,
		ShowQuickActions: len(msgs) == 1,
	}
}
