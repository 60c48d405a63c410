package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/sahilchouksey/smart-campus-api/services/assistant"
)

// DisplayTimeLayout renders message times as "3:04 PM".
const DisplayTimeLayout = "3:04 PM"

// TurnState is the chat engine's turn-taking state.
type TurnState int

const (
	Idle TurnState = iota
	AwaitingResponse
)

func (s TurnState) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingResponse:
		return "awaiting_response"
	default:
		return fmt.Sprintf("TurnState(%d)", int(s))
	}
}

// MarshalText encodes the state by name.
func (s TurnState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Sender is the author of a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message is one immutable entry of the conversation log.
type Message struct {
	ID          string           `json:"id"`
	Seq         int              `json:"seq"`
	Text        string           `json:"text"`
	Sender      Sender           `json:"sender"`
	Intent      assistant.Intent `json:"intent,omitempty"`
	Timestamp   time.Time        `json:"timestamp"`
	DisplayTime string           `json:"display_time"`
}

// IsBot reports whether the assistant wrote the message.
func (m Message) IsBot() bool {
	return m.Sender == SenderAssistant
}

// State is the full value the transition function operates on.
type State struct {
	Turn     TurnState
	Messages []Message
}

// Pending returns the user message awaiting a reply.
func (s State) Pending() (Message, bool) {
	if s.Turn != AwaitingResponse || len(s.Messages) == 0 {
		return Message{}, false
	}
	last := s.Messages[len(s.Messages)-1]
	return last, last.Sender == SenderUser
}

// Event is an input to Step.
type Event interface {
	event()
}

// SubmitEvent carries a user query.
type SubmitEvent struct {
	ID   string
	Text string
	At   time.Time
}

// ReplyEvent carries the resolved assistant reply.
type ReplyEvent struct {
	ID     string
	Intent assistant.Intent
	Text   string
	At     time.Time
}

func (SubmitEvent) event() {}
func (ReplyEvent) event()  {}

// Effect is an observable consequence of a transition.
type Effect interface {
	Name() string
}

// MessageAppended reports a new log entry.
type MessageAppended struct {
	Message Message
}

// TypingStarted reports the move to AwaitingResponse.
type TypingStarted struct{}

// TypingStopped reports the return to Idle.
type TypingStopped struct{}

func (MessageAppended) Name() string { return "message" }
func (TypingStarted) Name() string   { return "typing" }
func (TypingStopped) Name() string   { return "idle" }

// Seed returns the initial state: Idle with the welcome message.
func Seed(welcome string, at time.Time) State {
	return State{
		Turn:     Idle,
		Messages: []Message{newMessage("welcome", 1, welcome, SenderAssistant, assistant.IntentWelcome, at)},
	}
}

// Step is the pure transition function. On error it returns s unchanged and
// no effects. The returned state never shares a backing array with s.
func Step(s State, ev Event) (State, []Effect, error) {
	switch e := ev.(type) {
	case SubmitEvent:
		if s.Turn != Idle {
			return s, nil, ErrInvalidState
		}
		text := strings.TrimSpace(e.Text)
		if text == "" {
			return s, nil, ErrEmptyInput
		}
		msg := newMessage(e.ID, len(s.Messages)+1, text, SenderUser, "", e.At)
		next := State{Turn: AwaitingResponse, Messages: appendMessage(s.Messages, msg)}
		return next, []Effect{MessageAppended{Message: msg}, TypingStarted{}}, nil

	case ReplyEvent:
		if _, ok := s.Pending(); !ok {
			return s, nil, ErrInvalidState
		}
		msg := newMessage(e.ID, len(s.Messages)+1, e.Text, SenderAssistant, e.Intent, e.At)
		next := State{Turn: Idle, Messages: appendMessage(s.Messages, msg)}
		return next, []Effect{MessageAppended{Message: msg}, TypingStopped{}}, nil

	default:
		return s, nil, fmt.Errorf("%w: unknown event %T", ErrInvalidState, ev)
	}
}

func appendMessage(log []Message, msg Message) []Message {
	out := make([]Message, len(log), len(log)+1)
	copy(out, log)
	return append(out, msg)
}

func newMessage(id string, seq int, text string, sender Sender, intent assistant.Intent, at time.Time) Message {
	return Message{
		ID:          id,
		Seq:         seq,
		Text:        text,
		Sender:      sender,
		Intent:      intent,
		Timestamp:   at,
		DisplayTime: at.Format(DisplayTimeLayout),
	}
}
