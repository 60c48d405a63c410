// Package sse writes the chat event stream.
package sse

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sahilchouksey/smart-campus-api/services/chat"
)

// Event names on the chat stream.
const (
	EventMessage  = "message"
	EventTyping   = "typing"
	EventIdle     = "idle"
	EventSnapshot = "snapshot"
	EventClosed   = "closed"
	EventError    = "error"
)

// Event is one server-sent event. Strings and byte slices are sent as they
// are, anything else as JSON.
type Event struct {
	Event string
	ID    string
	Retry int // reconnect delay in ms
	Data  interface{}
}

// Send writes event and flushes. Payload lines each get their own data
// field so multi-line text survives framing.
func Send(w *bufio.Writer, event Event) error {
	payload, err := encode(event.Data)
	if err != nil {
		return err
	}

	var b strings.Builder
	if event.ID != "" {
		fmt.Fprintf(&b, "id: %s\n", event.ID)
	}
	if event.Retry > 0 {
		fmt.Fprintf(&b, "retry: %d\n", event.Retry)
	}
	if event.Event != "" {
		fmt.Fprintf(&b, "event: %s\n", event.Event)
	}
	for _, line := range strings.Split(payload, "\n") {
		fmt.Fprintf(&b, "data: %s\n", strings.TrimSuffix(line, "\r"))
	}
	b.WriteByte('\n')

	if _, err := w.WriteString(b.String()); err != nil {
		return fmt.Errorf("failed to write %s event: %w", event.Event, err)
	}
	return w.Flush()
}

func encode(data interface{}) (string, error) {
	switch v := data.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		out, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("failed to marshal event data: %w", err)
		}
		return string(out), nil
	}
}

// SendMessage streams one appended message.
func SendMessage(w *bufio.Writer, msg *chat.Message) error {
	return Send(w, Event{Event: EventMessage, ID: msg.ID, Data: msg})
}

// SendTyping tells the client a reply is on its way.
func SendTyping(w *bufio.Writer) error {
	return Send(w, Event{Event: EventTyping, Data: map[string]interface{}{"state": chat.AwaitingResponse}})
}

// SendIdle ends a turn. degraded marks a fallback reply.
func SendIdle(w *bufio.Writer, degraded bool) error {
	return Send(w, Event{Event: EventIdle, Data: map[string]interface{}{"state": chat.Idle, "degraded": degraded}})
}

// Snapshot is the payload of a snapshot event.
type Snapshot struct {
	Effects  []string      `json:"effects"`
	Snapshot chat.Snapshot `json:"snapshot"`
}

// SendSnapshot streams a conversation update with the names of its effects.
// The first event of a feed has no effects.
func SendSnapshot(w *bufio.Writer, update chat.Update) error {
	names := make([]string, len(update.Effects))
	for i, e := range update.Effects {
		names[i] = e.Name()
	}
	return Send(w, Event{Event: EventSnapshot, Data: Snapshot{Effects: names, Snapshot: update.Snapshot}})
}

// SendClosed is the last event of a feed whose conversation ended.
func SendClosed(w *bufio.Writer, reason string) error {
	return Send(w, Event{Event: EventClosed, Data: map[string]string{"reason": reason}})
}

// SendError sends an error event
func SendError(w *bufio.Writer, code string, err error) error {
	return Send(w, Event{
		Event: EventError,
		Data: map[string]string{
			"code":    code,
			"message": err.Error(),
		},
	})
}

// SendKeepAlive writes a comment line to hold the connection open.
func SendKeepAlive(w *bufio.Writer) error {
	if _, err := w.WriteString(": ping\n\n"); err != nil {
		return fmt.Errorf("failed to write keepalive: %w", err)
	}
	return w.Flush()
}
