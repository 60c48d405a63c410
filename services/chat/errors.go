package chat

import "errors"

var (
	// ErrInvalidState is returned when an event arrives in a turn state that
	// does not accept it, e.g. a submit while a reply is pending.
	ErrInvalidState = errors.New("conversation is not in a state that accepts this event")
	// ErrEmptyInput is returned for a submit whose text is blank after trimming.
	ErrEmptyInput = errors.New("message text is empty")
	// ErrResolveInFlight is returned when a second resolve races the first.
	ErrResolveInFlight = errors.New("a reply is already being resolved")
	// ErrReplyUnavailable wraps the cause when a turn was completed with the
	// fallback reply instead of the responder's answer.
	ErrReplyUnavailable = errors.New("reply unavailable")
	// ErrResponderPanic is the cause recorded when the responder or the
	// latency source panicked.
	ErrResponderPanic = errors.New("responder panicked")
)
