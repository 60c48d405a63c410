package chat

import (
	"testing"
	"time"

	"github.com/sahilchouksey/smart-campus-api/services/assistant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2024, time.September, 2, 14, 5, 0, 0, time.UTC)

func TestSeed(t *testing.T) {
	s := Seed("hi there", testTime)

	assert.Equal(t, Idle, s.Turn)
	require.Len(t, s.Messages, 1)
	assert.Equal(t, "welcome", s.Messages[0].ID)
	assert.Equal(t, SenderAssistant, s.Messages[0].Sender)
	assert.Equal(t, "2:05 PM", s.Messages[0].DisplayTime)
	assert.Equal(t, 1, s.Messages[0].Seq)
}

func TestStepSubmitThenReply(t *testing.T) {
	s0 := Seed("hi", testTime)

	s1, effects, err := Step(s0, SubmitEvent{ID: "u1", Text: "  my cgpa  ", At: testTime})
	require.NoError(t, err)
	assert.Equal(t, AwaitingResponse, s1.Turn)
	require.Len(t, s1.Messages, 2)
	assert.Equal(t, "my cgpa", s1.Messages[1].Text)
	assert.Equal(t, SenderUser, s1.Messages[1].Sender)
	require.Len(t, effects, 2)
	assert.IsType(t, MessageAppended{}, effects[0])
	assert.IsType(t, TypingStarted{}, effects[1])

	pending, ok := s1.Pending()
	require.True(t, ok)
	assert.Equal(t, "u1", pending.ID)

	s2, effects, err := Step(s1, ReplyEvent{ID: "a1", Intent: assistant.IntentGrades, Text: "3.72", At: testTime})
	require.NoError(t, err)
	assert.Equal(t, Idle, s2.Turn)
	require.Len(t, s2.Messages, 3)
	assert.Equal(t, SenderAssistant, s2.Messages[2].Sender)
	assert.Equal(t, assistant.IntentGrades, s2.Messages[2].Intent)
	assert.Equal(t, 3, s2.Messages[2].Seq)
	assert.Equal(t, "message", effects[0].Name())
	assert.Equal(t, "idle", effects[1].Name())

	// earlier states are untouched
	assert.Len(t, s0.Messages, 1)
	assert.Len(t, s1.Messages, 2)
	assert.Equal(t, s1.Messages, s2.Messages[:2])
}

func TestStepRejectsSubmitWhileAwaiting(t *testing.T) {
	s, _, err := Step(Seed("hi", testTime), SubmitEvent{ID: "u1", Text: "fees", At: testTime})
	require.NoError(t, err)

	next, effects, err := Step(s, SubmitEvent{ID: "u2", Text: "grades", At: testTime})
	require.ErrorIs(t, err, ErrInvalidState)
	assert.Nil(t, effects)
	assert.Equal(t, s, next)
}

func TestStepRejectsBlankInput(t *testing.T) {
	s := Seed("hi", testTime)
	for _, text := range []string{"", "   ", "\n\t"} {
		next, effects, err := Step(s, SubmitEvent{ID: "u", Text: text, At: testTime})
		require.ErrorIs(t, err, ErrEmptyInput)
		assert.Nil(t, effects)
		assert.Equal(t, s, next)
	}
}

func TestStepRejectsReplyWhileIdle(t *testing.T) {
	s := Seed("hi", testTime)
	next, _, err := Step(s, ReplyEvent{ID: "a", Text: "x", At: testTime})
	require.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, s, next)
}

func TestTurnStateText(t *testing.T) {
	b, err := AwaitingResponse.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "awaiting_response", string(b))
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "TurnState(7)", TurnState(7).String())
}
