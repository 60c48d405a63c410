package chat

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/smart-campus-api/services/assistant"
	"github.com/sahilchouksey/smart-campus-api/services/chat"
	"github.com/sahilchouksey/smart-campus-api/utils/middleware"
	"github.com/sahilchouksey/smart-campus-api/utils/response"
	"github.com/sahilchouksey/smart-campus-api/utils/validation"
	"go.uber.org/zap"
)

// Conversations hands out the conversation for a session key.
type Conversations interface {
	Get(key string) *chat.Conversation
}

// TurnRecorder stores resolved turns for analytics.
type TurnRecorder interface {
	RecordTurn(ctx context.Context, userID uint, intent assistant.Intent, wait time.Duration, ip string) error
}

// ChatHandler serves the chat surface of one authenticated session.
type ChatHandler struct {
	conversations Conversations
	validator     *validation.Validator
	activity      TurnRecorder
	logger        *zap.Logger
	keepAlive     time.Duration
}

// NewChatHandler creates a new chat handler. activity may be nil.
func NewChatHandler(conversations Conversations, activity TurnRecorder, logger *zap.Logger) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{
		conversations: conversations,
		validator:     validation.NewValidator(),
		activity:      activity,
		logger:        logger,
		keepAlive:     15 * time.Second,
	}
}

// SendMessageRequest is the body of POST /chat/messages.
type SendMessageRequest struct {
	Text   string `json:"text" validate:"max=2000"`
	Stream bool   `json:"stream"`
}

// TurnResponse is the result of a resolved turn.
type TurnResponse struct {
	UserMessage      *chat.Message `json:"user_message"`
	AssistantMessage *chat.Message `json:"assistant_message"`
	Degraded         bool          `json:"degraded,omitempty"`
	Snapshot         chat.Snapshot `json:"snapshot"`
}

// conversation returns the caller's conversation.
func (h *ChatHandler) conversation(c *fiber.Ctx) (*chat.Conversation, bool) {
	jti, ok := middleware.GetTokenJTI(c)
	if !ok {
		return nil, false
	}
	return h.conversations.Get(jti), true
}

// GetMessages handles GET /api/v1/chat/messages
func (h *ChatHandler) GetMessages(c *fiber.Ctx) error {
	conv, ok := h.conversation(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	return response.Success(c, conv.Snapshot())
}

// GetQuickActions handles GET /api/v1/chat/quick-actions
func (h *ChatHandler) GetQuickActions(c *fiber.Ctx) error {
	return response.Success(c, fiber.Map{"quick_actions": assistant.QuickActions()})
}

// SendMessage handles POST /api/v1/chat/messages
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	conv, ok := h.conversation(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.Text = validation.SanitizeString(req.Text)
	if fields := h.validator.ValidateStruct(req); fields != nil {
		return response.ValidationFailed(c, fields)
	}

	userID, _ := middleware.GetUserID(c)
	turn := turnContext{userID: userID, ip: c.IP()}

	if req.Stream {
		return h.streamTurn(c, conv, req.Text, turn)
	}

	started := time.Now()
	user, reply, err := conv.Turn(c.UserContext(), req.Text)
	if user == nil {
		return rejectSubmit(c, err)
	}

	if reply == nil {
		return rejectSubmit(c, err)
	}

	degraded := false
	if err != nil {
		if !errors.Is(err, chat.ErrReplyUnavailable) {
			h.logger.Error("chat turn failed", zap.Error(err))
			return response.InternalServerError(c, "Failed to resolve message")
		}
		h.logger.Warn("chat reply unavailable", zap.Uint("user_id", userID), zap.Error(err))
		degraded = true
	}
	h.recordTurn(turn, reply, time.Since(started))

	return response.Created(c, "Message resolved", TurnResponse{
		UserMessage:      user,
		AssistantMessage: reply,
		Degraded:         degraded,
		Snapshot:         conv.Snapshot(),
	})
}

type turnContext struct {
	userID uint
	ip     string
}

func (h *ChatHandler) recordTurn(turn turnContext, reply *chat.Message, wait time.Duration) {
	if h.activity == nil || reply == nil || turn.userID == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.activity.RecordTurn(ctx, turn.userID, reply.Intent, wait, turn.ip); err != nil {
		h.logger.Warn("chat turn not recorded", zap.Error(err))
	}
}

// rejectSubmit maps a rejected submit to its HTTP status.
func rejectSubmit(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, chat.ErrEmptyInput):
		return response.Error(c, fiber.StatusBadRequest, "Message must not be empty", "EMPTY_INPUT")
	case errors.Is(err, chat.ErrInvalidState), errors.Is(err, chat.ErrResolveInFlight):
		return response.Error(c, fiber.StatusConflict, "Please wait for the assistant to reply", "INVALID_STATE")
	case err == nil:
		return response.Error(c, fiber.StatusConflict, "Message was not accepted", "INVALID_STATE")
	default:
		return response.InternalServerError(c, err.Error())
	}
}
