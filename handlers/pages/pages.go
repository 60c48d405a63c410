package pages

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/smart-campus-api/services/assistant"
	"github.com/sahilchouksey/smart-campus-api/services/authgate"
	"github.com/sahilchouksey/smart-campus-api/services/chat"
	"github.com/sahilchouksey/smart-campus-api/utils/middleware"
	"github.com/sahilchouksey/smart-campus-api/utils/response"
)

// Conversations hands out the conversation for a session key.
type Conversations interface {
	Get(key string) *chat.Conversation
}

// PageHandler guards the two surfaces of the app. It must run behind the
// optional auth middleware.
type PageHandler struct {
	conversations Conversations
}

func NewPageHandler(conversations Conversations) *PageHandler {
	return &PageHandler{conversations: conversations}
}

// AuthPage is the payload of an allowed /auth visit.
type AuthPage struct {
	Surface authgate.Surface `json:"surface"`
}

// ChatPage is the payload of an allowed / visit.
type ChatPage struct {
	Surface      authgate.Surface        `json:"surface"`
	Session      authgate.Session        `json:"session"`
	Snapshot     chat.Snapshot           `json:"snapshot"`
	QuickActions []assistant.QuickAction `json:"quick_actions"`
}

// Auth handles GET /auth
func (h *PageHandler) Auth(c *fiber.Ctx) error {
	session := middleware.GetSession(c)
	if done, err := gate(c, session, authgate.SurfaceAuth); done {
		return err
	}
	return response.Success(c, AuthPage{Surface: authgate.SurfaceAuth})
}

// Chat handles GET /
func (h *PageHandler) Chat(c *fiber.Ctx) error {
	session := middleware.GetSession(c)
	if done, err := gate(c, session, authgate.SurfaceChat); done {
		return err
	}

	page := ChatPage{Surface: authgate.SurfaceChat, Session: session}
	if jti, ok := middleware.GetTokenJTI(c); ok {
		page.Snapshot = h.conversations.Get(jti).Snapshot()
	}
	if page.Snapshot.ShowQuickActions {
		page.QuickActions = assistant.QuickActions()
	}
	return response.Success(c, page)
}

// gate writes the response for every decision other than Allow.
func gate(c *fiber.Ctx, session authgate.Session, surface authgate.Surface) (bool, error) {
	decision := authgate.Decide(session, surface)
	switch decision {
	case authgate.Allow:
		return false, nil
	case authgate.Pending:
		c.Set(fiber.HeaderRetryAfter, "1")
		return true, response.Error(c, fiber.StatusServiceUnavailable, "Session is still loading", "SESSION_LOADING")
	default:
		return true, c.Redirect(decision.Location(), fiber.StatusSeeOther)
	}
}
