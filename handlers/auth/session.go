package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/smart-campus-api/model"
	"github.com/sahilchouksey/smart-campus-api/services/authgate"
	"github.com/sahilchouksey/smart-campus-api/utils/middleware"
	"github.com/sahilchouksey/smart-campus-api/utils/response"
	"go.uber.org/zap"
)

// SignOut handles POST /api/v1/auth/signout. The token is revoked, the
// conversation for the session is dropped and the cookie cleared.
func (h *AuthHandler) SignOut(c *fiber.Ctx) error {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	g := authgate.NewGate(h.backend, authgate.WithValidator(h.validator), authgate.WithGateLogger(h.logger))
	g.Resolve(authgate.Authenticated(id))
	err := g.SignOut(c.UserContext())

	if h.sessions != nil {
		h.sessions.Drop(id.SessionKey)
	}
	h.clearCookie(c)

	if err != nil {
		h.logger.Error("sign out failed", zap.Uint("user_id", id.UserID), zap.Error(err))
		return response.InternalServerError(c, "Failed to sign out")
	}

	h.record(c, id.UserID, model.ActivityTypeSignOut)
	return response.SuccessWithMessage(c, "Successfully signed out", fiber.Map{"session": g.Session()})
}

// GetSession handles GET /api/v1/auth/session
func (h *AuthHandler) GetSession(c *fiber.Ctx) error {
	return response.Success(c, fiber.Map{"session": middleware.GetSession(c)})
}
