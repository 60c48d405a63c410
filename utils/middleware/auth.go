package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/smart-campus-api/model"
	"github.com/sahilchouksey/smart-campus-api/services/authgate"
	"github.com/sahilchouksey/smart-campus-api/utils/auth"
	"github.com/sahilchouksey/smart-campus-api/utils/response"
	"go.uber.org/zap"
)

// AccessTokenCookie is the cookie browsers carry the access token in.
const AccessTokenCookie = "access_token"

// SessionResolver turns a bearer token into a session resolution.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (authgate.Resolution, error)
}

// AuthMiddleware handles JWT authentication
type AuthMiddleware struct {
	resolver SessionResolver
	logger   *zap.Logger
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(resolver SessionResolver, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{resolver: resolver, logger: logger}
}

// Required is middleware that requires a valid JWT token
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := TokenFromRequest(c)
		if err != nil {
			return response.Unauthorized(c, err.Error())
		}

		res, err := m.resolver.Resolve(c.UserContext(), token)
		if err != nil {
			return m.rejectToken(c, err)
		}
		if res.Identity == nil {
			return response.Unauthorized(c, "Authentication required")
		}

		setIdentity(c, res.Identity)
		return c.Next()
	}
}

// Optional is middleware that allows requests with or without a token.
// The resolved session is always stored, anonymous when no valid token was sent.
func (m *AuthMiddleware) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := TokenFromRequest(c)
		if err != nil {
			return c.Next()
		}

		res, err := m.resolver.Resolve(c.UserContext(), token)
		if err != nil || res.Identity == nil {
			return c.Next()
		}

		setIdentity(c, res.Identity)
		return c.Next()
	}
}

func (m *AuthMiddleware) rejectToken(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return response.Unauthorized(c, "Token has expired")
	case errors.Is(err, auth.ErrTokenRevoked):
		return response.Unauthorized(c, "Token has been revoked")
	case errors.Is(err, auth.ErrTokenInvalidated):
		return response.Unauthorized(c, "Token has been invalidated")
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidClaims):
		return response.Unauthorized(c, "Invalid token")
	default:
		m.logger.Error("session resolution failed", zap.Error(err))
		return response.InternalServerError(c, "Failed to check token status")
	}
}

// TokenFromRequest reads the access token from the Authorization header,
// falling back to the access token cookie.
func TokenFromRequest(c *fiber.Ctx) (string, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		if cookie := c.Cookies(AccessTokenCookie); cookie != "" {
			return cookie, nil
		}
		return "", errors.New("Missing authorization token")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", errors.New("Invalid authorization format")
	}
	return parts[1], nil
}

func setIdentity(c *fiber.Ctx, id *authgate.Identity) {
	c.Locals("identity", id)
	c.Locals("user_id", id.UserID)
	c.Locals("user_email", id.Email)
	c.Locals("user_role", id.Role)
	c.Locals("token_jti", id.SessionKey)
}

// GetIdentity extracts the signed-in identity from context
func GetIdentity(c *fiber.Ctx) (*authgate.Identity, bool) {
	id, ok := c.Locals("identity").(*authgate.Identity)
	return id, ok && id != nil
}

// GetUserID extracts user ID from context
func GetUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("user_id").(uint)
	return id, ok
}

// GetUserRole extracts user role from context
func GetUserRole(c *fiber.Ctx) (model.UserRole, bool) {
	r, ok := c.Locals("user_role").(model.UserRole)
	return r, ok
}

// GetTokenJTI extracts the token JTI from context
func GetTokenJTI(c *fiber.Ctx) (string, bool) {
	j, ok := c.Locals("token_jti").(string)
	return j, ok && j != ""
}

// GetSession returns the gate session for the request. It is only
// meaningful behind Required or Optional.
func GetSession(c *fiber.Ctx) authgate.Session {
	id, _ := GetIdentity(c)
	return authgate.SessionOf(authgate.Resolution{Identity: id})
}
