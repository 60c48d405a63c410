package auth

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/smart-campus-api/model"
	"github.com/sahilchouksey/smart-campus-api/services/authgate"
	"github.com/sahilchouksey/smart-campus-api/utils/middleware"
	"github.com/sahilchouksey/smart-campus-api/utils/response"
	"go.uber.org/zap"
)

// ActivityRecorder stores auth events for analytics.
type ActivityRecorder interface {
	Record(ctx context.Context, userID uint, kind model.ActivityType, ip string, meta map[string]any) error
}

// SessionDropper discards per-session state on sign-out.
type SessionDropper interface {
	Drop(key string) bool
}

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	backend              authgate.IdentityBackend
	validator            *authgate.Validator
	bruteForceProtection *middleware.BruteForceProtection
	sessions             SessionDropper
	activity             ActivityRecorder
	logger               *zap.Logger
	secureCookies        bool
}

// Config wires an AuthHandler. Only Backend is required.
type Config struct {
	Backend              authgate.IdentityBackend
	BruteForceProtection *middleware.BruteForceProtection
	Sessions             SessionDropper
	Activity             ActivityRecorder
	Logger               *zap.Logger
	SecureCookies        bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(cfg Config) *AuthHandler {
	h := &AuthHandler{
		backend:              cfg.Backend,
		validator:            authgate.NewValidator(),
		bruteForceProtection: cfg.BruteForceProtection,
		sessions:             cfg.Sessions,
		activity:             cfg.Activity,
		logger:               cfg.Logger,
		secureCookies:        cfg.SecureCookies,
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.bruteForceProtection == nil {
		h.bruteForceProtection = middleware.NewBruteForceProtection(nil, h.logger)
	}
	return h
}

// SessionResponse is returned by every endpoint that establishes a session.
type SessionResponse struct {
	Session      authgate.Session `json:"session"`
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	ExpiresIn    int              `json:"expires_in"` // in seconds
	Notice       *authgate.Notice `json:"notice,omitempty"`
}

// newGate is a gate for one anonymous request on the auth surface.
func (h *AuthHandler) newGate() *authgate.Gate {
	g := authgate.NewGate(h.backend, authgate.WithValidator(h.validator), authgate.WithGateLogger(h.logger))
	g.Resolve(authgate.Anonymous())
	return g
}

// failure renders a gate result that did not produce a session.
func (h *AuthHandler) failure(c *fiber.Ctx, res authgate.Result) error {
	if len(res.Errors) > 0 {
		return response.ValidationFailed(c, res.Errors)
	}

	status, code := fiber.StatusInternalServerError, "AUTH_FAILED"
	switch {
	case errors.Is(res.Err, authgate.ErrInvalidCredentials):
		status, code = fiber.StatusUnauthorized, "INVALID_CREDENTIALS"
	case errors.Is(res.Err, authgate.ErrAlreadyRegistered):
		status, code = fiber.StatusConflict, "ALREADY_REGISTERED"
	case errors.Is(res.Err, authgate.ErrSubmitting):
		status, code = fiber.StatusConflict, "REQUEST_IN_PROGRESS"
	default:
		h.logger.Error("identity backend failure", zap.Error(res.Err))
	}
	if res.Notice == nil {
		return response.Error(c, status, "Authentication failed", code)
	}
	return response.Notice(c, status, code, res.Notice.Title, res.Notice.Description)
}

// established sets the session cookie and renders the new session.
func (h *AuthHandler) established(c *fiber.Ctx, status int, res authgate.Result) error {
	id := res.Session.Identity
	c.Cookie(&fiber.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    id.AccessToken,
		Path:     "/",
		Expires:  id.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.Status(status).JSON(response.Response{
		Success: true,
		Data: SessionResponse{
			Session:      res.Session,
			AccessToken:  id.AccessToken,
			RefreshToken: id.RefreshToken,
			ExpiresIn:    id.ExpiresIn,
			Notice:       res.Notice,
		},
	})
}

func (h *AuthHandler) record(c *fiber.Ctx, userID uint, kind model.ActivityType) {
	if h.activity == nil {
		return
	}
	if err := h.activity.Record(c.UserContext(), userID, kind, c.IP(), nil); err != nil {
		h.logger.Warn("activity not recorded", zap.String("type", string(kind)), zap.Error(err))
	}
}

// clearCookie expires the session cookie.
func (h *AuthHandler) clearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
