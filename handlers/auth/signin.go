package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/smart-campus-api/model"
	"github.com/sahilchouksey/smart-campus-api/services/authgate"
	"github.com/sahilchouksey/smart-campus-api/utils/response"
)

// SignIn handles POST /api/v1/auth/signin
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var form authgate.LoginForm
	if err := c.BodyParser(&form); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	res := h.newGate().SignIn(c.UserContext(), form)
	if !res.OK {
		if errors.Is(res.Err, authgate.ErrInvalidCredentials) {
			h.bruteForceProtection.RecordFailedAttempt(c.UserContext(), c.IP(), form.Email)
		}
		return h.failure(c, res)
	}

	h.bruteForceProtection.RecordSuccessfulAttempt(c.UserContext(), c.IP())
	h.record(c, res.Session.Identity.UserID, model.ActivityTypeSignIn)
	return h.established(c, fiber.StatusOK, res)
}

// SignUp handles POST /api/v1/auth/signup
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var form authgate.SignupForm
	if err := c.BodyParser(&form); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	res := h.newGate().SignUp(c.UserContext(), form)
	if !res.OK {
		return h.failure(c, res)
	}

	h.record(c, res.Session.Identity.UserID, model.ActivityTypeSignUp)
	return h.established(c, fiber.StatusCreated, res)
}
