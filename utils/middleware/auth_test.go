package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/smart-campus-api/model"
	"github.com/sahilchouksey/smart-campus-api/services/authgate"
	"github.com/sahilchouksey/smart-campus-api/utils/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver map[string]error

func (s stubResolver) Resolve(_ context.Context, token string) (authgate.Resolution, error) {
	if err, ok := s[token]; ok {
		return authgate.Resolution{}, err
	}
	return authgate.Authenticated(&authgate.Identity{
		UserID: 5, Email: "s@campus.edu", Role: model.UserRoleTeacher, SessionKey: "jti-" + token,
	}), nil
}

func newAuthApp(m *AuthMiddleware) *fiber.App {
	app := fiber.New()
	report := func(c *fiber.Ctx) error {
		s := GetSession(c)
		jti, _ := GetTokenJTI(c)
		return c.JSON(fiber.Map{"authenticated": s.Authenticated, "role": s.Role, "jti": jti})
	}
	app.Get("/required", m.Required(), report)
	app.Get("/optional", m.Optional(), report)
	return app
}

func TestRequired(t *testing.T) {
	m := NewAuthMiddleware(stubResolver{
		"expired": auth.ErrExpiredToken,
		"revoked": auth.ErrTokenRevoked,
		"broken":  errors.New("db down"),
	}, nil)
	app := newAuthApp(m)

	tests := []struct {
		name   string
		header string
		cookie string
		status int
	}{
		{"missing", "", "", http.StatusUnauthorized},
		{"bad format", "Token abc", "", http.StatusUnauthorized},
		{"valid bearer", "Bearer good", "", http.StatusOK},
		{"valid cookie", "", "good", http.StatusOK},
		{"expired", "Bearer expired", "", http.StatusUnauthorized},
		{"revoked", "Bearer revoked", "", http.StatusUnauthorized},
		{"backend failure", "Bearer broken", "", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/required", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: tt.cookie})
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestOptionalFallsBackToAnonymous(t *testing.T) {
	app := newAuthApp(NewAuthMiddleware(stubResolver{"expired": auth.ErrExpiredToken}, nil))

	req := httptest.NewRequest(http.MethodGet, "/optional", nil)
	req.Header.Set("Authorization", "Bearer expired")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/optional", nil)
	req.Header.Set("Authorization", "Bearer good")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
