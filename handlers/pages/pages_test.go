package pages

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/smart-campus-api/model"
	"github.com/sahilchouksey/smart-campus-api/services/assistant"
	"github.com/sahilchouksey/smart-campus-api/services/authgate"
	"github.com/sahilchouksey/smart-campus-api/services/chat"
	"github.com/sahilchouksey/smart-campus-api/utils/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenResolver map[string]*authgate.Identity

func (r tokenResolver) Resolve(_ context.Context, token string) (authgate.Resolution, error) {
	return authgate.Resolution{Identity: r[token]}, nil
}

type noWait struct{}

func (noWait) Delay() time.Duration                            { return 0 }
func (noWait) Wait(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	catalog := assistant.MustDefaultCatalog()
	classifier, err := assistant.NewDefaultClassifier(catalog)
	require.NoError(t, err)
	engine, err := chat.NewEngine(classifier, catalog, noWait{})
	require.NoError(t, err)

	resolver := tokenResolver{
		"good": {UserID: 1, Email: "ada@campus.edu", FullName: "Ada", Role: model.UserRoleStudent, SessionKey: "jti-good"},
	}
	mw := middleware.NewAuthMiddleware(resolver, nil)
	h := NewPageHandler(chat.NewRegistry(engine, nil))

	app := fiber.New()
	app.Get("/auth", mw.Optional(), h.Auth)
	app.Get("/", mw.Optional(), h.Chat)
	return app
}

func get(t *testing.T, app *fiber.App, path, token string) (*http.Response, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.Unmarshal(raw, &body))
	}
	return resp, body
}

func TestPageAccess(t *testing.T) {
	app := newApp(t)

	tests := []struct {
		name     string
		path     string
		token    string
		status   int
		location string
	}{
		{"anonymous on auth", "/auth", "", http.StatusOK, ""},
		{"anonymous on chat", "/", "", http.StatusSeeOther, "/auth"},
		{"unknown token on chat", "/", "stale", http.StatusSeeOther, "/auth"},
		{"signed in on auth", "/auth", "good", http.StatusSeeOther, "/"},
		{"signed in on chat", "/", "good", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := get(t, app, tt.path, tt.token)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.location, resp.Header.Get("Location"))
		})
	}
}

func TestChatPageCarriesConversation(t *testing.T) {
	app := newApp(t)

	_, body := get(t, app, "/", "good")
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)

	assert.Equal(t, "chat", data["surface"])
	session := data["session"].(map[string]any)
	assert.Equal(t, true, session["authenticated"])
	assert.Equal(t, "student", session["role"])

	snapshot := data["snapshot"].(map[string]any)
	assert.Len(t, snapshot["messages"], 1)
	assert.Len(t, data["quick_actions"], len(assistant.QuickActions()))
}

func TestPendingSessionIsNotRedirected(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		if done, err := gate(c, authgate.Session{Loading: true}, authgate.SurfaceChat); done {
			return err
		}
		return c.SendStatus(http.StatusOK)
	})

	resp, _ := get(t, app, "/", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Location"))
}
