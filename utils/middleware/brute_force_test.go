package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu      sync.Mutex
	counts  map[string]int64
	values  map[string]time.Duration
	expires map[string]time.Duration
}

func newMemoryStore() *memoryStore {
	return &memoryStore{counts: map[string]int64{}, values: map[string]time.Duration{}, expires: map[string]time.Duration{}}
}

func (m *memoryStore) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.values[key]
	return ok, nil
}

func (m *memoryStore) TTL(_ context.Context, key string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *memoryStore) Increment(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[key]++
	return m.counts[key], nil
}

func (m *memoryStore) Expire(_ context.Context, key string, d time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expires[key] = d
	return nil
}

func (m *memoryStore) Set(_ context.Context, key string, _ interface{}, d time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = d
	return nil
}

func (m *memoryStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
		delete(m.counts, k)
	}
	return nil
}

func TestLockoutFor(t *testing.T) {
	assert.Zero(t, lockoutFor(4))
	assert.Equal(t, 2*time.Minute, lockoutFor(5))
	assert.Equal(t, time.Hour, lockoutFor(10))
	assert.Equal(t, 24*time.Hour, lockoutFor(30))
}

func TestBruteForceLocksAfterFiveFailures(t *testing.T) {
	store := newMemoryStore()
	b := NewBruteForceProtection(store, nil)

	app := fiber.New()
	app.Post("/signin", b.CheckAndRecordAttempt(), func(c *fiber.Ctx) error {
		if c.Query("password") != "secret1" {
			b.RecordFailedAttempt(c.UserContext(), c.IP(), "s@campus.edu")
			return c.SendStatus(http.StatusUnauthorized)
		}
		b.RecordSuccessfulAttempt(c.UserContext(), c.IP())
		return c.SendStatus(http.StatusOK)
	})

	signIn := func(password string) int {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/signin?password="+password, nil))
		require.NoError(t, err)
		return resp.StatusCode
	}

	for i := 0; i < 4; i++ {
		assert.Equal(t, http.StatusUnauthorized, signIn("wrong"))
	}
	assert.Equal(t, http.StatusOK, signIn("secret1"))

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusUnauthorized, signIn("wrong"))
	}
	assert.Equal(t, http.StatusTooManyRequests, signIn("secret1"))
	assert.Len(t, store.expires, 1)
}

func TestBruteForceDisabledWithoutStore(t *testing.T) {
	b := NewBruteForceProtection(nil, nil)
	b.RecordFailedAttempt(context.Background(), "1.2.3.4", "x")

	app := fiber.New()
	app.Post("/signin", b.CheckAndRecordAttempt(), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })
	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/signin", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
