package identity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sahilchouksey/smart-campus-api/model"
	"github.com/sahilchouksey/smart-campus-api/services/authgate"
	"github.com/sahilchouksey/smart-campus-api/utils/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memoryUsers struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*model.User
	err    error
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: map[uint]*model.User{}}
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Email == normalizeEmail(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *memoryUsers) FindByID(_ context.Context, id uint) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memoryUsers) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	user.ID = m.nextID
	user.Email = normalizeEmail(user.Email)
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

type memoryRevoker struct {
	mu      sync.Mutex
	revoked map[string]string
}

func (m *memoryRevoker) RevokeToken(_ context.Context, jti string, _ uint, _ time.Time, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.revoked == nil {
		m.revoked = map[string]string{}
	}
	m.revoked[jti] = reason
	return nil
}

func (m *memoryRevoker) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[jti]
	return ok, nil
}

func newTestService(t *testing.T) (*Service, *memoryUsers, *memoryRevoker) {
	t.Helper()
	users := newMemoryUsers()
	revoker := &memoryRevoker{}
	tokens := auth.NewJWTManager(auth.JWTConfig{
		Secret:        "test",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "smart-campus",
	})
	return NewService(users, tokens, revoker, WithHashCost(bcrypt.MinCost)), users, revoker
}

func TestSignUpThenSignIn(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.SignUp(ctx, "Ada@Campus.edu", "secret1", "Ada Lovelace", "")
	require.NoError(t, err)
	assert.Equal(t, "ada@campus.edu", created.Email)
	assert.Equal(t, model.UserRoleStudent, created.Role)
	assert.NotEmpty(t, created.AccessToken)
	assert.NotEmpty(t, created.SessionKey)

	signedIn, err := svc.SignIn(ctx, "ada@campus.edu", "secret1")
	require.NoError(t, err)
	assert.Equal(t, created.UserID, signedIn.UserID)
	assert.Equal(t, 3600, signedIn.ExpiresIn)
}

func TestSignUpDuplicate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "ada@campus.edu", "secret1", "Ada", model.UserRoleTeacher)
	require.NoError(t, err)

	_, err = svc.SignUp(ctx, "ada@campus.edu", "secret2", "Ada Again", model.UserRoleStudent)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.Equal(t, "This email is already registered. Please login instead.", authgate.DescribeSignUpError(err))
}

func TestSignUpRejectsUnknownRole(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.SignUp(context.Background(), "x@campus.edu", "secret1", "X", "admin")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestSignInFailures(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.SignUp(ctx, "ada@campus.edu", "secret1", "Ada", "")
	require.NoError(t, err)

	_, err = svc.SignIn(ctx, "ada@campus.edu", "wrong1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.SignIn(ctx, "nobody@campus.edu", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	users.err = errors.New("connection refused")
	_, err = svc.SignIn(ctx, "ada@campus.edu", "secret1")
	assert.ErrorContains(t, err, "connection refused")
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestResolveAndSignOut(t *testing.T) {
	svc, users, revoker := newTestService(t)
	ctx := context.Background()

	id, err := svc.SignUp(ctx, "ada@campus.edu", "secret1", "Ada", model.UserRoleTeacher)
	require.NoError(t, err)

	res, err := svc.Resolve(ctx, id.AccessToken)
	require.NoError(t, err)
	require.NotNil(t, res.Identity)
	assert.Equal(t, model.UserRoleTeacher, res.Identity.Role)
	assert.Equal(t, id.SessionKey, res.Identity.SessionKey)

	_, err = svc.Resolve(ctx, id.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	require.NoError(t, svc.SignOut(ctx, res.Identity))
	assert.Equal(t, auth.RevokeReasonSignOut, revoker.revoked[id.SessionKey])

	_, err = svc.Resolve(ctx, id.AccessToken)
	assert.ErrorIs(t, err, auth.ErrTokenRevoked)

	// Bumping the token version invalidates every outstanding token.
	other, err := svc.SignIn(ctx, "ada@campus.edu", "secret1")
	require.NoError(t, err)
	users.users[other.UserID].TokenVersion++
	_, err = svc.Resolve(ctx, other.AccessToken)
	assert.ErrorIs(t, err, auth.ErrTokenInvalidated)
}

func TestSignOutWithoutSession(t *testing.T) {
	svc, _, revoker := newTestService(t)
	assert.NoError(t, svc.SignOut(context.Background(), nil))
	assert.NoError(t, svc.SignOut(context.Background(), &authgate.Identity{UserID: 1}))
	assert.Empty(t, revoker.revoked)
}

func TestServiceSatisfiesGate(t *testing.T) {
	svc, _, _ := newTestService(t)
	g := authgate.NewGate(svc)
	g.Resolve(authgate.Anonymous())

	res := g.SignUp(context.Background(), authgate.SignupForm{Email: "new@campus.edu", Password: "secret1", FullName: "New"})
	require.True(t, res.OK)
	assert.Equal(t, authgate.Allow, g.Access(authgate.SurfaceChat))

	res = g.SignIn(context.Background(), authgate.LoginForm{Email: "new@campus.edu", Password: "wrong12"})
	require.NotNil(t, res.Notice)
	assert.Equal(t, "Invalid email or password. Please try again.", res.Notice.Description)
}
