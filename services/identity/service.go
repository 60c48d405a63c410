package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sahilchouksey/smart-campus-api/model"
	"github.com/sahilchouksey/smart-campus-api/services/authgate"
	"github.com/sahilchouksey/smart-campus-api/utils/auth"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Sentinels reported to the auth gate.
var (
	ErrInvalidCredentials = authgate.ErrInvalidCredentials
	ErrAlreadyRegistered  = authgate.ErrAlreadyRegistered
	ErrInvalidRole        = errors.New("role must be student or teacher")
)

// TokenRevoker records and checks revoked access tokens.
type TokenRevoker interface {
	RevokeToken(ctx context.Context, jti string, userID uint, expiresAt time.Time, reason string) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// Service is the identity backend: it owns accounts and issues sessions.
type Service struct {
	users    UserStore
	tokens   *auth.JWTManager
	revoker  TokenRevoker
	hashCost int
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithHashCost overrides the bcrypt cost.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.hashCost = cost }
}

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService assembles a Service from its parts.
func NewService(users UserStore, tokens *auth.JWTManager, revoker TokenRevoker, opts ...Option) *Service {
	s := &Service{
		users:    users,
		tokens:   tokens,
		revoker:  revoker,
		hashCost: auth.DefaultCost,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewGORMService is NewService backed by PostgreSQL.
func NewGORMService(db *gorm.DB, tokens *auth.JWTManager, opts ...Option) *Service {
	return NewService(NewGORMUserStore(db), tokens, auth.NewBlacklistService(db), opts...)
}

// SignIn verifies the password and starts a session.
func (s *Service) SignIn(ctx context.Context, email, password string) (*authgate.Identity, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("verify password: %w", err)
	}

	return s.issue(user)
}

// SignUp registers a new account and starts a session for it.
func (s *Service) SignUp(ctx context.Context, email, password, fullName string, role model.UserRole) (*authgate.Identity, error) {
	if role == "" {
		role = model.UserRoleStudent
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrAlreadyRegistered
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	hash, err := auth.HashPasswordWithCost(password, s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", zap.Uint("user_id", user.ID), zap.String("role", string(role)))
	return s.issue(user)
}

// SignOut revokes the identity's access token.
func (s *Service) SignOut(ctx context.Context, id *authgate.Identity) error {
	if id == nil || id.SessionKey == "" {
		return nil
	}
	expiresAt := id.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = s.now().Add(24 * time.Hour)
	}
	if err := s.revoker.RevokeToken(ctx, id.SessionKey, id.UserID, expiresAt, auth.RevokeReasonSignOut); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// Resolve validates an access token and loads the identity behind it.
// Token problems are reported with the utils/auth sentinels.
func (s *Service) Resolve(ctx context.Context, token string) (authgate.Resolution, error) {
	claims, err := s.tokens.ValidateAccessToken(token)
	if err != nil {
		return authgate.Anonymous(), err
	}

	revoked, err := s.revoker.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return authgate.Anonymous(), fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return authgate.Anonymous(), auth.ErrTokenRevoked
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, ErrUserNotFound) {
		return authgate.Anonymous(), auth.ErrInvalidToken
	}
	if err != nil {
		return authgate.Anonymous(), fmt.Errorf("load user: %w", err)
	}
	if user.TokenVersion != claims.TokenVersion {
		return authgate.Anonymous(), auth.ErrTokenInvalidated
	}

	return authgate.Authenticated(&authgate.Identity{
		UserID:     user.ID,
		Email:      user.Email,
		FullName:   user.FullName,
		Role:       user.Role,
		SessionKey: claims.ID,
		ExpiresAt:  claims.ExpiresAtTime(),
	}), nil
}

func (s *Service) issue(user *model.User) (*authgate.Identity, error) {
	pair, err := s.tokens.IssuePair(user.ID, user.Email, string(user.Role), user.TokenVersion)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}
	return &authgate.Identity{
		UserID:       user.ID,
		Email:        user.Email,
		FullName:     user.FullName,
		Role:         user.Role,
		SessionKey:   pair.AccessJTI,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
		ExpiresAt:    s.now().Add(time.Duration(pair.ExpiresIn) * time.Second),
	}, nil
}
