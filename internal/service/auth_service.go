package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hostelsync/hostelsync-api/internal/auth"
	"github.com/hostelsync/hostelsync-api/internal/config"
	"github.com/hostelsync/hostelsync-api/internal/domain"
	"github.com/hostelsync/hostelsync-api/internal/repository"
	apperrors "github.com/hostelsync/hostelsync-api/pkg/util"
)

// TokenRevoker stores revoked token ids until they expire.
type TokenRevoker interface {
	RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error
}

// LoginLimiter throttles login attempts per key.
type LoginLimiter interface {
	AllowLogin(ctx context.Context, key string, limit int, window time.Duration) bool
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	revoker    TokenRevoker
	limiter    LoginLimiter
	bcryptCost int
	rateLimit  int
	rateWindow time.Duration
}

// AuthDependencies encapsulates requirements for the auth service. Revoker and Limiter
// may be nil.
type AuthDependencies struct {
	UserRepo     repository.UserRepository
	TokenManager *auth.TokenManager
	Revoker      TokenRevoker
	Limiter      LoginLimiter
}

// RegisterInput is the self-registration payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	RoomNo   *string
}

// Session is the result of a successful registration or login.
type Session struct {
	User  *domain.User
	Token auth.IssuedToken
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   deps.TokenManager,
		revoker:    deps.Revoker,
		limiter:    deps.Limiter,
		bcryptCost: cfg.BcryptCost,
		rateLimit:  cfg.LoginRateLimit,
		rateWindow: cfg.LoginRateWindow(),
	}
}

// Register creates a STUDENT account and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleStudent,
		RoomNo:       in.RoomNo,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, conflictOr(err, "email already registered")
	}
	return s.issue(user)
}

// Login authenticates by email and password. clientKey identifies the caller for rate limiting.
func (s *AuthService) Login(ctx context.Context, email, password, clientKey string) (*Session, error) {
	if s.limiter != nil && !s.limiter.AllowLogin(ctx, clientKey, s.rateLimit, s.rateWindow) {
		return nil, apperrors.NewTooManyRequests("too many login attempts, try again later")
	}

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if !auth.PasswordMatches(user.PasswordHash, password) {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if !user.Active {
		return nil, apperrors.NewForbidden("account disabled")
	}
	return s.issue(user)
}

// Logout revokes the token for the rest of its lifetime. Without a revoker it is a no-op
// and the client discards the token.
func (s *AuthService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if s.revoker == nil {
		return nil
	}
	return s.revoker.RevokeToken(ctx, tokenID, expiresAt)
}

// Me returns the caller's profile.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	return user, nil
}

// ChangePassword verifies the current password before storing the new one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return notFoundOr(err, "user")
	}
	if !auth.PasswordMatches(user.PasswordHash, current) {
		return apperrors.NewUnauthorized("current password is incorrect")
	}
	hash, err := s.hash(next)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.users.Update(ctx, user)
}

func (s *AuthService) hash(password string) (string, error) {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if errors.Is(err, auth.ErrPasswordTooShort) {
		return "", fieldError("password", "password must be at least 6 characters")
	}
	return hash, err
}

func (s *AuthService) issue(user *domain.User) (*Session, error) {
	token, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token}, nil
}
