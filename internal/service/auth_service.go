package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/R-Mend/RMend-Backend/internal/account"
	"github.com/R-Mend/RMend-Backend/internal/auth"
)

// Audience stamped on every access token issued by this API.
const Audience = "rmend"

// AccountDirectory is the account lookup surface the auth service needs.
type AccountDirectory interface {
	GetUserByEmail(ctx context.Context, email string) (*account.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*account.User, error)
}

// TokenStore is the session-state surface backed by Redis.
type TokenStore interface {
	SaveRefresh(ctx context.Context, hash, subject string, ttl time.Duration) error
	ConsumeRefresh(ctx context.Context, hash string) (string, error)
	RevokeRefresh(ctx context.Context, hash string) error
	DenyAccess(ctx context.Context, jti string, ttl time.Duration) error
	IsAccessDenied(ctx context.Context, jti string) (bool, error)
}

// AuthService concentrates authentication and session rules.
type AuthService struct {
	accounts   AccountDirectory
	jwt        *auth.JWTManager
	tokens     TokenStore
	refreshTTL time.Duration
}

// NewAuthService creates a new service.
func NewAuthService(accounts AccountDirectory, jwtMgr *auth.JWTManager, tokens TokenStore, refreshTTL time.Duration) *AuthService {
	return &AuthService{accounts: accounts, jwt: jwtMgr, tokens: tokens, refreshTTL: refreshTTL}
}

// JWT exposes the JWT manager (used by middleware).
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// Tokens exposes the token store (used by middleware for the denylist).
func (s *AuthService) Tokens() TokenStore {
	return s.tokens
}

// LoginResult is the standard authentication return.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         *account.User
}

// Login checks credentials and issues an access/refresh pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.accounts.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			log.Warn().Msg("login: user not found")
			return nil, account.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.Verify(password, user.PasswordHash)
	if err != nil || !ok {
		log.Warn().Msg("login: password mismatch")
		return nil, account.ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

// IssueForUser issues a token pair for an already-verified user (sign-up).
func (s *AuthService) IssueForUser(ctx context.Context, user *account.User) (*LoginResult, error) {
	return s.issueTokens(ctx, user)
}

// Refresh rotates a refresh token into a fresh access/refresh pair. Each
// refresh token works exactly once.
func (s *AuthService) Refresh(ctx context.Context, rawRefresh string) (*LoginResult, error) {
	subject, err := s.tokens.ConsumeRefresh(ctx, auth.HashRefreshToken(rawRefresh))
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(subject)
	if err != nil {
		return nil, auth.ErrInvalidRefresh
	}

	user, err := s.accounts.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, auth.ErrInvalidRefresh
		}
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

// Logout revokes the refresh token and denylists the live access token so it
// stops working immediately, not at expiry.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims, rawRefresh string) error {
	if rawRefresh != "" {
		if err := s.tokens.RevokeRefresh(ctx, auth.HashRefreshToken(rawRefresh)); err != nil {
			return err
		}
	}

	if claims != nil && claims.ExpiresAt != nil {
		ttl := time.Until(claims.ExpiresAt.Time)
		return s.tokens.DenyAccess(ctx, claims.ID, ttl)
	}
	return nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *account.User) (*LoginResult, error) {
	if !user.IsActive || user.IsDeleted {
		return nil, account.ErrAccountDisabled
	}

	access, _, err := s.jwt.GenerateAccessToken(user.ID.String(), Audience)
	if err != nil {
		return nil, err
	}

	rawRefresh, refreshHash, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	if err := s.tokens.SaveRefresh(ctx, refreshHash, user.ID.String(), s.refreshTTL); err != nil {
		return nil, err
	}

	return &LoginResult{AccessToken: access, RefreshToken: rawRefresh, User: user}, nil
}
