package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrInvalidRefresh is returned when a refresh token is unknown or expired.
	ErrInvalidRefresh = errors.New("invalid refresh token")
)

const (
	refreshKeyPrefix = "refresh:"
	denyKeyPrefix    = "deny:access:"
)

// GenerateRefreshToken creates a secure random token and its persistable hash.
func GenerateRefreshToken() (raw string, hashed string, err error) {
	buf := make([]byte, 32)
	if _, err = rand.Read(buf); err != nil {
		return "", "", err
	}

	raw = base64.RawURLEncoding.EncodeToString(buf)
	hashed = HashRefreshToken(raw)
	return raw, hashed, nil
}

// HashRefreshToken produces a base64 SHA-256 digest.
func HashRefreshToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// TokenStore keeps refresh tokens and the access-token denylist in Redis.
type TokenStore struct {
	client *redis.Client
}

// NewTokenStore builds a store on top of the shared Redis client.
func NewTokenStore(client *redis.Client) *TokenStore {
	return &TokenStore{client: client}
}

// SaveRefresh persists a refresh token hash for a subject.
func (s *TokenStore) SaveRefresh(ctx context.Context, hash, subject string, ttl time.Duration) error {
	return s.client.Set(ctx, refreshKeyPrefix+hash, subject, ttl).Err()
}

// ConsumeRefresh resolves and deletes a refresh token in one step, so each
// refresh token is usable exactly once.
func (s *TokenStore) ConsumeRefresh(ctx context.Context, hash string) (string, error) {
	subject, err := s.client.GetDel(ctx, refreshKeyPrefix+hash).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrInvalidRefresh
	}
	if err != nil {
		return "", err
	}
	return subject, nil
}

// RevokeRefresh removes a refresh token, if present.
func (s *TokenStore) RevokeRefresh(ctx context.Context, hash string) error {
	return s.client.Del(ctx, refreshKeyPrefix+hash).Err()
}

// DenyAccess marks an access token JTI as logged out until it expires.
func (s *TokenStore) DenyAccess(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, denyKeyPrefix+jti, "1", ttl).Err()
}

// IsAccessDenied reports whether a JTI was revoked by logout.
func (s *TokenStore) IsAccessDenied(ctx context.Context, jti string) (bool, error) {
	err := s.client.Get(ctx, denyKeyPrefix+jti).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
