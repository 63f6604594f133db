package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/riceshop/ricestore-backend/pkg/config"
	redisclient "github.com/riceshop/ricestore-backend/pkg/redis"
)

const refreshTokenBytes = 32

var ErrInvalidRefreshToken = errors.New("invalid refresh token")

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	UserSessionKey(userID string) string
	RefreshLookupKey(token string) string
}

// Manager handles refresh token creation, rotation, and revocation. A user
// holds at most one live refresh token, so revoking the user key kills every
// outstanding session.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

// SessionChecker exposes the read-only surface needed by middleware.
type SessionChecker interface {
	HasSession(ctx context.Context, userID string) (bool, error)
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	ttl := cfg.RefreshTokenTTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("refresh token ttl must be positive")
	}
	accessTTL := time.Duration(cfg.ExpirationMinutes) * time.Minute
	if ttl <= accessTTL {
		return nil, fmt.Errorf("refresh token ttl (%s) must exceed access token ttl (%s)", ttl, accessTTL)
	}

	return &Manager{
		store: client,
		keyer: client,
		ttl:   ttl,
	}, nil
}

// Issue creates a refresh token for the user and stores both the session and
// the reverse lookup mapping. Any previous token for the user is superseded.
func (m *Manager) Issue(ctx context.Context, userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("user id is required")
	}

	if prev, err := m.store.Get(ctx, m.keyer.UserSessionKey(userID)); err == nil && prev != "" {
		if err := m.store.Del(ctx, m.keyer.RefreshLookupKey(prev)); err != nil {
			return "", err
		}
	}

	token, err := generateRefreshToken()
	if err != nil {
		return "", err
	}
	if err := m.store.Set(ctx, m.keyer.UserSessionKey(userID), token, m.ttl); err != nil {
		return "", err
	}
	if err := m.store.Set(ctx, m.keyer.RefreshLookupKey(token), userID, m.ttl); err != nil {
		return "", err
	}
	return token, nil
}

// Redeem validates the provided refresh token, rotates it, and returns the
// owning user ID together with the replacement token.
func (m *Manager) Redeem(ctx context.Context, provided string) (string, string, error) {
	if strings.TrimSpace(provided) == "" {
		return "", "", ErrInvalidRefreshToken
	}

	userID, err := m.store.Get(ctx, m.keyer.RefreshLookupKey(provided))
	if err != nil {
		return "", "", wrapNotFound(err)
	}

	stored, err := m.store.Get(ctx, m.keyer.UserSessionKey(userID))
	if err != nil {
		return "", "", wrapNotFound(err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(provided)) != 1 {
		return "", "", ErrInvalidRefreshToken
	}

	next, err := m.Issue(ctx, userID)
	if err != nil {
		return "", "", err
	}
	return userID, next, nil
}

// Revoke deletes the user's session and the reverse mapping of its token.
func (m *Manager) Revoke(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("user id is required")
	}
	key := m.keyer.UserSessionKey(userID)
	if token, err := m.store.Get(ctx, key); err == nil && token != "" {
		if err := m.store.Del(ctx, m.keyer.RefreshLookupKey(token)); err != nil {
			return err
		}
	} else if err != nil && !errors.Is(err, redislib.Nil) {
		return err
	}
	return m.store.Del(ctx, key)
}

// HasSession reports whether the user still has a live refresh session.
func (m *Manager) HasSession(ctx context.Context, userID string) (bool, error) {
	if strings.TrimSpace(userID) == "" {
		return false, fmt.Errorf("user id is required")
	}
	if _, err := m.store.Get(ctx, m.keyer.UserSessionKey(userID)); err != nil {
		if errors.Is(err, redislib.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func generateRefreshToken() (string, error) {
	bytes := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

func wrapNotFound(err error) error {
	if errors.Is(err, redislib.Nil) {
		return ErrInvalidRefreshToken
	}
	return err
}
