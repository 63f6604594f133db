package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string)}
}

func (m *mockStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *mockStore) UserSessionKey(userID string) string {
	return fmt.Sprintf("sess:%s", userID)
}

func (m *mockStore) RefreshLookupKey(token string) string {
	return fmt.Sprintf("refresh:%s", token)
}

func newTestManager() (*Manager, *mockStore) {
	store := newMockStore()
	return &Manager{store: store, keyer: store, ttl: time.Hour}, store
}

func TestManagerIssueAndRedeem(t *testing.T) {
	manager, store := newTestManager()

	ctx := context.Background()
	userID := "user-123"
	token, err := manager.Issue(ctx, userID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if stored := store.data[store.UserSessionKey(userID)]; stored != token {
		t.Fatalf("expected stored token %q, got %q", token, stored)
	}
	if owner := store.data[store.RefreshLookupKey(token)]; owner != userID {
		t.Fatalf("expected reverse mapping to %q, got %q", userID, owner)
	}

	if _, _, err := manager.Redeem(ctx, "wrong"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected invalid refresh token error, got %v", err)
	}

	gotUser, newToken, err := manager.Redeem(ctx, token)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if gotUser != userID {
		t.Fatalf("expected user %q, got %q", userID, gotUser)
	}
	if newToken == token {
		t.Fatal("redeem did not rotate the token")
	}
	if _, exists := store.data[store.RefreshLookupKey(token)]; exists {
		t.Fatal("old reverse mapping left behind")
	}
	if _, _, err := manager.Redeem(ctx, token); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected rotated-out token to be rejected, got %v", err)
	}
}

func TestManagerIssueSupersedesPreviousToken(t *testing.T) {
	manager, store := newTestManager()
	ctx := context.Background()

	first, err := manager.Issue(ctx, "user-1")
	if err != nil {
		t.Fatalf("issue first: %v", err)
	}
	second, err := manager.Issue(ctx, "user-1")
	if err != nil {
		t.Fatalf("issue second: %v", err)
	}
	if first == second {
		t.Fatal("expected a fresh token per issue")
	}
	if _, exists := store.data[store.RefreshLookupKey(first)]; exists {
		t.Fatal("superseded token lookup left behind")
	}
}

func TestManagerRevokeAndHasSession(t *testing.T) {
	manager, store := newTestManager()
	ctx := context.Background()

	token, err := manager.Issue(ctx, "user-9")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	ok, err := manager.HasSession(ctx, "user-9")
	if err != nil || !ok {
		t.Fatalf("expected live session, got ok=%v err=%v", ok, err)
	}

	if err := manager.Revoke(ctx, "user-9"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if len(store.data) != 0 {
		t.Fatalf("expected all session keys removed, got %v", store.data)
	}

	ok, err = manager.HasSession(ctx, "user-9")
	if err != nil || ok {
		t.Fatalf("expected no session after revoke, got ok=%v err=%v", ok, err)
	}
	if _, _, err := manager.Redeem(ctx, token); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected revoked token to be rejected, got %v", err)
	}
}
