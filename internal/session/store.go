package session

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	tokenKeyPrefix = "linkboard:session:"
	tokenKeySuffix = ":token"

	// DefaultTokenTTL bounds how long a stored token outlives its last write
	DefaultTokenTTL = 30 * 24 * time.Hour
)

// CredentialStore keeps one API token per browser session.
// Get returns "" when nothing is stored; a missing token is not an error.
type CredentialStore interface {
	Get(ctx context.Context, sessionID string) (string, error)
	Set(ctx context.Context, sessionID, token string) error
	Delete(ctx context.Context, sessionID string) error
}

// Compile-time interface checks
var (
	_ CredentialStore = (*RedisStore)(nil)
	_ CredentialStore = (*MemoryStore)(nil)
)

// RedisStore keeps tokens in Redis so they survive restarts and are shared by
// every replica.
type RedisStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl, logger: logger}
}

func tokenKey(sessionID string) string {
	return tokenKeyPrefix + sessionID + tokenKeySuffix
}

// Get reads the session's token. Redis failures are logged and read as an
// empty token so a broken cache never blocks page rendering.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (string, error) {
	token, err := s.rdb.Get(ctx, tokenKey(sessionID)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		s.logger.Warn("failed to read token from redis", zap.String("session", sessionID), zap.Error(err))
		return "", nil
	}
	return token, nil
}

func (s *RedisStore) Set(ctx context.Context, sessionID, token string) error {
	return s.rdb.Set(ctx, tokenKey(sessionID), token, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, tokenKey(sessionID)).Err(); err != nil {
		s.logger.Warn("failed to delete token from redis", zap.String("session", sessionID), zap.Error(err))
		return err
	}
	return nil
}

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

// MemoryStore is the single-process fallback used when no Redis address is
// configured.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]memoryEntry
	ttl    time.Duration
	now    func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &MemoryStore{tokens: make(map[string]memoryEntry), ttl: ttl, now: time.Now}
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.tokens[sessionID]
	if !ok || !s.now().Before(e.expiresAt) {
		return "", nil
	}
	return e.token, nil
}

func (s *MemoryStore) Set(_ context.Context, sessionID, token string) error {
	s.mu.Lock()
	s.tokens[sessionID] = memoryEntry{token: token, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.tokens, sessionID)
	s.mu.Unlock()
	return nil
}

// Purge drops expired tokens. The session sweeper calls it.
func (s *MemoryStore) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, e := range s.tokens {
		if !now.Before(e.expiresAt) {
			delete(s.tokens, id)
		}
	}
}
