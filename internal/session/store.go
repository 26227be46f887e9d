package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("session not found")

// Store keeps server-side sessions in Redis: an opaque session id maps
// to a user id, with a TTL. Destroying the key logs the user out
// everywhere the cookie is held.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(redisURL string, ttl time.Duration) (*Store, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &Store{
		client: client,
		ttl:    ttl,
	}, nil
}

// NewStoreWithClient wires an existing Redis client (used by tests and
// by callers sharing the client with the rate limiter).
func NewStoreWithClient(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Client exposes the underlying Redis client for co-located concerns.
func (s *Store) Client() *redis.Client {
	return s.client
}

// Create persists a new session for the user and returns its id.
func (s *Store) Create(ctx context.Context, userID uint) (string, error) {
	sessionID := uuid.NewString()
	key := sessionKey(sessionID)

	if err := s.client.Set(ctx, key, strconv.FormatUint(uint64(userID), 10), s.ttl).Err(); err != nil {
		return "", err
	}

	return sessionID, nil
}

// Resolve maps a session id back to the owning user id.
// Unknown or expired sessions return ErrNotFound.
func (s *Store) Resolve(ctx context.Context, sessionID string) (uint, error) {
	val, err := s.client.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrNotFound
		}
		return 0, err
	}

	userID, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, err
	}

	return uint(userID), nil
}

// Destroy removes a session. Destroying a session that does not exist
// is a no-op.
func (s *Store) Destroy(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionKey(sessionID)).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}
