package database

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisClient wraps the redis client
type RedisClient struct {
	*redis.Client
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TLS      bool
}

// NewRedisClient creates a new Redis client
func NewRedisClient(cfg RedisConfig) (*RedisClient, error) {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("unable to ping Redis: %w", err)
	}

	log.Println("Successfully connected to Redis")

	return &RedisClient{Client: client}, nil
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	if r.Client != nil {
		log.Println("Closing Redis connection")
		return r.Client.Close()
	}
	return nil
}

// Health checks the Redis connection health
func (r *RedisClient) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return r.Ping(ctx).Err()
}

// generateToken returns a URL-safe random token.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// SessionStore handles session storage in Redis
type SessionStore struct {
	client *RedisClient
	ttl    time.Duration
}

// NewSessionStore creates a new session store
func NewSessionStore(client *RedisClient, ttl time.Duration) *SessionStore {
	if ttl == 0 {
		ttl = 7 * 24 * time.Hour // default 7 days
	}
	return &SessionStore{
		client: client,
		ttl:    ttl,
	}
}

// GenerateSessionID generates a cryptographically secure session ID
func (s *SessionStore) GenerateSessionID() (string, error) {
	return generateToken()
}

// Set stores a user ID in a session
func (s *SessionStore) Set(ctx context.Context, sessionID string, userID uuid.UUID) error {
	key := fmt.Sprintf("session:%s", sessionID)
	return s.client.Set(ctx, key, userID.String(), s.ttl).Err()
}

// Get retrieves a user ID from a session and refreshes its TTL.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (uuid.UUID, error) {
	key := fmt.Sprintf("session:%s", sessionID)

	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return uuid.Nil, fmt.Errorf("session not found")
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to get session: %w", err)
	}

	userID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user ID in session: %w", err)
	}

	s.client.Expire(ctx, key, s.ttl)

	return userID, nil
}

// Delete removes a session
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	key := fmt.Sprintf("session:%s", sessionID)
	return s.client.Del(ctx, key).Err()
}

// ResetTokenStore holds single-use password reset tokens.
type ResetTokenStore struct {
	client *RedisClient
	ttl    time.Duration
}

// NewResetTokenStore creates a new reset token store
func NewResetTokenStore(client *RedisClient, ttl time.Duration) *ResetTokenStore {
	if ttl == 0 {
		ttl = time.Hour
	}
	return &ResetTokenStore{
		client: client,
		ttl:    ttl,
	}
}

// Create issues a reset token for the given user.
func (s *ResetTokenStore) Create(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("reset:%s", token)
	if err := s.client.Set(ctx, key, userID.String(), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	return token, nil
}

// Consume redeems a reset token. The token is deleted whether or not the
// stored value parses, so it can never be used twice.
func (s *ResetTokenStore) Consume(ctx context.Context, token string) (uuid.UUID, error) {
	key := fmt.Sprintf("reset:%s", token)

	val, err := s.client.GetDel(ctx, key).Result()
	if err == redis.Nil {
		return uuid.Nil, fmt.Errorf("reset token not found")
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to consume reset token: %w", err)
	}

	userID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user ID in reset token: %w", err)
	}

	return userID, nil
}
