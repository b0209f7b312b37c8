package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MacJediWizard/licenze/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultRedisKey is the key holding the document when none is configured.
const DefaultRedisKey = "licenze:document"

// RedisStore keeps the encoded document under a single key.
type RedisStore struct {
	client *redis.Client
	key    string
	logger zerolog.Logger
}

// NewRedisStore connects to the Redis server at url.
func NewRedisStore(ctx context.Context, url, key string, logger zerolog.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return NewRedisStoreFromClient(client, key, logger), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, key string, logger zerolog.Logger) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{
		client: client,
		key:    key,
		logger: logger.With().Str("component", "redis_store").Str("key", key).Logger(),
	}
}

// Name returns the backend name.
func (s *RedisStore) Name() string { return "redis" }

// Client returns the underlying connection so other components can share it.
func (s *RedisStore) Client() *redis.Client { return s.client }

// Load fetches and decodes the document.
func (s *RedisStore) Load(ctx context.Context) (*models.LicenseDocument, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	var doc models.LicenseDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &doc, nil
}

// Save encodes and stores the document without expiry.
func (s *RedisStore) Save(ctx context.Context, doc *models.LicenseDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("set document: %w", err)
	}
	return nil
}

// Exists reports whether the key is present.
func (s *RedisStore) Exists(ctx context.Context) (bool, error) {
	n, err := s.client.Exists(ctx, s.key).Result()
	if err != nil {
		return false, fmt.Errorf("check document: %w", err)
	}
	return n > 0, nil
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
