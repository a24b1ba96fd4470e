package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/wildlight/questline/pkg/reward"
	"github.com/wildlight/questline/pkg/state"
	"github.com/wildlight/questline/pkg/story"
)

const sessionTTL = 24 * time.Hour

// RedisStore implements SessionStore on Redis.
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
}

var _ SessionStore = (*RedisStore)(nil)

// NewRedisStore creates a Redis storage instance.
func NewRedisStore(redisURL string, logger *slog.Logger) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})
	return &RedisStore{
		client: rdb,
		logger: logger,
	}
}

func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	return nil
}

// WaitForConnection waits for Redis to become available during startup.
func (r *RedisStore) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}
		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

func sessionKey(id uuid.UUID) string {
	return "session:" + id.String()
}

func (r *RedisStore) SaveSession(ctx context.Context, s *state.Session) error {
	s.UpdatedAt = time.Now()
	data, err := s.Snapshot()
	if err != nil {
		r.logger.Error("Failed to snapshot session", "session_id", s.ID, "error", err)
		return err
	}
	if err := r.client.Set(ctx, sessionKey(s.ID), data, sessionTTL).Err(); err != nil {
		r.logger.Error("Failed to save session", "session_id", s.ID, "error", err)
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *RedisStore) LoadSession(ctx context.Context, id uuid.UUID) (*state.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return state.RestoreSession(data)
}

func (r *RedisStore) DeleteSession(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Client exposes the underlying Redis client for pub/sub consumers.
func (r *RedisStore) Client() *redis.Client {
	return r.client
}

func profileKey(id uuid.UUID) string {
	return "profile:" + id.String()
}

// SaveProfile persists a reward profile alongside the session.
func (r *RedisStore) SaveProfile(ctx context.Context, id uuid.UUID, p *reward.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	if err := r.client.Set(ctx, profileKey(id), data, sessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// LoadProfile returns nil with no error when no profile exists.
func (r *RedisStore) LoadProfile(ctx context.Context, id uuid.UUID) (*reward.Profile, error) {
	data, err := r.client.Get(ctx, profileKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	var p reward.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	return &p, nil
}

// ForProfile returns an achievement store scoped to one profile key.
func (r *RedisStore) ForProfile(key string) *RedisAchievementStore {
	return NewRedisAchievementStore(r.client, key)
}

// Achievement persistence, one serialized list per profile key.

const achievementsVersion = 1

type achievementsEnvelope struct {
	Version      int                 `json:"version"`
	Achievements []story.Achievement `json:"achievements"`
}

// RedisAchievementStore implements achieve.Store on Redis under one key.
type RedisAchievementStore struct {
	client *redis.Client
	key    string
}

// NewRedisAchievementStore wraps an existing client. profileKey
// distinguishes player profiles.
func NewRedisAchievementStore(client *redis.Client, profileKey string) *RedisAchievementStore {
	return &RedisAchievementStore{
		client: client,
		key:    "achievements:" + profileKey,
	}
}

func (s *RedisAchievementStore) Load() ([]story.Achievement, error) {
	data, err := s.client.Get(context.Background(), s.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load achievements: %w", err)
	}
	var env achievementsEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse achievements: %w", err)
	}
	if env.Version != achievementsVersion {
		return nil, fmt.Errorf("unsupported achievements version %d", env.Version)
	}
	return env.Achievements, nil
}

func (s *RedisAchievementStore) Save(list []story.Achievement) error {
	data, err := json.Marshal(achievementsEnvelope{
		Version:      achievementsVersion,
		Achievements: list,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal achievements: %w", err)
	}
	if err := s.client.Set(context.Background(), s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save achievements: %w", err)
	}
	return nil
}
