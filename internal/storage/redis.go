package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/companion-engine/pkg/session"
	"github.com/jwebster45206/companion-engine/pkg/world"
)

const sessionKeyPrefix = "session:"

// RedisStorage implements the Storage interface using Redis for sessions
// and the filesystem for world cartridges.
type RedisStorage struct {
	client    *redis.Client
	logger    *slog.Logger
	worldsDir string
}

// Ensure RedisStorage implements Storage interface
var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance
func NewRedisStorage(redisURL string, worldsDir string, logger *slog.Logger) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	if worldsDir == "" {
		worldsDir = "./data/worlds"
	}

	return &RedisStorage{
		client:    rdb,
		logger:    logger,
		worldsDir: worldsDir,
	}
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
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

// Session persistence

func (r *RedisStorage) SaveSession(ctx context.Context, slot string, s *session.Session) error {
	if err := validateSlot(slot); err != nil {
		return err
	}
	s.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKeyPrefix+slot, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save session to slot %q: %w", slot, err)
	}

	r.logger.Debug("Session saved", "slot", slot, "turn_count", s.Meta.TurnCount)
	return nil
}

func (r *RedisStorage) LoadSession(ctx context.Context, slot string) (*session.Session, error) {
	if err := validateSlot(slot); err != nil {
		return nil, err
	}

	data, err := r.client.Get(ctx, sessionKeyPrefix+slot).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session from slot %q: %w", slot, err)
	}

	var s session.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session from slot %q: %w", slot, err)
	}
	s.Normalize()
	return &s, nil
}

func (r *RedisStorage) DeleteSession(ctx context.Context, slot string) error {
	if err := validateSlot(slot); err != nil {
		return err
	}
	if err := r.client.Del(ctx, sessionKeyPrefix+slot).Err(); err != nil {
		return fmt.Errorf("failed to delete session slot %q: %w", slot, err)
	}
	return nil
}

func (r *RedisStorage) ListSaves(ctx context.Context) ([]string, error) {
	keys, err := r.client.Keys(ctx, sessionKeyPrefix+"*").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list save slots: %w", err)
	}

	slots := make([]string, 0, len(keys))
	for _, k := range keys {
		slots = append(slots, strings.TrimPrefix(k, sessionKeyPrefix))
	}
	sort.Strings(slots)
	return slots, nil
}

// World cartridges

func (r *RedisStorage) GetWorld(ctx context.Context, id string) (*world.World, error) {
	if strings.ContainsAny(id, "/\\.") {
		return nil, fmt.Errorf("invalid world id: %q", id)
	}

	path := filepath.Join(r.worldsDir, id+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read world %q: %w", id, err)
	}

	var w world.World
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to parse world %q: %w", id, err)
	}
	if w.Meta.ID == "" {
		w.Meta.ID = id
	}
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("invalid world %q: %w", id, err)
	}
	return &w, nil
}

func (r *RedisStorage) ListWorlds(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.worldsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read worlds dir: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".yaml"))
	}
	sort.Strings(ids)
	return ids, nil
}

func validateSlot(slot string) error {
	if slot == "" {
		return fmt.Errorf("save slot name is required")
	}
	return nil
}
