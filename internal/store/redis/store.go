package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/tabsaver/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ErrCorruptMapping marks a stored value that is not a valid mapping.
var ErrCorruptMapping = errors.New("corrupt folder mapping")

// Store keeps folder-key mappings in Redis
type Store struct {
	client *redis.Client
	now    func() time.Time
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
		now:    time.Now,
	}
}

// Get retrieves the folder id mapped to key
func (s *Store) Get(ctx context.Context, key string) (domain.FolderMapping, bool, error) {
	data, err := s.client.Get(ctx, FolderKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.FolderMapping{}, false, nil
		}
		return domain.FolderMapping{}, false, fmt.Errorf("failed to get folder mapping: %w", err)
	}

	var m domain.FolderMapping
	if err := json.Unmarshal(data, &m); err != nil {
		return domain.FolderMapping{}, false, fmt.Errorf("%w %q: %w", ErrCorruptMapping, key, err)
	}
	return m, true, nil
}

// Put stores or replaces the mapping for m.Key
func (s *Store) Put(ctx context.Context, m domain.FolderMapping) error {
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = s.now().UTC()
	}

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal folder mapping: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, FolderKey(m.Key), data, 0)
	pipe.SAdd(ctx, AllFoldersKey(), m.Key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save folder mapping: %w", err)
	}
	return nil
}

// Delete removes the mapping for key
func (s *Store) Delete(ctx context.Context, key string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, FolderKey(key))
	pipe.SRem(ctx, AllFoldersKey(), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete folder mapping: %w", err)
	}
	return nil
}

// List retrieves every mapping. Keys listed in the set whose value is
// missing or corrupt are removed; any other error aborts the listing.
func (s *Store) List(ctx context.Context) ([]domain.FolderMapping, error) {
	keys, err := s.client.SMembers(ctx, AllFoldersKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get folder keys: %w", err)
	}

	if len(keys) == 0 {
		return []domain.FolderMapping{}, nil
	}

	mappings := make([]domain.FolderMapping, 0, len(keys))
	for _, key := range keys {
		m, ok, err := s.Get(ctx, key)
		switch {
		case errors.Is(err, ErrCorruptMapping):
			if err := s.Delete(ctx, key); err != nil {
				return nil, err
			}
			continue
		case err != nil:
			return nil, err
		case !ok:
			if err := s.client.SRem(ctx, AllFoldersKey(), key).Err(); err != nil {
				return nil, fmt.Errorf("failed to drop stale folder key: %w", err)
			}
			continue
		}
		mappings = append(mappings, m)
	}

	return mappings, nil
}

// Ping checks the Redis connection
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying client
func (s *Store) Close() error {
	return s.client.Close()
}
