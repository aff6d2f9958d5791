package drafts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/configurator-backend/pkg/redis"
	"github.com/google/uuid"
)

type draftKV interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	MGet(ctx context.Context, keys ...string) ([]string, error)
	Del(ctx context.Context, keys ...string) error
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
	DraftKey(draftID string) string
	DraftIndexKey() string
	ModelDraftIndexKey(modelID string) string
}

// RedisStore keeps each draft as a JSON string without expiry, indexed by a global set
// and a per-model set of draft ids.
type RedisStore struct {
	kv draftKV
}

func NewRedisStore(kv draftKV) *RedisStore {
	return &RedisStore{kv: kv}
}

func (s *RedisStore) Put(ctx context.Context, draft Draft) error {
	raw, err := encode(draft)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}

	id := draft.ID.String()
	previous, err := s.Get(ctx, draft.ID)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return err
	case previous.Model.ID != draft.Model.ID:
		if err := s.kv.SRem(ctx, s.kv.ModelDraftIndexKey(previous.Model.ID.String()), id); err != nil {
			return fmt.Errorf("unindex draft: %w", err)
		}
	}

	if err := s.kv.Set(ctx, s.kv.DraftKey(id), string(raw), 0); err != nil {
		return fmt.Errorf("write draft: %w", err)
	}
	if err := s.kv.SAdd(ctx, s.kv.DraftIndexKey(), id); err != nil {
		return fmt.Errorf("index draft: %w", err)
	}
	if err := s.kv.SAdd(ctx, s.kv.ModelDraftIndexKey(draft.Model.ID.String()), id); err != nil {
		return fmt.Errorf("index draft by model: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id uuid.UUID) (Draft, error) {
	raw, err := s.kv.Get(ctx, s.kv.DraftKey(id.String()))
	if errors.Is(err, redis.Nil) {
		return Draft{}, ErrNotFound
	}
	if err != nil {
		return Draft{}, fmt.Errorf("read draft: %w", err)
	}
	return decode([]byte(raw))
}

func (s *RedisStore) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := s.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	key := id.String()
	if err := s.kv.Del(ctx, s.kv.DraftKey(key)); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	if err := s.kv.SRem(ctx, s.kv.DraftIndexKey(), key); err != nil {
		return fmt.Errorf("unindex draft: %w", err)
	}
	if err := s.kv.SRem(ctx, s.kv.ModelDraftIndexKey(existing.Model.ID.String()), key); err != nil {
		return fmt.Errorf("unindex draft by model: %w", err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]Draft, error) {
	return s.listIndex(ctx, s.kv.DraftIndexKey())
}

func (s *RedisStore) ListByModel(ctx context.Context, modelID uuid.UUID) ([]Draft, error) {
	return s.listIndex(ctx, s.kv.ModelDraftIndexKey(modelID.String()))
}

// listIndex resolves an index set. Ids whose value is gone or unreadable are skipped.
func (s *RedisStore) listIndex(ctx context.Context, indexKey string) ([]Draft, error) {
	ids, err := s.kv.SMembers(ctx, indexKey)
	if err != nil {
		return nil, fmt.Errorf("read draft index: %w", err)
	}
	if len(ids) == 0 {
		return []Draft{}, nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, s.kv.DraftKey(id))
	}
	values, err := s.kv.MGet(ctx, keys...)
	if err != nil {
		return nil, fmt.Errorf("read drafts: %w", err)
	}

	out := make([]Draft, 0, len(values))
	for _, raw := range values {
		d, err := decode([]byte(raw))
		if err != nil {
			continue
		}
		out = append(out, d)
	}
	newestFirst(out)
	return out, nil
}
