package pricing

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/angelmondragon/configurator-backend/pkg/redis"
)

const termPreferenceTTL = 30 * 24 * time.Hour

// TermPreferences remembers the last financing term chosen within a scope.
type TermPreferences interface {
	Remember(ctx context.Context, scope string, months int) error
	Last(ctx context.Context, scope string) (int, bool, error)
}

type termStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	TermPreferenceKey(scope string) string
}

// RedisTermPreferences stores term preferences in redis with a sliding TTL.
type RedisTermPreferences struct {
	store termStore
}

// NewRedisTermPreferences binds the preferences to a redis client.
func NewRedisTermPreferences(store termStore) *RedisTermPreferences {
	return &RedisTermPreferences{store: store}
}

func (p *RedisTermPreferences) Remember(ctx context.Context, scope string, months int) error {
	return p.store.Set(ctx, p.store.TermPreferenceKey(scope), strconv.Itoa(months), termPreferenceTTL)
}

func (p *RedisTermPreferences) Last(ctx context.Context, scope string) (int, bool, error) {
	raw, err := p.store.Get(ctx, p.store.TermPreferenceKey(scope))
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	months, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, nil
	}
	return months, true, nil
}

// MemoryTermPreferences keeps term preferences in process memory.
type MemoryTermPreferences struct {
	mu    sync.RWMutex
	terms map[string]int
}

func NewMemoryTermPreferences() *MemoryTermPreferences {
	return &MemoryTermPreferences{terms: map[string]int{}}
}

func (p *MemoryTermPreferences) Remember(_ context.Context, scope string, months int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.terms[scope] = months
	return nil
}

func (p *MemoryTermPreferences) Last(_ context.Context, scope string) (int, bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	months, ok := p.terms[scope]
	return months, ok, nil
}
