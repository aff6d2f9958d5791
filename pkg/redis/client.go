package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/configurator-backend/pkg/config"
	"github.com/angelmondragon/configurator-backend/pkg/logger"
)

// Keys are "cfg:<segment>:...". Drafts live under draft:<id> and are indexed by
// the drafts and drafts:model:<id> sets.
const (
	keyNamespace = "cfg"

	segDraft       = "draft"
	segDraftIndex  = "drafts"
	segModel       = "model"
	segTerm        = "term"
	segRateLimit   = "rate_limit"
	segIdempotency = "idempotency"
)

// Nil is returned by Get when the key does not exist.
var Nil = redis.Nil

var errNotInitialized = errors.New("redis client not initialized")

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	SetNX(context.Context, string, any, time.Duration) *redis.BoolCmd
	Get(context.Context, string) *redis.StringCmd
	MGet(context.Context, ...string) *redis.SliceCmd
	Incr(context.Context, string) *redis.IntCmd
	Expire(context.Context, string, time.Duration) *redis.BoolCmd
	Del(context.Context, ...string) *redis.IntCmd
	SAdd(context.Context, string, ...any) *redis.IntCmd
	SRem(context.Context, string, ...any) *redis.IntCmd
	SMembers(context.Context, string) *redis.StringSliceCmd
}

// Client backs the redis draft store, term preferences, rate limits and
// idempotency records.
type Client struct {
	store cmdable
	raw   *redis.Client
}

type IdempotencyStore interface {
	Get(context.Context, string) (string, error)
	SetNX(context.Context, string, any, time.Duration) (bool, error)
	IdempotencyKey(scope, key string) string
}

type Pinger interface {
	Ping(context.Context) error
}

// New dials redis from cfg and fails unless PING succeeds.
func New(ctx context.Context, cfg config.RedisConfig, logg *logger.Logger) (*Client, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{"addr": opts.Addr, "db": opts.DB}), "redis connection established")
	}
	return &Client{store: raw, raw: raw}, nil
}

// optionsFromConfig prefers URL; explicit pool and timeout settings fill whatever
// the URL leaves unset.
func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	var opts *redis.Options
	switch {
	case cfg.URL != "":
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	case cfg.Address != "":
		opts = &redis.Options{Addr: cfg.Address, Password: cfg.Password}
	default:
		return nil, errors.New("redis url or address is required")
	}

	fillInt(&opts.DB, cfg.DB)
	fillInt(&opts.PoolSize, cfg.PoolSize)
	fillInt(&opts.MinIdleConns, cfg.MinIdleConns)
	fillDuration(&opts.DialTimeout, cfg.DialTimeout)
	fillDuration(&opts.ReadTimeout, cfg.ReadTimeout)
	fillDuration(&opts.WriteTimeout, cfg.WriteTimeout)
	return opts, nil
}

func fillInt(dst *int, v int) {
	if *dst == 0 {
		*dst = v
	}
}

func fillDuration(dst *time.Duration, v time.Duration) {
	if *dst == 0 {
		*dst = v
	}
}

func (c *Client) ready() (cmdable, error) {
	if c == nil || c.store == nil {
		return nil, errNotInitialized
	}
	return c.store, nil
}

func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	s, err := c.ready()
	if err != nil {
		return err
	}
	return s.Set(ctx, key, value, ttl).Err()
}

// SetNX stores value only when key is absent and reports whether it did.
func (c *Client) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	s, err := c.ready()
	if err != nil {
		return false, err
	}
	return s.SetNX(ctx, key, value, ttl).Result()
}

// Get returns Nil for a missing key.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	s, err := c.ready()
	if err != nil {
		return "", err
	}
	return s.Get(ctx, key).Result()
}

// MGet returns the values that exist, in key order. Missing keys are dropped.
func (c *Client) MGet(ctx context.Context, keys ...string) ([]string, error) {
	s, err := c.ready()
	if err != nil || len(keys) == 0 {
		return nil, err
	}
	values, err := s.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if str, ok := v.(string); ok {
			out = append(out, str)
		}
	}
	return out, nil
}

func (c *Client) Del(ctx context.Context, keys ...string) error {
	s, err := c.ready()
	if err != nil {
		return err
	}
	return s.Del(ctx, keys...).Err()
}

func (c *Client) SAdd(ctx context.Context, key string, members ...string) error {
	s, err := c.ready()
	if err != nil {
		return err
	}
	return s.SAdd(ctx, key, asArgs(members)...).Err()
}

func (c *Client) SRem(ctx context.Context, key string, members ...string) error {
	s, err := c.ready()
	if err != nil {
		return err
	}
	return s.SRem(ctx, key, asArgs(members)...).Err()
}

func (c *Client) SMembers(ctx context.Context, key string) ([]string, error) {
	s, err := c.ready()
	if err != nil {
		return nil, err
	}
	return s.SMembers(ctx, key).Result()
}

// FixedWindowAllow counts one hit against scope and reports whether the count is
// still within limit for the current window. The window starts at the first hit.
func (c *Client) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	s, err := c.ready()
	if err != nil {
		return false, 0, err
	}
	key := c.RateLimitKey(scope)
	count, err := s.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}
	if count == 1 && window > 0 {
		if err := s.Expire(ctx, key, window).Err(); err != nil {
			return false, count, fmt.Errorf("expire %s: %w", key, err)
		}
	}
	return count <= limit, count, nil
}

func (c *Client) Ping(ctx context.Context) error {
	s, err := c.ready()
	if err != nil {
		return err
	}
	return s.Ping(ctx).Err()
}

// Close is a no-op for clients built without a connection.
func (c *Client) Close() error {
	if c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

func (c *Client) DraftKey(draftID string) string { return key(segDraft, draftID) }

func (c *Client) DraftIndexKey() string { return key(segDraftIndex) }

func (c *Client) ModelDraftIndexKey(modelID string) string {
	return key(segDraftIndex, segModel, modelID)
}

// TermPreferenceKey holds the last financing term chosen under scope.
func (c *Client) TermPreferenceKey(scope string) string { return key(segTerm, scope) }

func (c *Client) RateLimitKey(scope string) string { return key(segRateLimit, scope) }

func (c *Client) IdempotencyKey(scope, idemKey string) string {
	return key(segIdempotency, scope, idemKey)
}

func key(parts ...string) string {
	var b strings.Builder
	b.WriteString(keyNamespace)
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			b.WriteByte(':')
			b.WriteString(part)
		}
	}
	return b.String()
}

func asArgs(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
