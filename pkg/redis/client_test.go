package redis

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	allowed, count, err := client.FixedWindowAllow(ctx, "verify:cust-1", 2, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed || count != 1 {
		t.Fatalf("expected first request allowed with count 1, got allowed=%v count=%d", allowed, count)
	}
	if len(mock.expireCalls) != 1 {
		t.Fatalf("expected expire for first increment")
	}

	allowed, count, err = client.FixedWindowAllow(ctx, "verify:cust-1", 2, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed || count != 2 {
		t.Fatalf("unexpected second call state allowed=%v count=%d", allowed, count)
	}
	if len(mock.expireCalls) != 1 {
		t.Fatalf("expire should not be set again")
	}

	allowed, _, err = client.FixedWindowAllow(ctx, "verify:cust-1", 2, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Fatalf("expected limit reached")
	}
}

func TestGetMissingKeyReturnsNil(t *testing.T) {
	client := &Client{store: newMockCmdable()}
	if _, err := client.Get(context.Background(), "cfg:draft:missing"); err != Nil {
		t.Fatalf("expected Nil, got %v", err)
	}
}

func TestMGetSkipsMissingKeys(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}
	if err := client.Set(ctx, "a", "1", 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := client.Set(ctx, "c", "3", 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	values, err := client.MGet(ctx, "a", "b", "c")
	if err != nil {
		t.Fatalf("mget: %v", err)
	}
	if len(values) != 2 || values[0] != "1" || values[1] != "3" {
		t.Fatalf("unexpected values %v", values)
	}

	empty, err := client.MGet(ctx)
	if err != nil || empty != nil {
		t.Fatalf("expected nil result for no keys, got %v %v", empty, err)
	}
}

func TestSetNXKeepsFirstValue(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}

	ok, err := client.SetNX(ctx, "k", "first", time.Minute)
	if err != nil || !ok {
		t.Fatalf("expected first setnx to succeed, got %v %v", ok, err)
	}
	ok, err = client.SetNX(ctx, "k", "second", time.Minute)
	if err != nil || ok {
		t.Fatalf("expected second setnx to be rejected, got %v %v", ok, err)
	}
	got, _ := client.Get(ctx, "k")
	if got != "first" {
		t.Fatalf("expected first value kept, got %q", got)
	}
}

func TestSetMembership(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}
	key := client.DraftIndexKey()

	if err := client.SAdd(ctx, key, "d1", "d2"); err != nil {
		t.Fatalf("sadd: %v", err)
	}
	if err := client.SRem(ctx, key, "d1"); err != nil {
		t.Fatalf("srem: %v", err)
	}
	members, err := client.SMembers(ctx, key)
	if err != nil {
		t.Fatalf("smembers: %v", err)
	}
	if len(members) != 1 || members[0] != "d2" {
		t.Fatalf("unexpected members %v", members)
	}
}

func TestUninitializedClientErrors(t *testing.T) {
	client := &Client{}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected error for uninitialized client")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close on uninitialized client should be a no-op, got %v", err)
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.DraftKey("abc"); got != "cfg:draft:abc" {
		t.Fatalf("unexpected draft key %s", got)
	}
	if got := client.DraftIndexKey(); got != "cfg:drafts" {
		t.Fatalf("unexpected draft index key %s", got)
	}
	if got := client.ModelDraftIndexKey("m1"); got != "cfg:drafts:model:m1" {
		t.Fatalf("unexpected model index key %s", got)
	}
	if got := client.TermPreferenceKey("sess"); got != "cfg:term:sess" {
		t.Fatalf("unexpected term key %s", got)
	}
	if got := client.IdempotencyKey("client|POST|/x", "k1"); got != "cfg:idempotency:client|POST|/x:k1" {
		t.Fatalf("unexpected idempotency key %s", got)
	}
	if got := client.RateLimitKey(""); got != "cfg:rate_limit" {
		t.Fatalf("empty parts should be skipped, got %s", got)
	}
}

type mockCmdable struct {
	data        map[string]string
	sets        map[string]map[string]struct{}
	incr        map[string]int64
	expireCalls []expireCall
}

type expireCall struct {
	key string
	ttl time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data: make(map[string]string),
		sets: make(map[string]map[string]struct{}),
		incr: make(map[string]int64),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if _, ok := m.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) MGet(ctx context.Context, keys ...string) *redis.SliceCmd {
	out := make([]any, len(keys))
	for i, key := range keys {
		if v, ok := m.data[key]; ok {
			out[i] = v
		}
	}
	return redis.NewSliceResult(out, nil)
}

func (m *mockCmdable) Incr(ctx context.Context, key string) *redis.IntCmd {
	m.incr[key]++
	return redis.NewIntResult(m.incr[key], nil)
}

func (m *mockCmdable) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	m.expireCalls = append(m.expireCalls, expireCall{key: key, ttl: expiration})
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (m *mockCmdable) SAdd(ctx context.Context, key string, members ...any) *redis.IntCmd {
	set, ok := m.sets[key]
	if !ok {
		set = map[string]struct{}{}
		m.sets[key] = set
	}
	for _, member := range members {
		set[fmt.Sprint(member)] = struct{}{}
	}
	return redis.NewIntResult(int64(len(members)), nil)
}

func (m *mockCmdable) SRem(ctx context.Context, key string, members ...any) *redis.IntCmd {
	for _, member := range members {
		delete(m.sets[key], fmt.Sprint(member))
	}
	return redis.NewIntResult(int64(len(members)), nil)
}

func (m *mockCmdable) SMembers(ctx context.Context, key string) *redis.StringSliceCmd {
	out := make([]string, 0, len(m.sets[key]))
	for member := range m.sets[key] {
		out = append(out, member)
	}
	sort.Strings(out)
	return redis.NewStringSliceResult(out, nil)
}
