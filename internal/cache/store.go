package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeromicro/go-zero/core/collection"
	zcache "github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/core/syncx"
)

// ErrNotFound is reported by stores on a cache miss.
var ErrNotFound = errors.New("cache: not found")

// Store is the slice of the go-zero cache API the feed cache needs.
// zcache.Cache satisfies it.
type Store interface {
	GetCtx(ctx context.Context, key string, val any) error
	SetWithExpireCtx(ctx context.Context, key string, val any, expire time.Duration) error
	DelCtx(ctx context.Context, keys ...string) error
	IsNotFound(err error) bool
}

// NewRedisStore builds a go-zero cache node on Redis.
func NewRedisStore(conf redis.RedisConf) (Store, error) {
	rds, err := redis.NewRedis(conf)
	if err != nil {
		return nil, fmt.Errorf("cache: connect redis %s: %w", conf.Host, err)
	}
	return zcache.NewNode(rds, syncx.NewSingleFlight(), zcache.NewStat("nmai-feeds"), ErrNotFound), nil
}

// MemoryStore keeps msgpack-encoded entries in a process-local go-zero
// collection.Cache.
type MemoryStore struct {
	entries *collection.Cache
}

// NewMemoryStore creates an in-process store whose entries expire after
// defaultExpire unless a shorter expiry is given per entry.
func NewMemoryStore(defaultExpire time.Duration) (*MemoryStore, error) {
	if defaultExpire <= 0 {
		defaultExpire = time.Minute
	}
	c, err := collection.NewCache(defaultExpire, collection.WithName("nmai-feeds"))
	if err != nil {
		return nil, fmt.Errorf("cache: create memory store: %w", err)
	}
	return &MemoryStore{entries: c}, nil
}

// GetCtx decodes the entry stored under key into val.
func (m *MemoryStore) GetCtx(_ context.Context, key string, val any) error {
	raw, ok := m.entries.Get(key)
	if !ok {
		return ErrNotFound
	}
	data, ok := raw.([]byte)
	if !ok {
		return fmt.Errorf("cache: entry %s has type %T", key, raw)
	}
	if err := msgpack.Unmarshal(data, val); err != nil {
		return fmt.Errorf("cache: decode %s: %w", key, err)
	}
	return nil
}

// SetWithExpireCtx stores val under key for expire.
func (m *MemoryStore) SetWithExpireCtx(_ context.Context, key string, val any, expire time.Duration) error {
	data, err := msgpack.Marshal(val)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	m.entries.SetWithExpire(key, data, expire)
	return nil
}

// DelCtx removes keys.
func (m *MemoryStore) DelCtx(_ context.Context, keys ...string) error {
	for _, k := range keys {
		m.entries.Del(k)
	}
	return nil
}

// IsNotFound reports whether err is a cache miss.
func (m *MemoryStore) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
