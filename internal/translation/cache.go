package translation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Cache 翻译结果缓存抽象，key为原文全文
// 实现必须并发安全；同key并发写入结果相同，竞争无害
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
}

// memoryCache 进程内缓存，无淘汰策略（接受无界增长）
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryCache 创建进程内缓存
func NewMemoryCache() Cache {
	return &memoryCache{
		entries: make(map[string]string),
	}
}

func (c *memoryCache) Get(ctx context.Context, key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.entries[key]
	return value, ok
}

func (c *memoryCache) Set(ctx context.Context, key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

const redisCachePrefix = "translation:"

// redisCache Redis缓存，多实例部署时共享译文
// 原文哈希后作为key，不设TTL
type redisCache struct {
	client *redis.Client
}

// NewRedisCache 创建Redis翻译缓存
func NewRedisCache(client *redis.Client) Cache {
	return &redisCache{client: client}
}

func (c *redisCache) Get(ctx context.Context, key string) (string, bool) {
	value, err := c.client.Get(ctx, redisCacheKey(key)).Result()
	if err != nil {
		return "", false
	}
	return value, true
}

func (c *redisCache) Set(ctx context.Context, key, value string) {
	c.client.Set(ctx, redisCacheKey(key), value, 0)
}

func redisCacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return redisCachePrefix + hex.EncodeToString(sum[:])
}
