/*
 * @module service/settings/cache
 * @description 设置缓存层，提供Redis与进程内两种缓存实现
 * @architecture 适配器模式 - 统一缓存接口
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 读取 -> 缓存命中/回源 -> 写入时失效并回填
 * @rules 写通缓存：成功写库后原子地失效并回填缓存
 * @dependencies github.com/go-redis/redis/v8
 * @refs service/settings/settings_service.go
 */

package settings

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache 设置缓存接口
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

const cacheKeyPrefix = "productdb:settings:"

// 缓存过期时间，防止多实例场景下的长期不一致
const cacheExpiry = 5 * time.Minute

// RedisCache Redis缓存实现
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache 创建Redis缓存，从环境变量读取连接配置
func NewRedisCache() (*RedisCache, error) {
	host := getEnvWithDefault("REDIS_HOST", "localhost")
	port := getEnvWithDefault("REDIS_PORT", "6379")
	password := os.Getenv("REDIS_PASSWORD")
	db := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		fmt.Sscanf(dbStr, "%d", &db)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", host, port),
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis连接失败: %w", err)
	}

	slog.Info("设置缓存初始化成功", "redis_host", host, "redis_port", port)
	return &RedisCache{client: client}, nil
}

// Get 读取缓存
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, cacheKeyPrefix+key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("读取缓存失败: %w", err)
	}
	return value, true, nil
}

// Set 写入缓存
func (c *RedisCache) Set(ctx context.Context, key, value string) error {
	return c.client.Set(ctx, cacheKeyPrefix+key, value, cacheExpiry).Err()
}

// Delete 删除缓存
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, cacheKeyPrefix+key).Err()
}

// Close 关闭Redis客户端
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// MemoryCache 进程内缓存实现，用于未配置Redis的部署与测试
type MemoryCache struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryCache 创建进程内缓存
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{values: make(map[string]string)}
}

// Get 读取缓存
func (c *MemoryCache) Get(ctx context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.values[key]
	return value, ok, nil
}

// Set 写入缓存
func (c *MemoryCache) Set(ctx context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

// Delete 删除缓存
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	return nil
}

// getEnvWithDefault 获取环境变量，如果不存在则返回默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
