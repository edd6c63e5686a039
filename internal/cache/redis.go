// Package cache реализует кеш и месячные счётчики использования фич на Redis.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/girolab/backend/internal/config"
)

// Cache обёртка над клиентом Redis.
type Cache struct {
	Db *redis.Client
}

// InitServer создаёт клиент Redis по настройкам и проверяет соединение.
func InitServer(ctx context.Context, cfg config.RedisConnection) (*Cache, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Cache{Db: db}, nil
}

// Get пытается получить значение из кеша по ключу.
func (c *Cache) Get(key string, result any) (bool, error) {
	const op = "cache.Get"
	val, err := c.Db.Get(context.Background(), key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	err = json.Unmarshal([]byte(val), result)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// Set сохраняет значение в кеш с временем жизни.
func (c *Cache) Set(key string, value any, expiration time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Db.Set(context.Background(), key, jsonData, expiration).Err()
}

// Invalidate удаляет значение из кеша по ключу.
func (c *Cache) Invalidate(key string) error {
	return c.Db.Del(context.Background(), key).Err()
}

// GetUsage возвращает месячный счётчик использования фичи пользователем.
// Отсутствие ключа означает нулевое использование.
func (c *Cache) GetUsage(ctx context.Context, userUID, feature string, month time.Time) (int, error) {
	const op = "cache.GetUsage"
	val, err := c.Db.Get(ctx, usageKey(userUID, feature, month)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return val, nil
}

// IncrUsage увеличивает месячный счётчик использования фичи и возвращает
// новое значение. Ключ живёт до конца календарного месяца плюс сутки запаса.
func (c *Cache) IncrUsage(ctx context.Context, userUID, feature string, month time.Time) (int, error) {
	const op = "cache.IncrUsage"
	key := usageKey(userUID, feature, month)
	val, err := c.Db.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if val == 1 {
		endOfMonth := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location()).
			AddDate(0, 1, 1)
		if err := c.Db.ExpireAt(ctx, key, endOfMonth).Err(); err != nil {
			return int(val), fmt.Errorf("%s: %w", op, err)
		}
	}
	return int(val), nil
}

func usageKey(userUID, feature string, month time.Time) string {
	return fmt.Sprintf("usage:%s:%s:%s", userUID, feature, month.Format("2006-01"))
}
