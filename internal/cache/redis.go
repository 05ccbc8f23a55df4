// Package cache хранит эмбеддинги поисковых запросов в Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/sacola-ideias/internal/config"
)

const keyPrefix = "sacola:emb:"

// Cache кэш эмбеддингов.
type Cache struct {
	Db  *redis.Client
	ttl time.Duration
}

// InitServer подключается к Redis и проверяет соединение.
func InitServer(ctx context.Context, cfg config.Redis) (*Cache, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Cache{Db: db, ttl: cfg.EmbeddingCacheTTL}, nil
}

// Key строит ключ по модели и тексту запроса.
func Key(model, text string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// GetEmbedding возвращает сохраненный эмбеддинг. found=false, если ключа нет.
func (c *Cache) GetEmbedding(ctx context.Context, key string) ([]float32, bool, error) {
	const op = "cache.GetEmbedding"
	val, err := c.Db.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	var embedding []float32
	if err = json.Unmarshal(val, &embedding); err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return embedding, true, nil
}

// SetEmbedding сохраняет эмбеддинг на время EMBEDDING_CACHE_TTL.
func (c *Cache) SetEmbedding(ctx context.Context, key string, embedding []float32) error {
	const op = "cache.SetEmbedding"
	data, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = c.Db.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Invalidate удаляет ключ.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	return c.Db.Del(ctx, key).Err()
}

// Close закрывает соединение.
func (c *Cache) Close() error {
	return c.Db.Close()
}
