package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"smm-planner/internal/domain"
)

// KeyPrefix отделяет ключи кэша краулера от остальных данных Redis.
const KeyPrefix = "smm:"

// Open выбирает реализацию кэша: Redis, если задан адрес, иначе bigcache в памяти.
// Возвращённая функция освобождает ресурсы.
func Open(ctx context.Context, redisAddr string, ttl time.Duration, logger zerolog.Logger) (domain.Cache, func(), error) {
	if redisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: redisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		logger.Info().Str("addr", redisAddr).Msg("кэш: redis")
		return NewRedis(client, KeyPrefix), func() { _ = client.Close() }, nil
	}
	mem, err := NewMemory(ctx, ttl)
	if err != nil {
		return nil, nil, err
	}
	logger.Info().Dur("ttl", ttl).Msg("кэш: в памяти процесса")
	return mem, func() { _ = mem.Close() }, nil
}
