package queue

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"smm-planner/internal/domain"
)

// ErrNotConfigured возвращается, если не задан ни RabbitMQ, ни Redis.
var ErrNotConfigured = errors.New("очередь не настроена: нужен RABBITMQ_URL или REDIS_ADDR")

// Open выбирает брокер: RabbitMQ, если задан amqpURL, иначе список в Redis.
func Open(amqpURL, redisAddr, name string) (domain.IngestQueue, func(), error) {
	switch {
	case amqpURL != "":
		q, err := NewRabbitIngestQueue(amqpURL, name)
		if err != nil {
			return nil, nil, fmt.Errorf("rabbitmq: %w", err)
		}
		return q, func() { _ = q.Close() }, nil
	case redisAddr != "":
		client := redis.NewClient(&redis.Options{Addr: redisAddr})
		return NewRedisIngestQueue(client, name), func() { _ = client.Close() }, nil
	default:
		return nil, nil, ErrNotConfigured
	}
}
