package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"smm-planner/internal/domain"
	"smm-planner/internal/infra/metrics"
)

// RedisIngestQueue реализует очередь задач на базе Redis lists.
type RedisIngestQueue struct {
	client *redis.Client
	key    string
}

// NewRedisIngestQueue создаёт очередь по указанному ключу.
func NewRedisIngestQueue(client *redis.Client, key string) *RedisIngestQueue {
	return &RedisIngestQueue{client: client, key: key}
}

// Enqueue публикует задачу в очередь.
func (q *RedisIngestQueue) Enqueue(ctx context.Context, job domain.IngestJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	start := time.Now()
	err = q.client.LPush(ctx, q.key, payload).Err()
	metrics.ObserveNetworkRequest("redis", "lpush", q.key, start, err)
	if err != nil {
		return fmt.Errorf("push job: %w", err)
	}
	return nil
}

// Receive блокирующе читает задачу из очереди. Redis lists не умеют
// подтверждений, поэтому неуспешная задача публикуется заново.
func (q *RedisIngestQueue) Receive(ctx context.Context) (domain.IngestJob, domain.AckFunc, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.IngestJob{}, nil, err
		}

		res, err := q.client.BRPop(ctx, time.Second, q.key).Result()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				if ctx.Err() != nil {
					return domain.IngestJob{}, nil, ctx.Err()
				}
				continue
			}
			if errors.Is(err, redis.Nil) {
				continue
			}
			if errors.Is(err, redis.ErrClosed) {
				return domain.IngestJob{}, nil, fmt.Errorf("redis queue: %w", domain.ErrQueueClosed)
			}
			return domain.IngestJob{}, nil, err
		}
		if len(res) != 2 {
			return domain.IngestJob{}, nil, errors.New("redis queue: unexpected response")
		}
		var job domain.IngestJob
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			return domain.IngestJob{}, nil, fmt.Errorf("decode job: %w", err)
		}
		ack := func(success bool) error {
			if success {
				return nil
			}
			return q.Enqueue(context.Background(), job)
		}
		return job, ack, nil
	}
}
