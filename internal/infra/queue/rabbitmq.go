package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"smm-planner/internal/domain"
	"smm-planner/internal/infra/metrics"
)

// RabbitIngestQueue реализует очередь задач индексации поверх AMQP.
type RabbitIngestQueue struct {
	conn  *amqp.Connection
	queue string

	mu         sync.Mutex
	pubCh      *amqp.Channel
	consumeCh  *amqp.Channel
	deliveries <-chan amqp.Delivery
}

// NewRabbitIngestQueue подключается к брокеру и объявляет durable-очередь.
func NewRabbitIngestQueue(amqpURL, queue string) (*RabbitIngestQueue, error) {
	if amqpURL == "" {
		return nil, errors.New("amqp url is empty")
	}
	if queue == "" {
		return nil, errors.New("queue name is empty")
	}
	start := time.Now()
	conn, err := amqp.Dial(amqpURL)
	metrics.ObserveNetworkRequest("rabbitmq", "dial", queue, start, err)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	return &RabbitIngestQueue{conn: conn, queue: queue, pubCh: ch}, nil
}

// Enqueue публикует задачу в очередь.
func (q *RabbitIngestQueue) Enqueue(ctx context.Context, job domain.IngestJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	start := time.Now()
	err = q.pubCh.PublishWithContext(ctx, "", q.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    job.ID,
		Timestamp:    job.RequestedAt,
		Body:         payload,
	})
	metrics.ObserveNetworkRequest("rabbitmq", "publish", q.queue, start, err)
	if err != nil {
		return fmt.Errorf("publish job: %w", err)
	}
	return nil
}

// Receive блокирующе ждёт следующую задачу. Задача подтверждается через AckFunc:
// при неуспехе сообщение возвращается в очередь.
func (q *RabbitIngestQueue) Receive(ctx context.Context) (domain.IngestJob, domain.AckFunc, error) {
	deliveries, err := q.consume()
	if err != nil {
		return domain.IngestJob{}, nil, err
	}
	for {
		select {
		case <-ctx.Done():
			return domain.IngestJob{}, nil, ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				q.resetConsumer(deliveries)
				return domain.IngestJob{}, nil, errors.New("rabbitmq: канал доставки закрыт")
			}
			var job domain.IngestJob
			if err := json.Unmarshal(d.Body, &job); err != nil {
				// Битое сообщение отбрасывается без повторной доставки.
				_ = d.Nack(false, false)
				continue
			}
			ack := func(success bool) error {
				if success {
					return d.Ack(false)
				}
				return d.Nack(false, true)
			}
			return job, ack, nil
		}
	}
}

func (q *RabbitIngestQueue) consume() (<-chan amqp.Delivery, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.deliveries != nil {
		return q.deliveries, nil
	}
	if q.conn == nil || q.conn.IsClosed() {
		return nil, fmt.Errorf("rabbitmq: %w", domain.ErrQueueClosed)
	}
	ch, err := q.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open consume channel: %w", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		ch.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}
	deliveries, err := ch.Consume(q.queue, "", false, false, false, false, nil)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("consume: %w", err)
	}
	q.consumeCh = ch
	q.deliveries = deliveries
	return deliveries, nil
}

// resetConsumer сбрасывает закрытый канал доставки, следующий Receive откроет новый.
func (q *RabbitIngestQueue) resetConsumer(closed <-chan amqp.Delivery) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.deliveries != closed {
		return
	}
	if q.consumeCh != nil {
		_ = q.consumeCh.Close()
	}
	q.consumeCh = nil
	q.deliveries = nil
}

// Close закрывает каналы и соединение.
func (q *RabbitIngestQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.consumeCh != nil {
		_ = q.consumeCh.Close()
	}
	_ = q.pubCh.Close()
	return q.conn.Close()
}
