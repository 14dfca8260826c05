package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"smm-planner/internal/domain"
	"smm-planner/internal/infra/metrics"
)

// MaxDeliveryAttempts ограничивает повторы одной задачи.
const MaxDeliveryAttempts = 5

// Runner выполняет индексацию.
type Runner interface {
	Run(ctx context.Context, companyID int64, limit int) (domain.IngestStats, error)
}

// Worker читает задачи из очереди и запускает индексацию.
type Worker struct {
	queue    domain.IngestQueue
	runner   Runner
	log      zerolog.Logger
	attempts map[string]int
	backoff  time.Duration
}

// NewWorker создаёт воркер очереди индексации.
func NewWorker(queue domain.IngestQueue, runner Runner, logger zerolog.Logger) *Worker {
	return &Worker{queue: queue, runner: runner, log: logger, attempts: map[string]int{}, backoff: time.Second}
}

// Run обрабатывает задачи до отмены контекста. Потеря очереди возвращается как ошибка.
func (w *Worker) Run(ctx context.Context) error {
	for {
		job, ack, err := w.queue.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, domain.ErrQueueClosed) {
				return err
			}
			w.log.Error().Err(err).Msg("ingestor: ошибка чтения очереди")
			w.sleep(ctx)
			continue
		}
		w.handle(ctx, job, ack)
	}
}

func (w *Worker) handle(ctx context.Context, job domain.IngestJob, ack domain.AckFunc) {
	jobLog := w.log.With().Str("job_id", job.ID).Int64("company_id", job.CompanyID).Logger()

	stats, err := w.runner.Run(ctx, job.CompanyID, job.Limit)
	if err == nil {
		delete(w.attempts, job.ID)
		metrics.ObserveIngestJob("completed")
		jobLog.Info().Int("pages", stats.Pages).Int("products", stats.Products).Msg("ingestor: задача выполнена")
		w.ack(jobLog, ack, true)
		return
	}

	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) {
		delete(w.attempts, job.ID)
		metrics.ObserveIngestJob("rejected")
		jobLog.Warn().Err(err).Msg("ingestor: задача отклонена")
		w.ack(jobLog, ack, true)
		return
	}

	w.attempts[job.ID]++
	attempt := w.attempts[job.ID]
	if attempt >= MaxDeliveryAttempts {
		delete(w.attempts, job.ID)
		metrics.ObserveIngestJob("failed")
		jobLog.Error().Err(err).Int("attempt", attempt).Msg("ingestor: достигнут предел попыток")
		w.ack(jobLog, ack, true)
		return
	}
	metrics.ObserveIngestJob("retry")
	jobLog.Warn().Err(err).Int("attempt", attempt).Msg("ingestor: задача завершилась ошибкой, повторим позже")
	w.ack(jobLog, ack, false)
	w.sleep(ctx)
}

func (w *Worker) ack(log zerolog.Logger, ack domain.AckFunc, success bool) {
	if err := ack(success); err != nil {
		log.Error().Err(err).Bool("success", success).Msg("ingestor: не удалось подтвердить задачу")
	}
}

func (w *Worker) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(w.backoff):
	}
}
