package domain

import (
	"context"
	"time"
)

// IngestJob содержит информацию о задаче индексации сайта компании.
type IngestJob struct {
	ID          string    `json:"job_id,omitempty"`
	CompanyID   int64     `json:"company_id"`
	Limit       int       `json:"limit"`
	RequestedAt time.Time `json:"requested_at"`
}

// IngestQueue описывает очередь задач индексации.
type IngestQueue interface {
	Enqueue(ctx context.Context, job IngestJob) error
	Receive(ctx context.Context) (IngestJob, AckFunc, error)
}

// AckFunc подтверждает успешную обработку или запрашивает повтор доставки задачи.
type AckFunc func(success bool) error
