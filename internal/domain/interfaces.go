package domain

import (
	"context"
	"errors"
	"net/http"
	"time"
)

var (
	// ErrNotFound возвращается репозиториями, если запись отсутствует.
	ErrNotFound = errors.New("запись не найдена")
	// ErrCacheMiss возвращается кэшем для отсутствующего или истёкшего ключа.
	ErrCacheMiss = errors.New("ключ отсутствует в кэше")
	// ErrInvalidInput сигнализирует об ошибке валидации входных данных.
	ErrInvalidInput = errors.New("некорректные входные данные")
	// ErrQueueClosed возвращается очередью, если соединение с брокером потеряно окончательно.
	ErrQueueClosed = errors.New("очередь закрыта")
)

// FetchResponse описывает ответ HTTP-запроса.
type FetchResponse struct {
	Status int
	Body   string
}

// OK сообщает, что статус ответа успешный (2xx).
func (r FetchResponse) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Fetcher выполняет GET-запросы. Других сетевых вызовов у ядра нет.
type Fetcher interface {
	Get(ctx context.Context, url string, header http.Header) (FetchResponse, error)
}

// Cache используется для простых TTL-хранилищ.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// BlobStore сохраняет бинарные объекты (экспорт CSV).
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// Notifier отправляет служебные уведомления.
type Notifier interface {
	PlanReady(ctx context.Context, company Company, plan WeeklyPlan) error
}

// CompanyRepo управляет профилями компаний.
type CompanyRepo interface {
	CreateCompany(ctx context.Context, company Company) (Company, error)
	GetCompany(ctx context.Context, id int64) (Company, error)
	LatestCompany(ctx context.Context) (Company, error)
	ListCompanies(ctx context.Context) ([]Company, error)
}

// ProductRepo сохраняет извлечённые продукты.
type ProductRepo interface {
	SaveProducts(ctx context.Context, companyID int64, products []Product) error
	ListProducts(ctx context.Context, companyID int64, limit int) ([]Product, error)
}

// PlanRepo сохраняет планы и посты.
type PlanRepo interface {
	// CreatePlan сохраняет план со всеми постами в одной транзакции.
	CreatePlan(ctx context.Context, plan WeeklyPlan) (WeeklyPlan, error)
	ListPlans(ctx context.Context, companyID int64, limit int) ([]WeeklyPlan, error)
	ListPosts(ctx context.Context, planID int64) ([]Post, error)
}

// CompetitorRepo управляет конкурентами.
type CompetitorRepo interface {
	AddCompetitors(ctx context.Context, companyID int64, competitors []Competitor) (int, error)
	ListCompetitors(ctx context.Context, companyID int64) ([]Competitor, error)
}

// SeoRepo хранит результаты аудита, уникальные по (company, url).
type SeoRepo interface {
	UpsertSeoPage(ctx context.Context, result SeoAuditResult) error
	ListSeoPages(ctx context.Context, companyID int64, limit int) ([]SeoAuditResult, error)
	ListStaleSeoPages(ctx context.Context, checkedBefore time.Time, limit int) ([]SeoAuditResult, error)
}
