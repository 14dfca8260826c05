package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"smm-planner/internal/adapters/extractor"
	"smm-planner/internal/domain"
	"smm-planner/internal/infra/metrics"
)

// DefaultLimit используется, если клиент не передал лимит страниц.
const DefaultLimit = 20

// Crawler обходит сайт компании.
type Crawler interface {
	Crawl(ctx context.Context, baseURL string, limit int) []domain.CrawledPage
}

// Service связывает краулер, экстрактор и хранилище продуктов.
type Service struct {
	companies domain.CompanyRepo
	products  domain.ProductRepo
	crawler   Crawler
	queue     domain.IngestQueue
	log       zerolog.Logger
	now       func() time.Time
	limit     int
}

// Option настраивает сервис индексации.
type Option func(*Service)

// WithDefaultLimit задаёт лимит страниц для запросов без явного лимита.
func WithDefaultLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.limit = limit
		}
	}
}

// NewService создаёт сервис индексации. queue нужна только для Enqueue.
func NewService(companies domain.CompanyRepo, products domain.ProductRepo, crawler Crawler, queue domain.IngestQueue, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{companies: companies, products: products, crawler: crawler, queue: queue, log: logger, now: time.Now, limit: DefaultLimit}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run обходит сайт компании, извлекает продукты и сохраняет их.
// Дубли убираются только в пределах одного прогона.
func (s *Service) Run(ctx context.Context, companyID int64, limit int) (domain.IngestStats, error) {
	if companyID <= 0 {
		return domain.IngestStats{}, fmt.Errorf("%w: company_id обязателен", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = s.limit
	}
	company, err := s.companies.GetCompany(ctx, companyID)
	if err != nil {
		return domain.IngestStats{}, fmt.Errorf("получение компании: %w", err)
	}

	pages := s.crawler.Crawl(ctx, company.SiteURL, limit)
	products := extractor.Extract(pages)
	if len(products) > 0 {
		if err := s.products.SaveProducts(ctx, companyID, products); err != nil {
			return domain.IngestStats{}, fmt.Errorf("сохранение продуктов: %w", err)
		}
	}
	metrics.ProductsExtractedTotal.Add(float64(len(products)))

	stats := domain.IngestStats{Pages: len(pages), Products: len(products)}
	s.log.Info().Int64("company_id", companyID).Int("pages", stats.Pages).Int("products", stats.Products).Msg("индексация завершена")
	return stats, nil
}

// Enqueue ставит задачу индексации в очередь для воркера.
func (s *Service) Enqueue(ctx context.Context, companyID int64, limit int) (domain.IngestJob, error) {
	if companyID <= 0 {
		return domain.IngestJob{}, fmt.Errorf("%w: company_id обязателен", domain.ErrInvalidInput)
	}
	if s.queue == nil {
		return domain.IngestJob{}, fmt.Errorf("очередь индексации не настроена")
	}
	if limit <= 0 {
		limit = s.limit
	}
	if _, err := s.companies.GetCompany(ctx, companyID); err != nil {
		return domain.IngestJob{}, fmt.Errorf("получение компании: %w", err)
	}
	job := domain.IngestJob{
		ID:          uuid.NewString(),
		CompanyID:   companyID,
		Limit:       limit,
		RequestedAt: s.now().UTC(),
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		return domain.IngestJob{}, fmt.Errorf("публикация задачи: %w", err)
	}
	return job, nil
}
