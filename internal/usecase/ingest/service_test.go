package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"smm-planner/internal/domain"
)

type stubRepo struct {
	company domain.Company
	saved   []domain.Product
	calls   int
}

func (s *stubRepo) CreateCompany(_ context.Context, c domain.Company) (domain.Company, error) {
	return c, nil
}
func (s *stubRepo) GetCompany(_ context.Context, id int64) (domain.Company, error) {
	if id != s.company.ID {
		return domain.Company{}, domain.ErrNotFound
	}
	return s.company, nil
}
func (s *stubRepo) LatestCompany(context.Context) (domain.Company, error)    { return s.company, nil }
func (s *stubRepo) ListCompanies(context.Context) ([]domain.Company, error) { return nil, nil }
func (s *stubRepo) SaveProducts(_ context.Context, _ int64, p []domain.Product) error {
	s.calls++
	s.saved = append(s.saved, p...)
	return nil
}
func (s *stubRepo) ListProducts(context.Context, int64, int) ([]domain.Product, error) {
	return s.saved, nil
}

type fakeCrawler struct {
	pages   []domain.CrawledPage
	baseURL string
	limit   int
}

func (c *fakeCrawler) Crawl(_ context.Context, baseURL string, limit int) []domain.CrawledPage {
	c.baseURL = baseURL
	c.limit = limit
	return c.pages
}

type fakeQueue struct {
	jobs []domain.IngestJob
}

func (q *fakeQueue) Enqueue(_ context.Context, job domain.IngestJob) error {
	q.jobs = append(q.jobs, job)
	return nil
}
func (q *fakeQueue) Receive(context.Context) (domain.IngestJob, domain.AckFunc, error) {
	return domain.IngestJob{}, nil, errors.New("not implemented")
}

func TestRunExtractsAndSaves(t *testing.T) {
	repo := &stubRepo{company: domain.Company{ID: 1, SiteURL: "https://acme.example"}}
	crawler := &fakeCrawler{pages: []domain.CrawledPage{
		{URL: "https://acme.example/a", HTML: "<h2>Fibre 100</h2><p>R499</p>"},
		{URL: "https://acme.example/a", HTML: "<h2>Fibre 100</h2><p>again</p>"},
		{URL: "https://acme.example/b", HTML: "<p>no heading</p>"},
	}}
	svc := NewService(repo, repo, crawler, nil, zerolog.Nop())

	stats, err := svc.Run(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if stats.Pages != 3 || stats.Products != 1 {
		t.Fatalf("неожиданная статистика: %+v", stats)
	}
	if crawler.baseURL != "https://acme.example" || crawler.limit != DefaultLimit {
		t.Fatalf("краулер вызван с %s/%d", crawler.baseURL, crawler.limit)
	}
	if len(repo.saved) != 1 || repo.saved[0].Price != "R499" {
		t.Fatalf("неожиданные продукты: %+v", repo.saved)
	}
}

func TestRunWithoutPages(t *testing.T) {
	repo := &stubRepo{company: domain.Company{ID: 1, SiteURL: "https://down.example"}}
	svc := NewService(repo, repo, &fakeCrawler{}, nil, zerolog.Nop())

	stats, err := svc.Run(context.Background(), 1, 5)
	if err != nil {
		t.Fatalf("пустой обход не должен быть ошибкой: %v", err)
	}
	if stats.Pages != 0 || stats.Products != 0 || repo.calls != 0 {
		t.Fatalf("ожидали пустой результат без записи, получили %+v calls=%d", stats, repo.calls)
	}
}

func TestRunUnknownCompany(t *testing.T) {
	repo := &stubRepo{company: domain.Company{ID: 1}}
	svc := NewService(repo, repo, &fakeCrawler{}, nil, zerolog.Nop())
	if _, err := svc.Run(context.Background(), 2, 5); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("ожидали ErrNotFound, получили %v", err)
	}
	if _, err := svc.Run(context.Background(), 0, 5); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("ожидали ErrInvalidInput, получили %v", err)
	}
}

func TestEnqueuePublishesJob(t *testing.T) {
	repo := &stubRepo{company: domain.Company{ID: 1}}
	queue := &fakeQueue{}
	svc := NewService(repo, repo, &fakeCrawler{}, queue, zerolog.Nop())

	job, err := svc.Enqueue(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if job.ID == "" || job.Limit != DefaultLimit || job.RequestedAt.IsZero() {
		t.Fatalf("неожиданная задача: %+v", job)
	}
	if len(queue.jobs) != 1 || queue.jobs[0].ID != job.ID {
		t.Fatalf("задача не попала в очередь")
	}
}

func TestConfiguredDefaultLimit(t *testing.T) {
	repo := &stubRepo{company: domain.Company{ID: 1, SiteURL: "https://acme.example"}}
	crawler := &fakeCrawler{}
	queue := &fakeQueue{}
	svc := NewService(repo, repo, crawler, queue, zerolog.Nop(), WithDefaultLimit(7))

	if _, err := svc.Run(context.Background(), 1, 0); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if crawler.limit != 7 {
		t.Fatalf("ожидали лимит из настроек 7, получили %d", crawler.limit)
	}
	if _, err := svc.Run(context.Background(), 1, 3); err != nil || crawler.limit != 3 {
		t.Fatalf("явный лимит должен иметь приоритет, получили %d (%v)", crawler.limit, err)
	}
	job, err := svc.Enqueue(context.Background(), 1, 0)
	if err != nil || job.Limit != 7 {
		t.Fatalf("ожидали лимит задачи 7, получили %+v (%v)", job, err)
	}

	svc = NewService(repo, repo, crawler, nil, zerolog.Nop(), WithDefaultLimit(0))
	if _, err := svc.Run(context.Background(), 1, 0); err != nil || crawler.limit != DefaultLimit {
		t.Fatalf("нулевой лимит в настройках не должен менять значение по умолчанию: %d", crawler.limit)
	}
}
