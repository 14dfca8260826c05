package seo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"smm-planner/internal/domain"
)

type fakeAuditor struct {
	urls []string
}

func (a *fakeAuditor) Audit(_ context.Context, url string) domain.SeoAuditResult {
	a.urls = append(a.urls, url)
	return domain.SeoAuditResult{URL: url, Score: 88}
}

// memRepo хранит страницы по ключу (company, url), как уникальный индекс в БД.
type memRepo struct {
	pages     map[string]domain.SeoAuditResult
	stale     []domain.SeoAuditResult
	staleFrom time.Time
	upserts   int
}

func newMemRepo() *memRepo { return &memRepo{pages: map[string]domain.SeoAuditResult{}} }

func (r *memRepo) UpsertSeoPage(_ context.Context, res domain.SeoAuditResult) error {
	r.upserts++
	r.pages[key(res.CompanyID, res.URL)] = res
	return nil
}
func (r *memRepo) ListSeoPages(context.Context, int64, int) ([]domain.SeoAuditResult, error) {
	out := make([]domain.SeoAuditResult, 0, len(r.pages))
	for _, p := range r.pages {
		out = append(out, p)
	}
	return out, nil
}
func (r *memRepo) ListStaleSeoPages(_ context.Context, before time.Time, _ int) ([]domain.SeoAuditResult, error) {
	r.staleFrom = before
	return r.stale, nil
}

func key(companyID int64, url string) string {
	return fmt.Sprintf("%d|%s", companyID, url)
}

func TestAuditUpsertsByCompanyAndURL(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(&fakeAuditor{}, repo, zerolog.Nop())

	for i := 0; i < 2; i++ {
		res, err := svc.Audit(context.Background(), 5, "https://acme.example/")
		if err != nil {
			t.Fatalf("не ожидали ошибку: %v", err)
		}
		if res.CompanyID != 5 || res.Score != 88 {
			t.Fatalf("неожиданный результат: %+v", res)
		}
	}
	if repo.upserts != 2 || len(repo.pages) != 1 {
		t.Fatalf("повторный аудит должен перезаписать запись: upserts=%d pages=%d", repo.upserts, len(repo.pages))
	}
}

func TestAuditWithoutCompanyIsNotStored(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(&fakeAuditor{}, repo, zerolog.Nop())
	if _, err := svc.Audit(context.Background(), 0, "https://acme.example/"); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if repo.upserts != 0 {
		t.Fatalf("без company_id результат не сохраняется")
	}
}

func TestAuditRejectsBadURL(t *testing.T) {
	auditor := &fakeAuditor{}
	svc := NewService(auditor, newMemRepo(), zerolog.Nop())
	for _, raw := range []string{"", "acme.example", "ftp://acme.example/"} {
		if _, err := svc.Audit(context.Background(), 1, raw); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("ожидали ErrInvalidInput для %q, получили %v", raw, err)
		}
	}
	if len(auditor.urls) != 0 {
		t.Fatalf("аудитор не должен вызываться для некорректного url")
	}
}

func TestRefreshStale(t *testing.T) {
	repo := newMemRepo()
	repo.stale = []domain.SeoAuditResult{
		{CompanyID: 1, URL: "https://a.example/"},
		{CompanyID: 2, URL: "https://b.example/"},
	}
	auditor := &fakeAuditor{}
	svc := NewService(auditor, repo, zerolog.Nop())
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	n, err := svc.RefreshStale(context.Background(), 24*time.Hour, 50)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if n != 2 || len(auditor.urls) != 2 {
		t.Fatalf("ожидали 2 обновлённые страницы, получили %d", n)
	}
	if !repo.staleFrom.Equal(now.Add(-24 * time.Hour)) {
		t.Fatalf("неверная граница устаревания: %v", repo.staleFrom)
	}
}
