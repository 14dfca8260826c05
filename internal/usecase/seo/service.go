package seo

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"smm-planner/internal/domain"
)

// PagesPageSize задаёт размер выдачи списка проверенных страниц.
const PagesPageSize = 100

// Auditor проверяет одну страницу.
type Auditor interface {
	Audit(ctx context.Context, url string) domain.SeoAuditResult
}

// Service запускает аудит и хранит результаты по паре (компания, url).
type Service struct {
	auditor Auditor
	repo    domain.SeoRepo
	log     zerolog.Logger
	now     func() time.Time
}

// NewService создаёт SEO-сервис.
func NewService(auditor Auditor, repo domain.SeoRepo, logger zerolog.Logger) *Service {
	return &Service{auditor: auditor, repo: repo, log: logger, now: time.Now}
}

// Audit проверяет страницу и перезаписывает предыдущий результат для той же пары.
// companyID может быть 0: тогда результат не сохраняется.
func (s *Service) Audit(ctx context.Context, companyID int64, pageURL string) (domain.SeoAuditResult, error) {
	if err := validateURL(pageURL); err != nil {
		return domain.SeoAuditResult{}, err
	}
	result := s.auditor.Audit(ctx, pageURL)
	result.CompanyID = companyID
	if companyID <= 0 {
		return result, nil
	}
	if err := s.repo.UpsertSeoPage(ctx, result); err != nil {
		return domain.SeoAuditResult{}, fmt.Errorf("сохранение аудита: %w", err)
	}
	return result, nil
}

// ListPages возвращает проверенные страницы компании, свежие первыми.
func (s *Service) ListPages(ctx context.Context, companyID int64) ([]domain.SeoAuditResult, error) {
	if companyID <= 0 {
		return nil, fmt.Errorf("%w: company_id обязателен", domain.ErrInvalidInput)
	}
	return s.repo.ListSeoPages(ctx, companyID, PagesPageSize)
}

// RefreshStale повторно проверяет страницы, не проверявшиеся дольше olderThan.
// Возвращает число обновлённых страниц.
func (s *Service) RefreshStale(ctx context.Context, olderThan time.Duration, batch int) (int, error) {
	stale, err := s.repo.ListStaleSeoPages(ctx, s.now().Add(-olderThan), batch)
	if err != nil {
		return 0, fmt.Errorf("получение устаревших страниц: %w", err)
	}
	refreshed := 0
	for _, page := range stale {
		if ctx.Err() != nil {
			return refreshed, ctx.Err()
		}
		if _, err := s.Audit(ctx, page.CompanyID, page.URL); err != nil {
			s.log.Warn().Err(err).Str("url", page.URL).Msg("seo: повторный аудит не сохранён")
			continue
		}
		refreshed++
	}
	return refreshed, nil
}

func validateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: url обязателен", domain.ErrInvalidInput)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: некорректный url %q", domain.ErrInvalidInput, raw)
	}
	return nil
}
