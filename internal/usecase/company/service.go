package company

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"smm-planner/internal/domain"
)

// Service управляет профилями компаний.
type Service struct {
	repo domain.CompanyRepo
}

// NewService создаёт сервис компаний.
func NewService(repo domain.CompanyRepo) *Service {
	return &Service{repo: repo}
}

// Create проверяет и сохраняет профиль. Название и адрес сайта обязательны.
func (s *Service) Create(ctx context.Context, c domain.Company) (domain.Company, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.SiteURL = strings.TrimSpace(c.SiteURL)
	if c.Name == "" || c.SiteURL == "" {
		return domain.Company{}, fmt.Errorf("%w: name и site_url обязательны", domain.ErrInvalidInput)
	}
	if u, err := url.Parse(c.SiteURL); err != nil || u.Host == "" {
		return domain.Company{}, fmt.Errorf("%w: некорректный site_url %q", domain.ErrInvalidInput, c.SiteURL)
	}
	c.Socials = compact(c.Socials)
	c.Colors = compact(c.Colors)
	saved, err := s.repo.CreateCompany(ctx, c)
	if err != nil {
		return domain.Company{}, fmt.Errorf("сохранение компании: %w", err)
	}
	return saved, nil
}

// Latest возвращает последнюю созданную компанию.
func (s *Service) Latest(ctx context.Context) (domain.Company, error) {
	return s.repo.LatestCompany(ctx)
}

// List возвращает все компании, новые первыми.
func (s *Service) List(ctx context.Context) ([]domain.Company, error) {
	companies, err := s.repo.ListCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("список компаний: %w", err)
	}
	return companies, nil
}

// Get возвращает компанию по идентификатору.
func (s *Service) Get(ctx context.Context, id int64) (domain.Company, error) {
	if id <= 0 {
		return domain.Company{}, fmt.Errorf("%w: id обязателен", domain.ErrInvalidInput)
	}
	return s.repo.GetCompany(ctx, id)
}

// compact убирает пустые значения из разреженных словарей.
func compact(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	return out
}
