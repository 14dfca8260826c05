package competitors

import (
	"context"
	"fmt"
	"strings"

	"smm-planner/internal/domain"
)

// Analyzer строит отчёты по конкурентам.
type Analyzer interface {
	Analyze(ctx context.Context, competitors []domain.Competitor) []domain.CompetitorAnalysis
}

// Service регистрирует конкурентов и анализирует их сайты.
type Service struct {
	repo     domain.CompetitorRepo
	analyzer Analyzer
}

// NewService создаёт сервис конкурентов.
func NewService(repo domain.CompetitorRepo, analyzer Analyzer) *Service {
	return &Service{repo: repo, analyzer: analyzer}
}

// Add сохраняет конкурентов компании, пропуская записи без url.
func (s *Service) Add(ctx context.Context, companyID int64, items []domain.Competitor) (int, error) {
	if companyID <= 0 {
		return 0, fmt.Errorf("%w: company_id обязателен", domain.ErrInvalidInput)
	}
	valid := make([]domain.Competitor, 0, len(items))
	for _, c := range items {
		c.URL = strings.TrimSpace(c.URL)
		if c.URL == "" {
			continue
		}
		c.CompanyID = companyID
		valid = append(valid, c)
	}
	if len(valid) == 0 {
		return 0, fmt.Errorf("%w: нет конкурентов с url", domain.ErrInvalidInput)
	}
	n, err := s.repo.AddCompetitors(ctx, companyID, valid)
	if err != nil {
		return 0, fmt.Errorf("сохранение конкурентов: %w", err)
	}
	return n, nil
}

// ListWithAnalysis возвращает конкурентов компании и отчёты по ним в порядке хранения.
func (s *Service) ListWithAnalysis(ctx context.Context, companyID int64) ([]domain.Competitor, []domain.CompetitorAnalysis, error) {
	if companyID <= 0 {
		return nil, nil, fmt.Errorf("%w: company_id обязателен", domain.ErrInvalidInput)
	}
	items, err := s.repo.ListCompetitors(ctx, companyID)
	if err != nil {
		return nil, nil, fmt.Errorf("получение конкурентов: %w", err)
	}
	return items, s.analyzer.Analyze(ctx, items), nil
}
