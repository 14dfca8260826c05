package plan

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"smm-planner/internal/domain"
	"smm-planner/internal/infra/metrics"
)

const (
	// ProductsPerPlan ограничивает число продуктов, учитываемых при генерации.
	ProductsPerPlan = 20
	// PlansPageSize задаёт размер выдачи списка планов.
	PlansPageSize = 20
)

// Service генерирует и хранит недельные планы.
type Service struct {
	companies domain.CompanyRepo
	products  domain.ProductRepo
	plans     domain.PlanRepo
	notifier  domain.Notifier
	opts      Options
	log       zerolog.Logger
}

// NewService создаёт сервис планов. notifier может быть nil.
func NewService(companies domain.CompanyRepo, products domain.ProductRepo, plans domain.PlanRepo, notifier domain.Notifier, opts Options, logger zerolog.Logger) *Service {
	return &Service{companies: companies, products: products, plans: plans, notifier: notifier, opts: opts, log: logger}
}

// GenerateWeek строит план на неделю и сохраняет его вместе с постами.
func (s *Service) GenerateWeek(ctx context.Context, companyID int64, weekStart time.Time, platforms []domain.Platform) (domain.WeeklyPlan, error) {
	if companyID <= 0 {
		return domain.WeeklyPlan{}, fmt.Errorf("%w: company_id обязателен", domain.ErrInvalidInput)
	}
	if weekStart.IsZero() {
		return domain.WeeklyPlan{}, fmt.Errorf("%w: week_start обязателен", domain.ErrInvalidInput)
	}
	if len(platforms) == 0 {
		platforms = domain.DefaultPlatforms
	}
	start := time.Now()

	company, err := s.companies.GetCompany(ctx, companyID)
	if err != nil {
		return domain.WeeklyPlan{}, fmt.Errorf("получение компании: %w", err)
	}
	products, err := s.products.ListProducts(ctx, companyID, ProductsPerPlan)
	if err != nil {
		return domain.WeeklyPlan{}, fmt.Errorf("получение продуктов: %w", err)
	}

	plan := BuildWeeklyPlan(company, products, platforms, weekStart, s.opts)
	saved, err := s.plans.CreatePlan(ctx, plan)
	if err != nil {
		return domain.WeeklyPlan{}, fmt.Errorf("сохранение плана: %w", err)
	}
	metrics.PlanBuildSeconds.Observe(time.Since(start).Seconds())

	s.log.Info().Int64("company_id", companyID).Int64("plan_id", saved.ID).Int("posts", len(saved.Posts)).Msg("план сгенерирован")
	if s.notifier != nil {
		if err := s.notifier.PlanReady(ctx, company, saved); err != nil {
			s.log.Warn().Err(err).Int64("plan_id", saved.ID).Msg("не удалось отправить уведомление о плане")
		}
	}
	return saved, nil
}

// ListPlans возвращает последние планы компании, новые первыми.
func (s *Service) ListPlans(ctx context.Context, companyID int64) ([]domain.WeeklyPlan, error) {
	if companyID <= 0 {
		return nil, fmt.Errorf("%w: company_id обязателен", domain.ErrInvalidInput)
	}
	return s.plans.ListPlans(ctx, companyID, PlansPageSize)
}

// ListPosts возвращает посты плана по времени публикации.
func (s *Service) ListPosts(ctx context.Context, planID int64) ([]domain.Post, error) {
	if planID <= 0 {
		return nil, fmt.Errorf("%w: plan_id обязателен", domain.ErrInvalidInput)
	}
	return s.plans.ListPosts(ctx, planID)
}
