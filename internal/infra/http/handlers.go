package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"smm-planner/internal/domain"
)

// CompanyService управляет профилями компаний.
type CompanyService interface {
	Create(ctx context.Context, c domain.Company) (domain.Company, error)
	Latest(ctx context.Context) (domain.Company, error)
	List(ctx context.Context) ([]domain.Company, error)
}

// IngestService запускает индексацию сайта.
type IngestService interface {
	Run(ctx context.Context, companyID int64, limit int) (domain.IngestStats, error)
	Enqueue(ctx context.Context, companyID int64, limit int) (domain.IngestJob, error)
}

// PlanService генерирует и отдаёт планы.
type PlanService interface {
	GenerateWeek(ctx context.Context, companyID int64, weekStart time.Time, platforms []domain.Platform) (domain.WeeklyPlan, error)
	ListPlans(ctx context.Context, companyID int64) ([]domain.WeeklyPlan, error)
	ListPosts(ctx context.Context, planID int64) ([]domain.Post, error)
}

// CompetitorService регистрирует и анализирует конкурентов.
type CompetitorService interface {
	Add(ctx context.Context, companyID int64, items []domain.Competitor) (int, error)
	ListWithAnalysis(ctx context.Context, companyID int64) ([]domain.Competitor, []domain.CompetitorAnalysis, error)
}

// SeoService проверяет страницы.
type SeoService interface {
	Audit(ctx context.Context, companyID int64, url string) (domain.SeoAuditResult, error)
	ListPages(ctx context.Context, companyID int64) ([]domain.SeoAuditResult, error)
}

// ExportService выгружает планы.
type ExportService interface {
	ExportPlan(ctx context.Context, planID int64) (string, error)
}

// API содержит обработчики /api.
type API struct {
	Companies   CompanyService
	Ingest      IngestService
	Plans       PlanService
	Competitors CompetitorService
	Seo         SeoService
	Export      ExportService
	Log         zerolog.Logger
}

// Routes регистрирует маршруты API на роутере.
func (a *API) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(CORS)
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		r.Post("/company", a.createCompany)
		r.Get("/company", a.latestCompany)
		r.Get("/companies", a.listCompanies)
		r.Post("/ingest", a.ingest)
		r.Post("/plan/week", a.generatePlan)
		r.Get("/plans", a.listPlans)
		r.Get("/posts", a.listPosts)
		r.Post("/competitors", a.addCompetitors)
		r.Get("/competitors", a.listCompetitors)
		r.Get("/seo/audit", a.auditPage)
		r.Get("/seo/pages", a.listSeoPages)
		r.Post("/export/zip", a.exportPlan)
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusNotFound, "not found")
		})
	})
}

// fail пишет ответ с ошибкой; внутренние ошибки логируются и не раскрываются клиенту.
func (a *API) fail(w http.ResponseWriter, op string, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		a.Log.Error().Err(err).Str("op", op).Msg("api: ошибка обработки запроса")
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func decode(r *http.Request, dst any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: некорректное тело запроса", domain.ErrInvalidInput)
	}
	return nil
}

func queryID(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s обязателен", domain.ErrInvalidInput, name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: некорректный %s", domain.ErrInvalidInput, name)
	}
	return id, nil
}

type companyRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Tone        string            `json:"tone"`
	SiteURL     string            `json:"site_url"`
	LogoURL     string            `json:"logo_url"`
	Socials     map[string]string `json:"socials"`
	Colors      map[string]string `json:"colors"`
}

func (a *API) createCompany(w http.ResponseWriter, r *http.Request) {
	var req companyRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, "company_create", err)
		return
	}
	saved, err := a.Companies.Create(r.Context(), domain.Company{
		Name:        req.Name,
		Description: req.Description,
		Tone:        req.Tone,
		SiteURL:     req.SiteURL,
		LogoURL:     req.LogoURL,
		Socials:     req.Socials,
		Colors:      req.Colors,
	})
	if err != nil {
		a.fail(w, "company_create", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": saved.ID})
}

func (a *API) latestCompany(w http.ResponseWriter, r *http.Request) {
	company, err := a.Companies.Latest(r.Context())
	if errors.Is(err, domain.ErrNotFound) {
		writeJSON(w, http.StatusOK, map[string]any{"company": nil})
		return
	}
	if err != nil {
		a.fail(w, "company_latest", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"company": company})
}

func (a *API) listCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := a.Companies.List(r.Context())
	if err != nil {
		a.fail(w, "company_list", err)
		return
	}
	if companies == nil {
		companies = []domain.Company{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"companies": companies})
}

type ingestRequest struct {
	CompanyID int64 `json:"company_id"`
	Limit     int   `json:"limit"`
}

func (a *API) ingest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, "ingest", err)
		return
	}
	if r.URL.Query().Get("async") == "1" {
		job, err := a.Ingest.Enqueue(r.Context(), req.CompanyID, req.Limit)
		if err != nil {
			a.fail(w, "ingest_enqueue", err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]any{"job_id": job.ID})
		return
	}
	stats, err := a.Ingest.Run(r.Context(), req.CompanyID, req.Limit)
	if err != nil {
		a.fail(w, "ingest", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type planRequest struct {
	CompanyID int64             `json:"company_id"`
	WeekStart string            `json:"week_start"`
	Platforms []domain.Platform `json:"platforms"`
}

// parseWeekStart принимает дату YYYY-MM-DD или RFC3339.
func parseWeekStart(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: некорректный week_start %q", domain.ErrInvalidInput, raw)
	}
	return t, nil
}

func (a *API) generatePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, "plan_week", err)
		return
	}
	weekStart, err := parseWeekStart(req.WeekStart)
	if err != nil {
		a.fail(w, "plan_week", err)
		return
	}
	plan, err := a.Plans.GenerateWeek(r.Context(), req.CompanyID, weekStart, req.Platforms)
	if err != nil {
		a.fail(w, "plan_week", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"plan_id": plan.ID, "count": len(plan.Posts)})
}

func (a *API) listPlans(w http.ResponseWriter, r *http.Request) {
	companyID, err := queryID(r, "company_id")
	if err != nil {
		a.fail(w, "plans_list", err)
		return
	}
	plans, err := a.Plans.ListPlans(r.Context(), companyID)
	if err != nil {
		a.fail(w, "plans_list", err)
		return
	}
	if plans == nil {
		plans = []domain.WeeklyPlan{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"plans": plans})
}

func (a *API) listPosts(w http.ResponseWriter, r *http.Request) {
	planID, err := queryID(r, "plan_id")
	if err != nil {
		a.fail(w, "posts_list", err)
		return
	}
	posts, err := a.Plans.ListPosts(r.Context(), planID)
	if err != nil {
		a.fail(w, "posts_list", err)
		return
	}
	if posts == nil {
		posts = []domain.Post{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

type competitorsRequest struct {
	CompanyID   int64               `json:"company_id"`
	Competitors []domain.Competitor `json:"competitors"`
}

func (a *API) addCompetitors(w http.ResponseWriter, r *http.Request) {
	var req competitorsRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, "competitors_add", err)
		return
	}
	added, err := a.Competitors.Add(r.Context(), req.CompanyID, req.Competitors)
	if err != nil {
		a.fail(w, "competitors_add", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"added": added})
}

func (a *API) listCompetitors(w http.ResponseWriter, r *http.Request) {
	companyID, err := queryID(r, "company_id")
	if err != nil {
		a.fail(w, "competitors_list", err)
		return
	}
	items, analysis, err := a.Competitors.ListWithAnalysis(r.Context(), companyID)
	if err != nil {
		a.fail(w, "competitors_list", err)
		return
	}
	if items == nil {
		items = []domain.Competitor{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"competitors": items, "analysis": analysis})
}

func (a *API) auditPage(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	companyID, err := queryID(r, "company_id")
	if err != nil || target == "" {
		writeError(w, http.StatusBadRequest, "url and company_id required")
		return
	}
	result, err := a.Seo.Audit(r.Context(), companyID, target)
	if err != nil {
		a.fail(w, "seo_audit", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) listSeoPages(w http.ResponseWriter, r *http.Request) {
	companyID, err := queryID(r, "company_id")
	if err != nil {
		a.fail(w, "seo_pages", err)
		return
	}
	pages, err := a.Seo.ListPages(r.Context(), companyID)
	if err != nil {
		a.fail(w, "seo_pages", err)
		return
	}
	if pages == nil {
		pages = []domain.SeoAuditResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"pages": pages})
}

type exportRequest struct {
	PlanID int64 `json:"plan_id"`
}

func (a *API) exportPlan(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, "export", err)
		return
	}
	key, err := a.Export.ExportPlan(r.Context(), req.PlanID)
	if err != nil {
		a.fail(w, "export", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"key": key})
}
