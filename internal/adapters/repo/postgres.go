package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"smm-planner/internal/domain"
	"smm-planner/internal/infra/metrics"
)

// Postgres реализует репозитории на основе pgxpool.
type Postgres struct {
	pool *pgxpool.Pool
}

var (
	_ domain.CompanyRepo    = (*Postgres)(nil)
	_ domain.ProductRepo    = (*Postgres)(nil)
	_ domain.PlanRepo       = (*Postgres)(nil)
	_ domain.CompetitorRepo = (*Postgres)(nil)
	_ domain.SeoRepo        = (*Postgres)(nil)
)

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) connCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

const companyColumns = `id, name, description, tone, site_url, logo_url, socials, colors, created_at`

func scanCompany(row pgx.Row) (domain.Company, error) {
	var (
		c              domain.Company
		socials, color []byte
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Tone, &c.SiteURL, &c.LogoURL, &socials, &color, &c.CreatedAt); err != nil {
		return domain.Company{}, err
	}
	if err := unmarshalMap(socials, &c.Socials); err != nil {
		return domain.Company{}, fmt.Errorf("socials: %w", err)
	}
	if err := unmarshalMap(color, &c.Colors); err != nil {
		return domain.Company{}, fmt.Errorf("colors: %w", err)
	}
	return c, nil
}

func unmarshalMap(raw []byte, dst *map[string]string) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func marshalMap(m map[string]string) ([]byte, error) {
	if m == nil {
		m = map[string]string{}
	}
	return json.Marshal(m)
}

// CreateCompany реализует domain.CompanyRepo.
func (p *Postgres) CreateCompany(ctx context.Context, c domain.Company) (domain.Company, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	socials, err := marshalMap(c.Socials)
	if err != nil {
		return domain.Company{}, err
	}
	colors, err := marshalMap(c.Colors)
	if err != nil {
		return domain.Company{}, err
	}
	start := time.Now()
	saved, err := scanCompany(p.pool.QueryRow(ctx, `
INSERT INTO company (name, description, tone, site_url, logo_url, socials, colors)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING `+companyColumns,
		c.Name, c.Description, c.Tone, c.SiteURL, c.LogoURL, socials, colors))
	metrics.ObserveNetworkRequest("postgres", "company_insert", "company", start, err)
	return saved, err
}

// GetCompany реализует domain.CompanyRepo.
func (p *Postgres) GetCompany(ctx context.Context, id int64) (domain.Company, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	c, err := scanCompany(p.pool.QueryRow(ctx, `SELECT `+companyColumns+` FROM company WHERE id=$1`, id))
	metrics.ObserveNetworkRequest("postgres", "company_get", "company", start, err)
	return c, notFound(err)
}

// LatestCompany возвращает последнюю созданную компанию.
func (p *Postgres) LatestCompany(ctx context.Context) (domain.Company, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	c, err := scanCompany(p.pool.QueryRow(ctx, `SELECT `+companyColumns+` FROM company ORDER BY id DESC LIMIT 1`))
	metrics.ObserveNetworkRequest("postgres", "company_latest", "company", start, err)
	return c, notFound(err)
}

// ListCompanies реализует domain.CompanyRepo.
func (p *Postgres) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `SELECT `+companyColumns+` FROM company ORDER BY id DESC`)
	metrics.ObserveNetworkRequest("postgres", "company_list", "company", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SaveProducts сохраняет продукты батчем.
func (p *Postgres) SaveProducts(ctx context.Context, companyID int64, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	batch := &pgx.Batch{}
	for _, pr := range products {
		batch.Queue(`
INSERT INTO product (company_id, title, url, summary, price, images, tags)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, companyID, pr.Title, pr.URL, pr.Summary, pr.Price, nonNil(pr.Images), nonNil(pr.Tags))
	}
	start := time.Now()
	br := p.pool.SendBatch(ctx, batch)
	metrics.ObserveNetworkRequest("postgres", "product_send_batch", "product", start, nil)
	defer br.Close()
	for range products {
		start = time.Now()
		_, err := br.Exec()
		metrics.ObserveNetworkRequest("postgres", "product_batch_exec", "product", start, err)
		if err != nil {
			return err
		}
	}
	return nil
}

const (
	listProductsSQL = `
SELECT id, company_id, title, url, summary, price, images, tags, created_at
FROM product WHERE company_id=$1
ORDER BY created_at DESC, id ASC
LIMIT $2
`
	listSeoPagesSQL = `
SELECT id, company_id, url, title, h1, meta_desc, score, issues, last_checked
FROM seo_page WHERE company_id=$1
ORDER BY last_checked DESC, id DESC
LIMIT $2
`
)

// ListProducts возвращает продукты последнего прогона первыми, внутри прогона в порядке извлечения.
func (p *Postgres) ListProducts(ctx context.Context, companyID int64, limit int) ([]domain.Product, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, listProductsSQL, companyID, limit)
	metrics.ObserveNetworkRequest("postgres", "product_list", "product", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Product
	for rows.Next() {
		var pr domain.Product
		if err := rows.Scan(&pr.ID, &pr.CompanyID, &pr.Title, &pr.URL, &pr.Summary, &pr.Price, &pr.Images, &pr.Tags, &pr.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, pr)
	}
	return out, rows.Err()
}

// CreatePlan сохраняет план и все его посты в одной транзакции.
func (p *Postgres) CreatePlan(ctx context.Context, plan domain.WeeklyPlan) (domain.WeeklyPlan, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	metrics.ObserveNetworkRequest("postgres", "begin_tx", "content_plan", start, err)
	if err != nil {
		return domain.WeeklyPlan{}, err
	}
	defer tx.Rollback(ctx)

	start = time.Now()
	err = tx.QueryRow(ctx, `
INSERT INTO content_plan (company_id, week_start, platform, status)
VALUES ($1,$2,$3,$4)
RETURNING id
`, plan.CompanyID, plan.WeekStart, plan.Platform, string(plan.Status)).Scan(&plan.ID)
	metrics.ObserveNetworkRequest("postgres", "content_plan_insert", "content_plan", start, err)
	if err != nil {
		return domain.WeeklyPlan{}, err
	}

	for i := range plan.Posts {
		post := &plan.Posts[i]
		post.PlanID = plan.ID
		start = time.Now()
		err = tx.QueryRow(ctx, `
INSERT INTO post (plan_id, platform, scheduled_at, caption, hashtags, image_prompt, status)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id
`, plan.ID, string(post.Platform), post.ScheduledAt, post.Caption, strings.Join(post.Hashtags, " "), post.ImagePrompt, string(post.Status)).Scan(&post.ID)
		metrics.ObserveNetworkRequest("postgres", "post_insert", "post", start, err)
		if err != nil {
			return domain.WeeklyPlan{}, err
		}
	}

	start = time.Now()
	err = tx.Commit(ctx)
	metrics.ObserveNetworkRequest("postgres", "commit", "content_plan", start, err)
	if err != nil {
		return domain.WeeklyPlan{}, err
	}
	return plan, nil
}

// ListPlans возвращает планы компании, новые первыми.
func (p *Postgres) ListPlans(ctx context.Context, companyID int64, limit int) ([]domain.WeeklyPlan, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT id, company_id, week_start, platform, status
FROM content_plan WHERE company_id=$1
ORDER BY id DESC
LIMIT $2
`, companyID, limit)
	metrics.ObserveNetworkRequest("postgres", "content_plan_list", "content_plan", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.WeeklyPlan
	for rows.Next() {
		var (
			plan   domain.WeeklyPlan
			status string
		)
		if err := rows.Scan(&plan.ID, &plan.CompanyID, &plan.WeekStart, &plan.Platform, &status); err != nil {
			return nil, err
		}
		plan.Status = domain.PostStatus(status)
		out = append(out, plan)
	}
	return out, rows.Err()
}

// ListPosts возвращает посты плана по времени публикации.
func (p *Postgres) ListPosts(ctx context.Context, planID int64) ([]domain.Post, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT id, plan_id, platform, scheduled_at, caption, hashtags, image_prompt, status
FROM post WHERE plan_id=$1
ORDER BY scheduled_at, id
`, planID)
	metrics.ObserveNetworkRequest("postgres", "post_list", "post", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Post
	for rows.Next() {
		var (
			post                       domain.Post
			platform, hashtags, status string
		)
		if err := rows.Scan(&post.ID, &post.PlanID, &platform, &post.ScheduledAt, &post.Caption, &hashtags, &post.ImagePrompt, &status); err != nil {
			return nil, err
		}
		post.Platform = domain.Platform(platform)
		post.Hashtags = strings.Fields(hashtags)
		post.Status = domain.PostStatus(status)
		post.ScheduledAt = post.ScheduledAt.UTC()
		out = append(out, post)
	}
	return out, rows.Err()
}

// AddCompetitors сохраняет конкурентов и возвращает число добавленных.
func (p *Postgres) AddCompetitors(ctx context.Context, companyID int64, competitors []domain.Competitor) (int, error) {
	if len(competitors) == 0 {
		return 0, nil
	}
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	batch := &pgx.Batch{}
	for _, c := range competitors {
		socials, err := marshalMap(c.Socials)
		if err != nil {
			return 0, err
		}
		batch.Queue(`INSERT INTO competitor (company_id, name, url, socials) VALUES ($1,$2,$3,$4)`, companyID, c.Name, c.URL, socials)
	}
	start := time.Now()
	br := p.pool.SendBatch(ctx, batch)
	metrics.ObserveNetworkRequest("postgres", "competitor_send_batch", "competitor", start, nil)
	defer br.Close()
	added := 0
	for range competitors {
		start = time.Now()
		_, err := br.Exec()
		metrics.ObserveNetworkRequest("postgres", "competitor_batch_exec", "competitor", start, err)
		if err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

// ListCompetitors возвращает конкурентов в порядке добавления.
func (p *Postgres) ListCompetitors(ctx context.Context, companyID int64) ([]domain.Competitor, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `SELECT id, company_id, name, url, socials FROM competitor WHERE company_id=$1 ORDER BY id`, companyID)
	metrics.ObserveNetworkRequest("postgres", "competitor_list", "competitor", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Competitor
	for rows.Next() {
		var (
			c       domain.Competitor
			socials []byte
		)
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Name, &c.URL, &socials); err != nil {
			return nil, err
		}
		if err := unmarshalMap(socials, &c.Socials); err != nil {
			return nil, fmt.Errorf("socials: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpsertSeoPage перезаписывает результат аудита для пары (company_id, url).
func (p *Postgres) UpsertSeoPage(ctx context.Context, r domain.SeoAuditResult) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	issues := r.Issues
	if issues == nil {
		issues = []domain.Issue{}
	}
	payload, err := json.Marshal(issues)
	if err != nil {
		return err
	}
	start := time.Now()
	_, err = p.pool.Exec(ctx, `
INSERT INTO seo_page (company_id, url, title, h1, meta_desc, score, issues, last_checked)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (company_id, url) DO UPDATE SET title=EXCLUDED.title, h1=EXCLUDED.h1, meta_desc=EXCLUDED.meta_desc,
    score=EXCLUDED.score, issues=EXCLUDED.issues, last_checked=EXCLUDED.last_checked
`, r.CompanyID, r.URL, r.Title, r.H1, r.MetaDesc, r.Score, payload, r.LastChecked)
	metrics.ObserveNetworkRequest("postgres", "seo_page_upsert", "seo_page", start, err)
	return err
}

// ListSeoPages возвращает страницы компании, свежие первыми.
func (p *Postgres) ListSeoPages(ctx context.Context, companyID int64, limit int) ([]domain.SeoAuditResult, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, listSeoPagesSQL, companyID, limit)
	metrics.ObserveNetworkRequest("postgres", "seo_page_list", "seo_page", start, err)
	if err != nil {
		return nil, err
	}
	return collectSeoPages(rows)
}

// ListStaleSeoPages возвращает страницы, проверенные раньше checkedBefore, самые старые первыми.
func (p *Postgres) ListStaleSeoPages(ctx context.Context, checkedBefore time.Time, limit int) ([]domain.SeoAuditResult, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT id, company_id, url, title, h1, meta_desc, score, issues, last_checked
FROM seo_page WHERE last_checked < $1
ORDER BY last_checked
LIMIT $2
`, checkedBefore, limit)
	metrics.ObserveNetworkRequest("postgres", "seo_page_list_stale", "seo_page", start, err)
	if err != nil {
		return nil, err
	}
	return collectSeoPages(rows)
}

func collectSeoPages(rows pgx.Rows) ([]domain.SeoAuditResult, error) {
	defer rows.Close()
	var out []domain.SeoAuditResult
	for rows.Next() {
		var (
			r      domain.SeoAuditResult
			issues []byte
		)
		if err := rows.Scan(&r.ID, &r.CompanyID, &r.URL, &r.Title, &r.H1, &r.MetaDesc, &r.Score, &issues, &r.LastChecked); err != nil {
			return nil, err
		}
		if len(issues) > 0 {
			if err := json.Unmarshal(issues, &r.Issues); err != nil {
				return nil, fmt.Errorf("issues: %w", err)
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
