package seo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"smm-planner/internal/adapters/htmltext"
	"smm-planner/internal/domain"
	"smm-planner/internal/infra/metrics"
)

const (
	// IssuePenalty снимается с оценки за каждое нарушение.
	IssuePenalty = 12
	// MinLinks задаёт минимальное число ссылок на странице.
	MinLinks = 5
	// MaxScore присваивается странице без нарушений.
	MaxScore = 100
)

// Идентификаторы нарушений.
const (
	IssueFetch  = "fetch"
	IssueTitle  = "title"
	IssueH1     = "h1"
	IssueMeta   = "meta"
	IssueImgAlt = "img_alt"
	IssueLinks  = "links"
)

// Auditor проверяет страницу по фиксированному набору правил.
type Auditor struct {
	fetcher domain.Fetcher
	log     zerolog.Logger
	now     func() time.Time
}

// NewAuditor создаёт аудитор.
func NewAuditor(fetcher domain.Fetcher, logger zerolog.Logger) *Auditor {
	return &Auditor{fetcher: fetcher, log: logger, now: time.Now}
}

// Audit загружает страницу один раз и оценивает её. Ошибка загрузки не
// возвращается, а превращается в нулевую оценку с нарушением fetch.
func (a *Auditor) Audit(ctx context.Context, url string) domain.SeoAuditResult {
	result := domain.SeoAuditResult{URL: url, LastChecked: a.now().UTC().Truncate(time.Second)}

	resp, err := a.fetcher.Get(ctx, url, nil)
	switch {
	case err != nil:
		a.log.Warn().Err(err).Str("url", url).Msg("seo: страница недоступна")
		result.Issues = []domain.Issue{{ID: IssueFetch, Msg: fmt.Sprintf("fetch failed: %v", err)}}
		return a.finish(result)
	case !resp.OK():
		a.log.Warn().Int("status", resp.Status).Str("url", url).Msg("seo: неуспешный статус")
		result.Issues = []domain.Issue{{ID: IssueFetch, Msg: fmt.Sprintf("HTTP %d", resp.Status)}}
		return a.finish(result)
	}

	page, err := Inspect(resp.Body)
	if err != nil {
		result.Issues = []domain.Issue{{ID: IssueFetch, Msg: fmt.Sprintf("parse failed: %v", err)}}
		return a.finish(result)
	}
	result.Title = page.Title
	result.H1 = page.H1
	result.MetaDesc = page.MetaDesc
	result.Issues = Evaluate(page)
	return a.finish(result)
}

func (a *Auditor) finish(result domain.SeoAuditResult) domain.SeoAuditResult {
	if len(result.Issues) > 0 && result.Issues[0].ID == IssueFetch {
		result.Score = 0
	} else {
		result.Score = Score(len(result.Issues))
	}
	metrics.SeoAuditScore.Observe(float64(result.Score))
	return result
}

// Page содержит SEO-поля, найденные на странице.
type Page struct {
	Title       string
	H1          string
	MetaDesc    string
	ImagesNoAlt int
	LinkCount   int
}

// Inspect извлекает поля страницы. Берётся первое вхождение каждого элемента.
func Inspect(html string) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Page{}, err
	}
	page := Page{
		Title:       htmltext.Strip(doc.Find("title").First().Text()),
		H1:          htmltext.Strip(doc.Find("h1").First().Text()),
		ImagesNoAlt: doc.Find("img:not([alt])").Length(),
		LinkCount:   doc.Find("a[href]").Length(),
	}
	doc.Find("meta[name]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !strings.EqualFold(strings.TrimSpace(s.AttrOr("name", "")), "description") {
			return true
		}
		page.MetaDesc = htmltext.Strip(s.AttrOr("content", ""))
		return false
	})
	return page, nil
}

// Evaluate применяет правила; каждое сработавшее правило даёт одно нарушение.
func Evaluate(page Page) []domain.Issue {
	issues := make([]domain.Issue, 0, 5)
	if page.Title == "" {
		issues = append(issues, domain.Issue{ID: IssueTitle, Msg: "Missing <title>"})
	}
	if page.H1 == "" {
		issues = append(issues, domain.Issue{ID: IssueH1, Msg: "Missing <h1>"})
	}
	if page.MetaDesc == "" {
		issues = append(issues, domain.Issue{ID: IssueMeta, Msg: "Missing meta description"})
	}
	if page.ImagesNoAlt > 0 {
		issues = append(issues, domain.Issue{ID: IssueImgAlt, Msg: fmt.Sprintf("%d images missing alt", page.ImagesNoAlt)})
	}
	if page.LinkCount < MinLinks {
		issues = append(issues, domain.Issue{ID: IssueLinks, Msg: "Low internal link count"})
	}
	return issues
}

// Score считает оценку: 100 минус 12 за каждое нарушение, но не ниже нуля.
func Score(issueCount int) int {
	score := MaxScore - IssuePenalty*issueCount
	if score < 0 {
		return 0
	}
	return score
}
