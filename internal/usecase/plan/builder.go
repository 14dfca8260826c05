package plan

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"smm-planner/internal/adapters/htmltext"
	"smm-planner/internal/domain"
)

const (
	// DaysPerPlan задаёт длину плана в днях.
	DaysPerPlan = 7
	// CaptionSummaryLimit ограничивает описание продукта в подписи.
	CaptionSummaryLimit = 140
	// MaxProductHashtags ограничивает число тегов продукта в хэштегах.
	MaxProductHashtags = 3
	// PostHour задаёт час публикации каждого поста по UTC.
	PostHour = 9
	// MultiPlatform помечает план, охватывающий несколько платформ.
	MultiPlatform = "multi"

	fallbackTitle = "Our services"
)

// DefaultCTA добавляется последней строкой каждой подписи.
const DefaultCTA = "Chat to us: 021 007 0200 | sales@vinet.co.za"

// DefaultBrandHashtags открывают список хэштегов каждого поста.
var DefaultBrandHashtags = []string{"#Vinet", "#Internet", "#Connectivity", "#Fibre", "#Wireless"}

// Options задаёт шаблонные части постов.
type Options struct {
	CTA           string
	BrandHashtags []string
}

func (o Options) withDefaults() Options {
	if o.CTA == "" {
		o.CTA = DefaultCTA
	}
	if o.BrandHashtags == nil {
		o.BrandHashtags = DefaultBrandHashtags
	}
	return o
}

// BuildWeeklyPlan детерминированно строит план на 7 дней начиная с weekStart.
// Для дня d берётся продукт с индексом d % max(1, len(products)); без
// продуктов используется профиль самой компании. Порядок постов: сначала все
// платформы дня 0, затем дня 1 и так далее.
func BuildWeeklyPlan(company domain.Company, products []domain.Product, platforms []domain.Platform, weekStart time.Time, opts Options) domain.WeeklyPlan {
	opts = opts.withDefaults()
	start := StartOfDay(weekStart)
	if len(products) == 0 {
		products = []domain.Product{{Title: company.Name, Summary: company.Description}}
	}

	posts := make([]domain.Post, 0, DaysPerPlan*len(platforms))
	for d := 0; d < DaysPerPlan; d++ {
		product := products[d%len(products)]
		scheduled := start.AddDate(0, 0, d).Add(PostHour * time.Hour)
		caption := Caption(product, opts.CTA)
		hashtags := Hashtags(opts.BrandHashtags, product.Tags)
		prompt := ImagePrompt(company, product)
		for _, platform := range platforms {
			posts = append(posts, domain.Post{
				Platform:    platform,
				ScheduledAt: scheduled,
				Caption:     caption,
				Hashtags:    append([]string(nil), hashtags...),
				ImagePrompt: prompt,
				Status:      domain.PostStatusDraft,
			})
		}
	}

	return domain.WeeklyPlan{
		CompanyID: company.ID,
		WeekStart: start,
		Platform:  MultiPlatform,
		Status:    domain.PostStatusDraft,
		Posts:     posts,
	}
}

// StartOfDay возвращает полночь UTC календарной даты t.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Caption собирает подпись: заголовок, сокращённое описание и строку с контактами.
func Caption(product domain.Product, cta string) string {
	title := strings.TrimSpace(product.Title)
	if title == "" {
		title = fallbackTitle
	}
	summary := htmltext.Truncate(product.Summary, CaptionSummaryLimit)
	return strings.TrimSpace(title + " — " + summary + "\n" + cta)
}

// Hashtags объединяет брендовые хэштеги и до трёх тегов продукта без дублей.
func Hashtags(brand []string, tags []string) []string {
	out := make([]string, 0, len(brand)+MaxProductHashtags)
	out = append(out, brand...)
	added := 0
	for _, tag := range tags {
		if added == MaxProductHashtags {
			break
		}
		token := strings.Join(strings.Fields(tag), "")
		if token == "" {
			continue
		}
		out = append(out, "#"+strings.TrimPrefix(token, "#"))
		added++
	}
	return htmltext.DedupeStrings(out)
}

// ImagePrompt формирует задание для генерации картинки к посту.
func ImagePrompt(company domain.Company, product domain.Product) string {
	palette := "brand palette if available"
	if len(company.Colors) > 0 {
		roles := make([]string, 0, len(company.Colors))
		for role := range company.Colors {
			roles = append(roles, role)
		}
		sort.Strings(roles)
		parts := make([]string, 0, len(roles))
		for _, role := range roles {
			parts = append(parts, role+" "+company.Colors[role])
		}
		palette = strings.Join(parts, ", ")
	}
	logo := "if available"
	if company.LogoURL != "" {
		logo = "from " + company.LogoURL
	}
	return fmt.Sprintf("Minimal ad tile for %s. Headline: %s. Colors: %s. Include logo %s.", company.Name, product.Title, palette, logo)
}
