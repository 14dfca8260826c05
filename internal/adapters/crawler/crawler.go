package crawler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"smm-planner/internal/domain"
	"smm-planner/internal/infra/metrics"
)

const (
	// DefaultPageLimit ограничивает число страниц за один прогон.
	DefaultPageLimit = 20
	// DefaultURLCacheTTL задаёт время жизни закэшированного списка URL сайта.
	DefaultURLCacheTTL = time.Hour
	// DefaultUserAgent отправляется при загрузке страниц.
	DefaultUserAgent = "SMM/1.0"

	sitemapPath = "/sitemap.xml"
)

var locRe = regexp.MustCompile(`<loc>(.*?)</loc>`)

// Crawler обходит сайт компании по sitemap.xml.
type Crawler struct {
	fetcher   domain.Fetcher
	cache     domain.Cache
	log       zerolog.Logger
	ttl       time.Duration
	userAgent string
}

// Option настраивает краулер.
type Option func(*Crawler)

// WithURLCacheTTL задаёт время жизни списка URL в кэше.
func WithURLCacheTTL(ttl time.Duration) Option {
	return func(c *Crawler) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithUserAgent задаёт User-Agent для загрузки страниц.
func WithUserAgent(ua string) Option {
	return func(c *Crawler) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// New создаёт краулер. Если cache равен nil, список URL не кэшируется.
func New(fetcher domain.Fetcher, cache domain.Cache, logger zerolog.Logger, opts ...Option) *Crawler {
	c := &Crawler{
		fetcher:   fetcher,
		cache:     cache,
		log:       logger,
		ttl:       DefaultURLCacheTTL,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Crawl загружает до limit страниц сайта по очереди. Ошибки отдельных страниц
// пропускаются; если не удалось загрузить ничего, возвращается пустой срез.
func (c *Crawler) Crawl(ctx context.Context, baseURL string, limit int) []domain.CrawledPage {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	urls := c.resolveURLs(ctx, baseURL, limit)
	if len(urls) > limit {
		urls = urls[:limit]
	}

	header := http.Header{}
	header.Set("User-Agent", c.userAgent)

	pages := make([]domain.CrawledPage, 0, len(urls))
	for _, u := range urls {
		if ctx.Err() != nil {
			break
		}
		resp, err := c.fetcher.Get(ctx, u, header)
		if err != nil {
			metrics.ObserveCrawlPage("network_error")
			c.log.Debug().Err(err).Str("url", u).Msg("crawler: страница недоступна")
			continue
		}
		if !resp.OK() {
			metrics.ObserveCrawlPage("http_error")
			c.log.Debug().Int("status", resp.Status).Str("url", u).Msg("crawler: неуспешный статус")
			continue
		}
		metrics.ObserveCrawlPage("fetched")
		pages = append(pages, domain.CrawledPage{URL: u, HTML: resp.Body})
	}
	c.log.Info().Str("base_url", baseURL).Int("urls", len(urls)).Int("pages", len(pages)).Msg("crawler: обход завершён")
	return pages
}

func (c *Crawler) resolveURLs(ctx context.Context, baseURL string, limit int) []string {
	key := cacheKey(baseURL)
	if urls, ok := c.cachedURLs(ctx, key); ok {
		metrics.ObserveSitemapLookup("cache")
		return urls
	}

	urls := c.sitemapURLs(ctx, baseURL, limit)
	if len(urls) == 0 {
		metrics.ObserveSitemapLookup("fallback")
		urls = []string{baseURL}
	} else {
		metrics.ObserveSitemapLookup("sitemap")
	}

	if c.cache != nil {
		payload, err := json.Marshal(urls)
		if err == nil {
			err = c.cache.Set(ctx, key, payload, c.ttl)
		}
		if err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("crawler: не удалось сохранить список URL в кэш")
		}
	}
	return urls
}

func (c *Crawler) cachedURLs(ctx context.Context, key string) ([]string, bool) {
	if c.cache == nil {
		return nil, false
	}
	raw, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			c.log.Warn().Err(err).Str("key", key).Msg("crawler: ошибка чтения кэша")
		}
		return nil, false
	}
	var urls []string
	if err := json.Unmarshal(raw, &urls); err != nil || len(urls) == 0 {
		return nil, false
	}
	return urls, true
}

func (c *Crawler) sitemapURLs(ctx context.Context, baseURL string, limit int) []string {
	sitemapURL, err := SitemapURL(baseURL)
	if err != nil {
		c.log.Debug().Err(err).Str("base_url", baseURL).Msg("crawler: некорректный адрес сайта")
		return nil
	}
	resp, err := c.fetcher.Get(ctx, sitemapURL, nil)
	if err != nil {
		c.log.Debug().Err(err).Str("url", sitemapURL).Msg("crawler: sitemap недоступен")
		return nil
	}
	if !resp.OK() {
		c.log.Debug().Int("status", resp.Status).Str("url", sitemapURL).Msg("crawler: sitemap вернул ошибку")
		return nil
	}
	return ParseLocs(resp.Body, limit)
}

// SitemapURL строит адрес /sitemap.xml от корня сайта.
func SitemapURL(baseURL string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	if base.Scheme == "" || base.Host == "" {
		return "", errors.New("base url must be absolute")
	}
	return base.ResolveReference(&url.URL{Path: sitemapPath}).String(), nil
}

// ParseLocs извлекает значения <loc> в порядке появления, не больше limit.
func ParseLocs(xml string, limit int) []string {
	matches := locRe.FindAllStringSubmatch(xml, -1)
	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		loc := strings.TrimSpace(m[1])
		if loc == "" {
			continue
		}
		urls = append(urls, loc)
		if limit > 0 && len(urls) == limit {
			break
		}
	}
	return urls
}

func cacheKey(baseURL string) string {
	return "sitemap:" + baseURL
}
