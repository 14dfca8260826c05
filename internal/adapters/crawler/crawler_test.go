package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"smm-planner/internal/domain"
	"smm-planner/internal/infra/fetch"
)

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return v, nil
}

func (m *memCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func TestCrawlUsesSitemapAndSkipsFailedPages(t *testing.T) {
	var srv *httptest.Server
	var (
		mu         sync.Mutex
		userAgents []string
	)
	mux := http.NewServeMux()
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<urlset><url><loc>%[1]s/a</loc></url><url><loc>%[1]s/broken</loc></url><url><loc>%[1]s/b</loc></url><url><loc>%[1]s/c</loc></url></urlset>`, srv.URL)
	})
	mux.HandleFunc("/a", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		userAgents = append(userAgents, r.UserAgent())
		mu.Unlock()
		fmt.Fprint(w, "<h2>A</h2>")
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	})
	mux.HandleFunc("/b", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<h2>B</h2>")
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	cache := newMemCache()
	c := New(fetch.NewClient(), cache, zerolog.Nop())
	pages := c.Crawl(context.Background(), srv.URL, 3)

	if len(pages) != 2 {
		t.Fatalf("ожидали 2 страницы, получили %d", len(pages))
	}
	if pages[0].URL != srv.URL+"/a" || pages[1].URL != srv.URL+"/b" {
		t.Fatalf("порядок страниц нарушен: %v, %v", pages[0].URL, pages[1].URL)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(userAgents) != 1 || userAgents[0] != DefaultUserAgent {
		t.Fatalf("ожидали User-Agent %q, получили %v", DefaultUserAgent, userAgents)
	}

	var cached []string
	if err := json.Unmarshal(cache.data["sitemap:"+srv.URL], &cached); err != nil {
		t.Fatalf("список URL не закэширован: %v", err)
	}
	want := []string{srv.URL + "/a", srv.URL + "/broken", srv.URL + "/b"}
	if !reflect.DeepEqual(cached, want) {
		t.Fatalf("ожидали %v в кэше, получили %v", want, cached)
	}
	if cache.ttls["sitemap:"+srv.URL] != time.Hour {
		t.Fatalf("ожидали TTL 1h, получили %v", cache.ttls["sitemap:"+srv.URL])
	}
}

func TestCrawlFallsBackToBaseURL(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<h2>Home</h2>")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cache := newMemCache()
	c := New(fetch.NewClient(), cache, zerolog.Nop())
	pages := c.Crawl(context.Background(), srv.URL, 20)

	if len(pages) != 1 || pages[0].URL != srv.URL {
		t.Fatalf("ожидали одну страницу с базовым URL, получили %+v", pages)
	}
	if _, ok := cache.data["sitemap:"+srv.URL]; !ok {
		t.Fatalf("запасной список тоже должен кэшироваться")
	}
}

func TestCrawlUsesCachedURLs(t *testing.T) {
	var sitemapHits atomic.Int32
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		sitemapHits.Add(1)
	})
	mux.HandleFunc("/cached", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ok")
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	cache := newMemCache()
	payload, _ := json.Marshal([]string{srv.URL + "/cached"})
	cache.data["sitemap:"+srv.URL] = payload

	c := New(fetch.NewClient(), cache, zerolog.Nop())
	pages := c.Crawl(context.Background(), srv.URL, 5)
	if sitemapHits.Load() != 0 {
		t.Fatalf("sitemap не должен запрашиваться при попадании в кэш")
	}
	if len(pages) != 1 || pages[0].HTML != "ok" {
		t.Fatalf("ожидали страницу из кэшированного списка, получили %+v", pages)
	}
}

func TestCrawlUnreachableSiteReturnsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := New(fetch.NewClient(fetch.WithTimeout(time.Second)), nil, zerolog.Nop())
	pages := c.Crawl(context.Background(), base, 5)
	if len(pages) != 0 {
		t.Fatalf("ожидали пустой результат, получили %d", len(pages))
	}
}

func TestParseLocs(t *testing.T) {
	xml := "<urlset><url><loc> https://x/a </loc></url><url><loc>https://x/b</loc></url><url><loc>https://x/c</loc></url></urlset>"
	got := ParseLocs(xml, 2)
	want := []string{"https://x/a", "https://x/b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ожидали %v, получили %v", want, got)
	}
}

func TestSitemapURL(t *testing.T) {
	got, err := SitemapURL("https://example.com/shop/")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if got != "https://example.com/sitemap.xml" {
		t.Fatalf("неожиданный адрес: %s", got)
	}
	if _, err := SitemapURL("example.com"); err == nil {
		t.Fatalf("ожидали ошибку для относительного адреса")
	}
}
