package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	CrawlPagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crawl_pages_total",
		Help: "Страницы, обработанные краулером, по результату",
	}, []string{"outcome"})
	SitemapLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crawl_sitemap_lookups_total",
		Help: "Поиск списка URL: кэш, sitemap или запасной вариант",
	}, []string{"source"})
	ProductsExtractedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "products_extracted_total",
		Help: "Количество извлечённых продуктов",
	})
	PlanBuildSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "plan_build_seconds",
		Help:    "Время построения и сохранения недельного плана",
		Buckets: prometheus.DefBuckets,
	})
	SeoAuditScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "seo_audit_score",
		Help:    "Распределение итоговых SEO-оценок",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	})
	IngestJobsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_jobs_total",
		Help: "Задачи индексации по статусу",
	}, []string{"status"})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15, 20, 30},
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "target", "status"})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		CrawlPagesTotal,
		SitemapLookupsTotal,
		ProductsExtractedTotal,
		PlanBuildSeconds,
		SeoAuditScore,
		IngestJobsTotal,
		NetworkRequestDuration,
		NetworkRequestTotal,
	)
}

// StartServer запускает HTTP сервер с эндпоинтом /metrics.
func StartServer(ctx context.Context, logger zerolog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	shutdownCtx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-ctx.Done():
		case <-shutdownCtx.Done():
		}
		shutdownTimeout, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer timeoutCancel()
		if err := srv.Shutdown(shutdownTimeout); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: graceful shutdown failed")
		}
	}()

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics: server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: server stopped")
		}
		cancel()
	}()
}

// ObserveNetworkRequest записывает длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(duration)
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}

// ObserveCrawlPage учитывает страницу краулера: fetched, http_error или network_error.
func ObserveCrawlPage(outcome string) {
	CrawlPagesTotal.WithLabelValues(outcome).Inc()
}

// ObserveSitemapLookup учитывает источник списка URL: cache, sitemap или fallback.
func ObserveSitemapLookup(source string) {
	SitemapLookupsTotal.WithLabelValues(source).Inc()
}

// ObserveIngestJob учитывает итог задачи индексации.
func ObserveIngestJob(status string) {
	IngestJobsTotal.WithLabelValues(status).Inc()
}
