package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"smm-planner/internal/adapters/repo"
	"smm-planner/internal/adapters/seo"
	"smm-planner/internal/infra/config"
	"smm-planner/internal/infra/db"
	"smm-planner/internal/infra/fetch"
	applog "smm-planner/internal/infra/log"
	"smm-planner/internal/infra/metrics"
	seousecase "smm-planner/internal/usecase/seo"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.StartServer(ctx, applog.Component(logger, "metrics"), cfg.MetricsAddr)

	pool, err := db.Connect(ctx, cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("scheduler: нет подключения к БД")
	}
	defer pool.Close()

	repoAdapter := repo.NewPostgres(pool)
	fetcher := fetch.NewClient(fetch.WithTimeout(cfg.Crawl.Timeout), fetch.WithComponent("seo"))
	auditor := seo.NewAuditor(fetcher, applog.Component(logger, "seo"))
	service := seousecase.NewService(auditor, repoAdapter, applog.Component(logger, "seo"))

	logger.Info().Dur("interval", cfg.SeoRefresh.Interval).Dur("after", cfg.SeoRefresh.After).Msg("scheduler: запущен")
	ticker := time.NewTicker(cfg.SeoRefresh.Interval)
	defer ticker.Stop()
	for {
		n, err := service.RefreshStale(ctx, cfg.SeoRefresh.After, cfg.SeoRefresh.Batch)
		if err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("scheduler: ошибка повторного аудита")
		} else if n > 0 {
			logger.Info().Int("pages", n).Msg("scheduler: страницы перепроверены")
		}
		select {
		case <-ctx.Done():
			logger.Info().Msg("scheduler: остановлен")
			return
		case <-ticker.C:
		}
	}
}
