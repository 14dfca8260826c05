package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"smm-planner/internal/adapters/crawler"
	"smm-planner/internal/adapters/repo"
	"smm-planner/internal/infra/cache"
	"smm-planner/internal/infra/config"
	"smm-planner/internal/infra/db"
	"smm-planner/internal/infra/fetch"
	applog "smm-planner/internal/infra/log"
	"smm-planner/internal/infra/metrics"
	"smm-planner/internal/infra/queue"
	ingestusecase "smm-planner/internal/usecase/ingest"
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
		logger.Fatal().Err(err).Msg("ingestor: нет подключения к БД")
	}
	defer pool.Close()
	repoAdapter := repo.NewPostgres(pool)

	jobs, closeQueue, err := queue.Open(cfg.Queues.RabbitURL, cfg.RedisAddr, cfg.Queues.Ingest)
	if err != nil {
		logger.Fatal().Err(err).Msg("ingestor: не удалось инициализировать очередь")
	}
	defer closeQueue()

	crawlCache, closeCache, err := cache.Open(ctx, cfg.RedisAddr, cfg.Crawl.CacheTTL, applog.Component(logger, "cache"))
	if err != nil {
		logger.Fatal().Err(err).Msg("ingestor: не удалось инициализировать кэш")
	}
	defer closeCache()

	fetcher := fetch.NewClient(fetch.WithTimeout(cfg.Crawl.Timeout), fetch.WithUserAgent(cfg.Crawl.UserAgent), fetch.WithComponent("crawler"))
	siteCrawler := crawler.New(fetcher, crawlCache, applog.Component(logger, "crawler"),
		crawler.WithURLCacheTTL(cfg.Crawl.CacheTTL), crawler.WithUserAgent(cfg.Crawl.UserAgent))
	service := ingestusecase.NewService(repoAdapter, repoAdapter, siteCrawler, jobs, applog.Component(logger, "ingest"),
		ingestusecase.WithDefaultLimit(cfg.Crawl.PageLimit))

	worker := ingestusecase.NewWorker(jobs, service, applog.Component(logger, "ingestor"))
	logger.Info().Str("queue", cfg.Queues.Ingest).Msg("ingestor: запуск обработки очереди")
	if err := worker.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ingestor: очередь недоступна")
	}
	logger.Info().Msg("ingestor: остановлен")
}
