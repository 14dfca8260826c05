package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"smm-planner/internal/adapters/competitor"
	"smm-planner/internal/adapters/crawler"
	"smm-planner/internal/adapters/notifier"
	"smm-planner/internal/adapters/repo"
	"smm-planner/internal/adapters/seo"
	"smm-planner/internal/domain"
	"smm-planner/internal/infra/blob"
	"smm-planner/internal/infra/cache"
	"smm-planner/internal/infra/config"
	"smm-planner/internal/infra/db"
	"smm-planner/internal/infra/fetch"
	httpinfra "smm-planner/internal/infra/http"
	applog "smm-planner/internal/infra/log"
	"smm-planner/internal/infra/metrics"
	"smm-planner/internal/infra/queue"
	companyusecase "smm-planner/internal/usecase/company"
	competitorsusecase "smm-planner/internal/usecase/competitors"
	exportusecase "smm-planner/internal/usecase/export"
	ingestusecase "smm-planner/internal/usecase/ingest"
	planusecase "smm-planner/internal/usecase/plan"
	seousecase "smm-planner/internal/usecase/seo"
)

func main() {
	cfg := config.Load()
	logger := applog.NewLogger(cfg.AppEnv)

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.PGDSN == "" {
		logger.Fatal().Msg("api: не указан PG_DSN")
	}
	if cfg.AppEnv == "dev" {
		if err := db.Up(cfg.PGDSN); err != nil {
			logger.Fatal().Err(err).Msg("api: не удалось применить миграции")
		}
	}
	pool, err := db.Connect(ctx, cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: нет подключения к БД")
	}
	defer pool.Close()
	repoAdapter := repo.NewPostgres(pool)

	crawlCache, closeCache, err := cache.Open(ctx, cfg.RedisAddr, cfg.Crawl.CacheTTL, applog.Component(logger, "cache"))
	if err != nil {
		logger.Fatal().Err(err).Msg("api: не удалось инициализировать кэш")
	}
	defer closeCache()

	var ingestQueue domain.IngestQueue
	q, closeQueue, err := queue.Open(cfg.Queues.RabbitURL, cfg.RedisAddr, cfg.Queues.Ingest)
	switch {
	case errors.Is(err, queue.ErrNotConfigured):
		logger.Warn().Msg("api: очередь не настроена, доступна только синхронная индексация")
	case err != nil:
		logger.Fatal().Err(err).Msg("api: не удалось подключиться к очереди")
	default:
		ingestQueue = q
		defer closeQueue()
	}

	crawlFetcher := fetch.NewClient(fetch.WithTimeout(cfg.Crawl.Timeout), fetch.WithUserAgent(cfg.Crawl.UserAgent), fetch.WithComponent("crawler"))
	pageFetcher := fetch.NewClient(fetch.WithTimeout(cfg.Crawl.Timeout), fetch.WithComponent("seo"))
	rivalFetcher := fetch.NewClient(fetch.WithTimeout(cfg.Crawl.Timeout), fetch.WithComponent("competitors"))

	siteCrawler := crawler.New(crawlFetcher, crawlCache, applog.Component(logger, "crawler"),
		crawler.WithURLCacheTTL(cfg.Crawl.CacheTTL), crawler.WithUserAgent(cfg.Crawl.UserAgent))

	blobs, err := openBlobStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: не удалось подключиться к хранилищу выгрузок")
	}

	api := &httpinfra.API{
		Companies:   companyusecase.NewService(repoAdapter),
		Ingest:      ingestusecase.NewService(repoAdapter, repoAdapter, siteCrawler, ingestQueue, applog.Component(logger, "ingest"),
			ingestusecase.WithDefaultLimit(cfg.Crawl.PageLimit)),
		Plans:       planusecase.NewService(repoAdapter, repoAdapter, repoAdapter, openNotifier(cfg, logger), planOptions(cfg), applog.Component(logger, "plan")),
		Competitors: competitorsusecase.NewService(repoAdapter, competitor.NewAnalyzer(rivalFetcher, applog.Component(logger, "competitors"))),
		Seo:         seousecase.NewService(seo.NewAuditor(pageFetcher, applog.Component(logger, "seo")), repoAdapter, applog.Component(logger, "seo")),
		Export:      exportusecase.NewService(repoAdapter, blobs, applog.Component(logger, "export")),
		Log:         applog.Component(logger, "api"),
	}

	server := httpinfra.NewServer(logger)
	api.Routes(server.Router)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("api: сервер остановлен с ошибкой")
	}
	logger.Info().Msg("api: остановлен")
}

func planOptions(cfg config.AppConfig) planusecase.Options {
	return planusecase.Options{CTA: cfg.Plan.CTA, BrandHashtags: cfg.Plan.BrandHashtags}
}

// openNotifier возвращает nil, если бот не настроен: уведомления необязательны.
func openNotifier(cfg config.AppConfig, logger zerolog.Logger) domain.Notifier {
	if cfg.Telegram.Token == "" || cfg.Telegram.ChatID == 0 {
		return nil
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Warn().Err(err).Msg("api: бот недоступен, уведомления отключены")
		return nil
	}
	return notifier.NewTelegram(bot, cfg.Telegram.ChatID, applog.Component(logger, "notifier"))
}

// openBlobStore возвращает nil без MINIO_ENDPOINT: выгрузка тогда отвечает ошибкой.
func openBlobStore(ctx context.Context, cfg config.AppConfig) (domain.BlobStore, error) {
	if cfg.Minio.Endpoint == "" {
		return nil, nil
	}
	store, err := blob.NewMinio(blob.Config{
		Endpoint:  cfg.Minio.Endpoint,
		AccessKey: cfg.Minio.AccessKey,
		SecretKey: cfg.Minio.SecretKey,
		Bucket:    cfg.Minio.Bucket,
		UseSSL:    cfg.Minio.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	ensureCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := store.EnsureBucket(ensureCtx); err != nil {
		return nil, err
	}
	return store, nil
}
