package config

import (
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию сервисов.
type AppConfig struct {
	AppEnv      string `envconfig:"APP_ENV" default:"dev"`
	Port        int    `envconfig:"PORT" default:"8080"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`

	PGDSN string `envconfig:"PG_DSN"`

	RedisAddr string `envconfig:"REDIS_ADDR"`

	Queues struct {
		RabbitURL string `envconfig:"RABBITMQ_URL"`
		Ingest    string `envconfig:"INGEST_QUEUE" default:"ingest_jobs"`
	} `envconfig:""`

	Crawl struct {
		UserAgent string        `envconfig:"CRAWL_USER_AGENT" default:"SMM/1.0"`
		Timeout   time.Duration `envconfig:"CRAWL_TIMEOUT" default:"8s"`
		PageLimit int           `envconfig:"CRAWL_PAGE_LIMIT" default:"20"`
		CacheTTL  time.Duration `envconfig:"CRAWL_CACHE_TTL" default:"1h"`
	} `envconfig:""`

	Plan struct {
		CTA           string   `envconfig:"PLAN_CTA"`
		BrandHashtags []string `envconfig:"PLAN_BRAND_HASHTAGS"`
	} `envconfig:""`

	SeoRefresh struct {
		Interval time.Duration `envconfig:"SEO_REFRESH_INTERVAL" default:"1h"`
		After    time.Duration `envconfig:"SEO_REFRESH_AFTER" default:"168h"`
		Batch    int           `envconfig:"SEO_REFRESH_BATCH" default:"50"`
	} `envconfig:""`

	Minio struct {
		Endpoint  string `envconfig:"MINIO_ENDPOINT"`
		AccessKey string `envconfig:"MINIO_ACCESS_KEY"`
		SecretKey string `envconfig:"MINIO_SECRET_KEY"`
		Bucket    string `envconfig:"MINIO_BUCKET" default:"smm-exports"`
		UseSSL    bool   `envconfig:"MINIO_USE_SSL" default:"false"`
	} `envconfig:""`

	Telegram struct {
		Token  string `envconfig:"TG_BOT_TOKEN"`
		ChatID int64  `envconfig:"TG_CHAT_ID"`
	} `envconfig:""`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	cfg, err := Parse()
	if err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}

// Parse читает конфиг из окружения и возвращает ошибку вместо завершения процесса.
func Parse() (AppConfig, error) {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}
