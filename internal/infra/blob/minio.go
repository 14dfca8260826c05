package blob

import (
	"bytes"
	"context"
	"fmt"
	"time"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"smm-planner/internal/infra/metrics"
)

// Config описывает подключение к S3-совместимому хранилищу.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinioStore реализует domain.BlobStore поверх MinIO.
type MinioStore struct {
	client *miniogo.Client
	bucket string
}

// NewMinio создаёт клиент хранилища.
func NewMinio(cfg Config) (*MinioStore, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("minio: endpoint и bucket обязательны")
	}
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &MinioStore{client: client, bucket: cfg.Bucket}, nil
}

// EnsureBucket создаёт бакет, если его ещё нет.
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	start := time.Now()
	exists, err := s.client.BucketExists(ctx, s.bucket)
	metrics.ObserveNetworkRequest("minio", "bucket_exists", s.bucket, start, err)
	if err != nil {
		return fmt.Errorf("проверка бакета: %w", err)
	}
	if exists {
		return nil
	}
	start = time.Now()
	err = s.client.MakeBucket(ctx, s.bucket, miniogo.MakeBucketOptions{})
	metrics.ObserveNetworkRequest("minio", "make_bucket", s.bucket, start, err)
	if err != nil {
		return fmt.Errorf("создание бакета: %w", err)
	}
	return nil
}

// Put кладёт объект в бакет.
func (s *MinioStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	start := time.Now()
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), miniogo.PutObjectOptions{
		ContentType: contentType,
	})
	metrics.ObserveNetworkRequest("minio", "put_object", s.bucket, start, err)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}
