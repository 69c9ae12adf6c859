// Package objectstore хранит архивы выгрузок в S3-совместимом хранилище (MinIO).
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"
)

// DefaultRegion задаётся явно, чтобы клиент не запрашивал регион бакета по сети.
const DefaultRegion = "us-east-1"

// Config описывает подключение к MinIO.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// MinioArchive складывает файлы выгрузок в один бакет.
type MinioArchive struct {
	client *minio.Client
	bucket string
	region string
	logger *log.Entry
}

// NewMinioArchive создаёт клиента. Сетевых вызовов не делает.
func NewMinioArchive(cfg Config) (*MinioArchive, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("minio endpoint and bucket are required")
	}
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &MinioArchive{
		client: client,
		bucket: cfg.Bucket,
		region: cfg.Region,
		logger: log.WithField("component", "objectstore"),
	}, nil
}

// Bucket возвращает имя бакета архива.
func (a *MinioArchive) Bucket() string {
	return a.bucket
}

// EnsureBucket создаёт бакет, если его ещё нет.
func (a *MinioArchive) EnsureBucket(ctx context.Context) error {
	found, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", a.bucket, err)
	}
	if found {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{Region: a.region}); err != nil {
		return fmt.Errorf("make bucket %s: %w", a.bucket, err)
	}
	a.logger.WithField("bucket", a.bucket).Info("bucket created")
	return nil
}

// Ping проверяет, что MinIO отвечает и бакет архива на месте.
func (a *MinioArchive) Ping(ctx context.Context) error {
	found, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", a.bucket, err)
	}
	if !found {
		return fmt.Errorf("bucket %s does not exist", a.bucket)
	}
	return nil
}

// Put загружает объект name целиком из памяти.
func (a *MinioArchive) Put(ctx context.Context, name, contentType string, data []byte) error {
	info, err := a.client.PutObject(ctx, a.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", name, err)
	}
	a.logger.WithFields(log.Fields{
		"object": name,
		"size":   info.Size,
		"etag":   info.ETag,
	}).Info("object uploaded")
	return nil
}

// PresignedURL возвращает временную ссылку на скачивание объекта.
func (a *MinioArchive) PresignedURL(ctx context.Context, name string, expiry time.Duration) (string, error) {
	u, err := a.client.PresignedGetObject(ctx, a.bucket, name, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", name, err)
	}
	return u.String(), nil
}
