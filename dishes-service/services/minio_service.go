package services

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"restaurant-backend/shared/config"
	"restaurant-backend/shared/logger"
)

// ObjectStorage stores uploaded files and returns the link clients use to fetch them.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, file io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
}

type MinIOService struct {
	client     *minio.Client
	bucketName string
	publicURL  string
	log        zerolog.Logger
}

func NewMinIOService(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*MinIOService, error) {
	// Parse endpoint URL to get host
	parsedURL, err := url.Parse(cfg.MinIOServerURL)
	if err != nil || parsedURL.Host == "" {
		return nil, fmt.Errorf("invalid MinIO endpoint %q", cfg.MinIOServerURL)
	}

	log = logger.Component(log, "minio")
	log.Info().Str("endpoint", parsedURL.Host).Bool("ssl", cfg.MinIOUseSSL).Msg("connecting to MinIO")

	minioClient, err := minio.New(parsedURL.Host, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIORootUser, cfg.MinIORootPassword, ""),
		Secure: cfg.MinIOUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	service := &MinIOService{
		client:     minioClient,
		bucketName: cfg.MinIOBucketName,
		publicURL:  strings.TrimSuffix(cfg.MinIOServerURL, "/"),
		log:        log,
	}

	if err := service.initializeBucket(ctx); err != nil {
		return nil, err
	}

	return service, nil
}

func (s *MinIOService) initializeBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if exists {
		s.log.Info().Str("bucket", s.bucketName).Msg("bucket already exists")
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	s.log.Info().Str("bucket", s.bucketName).Msg("bucket created")
	return nil
}

// ObjectURL is the link stored for key.
func (s *MinIOService) ObjectURL(key string) string {
	return s.publicURL + "/" + s.bucketName + "/" + key
}

// Upload stores file under key and returns its link.
func (s *MinIOService) Upload(ctx context.Context, key string, file io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucketName, key, file, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	s.log.Info().Str("key", key).Int64("size", size).Msg("object uploaded")
	return s.ObjectURL(key), nil
}

func (s *MinIOService) Remove(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucketName, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object: %w", err)
	}
	s.log.Info().Str("key", key).Msg("object removed")
	return nil
}
