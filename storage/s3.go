package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"routeerp_go/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

type StorageService struct {
	s3Client *s3.S3
	bucket   string
	region   string
}

// NewStorageService creates a new storage service
func NewStorageService() (*StorageService, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(config.AppConfig.AWSRegion),
		Credentials: credentials.NewStaticCredentials(
			config.AppConfig.AWSAccessKeyID,
			config.AppConfig.AWSSecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %v", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		bucket:   config.AppConfig.S3BucketName,
		region:   config.AppConfig.AWSRegion,
	}, nil
}

// ReportKey places an export under reports/<yyyy>/<mm>/<dd>/<random>-<name>.
func ReportKey(name string, now time.Time) string {
	randomID := uuid.New().String()[:8]
	return fmt.Sprintf("reports/%d/%02d/%02d/%s-%s",
		now.Year(), now.Month(), now.Day(), randomID, path.Base(name))
}

// UploadReport stores a generated export and returns its URL.
func (s *StorageService) UploadReport(ctx context.Context, name, contentType string, data []byte) (string, error) {
	key := ReportKey(name, time.Now())

	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(s.bucket),
		Key:                aws.String(key),
		Body:               bytes.NewReader(data),
		ContentType:        aws.String(contentType),
		ContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", path.Base(name))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %v", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}
