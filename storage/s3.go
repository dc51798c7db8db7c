package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ArchiveConfig holds configuration for S3-compatible page archival
type ArchiveConfig struct {
	Bucket          string
	Region          string
	Endpoint        string // Optional: for DO Spaces, R2, etc.
	AccessKeyID     string
	SecretAccessKey string
}

// PageArchiver stores raw fetched pages in S3-compatible storage so a
// run can be replayed against the markup it actually saw.
type PageArchiver struct {
	client *s3.Client
	cfg    ArchiveConfig
}

// NewPageArchiver creates a new page archiver
func NewPageArchiver(ctx context.Context, cfg ArchiveConfig) (*PageArchiver, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var client *s3.Client
	if cfg.Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	return &PageArchiver{
		client: client,
		cfg:    cfg,
	}, nil
}

// ArchivePage uploads one page of raw markup under a date-partitioned key
// and returns the public URL of the stored object.
func (a *PageArchiver) ArchivePage(ctx context.Context, scrapeDate time.Time, markup string) (string, error) {
	key := fmt.Sprintf("pages/%s/%s.html", scrapeDate.Format("2006-01-02"), uuid.New().String())

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.cfg.Bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(markup),
		ContentType: aws.String("text/html; charset=utf-8"),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return a.publicURL(key), nil
}

func (a *PageArchiver) publicURL(key string) string {
	if a.cfg.Endpoint != "" {
		// S3-compatible endpoint: https://{endpoint-host}/{bucket}/{key}
		host := strings.TrimPrefix(a.cfg.Endpoint, "https://")
		return fmt.Sprintf("https://%s/%s/%s", host, a.cfg.Bucket, key)
	}
	// AWS S3: https://{bucket}.s3.{region}.amazonaws.com/{key}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", a.cfg.Bucket, a.cfg.Region, key)
}
