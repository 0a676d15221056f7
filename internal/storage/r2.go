package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/bilgisen/repurpose/internal/models"
)

// R2Options configures an S3-compatible bucket (Cloudflare R2 by default).
type R2Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
}

// R2Archive stores snapshots as objects in an S3-compatible bucket.
type R2Archive struct {
	client *s3.Client
	bucket string
	now    func() time.Time
}

func NewR2Archive(ctx context.Context, opts R2Options) (*R2Archive, error) {
	if opts.Bucket == "" {
		return nil, errors.New("r2 bucket is required")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load r2 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(opts.Endpoint)
		o.UsePathStyle = true
	})

	return &R2Archive{client: client, bucket: opts.Bucket, now: time.Now}, nil
}

// Put uploads a snapshot of c.
func (a *R2Archive) Put(ctx context.Context, c *models.Content) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal content: %w", err)
	}

	key := snapshotKey(c, a.now())
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload snapshot %s: %w", key, err)
	}
	return nil
}

// Get lists the bucket for snapshots of id and downloads the newest one.
func (a *R2Archive) Get(ctx context.Context, id string) (*models.Content, error) {
	var latest string
	paginator := s3.NewListObjectsV2Paginator(a.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(a.bucket),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list snapshots: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !isSnapshotOf(key, id) {
				continue
			}
			if latest == "" || newer(key, latest) {
				latest = key
			}
		}
	}
	if latest == "" {
		return nil, ErrNotFound
	}

	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(latest),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to download snapshot %s: %w", latest, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", latest, err)
	}
	var c models.Content
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &c, nil
}
