package storage

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"xiview-api/config"
)

// BackupStore keeps database dumps in an S3 compatible bucket.
type BackupStore struct {
	Client *s3.Client
	Bucket string
	Prefix string
}

// Object is the part of a bucket listing needed for rotation.
type Object struct {
	Key          string
	LastModified time.Time
}

// NewBackupStore erstellt einen S3-Client für den Backup-Bucket.
func NewBackupStore(ctx context.Context, cfg *config.BackupConfig) (*BackupStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.BackupRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.BackupAccessKey, cfg.BackupSecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.BackupEndpoint)
		o.UsePathStyle = true
	})
	return &BackupStore{Client: client, Bucket: cfg.BackupBucket, Prefix: cfg.BackupPrefix}, nil
}

// Upload stores body under Prefix+name and returns the full key.
func (b *BackupStore) Upload(ctx context.Context, name string, body io.Reader) (string, error) {
	key := b.Prefix + name
	_, err := b.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.Bucket),
		Key:    aws.String(key),
		Body:   body,
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", b.Bucket, key, err)
	}
	return key, nil
}

// Rotate deletes all but the newest keep backups below Prefix and returns
// the deleted keys. Failed deletions are reported, the rest continues.
func (b *BackupStore) Rotate(ctx context.Context, keep int) ([]string, error) {
	var objects []Object
	paginator := s3.NewListObjectsV2Paginator(b.Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.Bucket),
		Prefix: aws.String(b.Prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list s3://%s/%s: %w", b.Bucket, b.Prefix, err)
		}
		for _, obj := range page.Contents {
			objects = append(objects, Object{Key: aws.ToString(obj.Key), LastModified: aws.ToTime(obj.LastModified)})
		}
	}

	var deleted []string
	var firstErr error
	for _, key := range SelectExpired(objects, keep) {
		_, err := b.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(b.Bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("delete %s: %w", key, err)
			}
			continue
		}
		deleted = append(deleted, key)
	}
	return deleted, firstErr
}

// SelectExpired returns the keys of all objects except the newest keep.
func SelectExpired(objects []Object, keep int) []string {
	if keep < 0 {
		keep = 0
	}
	if len(objects) <= keep {
		return nil
	}
	sorted := append([]Object(nil), objects...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].LastModified.After(sorted[j].LastModified)
	})
	keys := make([]string, 0, len(sorted)-keep)
	for _, obj := range sorted[keep:] {
		keys = append(keys, obj.Key)
	}
	return keys
}
