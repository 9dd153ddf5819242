package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"vizbot/app/config"
)

// Archiver copies finished renders to S3 so the local output directory can
// be pruned on constrained devices.
type Archiver struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewArchiver builds an archiver from the standard AWS configuration chain.
// Returns nil without error when no archive bucket is configured.
func NewArchiver(ctx context.Context) (*Archiver, error) {
	bucket := config.GetArchiveBucket()
	if bucket == "" {
		return nil, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return &Archiver{
		client: s3.NewFromConfig(awsCfg),
		bucket: bucket,
		prefix: config.GetArchivePrefix(),
	}, nil
}

// key places renders under prefix/YYYY-MM-DD/filename.
func (a *Archiver) key(videoPath string, when time.Time) string {
	return path.Join(a.prefix, when.UTC().Format("2006-01-02"), path.Base(videoPath))
}

// Archive uploads the video unless an object with the same key already
// exists. Returns the object key.
func (a *Archiver) Archive(ctx context.Context, videoPath string) (string, error) {
	key := a.key(videoPath, time.Now())

	exists, err := a.exists(ctx, key)
	if err != nil {
		return "", fmt.Errorf("checking archive for %s: %w", key, err)
	}
	if exists {
		log.Printf("📦 Archive already has %s, skipping", key)
		return key, nil
	}

	f, err := os.Open(videoPath)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", videoPath, err)
	}
	defer f.Close()

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("video/mp4"),
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}
	log.Printf("📦 Archived %s to s3://%s/%s", videoPath, a.bucket, key)
	return key, nil
}

func (a *Archiver) exists(ctx context.Context, key string) (bool, error) {
	_, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == 404 {
		return false, nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
		return false, nil
	}
	return false, err
}
