package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/h2non/filetype"
	cfg "github.com/maheshrc27/postforge/configs"
	"github.com/maheshrc27/postforge/internal/models"
)

// Uploader persists generated images and returns a stable public URL.
// Re-uploading the same key overwrites, so retries never duplicate objects.
type Uploader interface {
	Upload(ctx context.Context, key string, file []byte) (string, error)
}

type R2Service struct {
	config cfg.Config
	client *s3.Client
}

func NewR2Service(c cfg.Config) *R2Service {
	awsCfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.R2.AccessKey, c.R2.SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		log.Fatal(err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.R2.AccountID))
	})

	return &R2Service{config: c, client: client}
}

// Upload puts the file under key in the R2 bucket and returns its public URL.
// PutObject with a fixed key overwrites any previous object, which is what
// makes regeneration idempotent.
func (r *R2Service) Upload(ctx context.Context, key string, file []byte) (string, error) {
	contentType := "application/octet-stream"
	if kind, err := filetype.Match(file); err == nil && kind.MIME.Value != "" {
		contentType = kind.MIME.Value
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(r.config.R2.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file),
		ContentType: aws.String(contentType),
	}

	_, err := r.client.PutObject(ctx, input)
	if err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("%w: %v", models.ErrStorage, err)
	}

	return strings.TrimSuffix(r.config.R2.PublicBaseURL, "/") + "/" + key, nil
}
