package uploader

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path"
	"strings"

	"journal-desk/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type S3Config struct {
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	// Endpoint points at an S3-compatible server; path-style addressing is used when set.
	Endpoint      string
	PublicBaseURL string
}

// S3 stores uploads under images/ and files/ with a random key prefix.
type S3 struct {
	cfg    S3Config
	client *s3.Client
}

func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load aws config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	if cfg.PublicBaseURL == "" {
		if cfg.Endpoint != "" {
			cfg.PublicBaseURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
		} else {
			cfg.PublicBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}

	return &S3{cfg: cfg, client: client}, nil
}

func (s *S3) UploadImage(ctx context.Context, file *File, kind ImageKind) (*ImageUpload, error) {
	key, err := s.put(ctx, path.Join("images", string(kind)), file)
	if err != nil {
		return nil, err
	}
	return &ImageUpload{SecureURL: s.url(key), Blob: Blob{Backend: "s3", Key: key}}, nil
}

func (s *S3) UploadFile(ctx context.Context, file *File) (*FileUpload, error) {
	key, err := s.put(ctx, "files", file)
	if err != nil {
		return nil, err
	}
	return &FileUpload{FileURL: s.url(key), FileName: file.Name, Blob: Blob{Backend: "s3", Key: key}}, nil
}

func (s *S3) Delete(ctx context.Context, blob Blob) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(blob.Key),
	})
	if err != nil {
		return errors.Wrapf(err, "failed to delete %s", blob.Key)
	}
	return nil
}

func (s *S3) put(ctx context.Context, prefix string, file *File) (string, error) {
	key := path.Join(prefix, uuid.NewString()+"-"+path.Base(file.Name))
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(file.Data),
		ContentLength: aws.Int64(int64(len(file.Data))),
		ContentType:   aws.String(file.ContentType),
	})
	if err != nil {
		log.Printf("[S3] upload %s failed: %v", key, err)
		return "", &models.UploadError{Name: file.Name, Err: err}
	}
	return key, nil
}

func (s *S3) url(key string) string {
	return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + key
}
