package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const presignExpiry = 15 * time.Minute

// S3Storage hands out presigned PUT URLs so product images go straight from
// the dashboard to the bucket.
type S3Storage struct {
	presigner *s3.PresignClient
	region    string
	bucket    string
	baseURL   string
}

type PresignedURLResponse struct {
	UploadURL string `json:"upload_url"`
	FileURL   string `json:"file_url"`
	Key       string `json:"key"`
}

func NewS3Storage(region, bucket, accessKeyID, secretAccessKey, baseURL string) *S3Storage {
	var cfg aws.Config

	// Static credentials when configured, otherwise the default chain
	// (environment, shared config, IAM role).
	if accessKeyID != "" && secretAccessKey != "" {
		cfg = aws.Config{
			Region:      region,
			Credentials: credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		}
	} else {
		loaded, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(region))
		if err != nil {
			cfg = aws.Config{Region: region}
		} else {
			cfg = loaded
		}
	}

	return &S3Storage{
		presigner: s3.NewPresignClient(s3.NewFromConfig(cfg)),
		region:    region,
		bucket:    bucket,
		baseURL:   baseURL,
	}
}

// GeneratePresignedURL returns a PUT URL valid for 15 minutes. The object
// key is randomized under the given folder so uploads never collide.
func (s *S3Storage) GeneratePresignedURL(filename, contentType, folder string) (*PresignedURLResponse, error) {
	key := fmt.Sprintf("%s/%s%s", folder, uuid.NewString(), filepath.Ext(filename))

	req, err := s.presigner.PresignPutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return &PresignedURLResponse{
		UploadURL: req.URL,
		FileURL:   s.fileURL(key),
		Key:       key,
	}, nil
}

func (s *S3Storage) fileURL(key string) string {
	if s.baseURL != "" {
		return fmt.Sprintf("%s/%s", s.baseURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

func (s *S3Storage) ValidateContentType(contentType string, allowedTypes []string) error {
	for _, allowed := range allowedTypes {
		if contentType == allowed {
			return nil
		}
	}
	return fmt.Errorf("content type %s is not allowed", contentType)
}
