// internal/services/storage_service.go
package services

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/promptsig/vault-backend/internal/config"
	"github.com/promptsig/vault-backend/internal/utils"
)

// StorageService stores prompt content blobs and hands back the metadata
// URI and content hash that version entries reference.
type StorageService struct {
	s3Client *s3.S3
	config   *config.Config
}

type ContentUploadResult struct {
	URI         string `json:"uri"`
	Key         string `json:"key"`
	Size        int64  `json:"size"`
	ContentHash string `json:"content_hash"`
}

// MaxContentSize bounds one prompt content blob.
const MaxContentSize = 1 << 20 // 1 MiB

func NewStorageService(config *config.Config) (*StorageService, error) {
	if config.AWS.AccessKeyID == "" {
		// Return service without S3 for local development
		return &StorageService{config: config}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(config.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			config.AWS.AccessKeyID,
			config.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		config:   config,
	}, nil
}

// UploadContent stores one content blob under a hash-derived key. The
// returned hash is what callers put in the version entry, so the stored
// object is verifiable against its reference.
func (s *StorageService) UploadContent(promptID string, file multipart.File, header *multipart.FileHeader) (*ContentUploadResult, error) {
	if header.Size > MaxContentSize {
		return nil, fmt.Errorf("content size %d bytes exceeds maximum %d bytes", header.Size, MaxContentSize)
	}

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}

	hash := utils.ContentHash(content)
	key := fmt.Sprintf("prompts/%s/%s", promptID, hash)

	if s.s3Client != nil {
		params := &s3.PutObjectInput{
			Bucket:        aws.String(s.config.AWS.S3Bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(content),
			ContentType:   aws.String(header.Header.Get("Content-Type")),
			ContentLength: aws.Int64(int64(len(content))),
		}
		if _, err := s.s3Client.PutObject(params); err != nil {
			return nil, fmt.Errorf("failed to upload to S3: %w", err)
		}

		return &ContentUploadResult{
			URI:         s.objectURL(key),
			Key:         key,
			Size:        int64(len(content)),
			ContentHash: hash,
		}, nil
	}

	// Local development fallback
	return &ContentUploadResult{
		URI:         fmt.Sprintf("http://localhost:%s/uploads/%s", s.config.Server.Port, key),
		Key:         key,
		Size:        int64(len(content)),
		ContentHash: hash,
	}, nil
}

// DeleteContent removes a stored blob.
func (s *StorageService) DeleteContent(key string) error {
	if s.s3Client == nil {
		return nil
	}

	_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.config.AWS.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

// GeneratePresignedURL grants time-limited read access to a stored blob.
func (s *StorageService) GeneratePresignedURL(key string, expiration time.Duration) (string, error) {
	if s.s3Client == nil {
		return "", fmt.Errorf("S3 client not configured")
	}

	req, _ := s.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.config.AWS.S3Bucket),
		Key:    aws.String(key),
	})
	return req.Presign(expiration)
}

func (s *StorageService) objectURL(key string) string {
	if s.config.AWS.CloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", s.config.AWS.CloudFrontURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.config.AWS.S3Bucket, s.config.AWS.Region, key)
}
