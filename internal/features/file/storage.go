package file

import (
	"fmt"
	"io"
	"time"

	"github.com/aivisualpro/devco-erp/internal/common/apperr"
	"github.com/aivisualpro/devco-erp/internal/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// ObjectStorage is the put/get/delete-by-key surface the rest of the system
// sees. URLs it hands out are time-limited.
type ObjectStorage interface {
	Put(key string, body io.ReadSeeker, contentType string) error
	URL(key string) (string, error)
	Delete(key string) error
}

type S3Storage struct {
	svc    *s3.S3
	bucket string
}

func NewS3Storage(cfg *config.Config) (ObjectStorage, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.S3Region),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 session: %w", err)
	}
	return &S3Storage{svc: s3.New(sess), bucket: cfg.S3Bucket}, nil
}

func (s *S3Storage) Put(key string, body io.ReadSeeker, contentType string) error {
	_, err := s.svc.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return apperr.ExternalService("object storage put failed", err)
	}
	return nil
}

// URL returns a presigned GET link valid for 15 minutes.
func (s *S3Storage) URL(key string) (string, error) {
	req, _ := s.svc.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	url, err := req.Presign(15 * time.Minute)
	if err != nil {
		return "", apperr.ExternalService("object storage presign failed", err)
	}
	return url, nil
}

func (s *S3Storage) Delete(key string) error {
	_, err := s.svc.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return apperr.ExternalService("object storage delete failed", err)
	}
	return nil
}
