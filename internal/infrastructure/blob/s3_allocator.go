package blob

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/mansidw/aakar-cli/internal/domain"
	"github.com/mansidw/aakar-cli/internal/domain/entity"
	"github.com/mansidw/aakar-cli/pkg/metrics"
)

// S3Config configures an S3Allocator
type S3Config struct {
	Endpoint      string
	Region        string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PresignExpiry time.Duration
	// Prefix is prepended to every object key
	Prefix string
}

// S3Allocator is a domain.ResourceAllocator that uploads payloads to an
// S3-compatible bucket. Handles are presigned GET URLs; releasing one
// removes the object.
type S3Allocator struct {
	client     *minio.Client
	bucketName string
	region     string
	prefix     string
	expiry     time.Duration

	initOnce sync.Once
	initErr  error

	mu   sync.Mutex
	keys map[entity.ResourceHandle]string
}

// NewS3Allocator validates cfg and creates the minio client
func NewS3Allocator(cfg S3Config) (*S3Allocator, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}
	expiry := cfg.PresignExpiry
	if expiry <= 0 {
		expiry = time.Hour
	}
	prefix := strings.Trim(strings.TrimSpace(cfg.Prefix), "/")
	if prefix == "" {
		prefix = "reportctl"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	return &S3Allocator{
		client:     client,
		bucketName: bucket,
		region:     region,
		prefix:     prefix,
		expiry:     expiry,
		keys:       make(map[entity.ResourceHandle]string),
	}, nil
}

func (s *S3Allocator) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucketName)
		if err != nil {
			s.initErr = err
			return
		}
		if exists {
			return
		}
		s.initErr = s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{Region: s.region})
	})
	return s.initErr
}

// Allocate uploads blob and returns a presigned URL for it
func (s *S3Allocator) Allocate(ctx context.Context, blob entity.Blob) (entity.ResourceHandle, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return "", fmt.Errorf("ensure bucket: %w", err)
	}

	contentType := blob.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := objectKey(s.prefix, uuid.NewString(), blob.FileName)

	_, err := s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(blob.Data), int64(len(blob.Data)), minio.PutObjectOptions{
		ContentType:        contentType,
		ContentDisposition: inlineDisposition(blob.FileName),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	params := url.Values{}
	if blob.FileName != "" {
		params.Set("response-content-disposition", inlineDisposition(blob.FileName))
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucketName, key, s.expiry, params)
	if err != nil {
		_ = s.client.RemoveObject(context.WithoutCancel(ctx), s.bucketName, key, minio.RemoveObjectOptions{})
		return "", fmt.Errorf("presign object: %w", err)
	}

	handle := entity.ResourceHandle(u.String())
	s.mu.Lock()
	s.keys[handle] = key
	s.mu.Unlock()
	metrics.BlobAllocated()
	return handle, nil
}

// Release removes the object behind handle. The handle is forgotten even
// when the removal fails, so a second release reports NOT_FOUND.
func (s *S3Allocator) Release(ctx context.Context, handle entity.ResourceHandle) error {
	s.mu.Lock()
	key, ok := s.keys[handle]
	delete(s.keys, handle)
	s.mu.Unlock()
	if !ok {
		return domain.NewNotFoundError("blob", string(handle))
	}
	metrics.BlobReleased()

	if err := s.client.RemoveObject(ctx, s.bucketName, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", key, err)
	}
	return nil
}

// Len returns the number of unreleased handles
func (s *S3Allocator) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}

func objectKey(prefix, id, fileName string) string {
	name := path.Base(strings.TrimSpace(fileName))
	if name == "." || name == "/" || name == "" {
		return prefix + "/" + id
	}
	return prefix + "/" + id + "/" + name
}

func inlineDisposition(fileName string) string {
	if fileName == "" {
		return "inline"
	}
	return fmt.Sprintf("inline; filename=%q", fileName)
}
