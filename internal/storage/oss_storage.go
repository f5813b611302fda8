package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"imagestudio/internal/config"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

type ossStorage struct {
	bucket *oss.Bucket
	prefix string
}

func NewOSSStorage(cfg config.Config) (Storage, error) {
	endpoint := strings.TrimSpace(cfg.StorageOSSEndpoint)
	if endpoint == "" {
		return nil, errors.New("storage: missing OSS endpoint")
	}
	bucketName := strings.TrimSpace(cfg.StorageOSSBucket)
	if bucketName == "" {
		return nil, errors.New("storage: missing OSS bucket")
	}
	accessKey := strings.TrimSpace(cfg.StorageOSSAccessKeyID)
	secretKey := strings.TrimSpace(cfg.StorageOSSAccessKeySecret)
	if accessKey == "" || secretKey == "" {
		return nil, errors.New("storage: missing OSS credentials")
	}

	client, err := oss.New(endpoint, accessKey, secretKey)
	if err != nil {
		return nil, fmt.Errorf("storage: create OSS client: %w", err)
	}
	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("storage: open OSS bucket: %w", err)
	}

	return &ossStorage{
		bucket: bucket,
		prefix: trimPrefix(cfg.StorageOSSPrefix),
	}, nil
}

func (s *ossStorage) objectKey(key string) string {
	if s.prefix != "" {
		return joinPrefix(s.prefix, key)
	}
	return key
}

func (s *ossStorage) Save(ctx context.Context, data []byte, opts SaveOptions) (string, error) {
	if err := checkSave(ctx, data); err != nil {
		return "", err
	}
	key, err := ObjectKey(opts)
	if err != nil {
		return "", err
	}

	options := []oss.Option{oss.WithContext(ctx), oss.ContentType(contentTypeFor(opts))}
	if err := s.bucket.PutObject(s.objectKey(key), bytes.NewReader(data), options...); err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return key, nil
}

func (s *ossStorage) Open(ctx context.Context, key string) ([]byte, error) {
	cleaned, err := validateKey(key)
	if err != nil {
		return nil, err
	}
	body, err := s.bucket.GetObject(s.objectKey(cleaned), oss.WithContext(ctx))
	if err != nil {
		if isOSSNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get object: %w", err)
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	return data, nil
}

func (s *ossStorage) Delete(ctx context.Context, key string) error {
	cleaned, err := validateKey(key)
	if err != nil {
		return err
	}
	if err := s.bucket.DeleteObject(s.objectKey(cleaned), oss.WithContext(ctx)); err != nil && !isOSSNotFound(err) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func isOSSNotFound(err error) bool {
	var serviceErr oss.ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.StatusCode == http.StatusNotFound
	}
	return false
}

var _ Storage = (*ossStorage)(nil)
