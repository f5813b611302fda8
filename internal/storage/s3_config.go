package storage

import (
	"errors"
	"fmt"
	"strings"

	"imagestudio/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3Target 描述一个 S3 协议的存储桶，S3 与 R2 共用
type s3Target struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	ForcePathStyle  bool
	Bucket          string
	Prefix          string
}

func s3TargetFromConfig(cfg config.Config) (s3Target, error) {
	target := s3Target{
		Region:          strings.TrimSpace(cfg.StorageS3Region),
		Endpoint:        normaliseEndpoint(cfg.StorageS3Endpoint),
		AccessKeyID:     strings.TrimSpace(cfg.StorageS3AccessKeyID),
		SecretAccessKey: strings.TrimSpace(cfg.StorageS3SecretAccessKey),
		SessionToken:    strings.TrimSpace(cfg.StorageS3SessionToken),
		ForcePathStyle:  cfg.StorageS3ForcePathStyle,
		Bucket:          strings.TrimSpace(cfg.StorageS3Bucket),
		Prefix:          trimPrefix(cfg.StorageS3Prefix),
	}
	if target.Bucket == "" {
		return s3Target{}, errors.New("storage: missing S3 bucket")
	}
	if target.Region == "" {
		return s3Target{}, errors.New("storage: missing S3 region")
	}
	if target.AccessKeyID == "" || target.SecretAccessKey == "" {
		return s3Target{}, errors.New("storage: missing S3 credentials")
	}
	return target, nil
}

// r2TargetFromConfig 未配置 endpoint 时由 account id 推导
func r2TargetFromConfig(cfg config.Config) (s3Target, error) {
	target := s3Target{
		Region:          strings.TrimSpace(cfg.StorageR2Region),
		Endpoint:        normaliseEndpoint(cfg.StorageR2Endpoint),
		AccessKeyID:     strings.TrimSpace(cfg.StorageR2AccessKeyID),
		SecretAccessKey: strings.TrimSpace(cfg.StorageR2SecretAccessKey),
		ForcePathStyle:  true,
		Bucket:          strings.TrimSpace(cfg.StorageR2Bucket),
		Prefix:          trimPrefix(cfg.StorageR2Prefix),
	}
	if target.Bucket == "" {
		return s3Target{}, errors.New("storage: missing R2 bucket")
	}
	if target.AccessKeyID == "" || target.SecretAccessKey == "" {
		return s3Target{}, errors.New("storage: missing R2 credentials")
	}
	if target.Endpoint == "" {
		accountID := strings.TrimSpace(cfg.StorageR2AccountID)
		if accountID == "" {
			return s3Target{}, errors.New("storage: missing R2 endpoint or account id")
		}
		target.Endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
	}
	if target.Region == "" {
		target.Region = "auto"
	}
	return target, nil
}

func normaliseEndpoint(value string) string {
	endpoint := strings.TrimRight(strings.TrimSpace(value), "/")
	if endpoint == "" {
		return ""
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	return endpoint
}

// NewS3Storage 创建 Amazon S3 或兼容服务的存储后端
func NewS3Storage(cfg config.Config) (Storage, error) {
	target, err := s3TargetFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return newRemoteS3Storage(target)
}

// NewR2Storage 创建 Cloudflare R2 存储后端
func NewR2Storage(cfg config.Config) (Storage, error) {
	target, err := r2TargetFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return newRemoteS3Storage(target)
}

func newRemoteS3Storage(target s3Target) (Storage, error) {
	awsCfg := aws.Config{
		Region: target.Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(target.AccessKeyID, target.SecretAccessKey, target.SessionToken),
		),
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = target.ForcePathStyle
		if target.Endpoint != "" {
			o.BaseEndpoint = aws.String(target.Endpoint)
		}
	})
	return &remoteS3Storage{
		client: client,
		bucket: target.Bucket,
		prefix: target.Prefix,
	}, nil
}
