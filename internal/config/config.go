package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/sirupsen/logrus"
)

type Config struct {
	HTTPPort   string `env:"HTTP_PORT" envDefault:"8080"`
	GinMode    string `env:"GIN_MODE" envDefault:"release"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	AppVersion string `env:"APP_VERSION" envDefault:"2.0.0"`
	AppEnv     string `env:"APP_ENV" envDefault:"development"`

	// postgres 用于连接 Supabase，memory 仅用于本地调试
	DBType     string `env:"DBType" envDefault:"sqlite"`
	DSNURL     string `env:"DSN_URL" envDefault:""`
	DBUser     string `env:"DBUser" envDefault:""`
	DBPassword string `env:"DBPassword" envDefault:""`
	DBAddr     string `env:"DBAddr" envDefault:""`
	DBName     string `env:"DBName" envDefault:"imagestudio"`
	DBPath     string `env:"DBPath" envDefault:"datas/imagestudio.db"`
	DBPort     string `env:"DBPort" envDefault:"5432"`

	// 生成次数限制
	DailyGenerationLimit   int           `env:"DAILY_GENERATION_LIMIT" envDefault:"50"`
	MonthlyGenerationLimit int           `env:"MONTHLY_GENERATION_LIMIT" envDefault:"1500"`
	RateLimitBackend       string        `env:"RATE_LIMIT_BACKEND" envDefault:"memory"`
	RateLimitWindow        time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"24h"`
	RateLimitKeyPrefix     string        `env:"RATE_LIMIT_KEY_PREFIX" envDefault:"imagestudio:ratelimit"`
	RedisURL               string        `env:"REDIS_URL" envDefault:""`

	GeminiAPIURL  string        `env:"GEMINI_API_URL" envDefault:"https://generativelanguage.googleapis.com"`
	GeminiModel   string        `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	GeminiTimeout time.Duration `env:"GEMINI_TIMEOUT" envDefault:"120s"`

	ImagePublicBaseURL string `env:"IMAGE_PUBLIC_BASE_URL" envDefault:"/api/images"`

	StorageType     string `env:"STORAGE_TYPE" envDefault:"local"`
	StorageLocalDir string `env:"STORAGE_LOCAL_DIR" envDefault:"datas/images"`

	// S3 兼容存储配置
	StorageS3Region          string `env:"STORAGE_S3_REGION"`
	StorageS3Bucket          string `env:"STORAGE_S3_BUCKET"`
	StorageS3Prefix          string `env:"STORAGE_S3_PREFIX"`
	StorageS3Endpoint        string `env:"STORAGE_S3_ENDPOINT"`
	StorageS3AccessKeyID     string `env:"STORAGE_S3_ACCESS_KEY_ID"`
	StorageS3SecretAccessKey string `env:"STORAGE_S3_SECRET_ACCESS_KEY"`
	StorageS3SessionToken    string `env:"STORAGE_S3_SESSION_TOKEN"`
	StorageS3ForcePathStyle  bool   `env:"STORAGE_S3_FORCE_PATH_STYLE" envDefault:"false"`

	// 阿里云 OSS 存储配置
	StorageOSSEndpoint        string `env:"STORAGE_OSS_ENDPOINT"`
	StorageOSSBucket          string `env:"STORAGE_OSS_BUCKET"`
	StorageOSSPrefix          string `env:"STORAGE_OSS_PREFIX"`
	StorageOSSAccessKeyID     string `env:"STORAGE_OSS_ACCESS_KEY_ID"`
	StorageOSSAccessKeySecret string `env:"STORAGE_OSS_ACCESS_KEY_SECRET"`

	// 腾讯云 COS 存储配置
	StorageCOSBucketURL string `env:"STORAGE_COS_BUCKET_URL"`
	StorageCOSPrefix    string `env:"STORAGE_COS_PREFIX"`
	StorageCOSSecretID  string `env:"STORAGE_COS_SECRET_ID"`
	StorageCOSSecretKey string `env:"STORAGE_COS_SECRET_KEY"`

	// Cloudflare R2 存储配置
	StorageR2AccountID       string `env:"STORAGE_R2_ACCOUNT_ID"`
	StorageR2Endpoint        string `env:"STORAGE_R2_ENDPOINT"`
	StorageR2Region          string `env:"STORAGE_R2_REGION" envDefault:"auto"`
	StorageR2Bucket          string `env:"STORAGE_R2_BUCKET"`
	StorageR2Prefix          string `env:"STORAGE_R2_PREFIX"`
	StorageR2AccessKeyID     string `env:"STORAGE_R2_ACCESS_KEY_ID"`
	StorageR2SecretAccessKey string `env:"STORAGE_R2_SECRET_ACCESS_KEY"`

	// 异步副作用任务队列
	TaskWorkers   int           `env:"TASK_WORKERS" envDefault:"4"`
	TaskQueueSize int           `env:"TASK_QUEUE_SIZE" envDefault:"256"`
	TaskTimeout   time.Duration `env:"TASK_TIMEOUT" envDefault:"10s"`

	CORSAllowOrigins []string `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"*"`

	JWTSecret            string `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	JWTIssuer            string `env:"JWT_ISSUER" envDefault:"imagestudio"`
	JWTExpirationMinutes int    `env:"JWT_EXPIRATION_MINUTES" envDefault:"1440"`
	AdminPasswordHash    string `env:"ADMIN_PASSWORD_HASH" envDefault:""`
}

func ParseConfig() (Config, error) {
	var Conf Config
	err := env.Parse(&Conf)
	if err != nil {
		logrus.WithError(err).Error("env.Parse error")
		return Config{}, err
	}
	logrus.WithFields(logrus.Fields{
		"db_type":            Conf.DBType,
		"storage_type":       Conf.StorageType,
		"rate_limit_backend": Conf.RateLimitBackend,
		"gemini_model":       Conf.GeminiModel,
	}).Debug("config_loaded")
	return Conf, nil
}

// MissingRequired 返回缺失的必需配置项名称
func (c Config) MissingRequired() []string {
	var missing []string
	if c.GeminiAPIURL == "" {
		missing = append(missing, "GEMINI_API_URL")
	}
	if c.DBType == "" {
		missing = append(missing, "DBType")
	}
	if c.DBType == "postgres" && c.DSNURL == "" && c.DBAddr == "" {
		missing = append(missing, "DSN_URL")
	}
	if c.RateLimitBackend == "redis" && c.RedisURL == "" {
		missing = append(missing, "REDIS_URL")
	}
	return missing
}
