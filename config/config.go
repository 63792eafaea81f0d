package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HttpPort string

	// AI completion endpoint (DeepSeek-compatible chat completions)
	AIApiURL  string
	AIApiKey  string
	AIModel   string
	AITimeout time.Duration

	// Postgres
	Host     string
	User     string
	Password string
	DBName   string
	Port     string

	// Redis
	RedisURL string

	// S3/MinIO request-file archive
	BucketEndpoint  string
	BucketAccessID  string
	BucketAccessKey string
	BucketName      string
	BucketRegion    string
	UseSSL          bool
	StorageType     string //"minio" or "s3"

	// others
	MaxFileSize int64
}

func LoadConfig() *Config {
	return &Config{
		HttpPort:        os.Getenv("PORT"),
		AIApiURL:        envOr("AI_API_URL", "https://api.deepseek.com/v1"),
		AIApiKey:        os.Getenv("AI_API_KEY"),
		AIModel:         envOr("AI_MODEL", "deepseek-chat"),
		AITimeout:       envSeconds("AI_TIMEOUT_SECONDS", 60),
		Host:            os.Getenv("PG_HOST"),
		User:            os.Getenv("PG_USER"),
		Password:        os.Getenv("PG_PASSWORD"),
		DBName:          os.Getenv("PG_DB"),
		Port:            os.Getenv("PG_PORT"),
		RedisURL:        os.Getenv("REDIS_URL"),
		BucketEndpoint:  os.Getenv("BUCKET_ENDPOINT"),
		BucketAccessID:  os.Getenv("BUCKET_ACCESS_ID"),
		BucketAccessKey: os.Getenv("BUCKET_ACCESS_KEY"),
		BucketName:      os.Getenv("BUCKET_NAME"),
		BucketRegion:    os.Getenv("BUCKET_REGION"),
		UseSSL:          os.Getenv("BUCKET_USE_SSL") == "true",
		StorageType:     os.Getenv("STORAGE_TYPE"),
		MaxFileSize:     50 * 1024 * 1024,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envSeconds(key string, fallback int64) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return time.Duration(fallback) * time.Second
}
